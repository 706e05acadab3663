package lattice

// Env is an immutable-from-the-outside name -> Value map with a parent
// pointer, the copy-on-write shape of the teacher's own
// internal/evaluator/persistent_map.go rather than a literal transliteration
// of the Python reference's immutables.Map: a comprehension visits its
// element expression in a Child() scope so its loop variables never leak
// into, or shadow, the enclosing block's bindings.
type Env struct {
	parent   *Env
	bindings map[string]Value
}

// NewEnv creates a root environment, typically seeded with a function's
// parameters and closure captures.
func NewEnv() *Env {
	return &Env{bindings: make(map[string]Value)}
}

// Child returns a new environment nested under e. Bindings set on the
// child are invisible to e.
func (e *Env) Child() *Env {
	return &Env{parent: e, bindings: make(map[string]Value)}
}

// Bind sets name to v in e's own scope.
func (e *Env) Bind(name string, v Value) {
	e.bindings[name] = v
}

// Lookup searches e and its ancestors for name.
func (e *Env) Lookup(name string) (Value, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.bindings[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// DefinedInAncestor reports whether name is bound in a strict ancestor of
// e (not in e's own scope) — used to enforce "rebinding an outer name is
// rejected" (spec.md §4.2).
func (e *Env) DefinedInAncestor(name string) bool {
	for cur := e.parent; cur != nil; cur = cur.parent {
		if _, ok := cur.bindings[name]; ok {
			return true
		}
	}
	return false
}
