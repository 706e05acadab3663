// Package lattice implements spec.md §4.2: the three-valued type lattice
// (Any, Xun, Terminal[_]) threaded over a constants block by a
// single-pass visitor, used only to reject illegal uses of deferred
// results — it never runs at invocation time.
package lattice

import "strings"

// Value is a lattice element: Any, Xun, Terminal[_], or a structural
// Tuple of Values.
type Value interface {
	isValue()
	String() string
}

// Any is the lattice value of an ordinary runtime value.
type Any struct{}

func (Any) isValue()      {}
func (Any) String() string { return "Any" }

// Xun is the lattice value of a deferred annotated-function call result.
// It may not participate in arithmetic/comparison (spec.md §3).
type Xun struct{}

func (Xun) isValue()      {}
func (Xun) String() string { return "Xun" }

// Terminal is a container of symbolic results that cannot be further
// structurally decomposed: dictionaries, sets, non-tuple comprehensions,
// mixed-branch conditionals, generator expressions. Tag is carried only
// for diagnostics (spec.md §4, SUPPLEMENTED FEATURES): it never affects
// control flow.
type Terminal struct {
	Tag string
}

func (Terminal) isValue() {}
func (t Terminal) String() string {
	if t.Tag == "" {
		return "Terminal"
	}
	return "Terminal[" + t.Tag + "]"
}

// Tuple is the structural type of a Tuple/List literal: arity and element
// types are preserved so unpacking assignments can project leaf types
// (spec.md §4.2).
type Tuple struct {
	Elems []Value
}

func (Tuple) isValue() {}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "Tuple[" + strings.Join(parts, ", ") + "]"
}

// Equal reports whether two lattice values are the same, structurally for
// Tuple. Terminal values compare equal regardless of Tag, matching the
// Python reference's plain identity check against a single TerminalType
// sentinel.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Any:
		_, ok := b.(Any)
		return ok
	case Xun:
		_, ok := b.(Xun)
		return ok
	case Terminal:
		_, ok := b.(Terminal)
		return ok
	case Tuple:
		bv, ok := b.(Tuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
