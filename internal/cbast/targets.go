package cbast

import "strings"

// NameTarget binds a single name.
type NameTarget struct {
	Name string
}

func (t *NameTarget) targetNode()      {}
func (t *NameTarget) Accept(v Visitor) { v.VisitNameTarget(t) }
func (t *NameTarget) String() string   { return t.Name }

// TupleTarget destructures a tuple-shaped value into its Elems, left to
// right. Nesting is unrestricted: `(a, b), c` is TupleTarget{TupleTarget{a,
// b}, c}.
type TupleTarget struct {
	Elems []Target
}

func (t *TupleTarget) targetNode()      {}
func (t *TupleTarget) Accept(v Visitor) { v.VisitTupleTarget(t) }
func (t *TupleTarget) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// StarTarget marks a target as starred: within an enclosing TupleTarget it
// greedily absorbs the slack between fixed leaves when matched against a
// value of known arity (spec.md §4.1).
type StarTarget struct {
	Elem Target
}

func (t *StarTarget) targetNode()      {}
func (t *StarTarget) Accept(v Visitor) { v.VisitStarTarget(t) }
func (t *StarTarget) String() string   { return "*" + t.Elem.String() }
