package cbast

import (
	"fmt"
	"strings"
)

// Name is a bare identifier reference.
type Name struct {
	Value string
}

func (n *Name) expressionNode()  {}
func (n *Name) Accept(v Visitor) { v.VisitName(n) }
func (n *Name) String() string   { return n.Value }

// UnsupportedKind enumerates node kinds the host AST can represent
// syntactically but the constants block never allows: await, yield,
// yield-from, and compare all reject unconditionally (spec.md §4.2).
type UnsupportedKind int

const (
	AwaitKind UnsupportedKind = iota
	YieldKind
	YieldFromKind
	CompareKind
)

func (k UnsupportedKind) String() string {
	switch k {
	case AwaitKind:
		return "await"
	case YieldKind:
		return "yield"
	case YieldFromKind:
		return "yield from"
	case CompareKind:
		return "compare"
	default:
		return "unsupported"
	}
}

// UnsupportedExpr marks a construct the type deducer must reject
// outright, regardless of the value it would otherwise carry.
type UnsupportedExpr struct {
	Kind UnsupportedKind
}

func (u *UnsupportedExpr) expressionNode()  {}
func (u *UnsupportedExpr) Accept(v Visitor) { v.VisitUnsupportedExpr(u) }
func (u *UnsupportedExpr) String() string   { return "<" + u.Kind.String() + ">" }

// LiteralKind distinguishes the primitive literal kinds. All of them
// deduce to the Any lattice value (spec.md §4.2, visit_Constant).
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	StringLiteral
	BoolLiteral
	NoneLiteral
)

// Literal is an ordinary constant: int, string, bool, or none.
type Literal struct {
	Kind  LiteralKind
	Value any
}

func (l *Literal) expressionNode()  {}
func (l *Literal) Accept(v Visitor) { v.VisitLiteral(l) }
func (l *Literal) String() string   { return fmt.Sprintf("%v", l.Value) }

// TupleExpr is a fixed-arity, ordered grouping of values — the only
// composite literal the lattice can structurally decompose (spec.md §3,
// Type lattice).
type TupleExpr struct {
	Elems []Expression
}

func (t *TupleExpr) expressionNode()  {}
func (t *TupleExpr) Accept(v Visitor) { v.VisitTupleExpr(t) }
func (t *TupleExpr) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ListExpr is a list literal. Like TupleExpr it preserves arity and
// element types (spec.md §4.2: "Tuple and List literals produce a
// structural tuple-type").
type ListExpr struct {
	Elems []Expression
}

func (l *ListExpr) expressionNode()  {}
func (l *ListExpr) Accept(v Visitor) { v.VisitListExpr(l) }
func (l *ListExpr) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DictEntry is one key/value pair of a DictExpr.
type DictEntry struct {
	Key   Expression
	Value Expression
}

// DictExpr is a dictionary literal. Always deduces to Terminal[Dict]
// (spec.md §4.2, visit_Dict): keys and values cannot be forwarded as
// symbolic results.
type DictExpr struct {
	Entries []DictEntry
}

func (d *DictExpr) expressionNode()  {}
func (d *DictExpr) Accept(v Visitor) { v.VisitDictExpr(d) }
func (d *DictExpr) String() string {
	parts := make([]string, len(d.Entries))
	for i, e := range d.Entries {
		parts[i] = e.Key.String() + ": " + e.Value.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SetExpr is a set literal. Every element must deduce to the same
// lattice value (spec.md §4.2, visit_Set) or decomposition fails with
// XunSyntax.
type SetExpr struct {
	Elems []Expression
}

func (s *SetExpr) expressionNode()  {}
func (s *SetExpr) Accept(v Visitor) { v.VisitSetExpr(s) }
func (s *SetExpr) String() string {
	parts := make([]string, len(s.Elems))
	for i, e := range s.Elems {
		parts[i] = e.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Arg is one argument of a CallExpr: positional when Name == "".
type Arg struct {
	Name  string
	Value Expression
}

// CallExpr is a call to any function — annotated or ordinary. Whether it
// produces Xun or Any is decided by the lattice, which consults the
// known-annotated-functions set (spec.md §4.2, visit_Call).
type CallExpr struct {
	Callee string
	Args   []Arg
}

func (c *CallExpr) expressionNode()  {}
func (c *CallExpr) Accept(v Visitor) { v.VisitCallExpr(c) }
func (c *CallExpr) String() string {
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		if a.Name != "" {
			parts[i] = a.Name + "=" + a.Value.String()
		} else {
			parts[i] = a.Value.String()
		}
	}
	return c.Callee + "(" + strings.Join(parts, ", ") + ")"
}

// BinOp enumerates the arithmetic/logical operators rejected when either
// operand is Xun (spec.md §4.2).
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
)

func (op BinOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

// BinExpr is a binary arithmetic/logical operation.
type BinExpr struct {
	Op    BinOp
	Left  Expression
	Right Expression
}

func (b *BinExpr) expressionNode()  {}
func (b *BinExpr) Accept(v Visitor) { v.VisitBinExpr(b) }
func (b *BinExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// IfExpr is a conditional expression: `Then if Cond else Else`. Its
// lattice value is the shared value of both branches, or
// Terminal[Union[...]] when they differ (spec.md §4.2, visit_IfExp).
type IfExpr struct {
	Cond Expression
	Then Expression
	Else Expression
}

func (e *IfExpr) expressionNode()  {}
func (e *IfExpr) Accept(v Visitor) { v.VisitIfExpr(e) }
func (e *IfExpr) String() string {
	return fmt.Sprintf("(%s if %s else %s)", e.Then, e.Cond, e.Else)
}

// SubscriptExpr indexes into a value: `f()[1]`. Subscripting a deferred
// call's result directly is supported, and so is subscripting a name
// bound by plain (non-starred) unpacking: both extend the projection
// path. Only subscripting a name bound by a starred unpack is rejected;
// other names bound by unpacking are not (spec.md §9, open question).
type SubscriptExpr struct {
	Value Expression
	Index Expression
}

func (s *SubscriptExpr) expressionNode()  {}
func (s *SubscriptExpr) Accept(v Visitor) { v.VisitSubscriptExpr(s) }
func (s *SubscriptExpr) String() string {
	return fmt.Sprintf("%s[%s]", s.Value, s.Index)
}

// Comprehension is the generator clause shared by comprehension kinds:
// `for Target in Iter`.
type Comprehension struct {
	Target Target
	Iter   Expression
}

// ListComp is a list comprehension. Per spec.md §4.2 (visit_ListComp),
// comprehensions over an iterable of annotated-function calls produce
// per-element CallNodes with edges accumulated into one collection value
// — in this lattice they always yield a structural tuple-like value.
type ListComp struct {
	Elt    Expression
	Clause Comprehension
}

func (c *ListComp) expressionNode()  {}
func (c *ListComp) Accept(v Visitor) { v.VisitListComp(c) }
func (c *ListComp) String() string {
	return fmt.Sprintf("[%s for %s in %s]", c.Elt, c.Clause.Target, c.Clause.Iter)
}

// SetComp is a set comprehension. Always Terminal[_] (spec.md §4.2).
type SetComp struct {
	Elt    Expression
	Clause Comprehension
}

func (c *SetComp) expressionNode()  {}
func (c *SetComp) Accept(v Visitor) { v.VisitSetComp(c) }
func (c *SetComp) String() string {
	return fmt.Sprintf("{%s for %s in %s}", c.Elt, c.Clause.Target, c.Clause.Iter)
}

// DictComp is a dict comprehension. Always Terminal[_] (spec.md §4.2).
type DictComp struct {
	Key    Expression
	Value  Expression
	Clause Comprehension
}

func (c *DictComp) expressionNode()  {}
func (c *DictComp) Accept(v Visitor) { v.VisitDictComp(c) }
func (c *DictComp) String() string {
	return fmt.Sprintf("{%s: %s for %s in %s}", c.Key, c.Value, c.Clause.Target, c.Clause.Iter)
}

// GenExpr is a generator expression. Deduces to Terminal[Iterator]
// (spec.md §4.2, visit_GeneratorExp).
type GenExpr struct {
	Elt    Expression
	Clause Comprehension
}

func (g *GenExpr) expressionNode()  {}
func (g *GenExpr) Accept(v Visitor) { v.VisitGenExpr(g) }
func (g *GenExpr) String() string {
	return fmt.Sprintf("(%s for %s in %s)", g.Elt, g.Clause.Target, g.Clause.Iter)
}
