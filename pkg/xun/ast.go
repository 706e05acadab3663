// Package xun is the public surface for building and running xun
// workflows: a fluent builder over internal/cbast (since Go's own
// syntax cannot express a constants block's nested-tuple and starred
// assignment targets, see SPEC_FULL.md §0), a registration surface for
// annotated and ordinary functions, and Run sugar wiring
// internal/blueprint, internal/driver, and internal/store together for
// the common case of driving one invocation end to end.
package xun

import (
	"fmt"

	"github.com/mrSundvoll/xun/internal/cbast"
)

// Name references a bound identifier: a parameter, a closure capture,
// or a name already bound earlier in the same constants block.
func Name(name string) *cbast.Name { return &cbast.Name{Value: name} }

// Int, Str, Bool, and None build the constant-block literal kinds
// spec.md §4.2's type deducer always maps to the Any lattice value.
func Int(v int) *cbast.Literal   { return &cbast.Literal{Kind: cbast.IntLiteral, Value: v} }
func Str(v string) *cbast.Literal { return &cbast.Literal{Kind: cbast.StringLiteral, Value: v} }
func Bool(v bool) *cbast.Literal  { return &cbast.Literal{Kind: cbast.BoolLiteral, Value: v} }
func None() *cbast.Literal        { return &cbast.Literal{Kind: cbast.NoneLiteral, Value: nil} }

// Tuple, List, and Set build the fixed-arity and collection literals a
// constants block may construct from names, literals, or calls.
func Tuple(elems ...cbast.Expression) *cbast.TupleExpr { return &cbast.TupleExpr{Elems: elems} }
func List(elems ...cbast.Expression) *cbast.ListExpr   { return &cbast.ListExpr{Elems: elems} }
func Set(elems ...cbast.Expression) *cbast.SetExpr     { return &cbast.SetExpr{Elems: elems} }

// Entry builds one key/value pair of a Dict literal.
func Entry(key, value cbast.Expression) cbast.DictEntry {
	return cbast.DictEntry{Key: key, Value: value}
}

// Dict builds a dictionary literal, always Terminal[Dict] under the
// lattice (spec.md §4.2, visit_Dict).
func Dict(entries ...cbast.DictEntry) *cbast.DictExpr { return &cbast.DictExpr{Entries: entries} }

// Pos and Kw build a CallExpr argument: positional or keyword.
func Pos(value cbast.Expression) cbast.Arg           { return cbast.Arg{Value: value} }
func Kw(name string, value cbast.Expression) cbast.Arg { return cbast.Arg{Name: name, Value: value} }

// Call builds a call to callee — annotated or ordinary, the lattice
// decides which once it consults the known-annotated-functions set
// (spec.md §4.2, visit_Call). Each element of args is either a bare
// cbast.Expression (a positional argument) or a cbast.Arg built with Kw
// (a keyword argument); one call may mix both.
func Call(callee string, args ...any) *cbast.CallExpr {
	out := make([]cbast.Arg, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case cbast.Arg:
			out[i] = v
		case cbast.Expression:
			out[i] = cbast.Arg{Value: v}
		default:
			panic(fmt.Sprintf("xun: Call argument %d is %T, want cbast.Expression or xun.Kw(...)", i, a))
		}
	}
	return &cbast.CallExpr{Callee: callee, Args: out}
}

// Add, Sub, Mul, Div, And, and Or build a binary arithmetic/logical
// expression. Either operand being a deferred (Xun) value is rejected
// by the lattice, not here (spec.md §4.2).
func Add(l, r cbast.Expression) *cbast.BinExpr { return &cbast.BinExpr{Op: cbast.OpAdd, Left: l, Right: r} }
func Sub(l, r cbast.Expression) *cbast.BinExpr { return &cbast.BinExpr{Op: cbast.OpSub, Left: l, Right: r} }
func Mul(l, r cbast.Expression) *cbast.BinExpr { return &cbast.BinExpr{Op: cbast.OpMul, Left: l, Right: r} }
func Div(l, r cbast.Expression) *cbast.BinExpr { return &cbast.BinExpr{Op: cbast.OpDiv, Left: l, Right: r} }
func And(l, r cbast.Expression) *cbast.BinExpr { return &cbast.BinExpr{Op: cbast.OpAnd, Left: l, Right: r} }
func Or(l, r cbast.Expression) *cbast.BinExpr  { return &cbast.BinExpr{Op: cbast.OpOr, Left: l, Right: r} }

// If builds a conditional expression: `then if cond else els`.
func If(cond, then, els cbast.Expression) *cbast.IfExpr {
	return &cbast.IfExpr{Cond: cond, Then: then, Else: els}
}

// Index builds a subscript expression: `value[idx]`.
func Index(value, idx cbast.Expression) *cbast.SubscriptExpr {
	return &cbast.SubscriptExpr{Value: value, Index: idx}
}

// Expr wraps a bare expression as a statement, kept only for the
// CallNode edges it embeds (e.g. a fire-and-forget deferred call).
func Expr(value cbast.Expression) *cbast.ExprStmt { return &cbast.ExprStmt{Value: value} }

// Star marks a target as starred: within an enclosing Bind it greedily
// absorbs the slack between fixed leaves (spec.md §4.1). v must itself
// promote to a Target — typically the result of Name.
func Star(v any) *cbast.StarTarget {
	return &cbast.StarTarget{Elem: toTarget(v)}
}

// Bind starts an assignment statement: one target promotes directly,
// more than one is wrapped in a TupleTarget, matching the nested
// `(a, b), c = ...` shape spec.md §8 requires as a tested scenario.
// Each target is either the result of Name (a plain binding), Star (a
// starred binding), or Tuple (a nested structural binding) — Tuple's
// *cbast.TupleExpr return value is reused here as the target-position
// grouping since Go has no literal syntax for either shape.
func Bind(targets ...any) *bindBuilder {
	return &bindBuilder{targets: targets}
}

type bindBuilder struct {
	targets []any
}

// From completes the assignment, binding the builder's target(s) to
// value.
func (b *bindBuilder) From(value cbast.Expression) *cbast.AssignStmt {
	var target cbast.Target
	if len(b.targets) == 1 {
		target = toTarget(b.targets[0])
	} else {
		elems := make([]cbast.Target, len(b.targets))
		for i, t := range b.targets {
			elems[i] = toTarget(t)
		}
		target = &cbast.TupleTarget{Elems: elems}
	}
	return &cbast.AssignStmt{Target: target, Value: value}
}

// toTarget promotes a builder-level value to a cbast.Target: a
// *cbast.Name becomes a NameTarget, a *cbast.TupleExpr becomes a nested
// TupleTarget, and anything already a Target (Star's result included)
// passes through unchanged. Panics on any other shape — a programmer
// error in how the workflow was built, not a runtime condition.
func toTarget(v any) cbast.Target {
	switch t := v.(type) {
	case cbast.Target:
		return t
	case *cbast.Name:
		return &cbast.NameTarget{Name: t.Value}
	case *cbast.TupleExpr:
		elems := make([]cbast.Target, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = toTarget(e)
		}
		return &cbast.TupleTarget{Elems: elems}
	default:
		panic(fmt.Sprintf("xun: %T cannot be used as an assignment target", v))
	}
}
