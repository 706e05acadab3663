// Package cbast is the host AST for a function's constants block.
//
// Go's surface syntax cannot express the target shapes a constants block
// needs to support (nested-tuple and starred unpacking targets), so rather
// than force those onto go/ast this package defines a small, purpose-built
// Node tree in the same shape as a hand-rolled language AST: a Node
// interface with Accept(Visitor), Statement/Expression sub-interfaces, and
// one concrete struct per node kind. Callers build trees with the fluent
// helpers in pkg/xun rather than parsing source text.
package cbast

// Node is the base interface for every constants-block AST node.
type Node interface {
	Accept(v Visitor)
	String() string
}

// Statement is a Node that appears directly in a constants block body.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Target is the left-hand side of an assignment: a name, a tuple of
// targets, or a starred target absorbing the slack of a tuple unpack.
type Target interface {
	Node
	targetNode()
}

// Visitor is implemented by passes that walk a constants-block tree:
// the free-variable collector, the type deducer, and the graph-prelude
// emitter.
type Visitor interface {
	VisitAssignStmt(*AssignStmt)
	VisitExprStmt(*ExprStmt)

	VisitName(*Name)
	VisitLiteral(*Literal)
	VisitTupleExpr(*TupleExpr)
	VisitListExpr(*ListExpr)
	VisitDictExpr(*DictExpr)
	VisitSetExpr(*SetExpr)
	VisitCallExpr(*CallExpr)
	VisitBinExpr(*BinExpr)
	VisitIfExpr(*IfExpr)
	VisitSubscriptExpr(*SubscriptExpr)
	VisitListComp(*ListComp)
	VisitSetComp(*SetComp)
	VisitDictComp(*DictComp)
	VisitGenExpr(*GenExpr)
	VisitUnsupportedExpr(*UnsupportedExpr)

	VisitNameTarget(*NameTarget)
	VisitTupleTarget(*TupleTarget)
	VisitStarTarget(*StarTarget)
}
