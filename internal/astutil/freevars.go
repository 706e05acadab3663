package astutil

import "github.com/mrSundvoll/xun/internal/cbast"

// nameCollector walks an expression tree collecting every Name reference.
// It implements cbast.Visitor but only the expression-producing methods
// matter; statement methods are unreachable from an expression walk.
type nameCollector struct {
	names map[string]bool
}

func (c *nameCollector) VisitAssignStmt(*cbast.AssignStmt) {}
func (c *nameCollector) VisitExprStmt(*cbast.ExprStmt)     {}

func (c *nameCollector) VisitName(n *cbast.Name) { c.names[n.Value] = true }
func (c *nameCollector) VisitLiteral(*cbast.Literal) {}

func (c *nameCollector) VisitTupleExpr(t *cbast.TupleExpr) {
	for _, e := range t.Elems {
		e.Accept(c)
	}
}

func (c *nameCollector) VisitListExpr(l *cbast.ListExpr) {
	for _, e := range l.Elems {
		e.Accept(c)
	}
}

func (c *nameCollector) VisitDictExpr(d *cbast.DictExpr) {
	for _, e := range d.Entries {
		e.Key.Accept(c)
		e.Value.Accept(c)
	}
}

func (c *nameCollector) VisitSetExpr(s *cbast.SetExpr) {
	for _, e := range s.Elems {
		e.Accept(c)
	}
}

func (c *nameCollector) VisitCallExpr(call *cbast.CallExpr) {
	for _, a := range call.Args {
		a.Value.Accept(c)
	}
}

func (c *nameCollector) VisitBinExpr(b *cbast.BinExpr) {
	b.Left.Accept(c)
	b.Right.Accept(c)
}

func (c *nameCollector) VisitIfExpr(e *cbast.IfExpr) {
	e.Cond.Accept(c)
	e.Then.Accept(c)
	e.Else.Accept(c)
}

func (c *nameCollector) VisitSubscriptExpr(s *cbast.SubscriptExpr) {
	s.Value.Accept(c)
	s.Index.Accept(c)
}

func (c *nameCollector) visitComprehension(elts []cbast.Expression, clause cbast.Comprehension) {
	// The comprehension target binds a local loop variable; its names
	// are not free with respect to the enclosing scope, so only the
	// iterable and the element/key/value expressions are collected here.
	// Bound-name filtering happens in ExpressionNames, which strips the
	// loop target's names after the walk.
	clause.Iter.Accept(c)
	for _, e := range elts {
		e.Accept(c)
	}
}

func (c *nameCollector) VisitListComp(l *cbast.ListComp) {
	c.visitComprehension([]cbast.Expression{l.Elt}, l.Clause)
}

func (c *nameCollector) VisitSetComp(s *cbast.SetComp) {
	c.visitComprehension([]cbast.Expression{s.Elt}, s.Clause)
}

func (c *nameCollector) VisitDictComp(d *cbast.DictComp) {
	c.visitComprehension([]cbast.Expression{d.Key, d.Value}, d.Clause)
}

func (c *nameCollector) VisitGenExpr(g *cbast.GenExpr) {
	c.visitComprehension([]cbast.Expression{g.Elt}, g.Clause)
}

func (c *nameCollector) VisitUnsupportedExpr(*cbast.UnsupportedExpr) {}

func (c *nameCollector) VisitNameTarget(*cbast.NameTarget)   {}
func (c *nameCollector) VisitTupleTarget(*cbast.TupleTarget) {}
func (c *nameCollector) VisitStarTarget(*cbast.StarTarget)   {}

// ExpressionNames returns the set of names read by e. Names bound by a
// nested comprehension's own loop target are stripped out.
func ExpressionNames(e cbast.Expression) map[string]bool {
	c := &nameCollector{names: make(map[string]bool)}
	e.Accept(c)

	// A comprehension's loop target shadows any outer binding for the
	// duration of its element expression; strip those names back out.
	var stripTargets func(e cbast.Expression)
	stripTargets = func(e cbast.Expression) {
		switch v := e.(type) {
		case *cbast.ListComp:
			for _, nt := range FlattenAssignmentTargets(v.Clause.Target) {
				delete(c.names, nt.Name)
			}
		case *cbast.SetComp:
			for _, nt := range FlattenAssignmentTargets(v.Clause.Target) {
				delete(c.names, nt.Name)
			}
		case *cbast.DictComp:
			for _, nt := range FlattenAssignmentTargets(v.Clause.Target) {
				delete(c.names, nt.Name)
			}
		case *cbast.GenExpr:
			for _, nt := range FlattenAssignmentTargets(v.Clause.Target) {
				delete(c.names, nt.Name)
			}
		case *cbast.TupleExpr:
			for _, el := range v.Elems {
				stripTargets(el)
			}
		case *cbast.ListExpr:
			for _, el := range v.Elems {
				stripTargets(el)
			}
		case *cbast.CallExpr:
			for _, a := range v.Args {
				stripTargets(a.Value)
			}
		case *cbast.BinExpr:
			stripTargets(v.Left)
			stripTargets(v.Right)
		case *cbast.IfExpr:
			stripTargets(v.Then)
			stripTargets(v.Else)
		}
	}
	stripTargets(e)

	return c.names
}

// StatementDefines returns the names a statement binds, in left-to-right
// order. An ExprStmt binds nothing.
func StatementDefines(stmt cbast.Statement) []string {
	as, ok := stmt.(*cbast.AssignStmt)
	if !ok {
		return nil
	}
	leaves := FlattenAssignmentTargets(as.Target)
	names := make([]string, len(leaves))
	for i, l := range leaves {
		names[i] = l.Name
	}
	return names
}

// StatementUses returns the free names read by a statement's value
// expression.
func StatementUses(stmt cbast.Statement) map[string]bool {
	switch s := stmt.(type) {
	case *cbast.AssignStmt:
		return ExpressionNames(s.Value)
	case *cbast.ExprStmt:
		return ExpressionNames(s.Value)
	default:
		return nil
	}
}

// FreeVariables returns the names read but not bound anywhere within
// stmts: closure captures and module-level references (spec.md §4.1).
func FreeVariables(stmts []cbast.Statement) map[string]bool {
	bound := make(map[string]bool)
	for _, s := range stmts {
		for _, n := range StatementDefines(s) {
			bound[n] = true
		}
	}

	free := make(map[string]bool)
	for _, s := range stmts {
		for n := range StatementUses(s) {
			if !bound[n] {
				free[n] = true
			}
		}
	}
	return free
}
