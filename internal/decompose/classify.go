package decompose

import "github.com/mrSundvoll/xun/internal/cbast"

// statementValue returns the expression a statement's symbolic-ness is
// judged on.
func statementValue(stmt cbast.Statement) cbast.Expression {
	switch s := stmt.(type) {
	case *cbast.AssignStmt:
		return s.Value
	case *cbast.ExprStmt:
		return s.Value
	default:
		return nil
	}
}

// walkCalls visits every CallExpr anywhere in e's subtree, in pre-order
// (a call before its arguments, a comprehension's element before its
// iterable). It backs directDependencies, which implements pass 4's
// classification test (a statement is "symbolic" iff it calls a known-
// annotated function) by recording every such callee name directly,
// rather than computing a separate per-statement bool: the evaluator
// (eval.go) does not need a symbolic/plain bucketing of its own, since
// it decides per-call whether to defer (known) or run immediately
// (ordinary) uniformly at evaluation time.
func walkCalls(e cbast.Expression, visit func(*cbast.CallExpr)) {
	if e == nil {
		return
	}
	switch expr := e.(type) {
	case *cbast.CallExpr:
		visit(expr)
		for _, a := range expr.Args {
			walkCalls(a.Value, visit)
		}
	case *cbast.TupleExpr:
		walkCallsAll(expr.Elems, visit)
	case *cbast.ListExpr:
		walkCallsAll(expr.Elems, visit)
	case *cbast.SetExpr:
		walkCallsAll(expr.Elems, visit)
	case *cbast.DictExpr:
		for _, entry := range expr.Entries {
			walkCalls(entry.Key, visit)
			walkCalls(entry.Value, visit)
		}
	case *cbast.BinExpr:
		walkCalls(expr.Left, visit)
		walkCalls(expr.Right, visit)
	case *cbast.IfExpr:
		walkCalls(expr.Cond, visit)
		walkCalls(expr.Then, visit)
		walkCalls(expr.Else, visit)
	case *cbast.SubscriptExpr:
		walkCalls(expr.Value, visit)
		walkCalls(expr.Index, visit)
	case *cbast.ListComp:
		walkCalls(expr.Elt, visit)
		walkCalls(expr.Clause.Iter, visit)
	case *cbast.SetComp:
		walkCalls(expr.Elt, visit)
		walkCalls(expr.Clause.Iter, visit)
	case *cbast.DictComp:
		walkCalls(expr.Key, visit)
		walkCalls(expr.Value, visit)
		walkCalls(expr.Clause.Iter, visit)
	case *cbast.GenExpr:
		walkCalls(expr.Elt, visit)
		walkCalls(expr.Clause.Iter, visit)
	}
}

func walkCallsAll(elems []cbast.Expression, visit func(*cbast.CallExpr)) {
	for _, e := range elems {
		walkCalls(e, visit)
	}
}

// directDependencies returns the annotated-function names stmts calls
// directly, in first-use order — becomes a function.Image's
// Dependencies keys (spec.md §4.6).
func directDependencies(stmts []cbast.Statement, known map[string]bool) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, stmt := range stmts {
		walkCalls(statementValue(stmt), func(c *cbast.CallExpr) {
			if known[c.Callee] && !seen[c.Callee] {
				seen[c.Callee] = true
				deps = append(deps, c.Callee)
			}
		})
	}
	return deps
}
