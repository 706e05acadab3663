package decompose

import (
	"github.com/mrSundvoll/xun/internal/astutil"
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/dag"
	"github.com/mrSundvoll/xun/internal/function"
	"github.com/mrSundvoll/xun/internal/lattice"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// Result is decomposition pass 10's assembly: everything a caller needs
// to turn one function.Description, bound to a resolved dependency map,
// into a function.Image (spec.md §4.6).
type Result struct {
	// Dependencies lists the annotated-function names the constants
	// block calls directly, in first-use order.
	Dependencies []string

	BuildGraph function.GraphBuilder
	RunBody    function.BodyRunner
}

// Decompose implements spec.md §4.4 passes 2 through 10 over desc. Pass
// 1 ("locate the constants block") is already done by construction:
// function.Description keeps ConstantsBlock and Body as separate fields
// rather than requiring a scan of one statement list for a `with`
// marker.
func Decompose(desc *function.Description, ctx *Context) (*Result, error) {
	if err := rejectMutationAndAliasing(desc.ConstantsBlock, ctx.Known); err != nil {
		return nil, err
	}

	sorted, err := sortConstantsBlock(desc.ConstantsBlock)
	if err != nil {
		return nil, err
	}

	// Pass 6: type-deduce the sorted block once at decomposition time,
	// seeded with Any for every parameter (concrete argument types are
	// unknown until invocation; the lattice only needs to know these
	// names are NOT themselves deferred). Failures here (set literals with
	// mismatched element types, deferred values reaching an operator,
	// rebinding a name from an enclosing scope) are rejected
	// before any invocation ever runs.
	seedEnv := lattice.NewEnv()
	for _, p := range desc.ParamNames {
		seedEnv.Bind(p, lattice.Any{})
	}
	deducer := lattice.NewDeducer(ctx.Known)
	if err := deducer.DeduceBlock(seedEnv, sorted); err != nil {
		return nil, err
	}

	deps := directDependencies(sorted, ctx.Known)
	boundNames := definedNames(sorted)

	buildGraph := func(args []any) (*dag.Graph, map[string]any, error) {
		env := make(map[string]any, len(desc.ParamNames)+len(desc.ClosureValues)+len(boundNames))
		for i, p := range desc.ParamNames {
			if i < len(args) {
				env[p] = args[i]
			}
		}
		for k, v := range desc.ClosureValues {
			env[k] = v
		}

		g := dag.New()
		for _, stmt := range sorted {
			if err := execGraphStmt(env, g, ctx, stmt); err != nil {
				return nil, nil, err
			}
		}

		bindings := make(map[string]any, len(boundNames))
		for _, name := range boundNames {
			bindings[name] = env[name]
		}
		return g, bindings, nil
	}

	runBody := func(args []any, bindings map[string]any, load callnode.Load) (any, error) {
		env := newBodyEnv(desc.ParamNames, args, bindings, load, ctx)
		for k, v := range desc.ClosureValues {
			if _, exists := env.vars[k]; !exists {
				env.vars[k] = v
			}
		}
		return evalBodyStmts(env, desc.Body)
	}

	return &Result{Dependencies: deps, BuildGraph: buildGraph, RunBody: runBody}, nil
}

// sortConstantsBlock implements pass 5 ("Sort via statement DAG"):
// topologically order the block so every name is bound before it is
// used, failing with NotDAGError if the block's definitions form a
// cycle (which free-variable analysis alone cannot rule out — two
// statements may each read a name the other defines).
func sortConstantsBlock(stmts []cbast.Statement) ([]cbast.Statement, error) {
	graph, err := astutil.BuildStatementDAG(stmts)
	if err != nil {
		return nil, err
	}
	order, err := graph.TopoSort()
	if err != nil {
		return nil, err
	}
	sorted := make([]cbast.Statement, len(order))
	for i, idx := range order {
		sorted[i] = stmts[idx]
	}
	return sorted, nil
}

// execGraphStmt runs pass 7 ("Build graph prelude") for one constants-
// block statement: evalExpr turns nested annotated calls into CallNodes
// recorded into g, and bindGraphValue projects the result onto the
// statement's target (plain name, structural unpack, or starred
// unpack).
func execGraphStmt(env map[string]any, g *dag.Graph, ctx *Context, stmt cbast.Statement) error {
	switch s := stmt.(type) {
	case *cbast.AssignStmt:
		v, err := evalExpr(env, g, ctx, s.Value)
		if err != nil {
			return err
		}
		return bindGraphValue(env, s.Target, v)
	case *cbast.ExprStmt:
		_, err := evalExpr(env, g, ctx, s.Value)
		return err
	default:
		return xunerr.NewXunSyntaxError("unsupported statement kind %T in constants block", stmt)
	}
}

// definedNames returns every name bound anywhere in stmts, in first-
// definition order — the set of names the rewritten body may reference
// back into this invocation's bindings.
func definedNames(stmts []cbast.Statement) []string {
	seen := make(map[string]bool)
	var out []string
	for _, stmt := range stmts {
		for _, name := range astutil.StatementDefines(stmt) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// rejectMutationAndAliasing implements passes 2 and 3: a name may be
// bound at most once in a constants block (pass 2 — spec.md §4.2 treats
// the block as write-once, so a second assignment is a mutation, not a
// redefinition), and an annotated function name may only appear as a
// call's callee, never as a bare value (pass 3 — forwarding, storing, or
// returning the function itself rather than calling it has no meaning
// once the constants block becomes a CallNode graph).
func rejectMutationAndAliasing(stmts []cbast.Statement, known map[string]bool) error {
	defined := make(map[string]bool)
	for _, stmt := range stmts {
		for _, name := range astutil.StatementDefines(stmt) {
			if defined[name] {
				return xunerr.NewValueError("name %q is assigned more than once in a constants block", name)
			}
			if known[name] {
				return xunerr.NewXunSyntaxError("name %q shadows an annotated function in a constants block", name)
			}
			defined[name] = true
		}
		if err := rejectAliasExpr(statementValue(stmt), known); err != nil {
			return err
		}
	}
	return nil
}

func rejectAliasExpr(e cbast.Expression, known map[string]bool) error {
	switch expr := e.(type) {
	case nil:
		return nil
	case *cbast.Name:
		if known[expr.Value] {
			return xunerr.NewXunSyntaxError("annotated function %q cannot be referenced except as a call", expr.Value)
		}
		return nil
	case *cbast.CallExpr:
		for _, a := range expr.Args {
			if err := rejectAliasExpr(a.Value, known); err != nil {
				return err
			}
		}
		return nil
	case *cbast.TupleExpr:
		return rejectAliasExprs(expr.Elems, known)
	case *cbast.ListExpr:
		return rejectAliasExprs(expr.Elems, known)
	case *cbast.SetExpr:
		return rejectAliasExprs(expr.Elems, known)
	case *cbast.DictExpr:
		for _, entry := range expr.Entries {
			if err := rejectAliasExpr(entry.Key, known); err != nil {
				return err
			}
			if err := rejectAliasExpr(entry.Value, known); err != nil {
				return err
			}
		}
		return nil
	case *cbast.BinExpr:
		if err := rejectAliasExpr(expr.Left, known); err != nil {
			return err
		}
		return rejectAliasExpr(expr.Right, known)
	case *cbast.IfExpr:
		if err := rejectAliasExpr(expr.Cond, known); err != nil {
			return err
		}
		if err := rejectAliasExpr(expr.Then, known); err != nil {
			return err
		}
		return rejectAliasExpr(expr.Else, known)
	case *cbast.SubscriptExpr:
		if err := rejectAliasExpr(expr.Value, known); err != nil {
			return err
		}
		return rejectAliasExpr(expr.Index, known)
	case *cbast.ListComp:
		if err := rejectAliasExpr(expr.Elt, known); err != nil {
			return err
		}
		return rejectAliasExpr(expr.Clause.Iter, known)
	case *cbast.SetComp:
		if err := rejectAliasExpr(expr.Elt, known); err != nil {
			return err
		}
		return rejectAliasExpr(expr.Clause.Iter, known)
	case *cbast.DictComp:
		if err := rejectAliasExpr(expr.Key, known); err != nil {
			return err
		}
		if err := rejectAliasExpr(expr.Value, known); err != nil {
			return err
		}
		return rejectAliasExpr(expr.Clause.Iter, known)
	case *cbast.GenExpr:
		if err := rejectAliasExpr(expr.Elt, known); err != nil {
			return err
		}
		return rejectAliasExpr(expr.Clause.Iter, known)
	default:
		return nil
	}
}

func rejectAliasExprs(elems []cbast.Expression, known map[string]bool) error {
	for _, e := range elems {
		if err := rejectAliasExpr(e, known); err != nil {
			return err
		}
	}
	return nil
}
