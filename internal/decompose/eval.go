package decompose

import (
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/dag"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// evalExpr executes decomposition pass 7 ("Build graph prelude") for a
// single expression: annotated calls become CallNodes recorded into g
// with edges from nested calls to their immediate enclosing call
// (spec.md §4.4 pass 7); ordinary calls and arithmetic run immediately
// against concrete values, since everything outside a deferred call is a
// plain host computation at graph-build time.
func evalExpr(env map[string]any, g *dag.Graph, ctx *Context, e cbast.Expression) (any, error) {
	switch expr := e.(type) {
	case *cbast.Literal:
		if expr.Kind == cbast.NoneLiteral {
			return nil, nil
		}
		return expr.Value, nil

	case *cbast.Name:
		v, ok := env[expr.Value]
		if !ok {
			return nil, xunerr.NewContextError(expr.Value)
		}
		return v, nil

	case *cbast.TupleExpr:
		return evalSeq(env, g, ctx, expr.Elems)

	case *cbast.ListExpr:
		return evalSeq(env, g, ctx, expr.Elems)

	case *cbast.SetExpr:
		return evalSeq(env, g, ctx, expr.Elems)

	case *cbast.DictExpr:
		out := make(map[string]any, len(expr.Entries))
		for _, entry := range expr.Entries {
			keyVal, err := evalExpr(env, g, ctx, entry.Key)
			if err != nil {
				return nil, err
			}
			key, ok := keyVal.(string)
			if !ok {
				return nil, xunerr.NewXunSyntaxError("dict literal keys must be string constants in a constants block")
			}
			val, err := evalExpr(env, g, ctx, entry.Value)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil

	case *cbast.CallExpr:
		return evalCall(env, g, ctx, expr)

	case *cbast.BinExpr:
		left, err := evalExpr(env, g, ctx, expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := evalExpr(env, g, ctx, expr.Right)
		if err != nil {
			return nil, err
		}
		if isDeferred(left) || isDeferred(right) {
			return nil, xunerr.NewXunSyntaxError("cannot use deferred results as values")
		}
		return applyBinOp(expr.Op, left, right)

	case *cbast.IfExpr:
		condVal, err := evalExpr(env, g, ctx, expr.Cond)
		if err != nil {
			return nil, err
		}
		truth, ok := condVal.(bool)
		if !ok {
			return nil, xunerr.NewXunSyntaxError("if/else condition must evaluate to a bool in a constants block")
		}
		if truth {
			return evalExpr(env, g, ctx, expr.Then)
		}
		return evalExpr(env, g, ctx, expr.Else)

	case *cbast.SubscriptExpr:
		val, err := evalExpr(env, g, ctx, expr.Value)
		if err != nil {
			return nil, err
		}
		idxVal, err := evalExpr(env, g, ctx, expr.Index)
		if err != nil {
			return nil, err
		}
		return subscript(val, idxVal)

	case *cbast.ListComp:
		return evalComprehension(env, g, ctx, expr.Clause, []cbast.Expression{expr.Elt}, true)

	case *cbast.SetComp:
		results, err := evalComprehension(env, g, ctx, expr.Clause, []cbast.Expression{expr.Elt}, true)
		if err != nil {
			return nil, err
		}
		return results, nil

	case *cbast.DictComp:
		pairs, err := evalComprehension(env, g, ctx, expr.Clause, []cbast.Expression{expr.Key, expr.Value}, false)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(pairs))
		for _, p := range pairs {
			kv := p.([]any)
			key, ok := kv[0].(string)
			if !ok {
				return nil, xunerr.NewXunSyntaxError("dict comprehension keys must evaluate to strings")
			}
			out[key] = kv[1]
		}
		return out, nil

	case *cbast.GenExpr:
		return evalComprehension(env, g, ctx, expr.Clause, []cbast.Expression{expr.Elt}, true)

	case *cbast.UnsupportedExpr:
		return nil, xunerr.NewXunSyntaxError("%s not allowed in constants block", expr.Kind)

	default:
		return nil, xunerr.NewXunSyntaxError("unrecognized expression kind %T in constants block", e)
	}
}

func evalSeq(env map[string]any, g *dag.Graph, ctx *Context, elems []cbast.Expression) ([]any, error) {
	out := make([]any, len(elems))
	for i, el := range elems {
		v, err := evalExpr(env, g, ctx, el)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func evalCall(env map[string]any, g *dag.Graph, ctx *Context, expr *cbast.CallExpr) (any, error) {
	var positional []any
	var kwargs []callnode.KwArg
	for _, a := range expr.Args {
		v, err := evalExpr(env, g, ctx, a.Value)
		if err != nil {
			return nil, err
		}
		if a.Name == "" {
			positional = append(positional, v)
		} else {
			kwargs = append(kwargs, callnode.KwArg{Name: a.Name, Value: v})
		}
	}

	if ctx.Known[expr.Callee] {
		node := callnode.NewWithKwargs(expr.Callee, positional, kwargs, ctx.ParamOrder[expr.Callee])
		g.AddNode(node)
		wireNestedEdges(g, positional, node)
		for _, kw := range kwargs {
			wireNestedEdges(g, []any{kw.Value}, node)
		}
		return node, nil
	}

	for _, v := range positional {
		if isDeferred(v) {
			return nil, xunerr.NewCopyError("deferred value passed to ordinary function %q before being loaded", expr.Callee)
		}
	}
	for _, kw := range kwargs {
		if isDeferred(kw.Value) {
			return nil, xunerr.NewCopyError("deferred value passed to ordinary function %q before being loaded", expr.Callee)
		}
	}

	fn, ok := ctx.Ordinary[expr.Callee]
	if !ok {
		return nil, xunerr.NewValueError("unknown function %q referenced in constants block", expr.Callee)
	}
	kwargsMap := make(map[string]any, len(kwargs))
	for _, kw := range kwargs {
		kwargsMap[kw.Name] = kw.Value
	}
	result, err := fn(positional, kwargsMap)
	if err != nil {
		return nil, xunerr.NewFunctionError(expr.Callee, err)
	}
	return result, nil
}

// wireNestedEdges adds a dependency edge from every CallNode or
// Projection's node structurally reachable within values to outer —
// spec.md §4.4 pass 7: "Nested calls yield nested CallNodes; edges are
// added from inner to outer."
func wireNestedEdges(g *dag.Graph, values []any, outer *callnode.CallNode) {
	for _, v := range values {
		wireNestedEdgesOne(g, v, outer)
	}
}

func wireNestedEdgesOne(g *dag.Graph, v any, outer *callnode.CallNode) {
	switch val := v.(type) {
	case *callnode.CallNode:
		if val.Hash() != outer.Hash() {
			g.AddEdge(val, outer)
		}
	case *callnode.Projection:
		if val.Node.Hash() != outer.Hash() {
			g.AddEdge(val.Node, outer)
		}
	case []any:
		for _, e := range val {
			wireNestedEdgesOne(g, e, outer)
		}
	case map[string]any:
		for _, e := range val {
			wireNestedEdgesOne(g, e, outer)
		}
	}
}

func subscript(val, idxVal any) (any, error) {
	idx, ok := idxVal.(int)
	if !ok {
		return nil, xunerr.NewXunSyntaxError("subscript index must be an int constant")
	}
	switch v := val.(type) {
	case *callnode.CallNode:
		return &callnode.Projection{Node: v, Path: []int{idx}}, nil
	case *callnode.Projection:
		if v.ByShape {
			// spec.md §9, open question: subscripting a name already
			// bound by a starred unpack is left unspecified; reject
			// conservatively.
			return nil, xunerr.NewXunSyntaxError("cannot subscript a starred-unpack binding")
		}
		path := append(append([]int{}, v.Path...), idx)
		return &callnode.Projection{Node: v.Node, Path: path}, nil
	case []any:
		if idx < 0 || idx >= len(v) {
			return nil, xunerr.NewValueError("subscript index %d out of range", idx)
		}
		return v[idx], nil
	default:
		return nil, xunerr.NewXunSyntaxError("cannot subscript a value of type %T in a constants block", val)
	}
}

func evalComprehension(env map[string]any, g *dag.Graph, ctx *Context, clause cbast.Comprehension, elts []cbast.Expression, single bool) ([]any, error) {
	iterVal, err := evalExpr(env, g, ctx, clause.Iter)
	if err != nil {
		return nil, err
	}
	items, ok := iterVal.([]any)
	if !ok {
		return nil, xunerr.NewXunSyntaxError("comprehension iterable must be a concrete sequence in a constants block")
	}

	var out []any
	for _, item := range items {
		child := make(map[string]any, len(env)+1)
		for k, v := range env {
			child[k] = v
		}
		if err := bindLoopTarget(child, clause.Target, item); err != nil {
			return nil, err
		}
		if single {
			v, err := evalExpr(child, g, ctx, elts[0])
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		} else {
			k, err := evalExpr(child, g, ctx, elts[0])
			if err != nil {
				return nil, err
			}
			v, err := evalExpr(child, g, ctx, elts[1])
			if err != nil {
				return nil, err
			}
			out = append(out, []any{k, v})
		}
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

func bindLoopTarget(env map[string]any, target cbast.Target, value any) error {
	if name, ok := target.(*cbast.NameTarget); ok {
		env[name.Name] = value
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return xunerr.NewXunSyntaxError("cannot unpack a non-tuple value in a comprehension target")
	}
	return bindFlatTuple(env, target, items)
}

func bindFlatTuple(env map[string]any, target cbast.Target, items []any) error {
	tuple, ok := target.(*cbast.TupleTarget)
	if !ok {
		return xunerr.NewXunSyntaxError("unsupported comprehension target kind %T", target)
	}
	if len(tuple.Elems) != len(items) {
		return xunerr.NewValueError("comprehension target arity %d does not match value arity %d", len(tuple.Elems), len(items))
	}
	for i, elemTarget := range tuple.Elems {
		if err := bindLoopTarget(env, elemTarget, items[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyBinOp(op cbast.BinOp, left, right any) (any, error) {
	switch op {
	case cbast.OpAdd:
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
		return numericOp(op, left, right)
	case cbast.OpSub, cbast.OpMul, cbast.OpDiv:
		return numericOp(op, left, right)
	case cbast.OpAnd:
		lb, lok := left.(bool)
		rb, rok := right.(bool)
		if !lok || !rok {
			return nil, xunerr.NewXunSyntaxError("'and' requires bool operands")
		}
		return lb && rb, nil
	case cbast.OpOr:
		lb, lok := left.(bool)
		rb, rok := right.(bool)
		if !lok || !rok {
			return nil, xunerr.NewXunSyntaxError("'or' requires bool operands")
		}
		return lb || rb, nil
	default:
		return nil, xunerr.NewXunSyntaxError("unsupported operator")
	}
}

func numericOp(op cbast.BinOp, left, right any) (any, error) {
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, xunerr.NewXunSyntaxError("arithmetic operator requires numeric operands")
	}
	var result float64
	switch op {
	case cbast.OpAdd:
		result = lf + rf
	case cbast.OpSub:
		result = lf - rf
	case cbast.OpMul:
		result = lf * rf
	case cbast.OpDiv:
		if rf == 0 {
			return nil, xunerr.NewValueError("division by zero")
		}
		result = lf / rf
	}
	li, lIsInt := left.(int)
	ri, rIsInt := right.(int)
	if lIsInt && rIsInt && op != cbast.OpDiv {
		switch op {
		case cbast.OpAdd:
			return li + ri, nil
		case cbast.OpSub:
			return li - ri, nil
		case cbast.OpMul:
			return li * ri, nil
		}
	}
	return result, nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
