package decompose

import (
	"github.com/mrSundvoll/xun/internal/astutil"
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// bodyEnv evaluates the rewritten body: every reference to a
// constants-block name is resolved on demand through load, and each
// CallNode is loaded at most once per invocation (cached by hash),
// matching the at-most-once guarantee of spec.md §5.
type bodyEnv struct {
	vars  map[string]any // param values and constants-block bindings (possibly deferred)
	cache map[callnode.Hash]any
	load  callnode.Load
	ctx   *Context
}

func newBodyEnv(paramNames []string, args []any, constantsBindings map[string]any, load callnode.Load, ctx *Context) *bodyEnv {
	vars := make(map[string]any, len(paramNames)+len(constantsBindings))
	for i, name := range paramNames {
		if i < len(args) {
			vars[name] = args[i]
		}
	}
	for k, v := range constantsBindings {
		vars[k] = v
	}
	return &bodyEnv{vars: vars, cache: make(map[callnode.Hash]any), load: load, ctx: ctx}
}

func (b *bodyEnv) resolve(v any) (any, error) {
	switch val := v.(type) {
	case *callnode.CallNode:
		if cached, ok := b.cache[val.Hash()]; ok {
			return cached, nil
		}
		result, err := b.load(val)
		if err != nil {
			return nil, err
		}
		b.cache[val.Hash()] = result
		return result, nil

	case *callnode.Projection:
		base, err := b.resolve(val.Node)
		if err != nil {
			return nil, err
		}
		if val.ByShape {
			seq, ok := base.([]any)
			if !ok {
				return nil, xunerr.NewValueError("starred-unpack source did not resolve to a sequence")
			}
			indices, ok := astutil.ExpandStarred(val.Shape, len(seq))
			if !ok {
				return nil, xunerr.NewValueError("starred unpack arity mismatch at runtime: got %d elements", len(seq))
			}
			idxs := indices[val.LeafPos]
			if shapeLeafStar(val.Shape, astutil.IndicesFromShape(val.Shape)[val.LeafPos]) {
				slice := make([]any, len(idxs))
				for i, idx := range idxs {
					slice[i] = seq[idx]
				}
				return slice, nil
			}
			return seq[idxs[0]], nil
		}
		cur := base
		for _, idx := range val.Path {
			seq, ok := cur.([]any)
			if !ok || idx < 0 || idx >= len(seq) {
				return nil, xunerr.NewValueError("projection index out of range")
			}
			cur = seq[idx]
		}
		return cur, nil

	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			r, err := b.resolve(e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil

	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			r, err := b.resolve(e)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil

	default:
		return v, nil
	}
}

func shapeLeafStar(s astutil.Shape, idx []int) bool {
	cur := s
	for _, i := range idx {
		cur = cur.Children[i]
	}
	return cur.Star
}

// evalBodyExpr evaluates an expression in the rewritten function body.
// Every Name lookup is resolved (loaded from the store if it traces
// back to a constants-block binding) before use, which is operationally
// equivalent to spec.md §4.4 pass 8's textual substitution: by the time
// a value reaches an ordinary call's argument list it is always
// concrete, which is also why pass 9's CopyError (copy-only constants
// check) never fires through normal evaluation — it is enforced
// structurally rather than by a separate scan. The defensive isDeferred
// check below guards the one path (a bug resolving a container) where
// that invariant could otherwise be silently violated.
func evalBodyExpr(env *bodyEnv, e cbast.Expression) (any, error) {
	switch expr := e.(type) {
	case *cbast.Literal:
		if expr.Kind == cbast.NoneLiteral {
			return nil, nil
		}
		return expr.Value, nil

	case *cbast.Name:
		v, ok := env.vars[expr.Value]
		if !ok {
			return nil, xunerr.NewContextError(expr.Value)
		}
		return env.resolve(v)

	case *cbast.TupleExpr:
		return evalBodySeq(env, expr.Elems)

	case *cbast.ListExpr:
		return evalBodySeq(env, expr.Elems)

	case *cbast.SetExpr:
		return evalBodySeq(env, expr.Elems)

	case *cbast.DictExpr:
		out := make(map[string]any, len(expr.Entries))
		for _, entry := range expr.Entries {
			keyVal, err := evalBodyExpr(env, entry.Key)
			if err != nil {
				return nil, err
			}
			key, ok := keyVal.(string)
			if !ok {
				return nil, xunerr.NewXunSyntaxError("dict literal keys must be string constants")
			}
			val, err := evalBodyExpr(env, entry.Value)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil

	case *cbast.CallExpr:
		var positional []any
		kwargs := make(map[string]any)
		for _, a := range expr.Args {
			v, err := evalBodyExpr(env, a.Value)
			if err != nil {
				return nil, err
			}
			if isDeferred(v) {
				return nil, xunerr.NewCopyError("deferred value passed to %q before being loaded", expr.Callee)
			}
			if a.Name == "" {
				positional = append(positional, v)
			} else {
				kwargs[a.Name] = v
			}
		}
		fn, ok := env.ctx.Ordinary[expr.Callee]
		if !ok {
			return nil, xunerr.NewValueError("unknown function %q referenced in function body", expr.Callee)
		}
		result, err := fn(positional, kwargs)
		if err != nil {
			return nil, xunerr.NewFunctionError(expr.Callee, err)
		}
		return result, nil

	case *cbast.BinExpr:
		left, err := evalBodyExpr(env, expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := evalBodyExpr(env, expr.Right)
		if err != nil {
			return nil, err
		}
		return applyBinOp(expr.Op, left, right)

	case *cbast.IfExpr:
		condVal, err := evalBodyExpr(env, expr.Cond)
		if err != nil {
			return nil, err
		}
		truth, ok := condVal.(bool)
		if !ok {
			return nil, xunerr.NewXunSyntaxError("if/else condition must evaluate to a bool")
		}
		if truth {
			return evalBodyExpr(env, expr.Then)
		}
		return evalBodyExpr(env, expr.Else)

	case *cbast.SubscriptExpr:
		val, err := evalBodyExpr(env, expr.Value)
		if err != nil {
			return nil, err
		}
		idxVal, err := evalBodyExpr(env, expr.Index)
		if err != nil {
			return nil, err
		}
		idx, ok := idxVal.(int)
		if !ok {
			return nil, xunerr.NewXunSyntaxError("subscript index must be an int")
		}
		seq, ok := val.([]any)
		if !ok {
			if s, ok := val.(string); ok {
				if idx < 0 || idx >= len(s) {
					return nil, xunerr.NewValueError("string index out of range")
				}
				return string(s[idx]), nil
			}
			return nil, xunerr.NewXunSyntaxError("cannot subscript a value of type %T", val)
		}
		if idx < 0 || idx >= len(seq) {
			return nil, xunerr.NewValueError("subscript index %d out of range", idx)
		}
		return seq[idx], nil

	default:
		return nil, xunerr.NewXunSyntaxError("unsupported expression kind %T in function body", e)
	}
}

func evalBodySeq(env *bodyEnv, elems []cbast.Expression) ([]any, error) {
	out := make([]any, len(elems))
	for i, el := range elems {
		v, err := evalBodyExpr(env, el)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// evalBodyStmts runs body in order, binding AssignStmt targets as
// ordinary (no longer deferred — already-resolved) body-local names, and
// returns the value of the last statement as the function's result when
// it is an ExprStmt, or nil when the last statement is an assignment.
func evalBodyStmts(env *bodyEnv, body []cbast.Statement) (any, error) {
	var result any
	for _, stmt := range body {
		switch s := stmt.(type) {
		case *cbast.AssignStmt:
			v, err := evalBodyExpr(env, s.Value)
			if err != nil {
				return nil, err
			}
			if err := bindBodyTarget(env.vars, s.Target, v); err != nil {
				return nil, err
			}
			result = nil
		case *cbast.ExprStmt:
			v, err := evalBodyExpr(env, s.Value)
			if err != nil {
				return nil, err
			}
			result = v
		default:
			return nil, xunerr.NewXunSyntaxError("unsupported statement kind %T in function body", stmt)
		}
	}
	return result, nil
}

func bindBodyTarget(vars map[string]any, target cbast.Target, value any) error {
	if name, ok := target.(*cbast.NameTarget); ok {
		vars[name.Name] = value
		return nil
	}
	leaves := astutil.FlattenAssignmentTargets(target)
	items, ok := value.([]any)
	if !ok || len(items) != len(leaves) {
		return xunerr.NewValueError("body unpacking target arity mismatch")
	}
	for i, leaf := range leaves {
		vars[leaf.Name] = items[i]
	}
	return nil
}
