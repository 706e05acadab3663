// Package driver implements spec.md §4.8: the single-operation driver
// contract — execute(blueprint, store) -> value — against the whole-
// workflow DAG internal/blueprint assembles. Sequential is the
// baseline, no-concurrency executor; internal/driver/queued and
// internal/driver/remoteworker build worker-pool and gRPC-backed
// variants on top of the same ExecNode primitive.
package driver

import (
	"github.com/mrSundvoll/xun/internal/astutil"
	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/function"
	"github.com/mrSundvoll/xun/internal/store"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// Driver is spec.md §4.8's single-operation contract.
type Driver interface {
	Execute(bp *blueprint.Blueprint, accessor *store.Accessor) (any, error)
}

// Sequential runs every CallNode a Blueprint's graph contains in
// topological order, one at a time, then evaluates the entry's own
// body. Because blueprint.Build already merges every reachable
// function's local graph into one, with edges drawn from each
// dependency's own nodes to the outer call node that names it, a
// single global TopoSort is enough to guarantee every node's embedded
// CallNode/Projection arguments are already stored by the time it is
// reached — no per-call recursive graph-walking is needed here.
type Sequential struct{}

// New creates a Sequential driver.
func New() *Sequential { return &Sequential{} }

// Execute implements the Driver contract.
func (d *Sequential) Execute(bp *blueprint.Blueprint, accessor *store.Accessor) (any, error) {
	order, err := bp.Graph.TopoSort()
	if err != nil {
		return nil, err
	}
	for _, node := range order {
		if _, err := ExecNode(bp, accessor, node); err != nil {
			return nil, err
		}
	}
	return ExecNode(bp, accessor, bp.Entry)
}

// Run is sugar for building a Blueprint from img and args, then
// executing it against accessor — spec.md §4.9's `run(driver,
// store)`, specialized to the common case of driving one invocation
// end to end.
func Run(d Driver, accessor *store.Accessor, img *function.Image, args []any) (any, error) {
	bp, err := blueprint.Build(img, args)
	if err != nil {
		return nil, err
	}
	return d.Execute(bp, accessor)
}

// ExecNode implements spec.md §4.8's per-node execution rule: if the
// result is already stored under (node, target image hash), skip;
// otherwise materialize node's arguments (substituting every embedded
// CallNode/Projection with its already-completed stored result — by
// the time a caller reaches node in a topological order, every
// dependency it embeds has already run), invoke the target's body
// against the bindings blueprint.Build captured for this exact
// invocation, and memoize the result. Exported so internal/driver/queued
// and internal/driver/remoteworker can drive the same per-node logic
// from a worker pool instead of a single topologically-ordered loop.
func ExecNode(bp *blueprint.Blueprint, accessor *store.Accessor, node *callnode.CallNode) (any, error) {
	target, ok := bp.Images[node.Function]
	if !ok {
		return nil, xunerr.NewFunctionDefNotFoundError(node.Function)
	}
	version := target.Hash()

	done, err := accessor.Completed(node, version)
	if err != nil {
		return nil, err
	}
	if done {
		return accessor.Load(node, version)
	}

	args, err := materializeArgs(bp, accessor, node)
	if err != nil {
		return nil, err
	}

	// bindings were already captured once, during blueprint assembly
	// (see Blueprint.Bindings doc): replaying BuildGraph here would run
	// any ordinary call the constants block makes a second time.
	bindings := bp.Bindings[node.Hash()]
	value, err := target.RunBody(args, bindings, loaderFor(bp, accessor))
	if err != nil {
		return nil, err
	}

	if err := accessor.Store(node, version, value); err != nil {
		return nil, err
	}
	return value, nil
}

// materializeArgs resolves node's positional and keyword arguments back
// into the concrete call signature target.RunBody expects: kwargs
// are re-expanded into positional order after the declared positional
// arguments, matching the normalization callnode.NewWithKwargs already
// applied when the node was built.
func materializeArgs(bp *blueprint.Blueprint, accessor *store.Accessor, node *callnode.CallNode) ([]any, error) {
	positional := make([]any, len(node.Args))
	for i, a := range node.Args {
		v, err := resolveValue(bp, accessor, a)
		if err != nil {
			return nil, err
		}
		positional[i] = v
	}
	if len(node.Kwargs) == 0 {
		return positional, nil
	}
	args := make([]any, len(positional)+len(node.Kwargs))
	copy(args, positional)
	for i, kw := range node.Kwargs {
		v, err := resolveValue(bp, accessor, kw.Value)
		if err != nil {
			return nil, err
		}
		args[len(positional)+i] = v
	}
	return args, nil
}

// resolveValue replaces every CallNode/Projection embedded in v,
// recursively, with its already-completed stored result. By the time
// ExecNode reaches node, every CallNode it could embed already appears
// earlier in the Blueprint's dependency order, so this is always a pure
// store read, never a fresh invocation.
func resolveValue(bp *blueprint.Blueprint, accessor *store.Accessor, v any) (any, error) {
	switch val := v.(type) {
	case *callnode.CallNode:
		target, ok := bp.Images[val.Function]
		if !ok {
			return nil, xunerr.NewFunctionDefNotFoundError(val.Function)
		}
		return accessor.Load(val, target.Hash())

	case *callnode.Projection:
		base, err := resolveValue(bp, accessor, val.Node)
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
			leafIdx := astutil.IndicesFromShape(val.Shape)[val.LeafPos]
			if shapeLeafStar(val.Shape, leafIdx) {
				idxs := indices[val.LeafPos]
				slice := make([]any, len(idxs))
				for i, idx := range idxs {
					slice[i] = seq[idx]
				}
				return slice, nil
			}
			return seq[indices[val.LeafPos][0]], nil
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
			r, err := resolveValue(bp, accessor, e)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil

	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			r, err := resolveValue(bp, accessor, e)
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

// loaderFor returns the callnode.Load a function.Image's RunBody uses
// to resolve its own constants-block bindings: each CallNode it might
// reference was already run as a node of the Blueprint's merged graph,
// so this is always a pure store read, never a fresh invocation.
func loaderFor(bp *blueprint.Blueprint, accessor *store.Accessor) callnode.Load {
	return func(call *callnode.CallNode) (any, error) {
		target, ok := bp.Images[call.Function]
		if !ok {
			return nil, xunerr.NewFunctionDefNotFoundError(call.Function)
		}
		return accessor.Load(call, target.Hash())
	}
}
