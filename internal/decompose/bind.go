package decompose

import (
	"github.com/mrSundvoll/xun/internal/astutil"
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// bindGraphValue implements the binding half of pass 7 ("Assignments
// bind the name to the CallNode (or to a shape-unpacked projection)"):
// a plain NameTarget binds directly; a structured target projects leaf
// values out of value per its Shape, using a runtime-resolved
// Projection when the target is starred (arity unknown until value is
// actually computed) and an eager Projection/index otherwise.
func bindGraphValue(env map[string]any, target cbast.Target, value any) error {
	if name, ok := target.(*cbast.NameTarget); ok {
		env[name.Name] = value
		return nil
	}

	shape := astutil.TargetShape(target)
	leaves := astutil.FlattenAssignmentTargets(target)
	starFlags := astutil.LeafStarFlags(target)

	hasStar := false
	for _, s := range starFlags {
		if s {
			hasStar = true
			break
		}
	}

	if !hasStar {
		indices := astutil.IndicesFromShape(shape)
		for i, leaf := range leaves {
			env[leaf.Name] = projectValue(value, indices[i])
		}
		return nil
	}

	switch v := value.(type) {
	case []any:
		indices, ok := astutil.ExpandStarred(shape, len(v))
		if !ok {
			return xunerr.NewValueError("starred unpack target arity does not match value of length %d", len(v))
		}
		for i, leaf := range leaves {
			idxs := indices[i]
			if starFlags[i] {
				slice := make([]any, len(idxs))
				for j, idx := range idxs {
					slice[j] = v[idx]
				}
				env[leaf.Name] = slice
			} else {
				env[leaf.Name] = v[idxs[0]]
			}
		}
		return nil

	case *callnode.CallNode:
		for i, leaf := range leaves {
			env[leaf.Name] = &callnode.Projection{Node: v, ByShape: true, Shape: shape, LeafPos: i}
		}
		return nil

	default:
		return xunerr.NewXunSyntaxError("cannot star-unpack a value of type %T in a constants block", value)
	}
}

// projectValue walks a multi-index path into value, switching to a
// Projection as soon as it reaches a CallNode or an existing Projection
// (spec.md §8 scenario #1: `(a,b),c = f()` — a,b,c each reference the
// same call at different leaf paths).
func projectValue(value any, path []int) any {
	cur := value
	for i, idx := range path {
		switch v := cur.(type) {
		case *callnode.CallNode:
			return &callnode.Projection{Node: v, Path: append([]int{}, path[i:]...)}
		case *callnode.Projection:
			full := append(append([]int{}, v.Path...), path[i:]...)
			return &callnode.Projection{Node: v.Node, Path: full}
		case []any:
			if idx < 0 || idx >= len(v) {
				return nil
			}
			cur = v[idx]
		default:
			return cur
		}
	}
	return cur
}
