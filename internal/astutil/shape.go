// Package astutil implements spec.md §4.1: shape analysis of assignment
// targets, free-variable extraction, and the constants-block statement
// DAG, over the internal/cbast host AST.
package astutil

import "github.com/mrSundvoll/xun/internal/cbast"

// Shape is the nested child-count structure of an assignment target tree.
// A leaf (Children == nil) corresponds to a single bound name; a Star leaf
// is marked so callers can identify which position absorbs slack.
type Shape struct {
	Star     bool
	Children []Shape
}

// IsLeaf reports whether s has no further structure.
func (s Shape) IsLeaf() bool { return s.Children == nil }

// TargetShape computes the Shape of an assignment target tree.
func TargetShape(t cbast.Target) Shape {
	switch tt := t.(type) {
	case *cbast.NameTarget:
		return Shape{}
	case *cbast.StarTarget:
		s := TargetShape(tt.Elem)
		s.Star = true
		return s
	case *cbast.TupleTarget:
		children := make([]Shape, len(tt.Elems))
		for i, e := range tt.Elems {
			children[i] = TargetShape(e)
		}
		return Shape{Children: children}
	default:
		panic("astutil: unknown target kind")
	}
}

// IndicesFromShape returns the multi-index path to each leaf of s, in
// left-to-right order.
func IndicesFromShape(s Shape) [][]int {
	var out [][]int
	var walk func(s Shape, prefix []int)
	walk = func(s Shape, prefix []int) {
		if s.IsLeaf() {
			idx := make([]int, len(prefix))
			copy(idx, prefix)
			out = append(out, idx)
			return
		}
		for i, c := range s.Children {
			walk(c, append(prefix, i))
		}
	}
	walk(s, nil)
	return out
}

// FlattenAssignmentTargets returns the leaf NameTargets of t, in
// left-to-right order.
func FlattenAssignmentTargets(t cbast.Target) []*cbast.NameTarget {
	var out []*cbast.NameTarget
	var walk func(t cbast.Target)
	walk = func(t cbast.Target) {
		switch tt := t.(type) {
		case *cbast.NameTarget:
			out = append(out, tt)
		case *cbast.StarTarget:
			walk(tt.Elem)
		case *cbast.TupleTarget:
			for _, e := range tt.Elems {
				walk(e)
			}
		}
	}
	walk(t)
	return out
}

// ExpandStarred matches a target shape with exactly one starred leaf
// against a value of known arity n, returning, for every leaf in
// left-to-right order, the slice of source indices it should read from
// (a single index for a plain leaf, a contiguous run for the starred
// leaf). It fails if n is smaller than the number of fixed leaves.
func ExpandStarred(s Shape, n int) ([][]int, bool) {
	leaves := IndicesFromShape(s)
	starPos := -1
	for i, idx := range leaves {
		if leafStar(s, idx) {
			starPos = i
			break
		}
	}
	if starPos == -1 {
		if len(leaves) != n {
			return nil, false
		}
		out := make([][]int, len(leaves))
		for i := range leaves {
			out[i] = []int{i}
		}
		return out, true
	}

	fixed := len(leaves) - 1
	if n < fixed {
		return nil, false
	}
	slack := n - fixed
	out := make([][]int, len(leaves))
	cursor := 0
	for i := range leaves {
		if i == starPos {
			run := make([]int, slack)
			for j := 0; j < slack; j++ {
				run[j] = cursor + j
			}
			out[i] = run
			cursor += slack
			continue
		}
		out[i] = []int{cursor}
		cursor++
	}
	return out, true
}

// LeafStarFlags returns, for every leaf of t in left-to-right order,
// whether that leaf was written with a star marker. FlattenAssignmentTargets
// unwraps StarTarget transparently (so its NameTarget leaves carry no
// marker of their own); callers that need to tell a starred leaf apart
// from a plain one — e.g. to decide whether its bound value's arity is
// known at decomposition time or only at call time — use this instead.
func LeafStarFlags(t cbast.Target) []bool {
	var out []bool
	var walk func(t cbast.Target, star bool)
	walk = func(t cbast.Target, star bool) {
		switch tt := t.(type) {
		case *cbast.NameTarget:
			out = append(out, star)
		case *cbast.StarTarget:
			walk(tt.Elem, true)
		case *cbast.TupleTarget:
			for _, e := range tt.Elems {
				walk(e, false)
			}
		}
	}
	walk(t, false)
	return out
}

func leafStar(s Shape, idx []int) bool {
	cur := s
	for _, i := range idx {
		cur = cur.Children[i]
	}
	return cur.Star
}
