package astutil

import (
	"reflect"
	"testing"

	"github.com/mrSundvoll/xun/internal/cbast"
)

func TestTargetShapeAndFlatten(t *testing.T) {
	// (a, b), c
	target := &cbast.TupleTarget{Elems: []cbast.Target{
		&cbast.TupleTarget{Elems: []cbast.Target{
			&cbast.NameTarget{Name: "a"},
			&cbast.NameTarget{Name: "b"},
		}},
		&cbast.NameTarget{Name: "c"},
	}}

	shape := TargetShape(target)
	indices := IndicesFromShape(shape)
	want := [][]int{{0, 0}, {0, 1}, {1}}
	if !reflect.DeepEqual(indices, want) {
		t.Fatalf("indices = %v, want %v", indices, want)
	}

	leaves := FlattenAssignmentTargets(target)
	if len(leaves) != 3 || leaves[0].Name != "a" || leaves[1].Name != "b" || leaves[2].Name != "c" {
		t.Fatalf("unexpected flattened leaves: %v", leaves)
	}
}

func TestExpandStarred(t *testing.T) {
	// head, *body, foot
	target := &cbast.TupleTarget{Elems: []cbast.Target{
		&cbast.NameTarget{Name: "head"},
		&cbast.StarTarget{Elem: &cbast.NameTarget{Name: "body"}},
		&cbast.NameTarget{Name: "foot"},
	}}
	shape := TargetShape(target)

	runs, ok := ExpandStarred(shape, 6)
	if !ok {
		t.Fatalf("ExpandStarred failed")
	}
	want := [][]int{{0}, {1, 2, 3, 4}, {5}}
	if !reflect.DeepEqual(runs, want) {
		t.Fatalf("runs = %v, want %v", runs, want)
	}
}

func TestLeafStarFlags(t *testing.T) {
	target := &cbast.TupleTarget{Elems: []cbast.Target{
		&cbast.NameTarget{Name: "head"},
		&cbast.StarTarget{Elem: &cbast.NameTarget{Name: "body"}},
		&cbast.NameTarget{Name: "foot"},
	}}
	flags := LeafStarFlags(target)
	want := []bool{false, true, false}
	if !reflect.DeepEqual(flags, want) {
		t.Fatalf("flags = %v, want %v", flags, want)
	}
}

func TestExpandStarredTooFewElements(t *testing.T) {
	target := &cbast.TupleTarget{Elems: []cbast.Target{
		&cbast.NameTarget{Name: "head"},
		&cbast.StarTarget{Elem: &cbast.NameTarget{Name: "body"}},
		&cbast.NameTarget{Name: "foot"},
	}}
	shape := TargetShape(target)

	if _, ok := ExpandStarred(shape, 1); ok {
		t.Fatalf("expected ExpandStarred to fail for too few elements")
	}
}
