package function

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/dag"
)

func sampleDescription(returnValue string) *Description {
	body := []cbast.Statement{
		&cbast.ExprStmt{Value: &cbast.Literal{Kind: cbast.StringLiteral, Value: returnValue}},
	}
	return NewDescription("pkg.f", []string{"a"}, nil, body, map[string]any{"k": 1}, nil)
}

func noopGraph(args []any) (*dag.Graph, map[string]any, error) { return dag.New(), nil, nil }

func noopBody(args []any, bindings map[string]any, load callnode.Load) (any, error) { return nil, nil }

func TestHashStableAcrossIdenticalRedefinition(t *testing.T) {
	d1 := sampleDescription("a")
	d2 := sampleDescription("a")
	img1 := NewImage(d1, nil, noopGraph, noopBody)
	img2 := NewImage(d2, nil, noopGraph, noopBody)
	if !Equal(img1, img2) {
		t.Fatalf("expected byte-identical redefinition to preserve hash")
	}
}

func TestHashChangesWithSource(t *testing.T) {
	img1 := NewImage(sampleDescription("a"), nil, noopGraph, noopBody)
	img2 := NewImage(sampleDescription("b"), nil, noopGraph, noopBody)
	if Equal(img1, img2) {
		t.Fatalf("expected differing source to change hash")
	}
}

func TestHashChangesWithClosureValues(t *testing.T) {
	d1 := NewDescription("pkg.f", nil, nil, nil, map[string]any{"k": 1}, nil)
	d2 := NewDescription("pkg.f", nil, nil, nil, map[string]any{"k": 2}, nil)
	img1 := NewImage(d1, nil, noopGraph, noopBody)
	img2 := NewImage(d2, nil, noopGraph, noopBody)
	if Equal(img1, img2) {
		t.Fatalf("expected differing closure values to change hash")
	}
}

func TestHashStableAcrossIdenticalDependencyRebuild(t *testing.T) {
	// Rebuilding dependency g from an identical description must not
	// change f's hash: f's hash depends only on its own description and
	// its dependencies' hashes, not on which Image values they are.
	g1 := NewImage(sampleDescription("g-v1"), nil, noopGraph, noopBody)
	fDesc := sampleDescription("f-body")
	fImg1 := NewImage(fDesc, map[string]*Image{"g": g1}, noopGraph, noopBody)

	g1Again := NewImage(sampleDescription("g-v1"), nil, noopGraph, noopBody)
	fImg2 := NewImage(fDesc, map[string]*Image{"g": g1Again}, noopGraph, noopBody)

	if !Equal(fImg1, fImg2) {
		t.Fatalf("expected identical dependency hash to preserve f's hash")
	}
}

func TestHashChangesWhenDependencyHashChanges(t *testing.T) {
	g1 := NewImage(sampleDescription("g-v1"), nil, noopGraph, noopBody)
	g2 := NewImage(sampleDescription("g-v2"), nil, noopGraph, noopBody)
	fDesc := sampleDescription("f-body")

	fImg1 := NewImage(fDesc, map[string]*Image{"g": g1}, noopGraph, noopBody)
	fImg2 := NewImage(fDesc, map[string]*Image{"g": g2}, noopGraph, noopBody)

	if Equal(fImg1, fImg2) {
		t.Fatalf("expected dependency hash change to propagate to dependent")
	}
}

func TestResolveMissingDependency(t *testing.T) {
	img := NewImage(sampleDescription("f"), map[string]*Image{}, noopGraph, noopBody)
	if _, err := img.Resolve("missing"); err == nil {
		t.Fatalf("expected FunctionDefNotFoundError for missing dependency")
	}
}
