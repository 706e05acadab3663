package dag

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/callnode"
)

func TestTopoSortOrdersPredecessorsFirst(t *testing.T) {
	g := New()
	f := callnode.New("f")
	gNode := callnode.New("g", f)
	g.AddEdge(f, gNode)

	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}
	if len(order) != 2 || order[0].Function != "f" || order[1].Function != "g" {
		t.Fatalf("got %v, want [f g]", order)
	}
}

func TestCycleRejected(t *testing.T) {
	g := New()
	a := callnode.New("a")
	b := callnode.New("b")
	g.AddEdge(a, b)
	g.AddEdge(b, a)

	if _, err := g.TopoSort(); err == nil {
		t.Fatalf("expected NotDAG error for a cycle")
	}
}

func TestMergeUnionsNodesAndEdges(t *testing.T) {
	g1 := New()
	g2 := New()
	f := callnode.New("f")
	h := callnode.New("h")
	gN := callnode.New("g", f)
	g1.AddEdge(f, gN)
	g2.AddEdge(gN, h)

	g1.Merge(g2)
	order, err := g1.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("got %d nodes, want 3", len(order))
	}
}
