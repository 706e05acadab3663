// Package dag implements spec.md §4.5: the per-function graph builder's
// output composed into a whole-workflow DAG of CallNodes.
package dag

import (
	"sort"

	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// Graph is a DAG of CallNodes, keyed by structural hash so that two
// occurrences of an identical call (e.g. `f()` referenced from two
// places) merge into one node rather than duplicating it — the same
// content-addressing discipline as the store (spec.md §9, Memoization
// identity).
type Graph struct {
	nodes map[callnode.Hash]*callnode.CallNode
	edges map[callnode.Hash]map[callnode.Hash]bool // from -> set of to
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[callnode.Hash]*callnode.CallNode),
		edges: make(map[callnode.Hash]map[callnode.Hash]bool),
	}
}

// AddNode registers n, a no-op if an equal node is already present.
func (g *Graph) AddNode(n *callnode.CallNode) {
	if n == nil {
		return
	}
	g.nodes[n.Hash()] = n
}

// AddEdge records a dependency edge from -> to (from must complete
// before to may run), adding both endpoints as nodes.
func (g *Graph) AddEdge(from, to *callnode.CallNode) {
	g.AddNode(from)
	g.AddNode(to)
	fh, th := from.Hash(), to.Hash()
	if g.edges[fh] == nil {
		g.edges[fh] = make(map[callnode.Hash]bool)
	}
	g.edges[fh][th] = true
}

// Nodes returns every node in the graph, in a stable (hash) order.
func (g *Graph) Nodes() []*callnode.CallNode {
	out := make([]*callnode.CallNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i].Hash(), out[j].Hash()
		return hi.String() < hj.String()
	})
	return out
}

// Successors returns the nodes n directly points to.
func (g *Graph) Successors(n *callnode.CallNode) []*callnode.CallNode {
	outHashes := g.edges[n.Hash()]
	out := make([]*callnode.CallNode, 0, len(outHashes))
	for h := range outHashes {
		out = append(out, g.nodes[h])
	}
	sort.Slice(out, func(i, j int) bool {
		hi, hj := out[i].Hash(), out[j].Hash()
		return hi.String() < hj.String()
	})
	return out
}

// Merge unions other's nodes and edges into g, the per-function graph
// composition rule of spec.md §4.5 ("merging graphs by union of edges
// and nodes").
func (g *Graph) Merge(other *Graph) {
	if other == nil {
		return
	}
	for h, n := range other.nodes {
		g.nodes[h] = n
	}
	for from, tos := range other.edges {
		if g.edges[from] == nil {
			g.edges[from] = make(map[callnode.Hash]bool)
		}
		for to := range tos {
			g.edges[from][to] = true
		}
	}
}

// TopoSort returns nodes in an order consistent with the graph's edges
// (predecessors before successors), ties broken by hash for
// determinism, or fails with NotDAG if a cycle exists (spec.md §4.5:
// "the final whole graph must be acyclic; otherwise the workflow is
// rejected at blueprint time").
func (g *Graph) TopoSort() ([]*callnode.CallNode, error) {
	indegree := make(map[callnode.Hash]int, len(g.nodes))
	for h := range g.nodes {
		indegree[h] = 0
	}
	for _, tos := range g.edges {
		for to := range tos {
			indegree[to]++
		}
	}

	var ready []callnode.Hash
	for h, d := range indegree {
		if d == 0 {
			ready = append(ready, h)
		}
	}

	var order []*callnode.CallNode
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i].String() < ready[j].String() })
		h := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[h])
		for to := range g.edges[h] {
			indegree[to]--
			if indegree[to] == 0 {
				ready = append(ready, to)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, xunerr.NewNotDAGError("call graph contains a cycle")
	}
	return order, nil
}

// Acyclic reports whether the graph has no cycle.
func (g *Graph) Acyclic() bool {
	_, err := g.TopoSort()
	return err == nil
}
