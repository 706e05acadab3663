// Package blueprint implements spec.md §4.9: assembling the
// whole-workflow DAG of CallNodes reachable from one entry invocation
// into the value object a driver actually executes.
package blueprint

import (
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/dag"
	"github.com/mrSundvoll/xun/internal/function"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// Blueprint is the tuple spec.md §4.2 names: the entry call, the DAG of
// every non-ground CallNode reachable from it, and the FunctionImage
// snapshot needed to execute each one, keyed by the function name its
// CallNodes carry. It is a plain value that requires no locking once
// built; it is not serializable as-is, since each Image holds the
// decomposed builder and body as Go closures (spec.md §5, Shared-resource policy:
// "the graph are immutable after blueprint construction").
//
// Bindings carries, for every call this Blueprint reaches (keyed by
// that call's own CallNode hash — Entry's included), the name->value
// map its constants block produced. A driver reads Bindings instead of
// replaying BuildGraph a second time at execution time: BuildGraph runs
// every ordinary (non-annotated) call it encounters immediately and
// unconditionally, so replaying it twice per invocation would run any
// side-effecting ordinary call twice. Blueprint assembly is the only
// place BuildGraph ever runs.
type Blueprint struct {
	Entry    *callnode.CallNode
	Graph    *dag.Graph
	Images   map[string]*function.Image
	Bindings map[callnode.Hash]map[string]any
}

// Build implements `blueprint(entry_args)` (spec.md §4.9): it invokes
// img's own graph builder on args, then recursively invokes each
// reachable dependency's own builder on the arguments the caller's
// local graph deduced for it (which may themselves be unresolved
// CallNodes or Projections — a builder does not care whether its
// parameters are concrete or symbolic, only the driver does), merging
// every local graph into one whole by union of nodes and edges, and
// drawing an edge from each inner dependency's own nodes to the outer
// symbolic call node that names it (spec.md §4.5). The result is
// rejected with NotDAGError if the merged graph is not acyclic.
func Build(img *function.Image, args []any) (*Blueprint, error) {
	g := dag.New()
	images := make(map[string]*function.Image)
	bindings := make(map[callnode.Hash]map[string]any)
	visited := make(map[callnode.Hash]bool)

	entry := callnode.New(img.Description.QualifiedName, args...)
	if _, err := assemble(img, args, entry, g, images, bindings, visited); err != nil {
		return nil, err
	}
	if !g.Acyclic() {
		return nil, xunerr.NewNotDAGError("workflow call graph contains a cycle")
	}

	return &Blueprint{Entry: entry, Graph: g, Images: images, Bindings: bindings}, nil
}

// assemble replays img's own constants block against args (exactly
// once, recording the bindings it produced under self's hash), merges
// the resulting local graph into g, and recurses into every node the
// local graph contains that names one of img's own dependencies, so
// that the whole reachable set ends up represented in one graph
// regardless of how many function boundaries it crosses. self is the
// CallNode identifying this particular invocation — Entry at the top
// level, or the node naming img inside whichever caller's local graph
// reached it. assemble returns img's own local graph so the caller (one
// recursion level up) can draw an edge from each of img's dependency
// nodes to the outer call node that named img (spec.md §4.5's "edges
// also drawn from each inner entry to the outer symbolic statement's
// call node").
func assemble(img *function.Image, args []any, self *callnode.CallNode, g *dag.Graph, images map[string]*function.Image, bindings map[callnode.Hash]map[string]any, visited map[callnode.Hash]bool) (*dag.Graph, error) {
	images[self.Function] = img

	local, localBindings, err := img.BuildGraph(args)
	if err != nil {
		return nil, err
	}
	g.Merge(local)
	bindings[self.Hash()] = localBindings

	for _, node := range local.Nodes() {
		h := node.Hash()
		if visited[h] {
			continue
		}
		visited[h] = true

		dep, err := img.Resolve(node.Function)
		if err != nil {
			return nil, err
		}
		depLocal, err := assemble(dep, flattenArgs(node), node, g, images, bindings, visited)
		if err != nil {
			return nil, err
		}
		for _, dn := range depLocal.Nodes() {
			g.AddEdge(dn, node)
		}
	}
	return local, nil
}

// flattenArgs reconstructs the positional argument list a node's own
// declared parameter order expects: positional args first, then keyword
// arguments in the order CallNode.Kwargs already normalized them to
// (spec.md §4.3) — the same merge internal/driver's materializeArgs
// performs at execution time, done here against symbolic values instead
// of resolved ones.
func flattenArgs(node *callnode.CallNode) []any {
	if len(node.Kwargs) == 0 {
		return node.Args
	}
	out := make([]any, len(node.Args)+len(node.Kwargs))
	copy(out, node.Args)
	for i, kw := range node.Kwargs {
		out[len(node.Args)+i] = kw.Value
	}
	return out
}
