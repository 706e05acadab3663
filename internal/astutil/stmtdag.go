package astutil

import (
	"sort"

	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// StmtDAG is a dependency graph over a list of statements: an edge points
// from the statement that defines a name to every statement that reads it
// (spec.md §4.1, Statement DAG).
type StmtDAG struct {
	Stmts []cbast.Statement
	// Edges[i] lists the indices of statements that directly depend on
	// Stmts[i] because they read a name Stmts[i] defines.
	Edges [][]int
}

// BuildStatementDAG constructs the dependency DAG for stmts. Each
// statement may bind zero (ExprStmt), one, or several names (an
// unpacking AssignStmt); an edge is added from every statement defining a
// name to every later-or-earlier statement that reads it. It fails with
// NotDAGError if the resulting graph has a cycle.
func BuildStatementDAG(stmts []cbast.Statement) (*StmtDAG, error) {
	definedBy := make(map[string]int)
	for i, s := range stmts {
		for _, name := range StatementDefines(s) {
			definedBy[name] = i
		}
	}

	edges := make([][]int, len(stmts))
	seen := make([]map[int]bool, len(stmts))
	for i := range seen {
		seen[i] = make(map[int]bool)
	}

	for i, s := range stmts {
		for name := range StatementUses(s) {
			def, ok := definedBy[name]
			if !ok || def == i {
				continue
			}
			if !seen[def][i] {
				seen[def][i] = true
				edges[def] = append(edges[def], i)
			}
		}
	}

	for i := range edges {
		sort.Ints(edges[i])
	}

	dag := &StmtDAG{Stmts: stmts, Edges: edges}
	if _, err := dag.TopoSort(); err != nil {
		return nil, err
	}
	return dag, nil
}

// TopoSort returns the indices of Stmts in a topological order, ties
// broken by original source order (spec.md §4.4 pass 5). It fails with
// NotDAGError if a cycle exists.
func (d *StmtDAG) TopoSort() ([]int, error) {
	n := len(d.Stmts)
	indegree := make([]int, n)
	for _, adj := range d.Edges {
		for _, to := range adj {
			indegree[to]++
		}
	}

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}
	sort.Ints(ready)

	var order []int
	for len(ready) > 0 {
		// Pop the smallest-index ready node to keep ties in source order.
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)

		var newlyReady []int
		for _, to := range d.Edges[cur] {
			indegree[to]--
			if indegree[to] == 0 {
				newlyReady = append(newlyReady, to)
			}
		}
		sort.Ints(newlyReady)
		ready = append(ready, newlyReady...)
		sort.Ints(ready)
	}

	if len(order) != n {
		return nil, xunerr.NewNotDAGError("constants block statements form a cycle")
	}
	return order, nil
}
