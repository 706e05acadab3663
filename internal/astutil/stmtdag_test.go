package astutil

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/cbast"
)

func nameArg(n string) cbast.Arg { return cbast.Arg{Value: &cbast.Name{Value: n}} }

func TestBuildStatementDAGOrdersByDependency(t *testing.T) {
	// b = g(a)   (index 0, declared first, but depends on a)
	// a = f()    (index 1, declared second)
	stmts := []cbast.Statement{
		&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "b"}, Value: &cbast.CallExpr{Callee: "g", Args: []cbast.Arg{nameArg("a")}}},
		&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "a"}, Value: &cbast.CallExpr{Callee: "f"}},
	}

	dag, err := BuildStatementDAG(stmts)
	if err != nil {
		t.Fatalf("BuildStatementDAG: %v", err)
	}
	order, err := dag.TopoSort()
	if err != nil {
		t.Fatalf("TopoSort: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 0 {
		t.Fatalf("order = %v, want [1 0] (a before b)", order)
	}
}

func TestBuildStatementDAGDetectsCycle(t *testing.T) {
	// a = f(b)
	// b = g(a)
	stmts := []cbast.Statement{
		&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "a"}, Value: &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{nameArg("b")}}},
		&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "b"}, Value: &cbast.CallExpr{Callee: "g", Args: []cbast.Arg{nameArg("a")}}},
	}

	if _, err := BuildStatementDAG(stmts); err == nil {
		t.Fatalf("expected NotDAGError for a cycle")
	}
}
