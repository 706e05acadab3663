package astutil

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/cbast"
)

func TestFreeVariables(t *testing.T) {
	// a = f(x)
	// b = g(a, y)
	stmts := []cbast.Statement{
		&cbast.AssignStmt{
			Target: &cbast.NameTarget{Name: "a"},
			Value:  &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{{Value: &cbast.Name{Value: "x"}}}},
		},
		&cbast.AssignStmt{
			Target: &cbast.NameTarget{Name: "b"},
			Value: &cbast.CallExpr{Callee: "g", Args: []cbast.Arg{
				{Value: &cbast.Name{Value: "a"}},
				{Value: &cbast.Name{Value: "y"}},
			}},
		},
	}

	free := FreeVariables(stmts)
	if len(free) != 2 || !free["x"] || !free["y"] {
		t.Fatalf("free variables = %v, want {x, y}", free)
	}
	if free["a"] || free["b"] {
		t.Fatalf("bound names leaked into free set: %v", free)
	}
}

func TestStatementDefinesUnpacking(t *testing.T) {
	stmt := &cbast.AssignStmt{
		Target: &cbast.TupleTarget{Elems: []cbast.Target{
			&cbast.NameTarget{Name: "a"},
			&cbast.NameTarget{Name: "b"},
		}},
		Value: &cbast.CallExpr{Callee: "f"},
	}
	names := StatementDefines(stmt)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("StatementDefines = %v", names)
	}
}

func TestComprehensionTargetNotFree(t *testing.T) {
	// [g(i) for i in xs]
	comp := &cbast.ListComp{
		Elt:    &cbast.CallExpr{Callee: "g", Args: []cbast.Arg{{Value: &cbast.Name{Value: "i"}}}},
		Clause: cbast.Comprehension{Target: &cbast.NameTarget{Name: "i"}, Iter: &cbast.Name{Value: "xs"}},
	}
	names := ExpressionNames(comp)
	if names["i"] {
		t.Fatalf("comprehension loop variable leaked as free: %v", names)
	}
	if !names["xs"] {
		t.Fatalf("expected xs to be free: %v", names)
	}
}
