package queued

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/decompose"
	"github.com/mrSundvoll/xun/internal/function"
	"github.com/mrSundvoll/xun/internal/store"
	"github.com/mrSundvoll/xun/internal/store/memstore"
)

func name(n string) *cbast.Name { return &cbast.Name{Value: n} }
func lit(i int) *cbast.Literal  { return &cbast.Literal{Kind: cbast.IntLiteral, Value: i} }

func emptyCtx(known ...string) *decompose.Context {
	k := make(map[string]bool, len(known))
	for _, n := range known {
		k[n] = true
	}
	return &decompose.Context{Known: k, Ordinary: map[string]decompose.OrdinaryFunc{}}
}

func buildImage(t *testing.T, desc *function.Description, ctx *decompose.Context, deps map[string]*function.Image) *function.Image {
	t.Helper()
	result, err := decompose.Decompose(desc, ctx)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	return function.NewImage(desc, deps, result.BuildGraph, result.RunBody)
}

// f(x) = x + 1, g(x) = x * 2, both depended on independently by main, so
// their CallNodes have no edge between them and a queued driver with
// more than one worker may run them concurrently.
func TestQueuedRunsIndependentBranchesToSameResultAsSequential(t *testing.T) {
	fDesc := function.NewDescription("pkg.f", []string{"x"}, nil,
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpAdd, Left: name("x"), Right: lit(1)}}},
		nil, nil)
	f := buildImage(t, fDesc, emptyCtx(), nil)

	gDesc := function.NewDescription("pkg.g", []string{"x"}, nil,
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpMul, Left: name("x"), Right: lit(2)}}},
		nil, nil)
	g := buildImage(t, gDesc, emptyCtx(), nil)

	mainDesc := function.NewDescription("pkg.main", []string{"x"},
		[]cbast.Statement{
			&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "a"}, Value: &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{{Value: name("x")}}}},
			&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "b"}, Value: &cbast.CallExpr{Callee: "g", Args: []cbast.Arg{{Value: name("x")}}}},
		},
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpAdd, Left: name("a"), Right: name("b")}}},
		nil, nil)
	mainImg := buildImage(t, mainDesc, emptyCtx("f", "g"), map[string]*function.Image{"f": f, "g": g})

	bp, err := blueprint.Build(mainImg, []any{5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := New(4).Execute(bp, store.NewAccessor(memstore.New()))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	// f(5)=6, g(5)=10, 6+10=16
	if out != 16 {
		t.Fatalf("out = %v, want 16", out)
	}
}

// A failing node stops the driver from dispatching any further node and
// surfaces the error, without panicking or deadlocking the worker pool.
func TestQueuedSurfacesFirstError(t *testing.T) {
	ctx := emptyCtx()
	ctx.Ordinary["boom"] = func(args []any, kwargs map[string]any) (any, error) {
		return nil, fmt.Errorf("boom")
	}
	fDesc := function.NewDescription("pkg.f", []string{"x"}, nil,
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.CallExpr{Callee: "boom", Args: []cbast.Arg{{Value: name("x")}}}}},
		nil, nil)
	f := buildImage(t, fDesc, ctx, nil)

	mainDesc := function.NewDescription("pkg.main", []string{"x"},
		[]cbast.Statement{&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "a"}, Value: &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{{Value: name("x")}}}}},
		[]cbast.Statement{&cbast.ExprStmt{Value: name("a")}},
		nil, nil)
	mainImg := buildImage(t, mainDesc, emptyCtx("f"), map[string]*function.Image{"f": f})

	bp, err := blueprint.Build(mainImg, []any{5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if _, err := New(2).Execute(bp, store.NewAccessor(memstore.New())); err == nil {
		t.Fatalf("expected an error, got nil")
	}
}

// Repeated calls to the same node (identical CallNode hash) still run
// exactly once under concurrent dispatch, matching Sequential's
// memoization guarantee (spec.md §9, §5 at-most-once per run).
func TestQueuedMemoizesRepeatedCallUnderConcurrency(t *testing.T) {
	var calls int64
	var mu sync.Mutex
	ctx := emptyCtx()
	ctx.Ordinary["count"] = func(args []any, kwargs map[string]any) (any, error) {
		mu.Lock()
		defer mu.Unlock()
		atomic.AddInt64(&calls, 1)
		return args[0], nil
	}
	fDesc := function.NewDescription("pkg.f", []string{"x"}, nil,
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.CallExpr{Callee: "count", Args: []cbast.Arg{{Value: name("x")}}}}},
		nil, nil)
	f := buildImage(t, fDesc, ctx, nil)

	mainDesc := function.NewDescription("pkg.main", []string{"x"},
		[]cbast.Statement{
			&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "a"}, Value: &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{{Value: name("x")}}}},
			&cbast.AssignStmt{Target: &cbast.NameTarget{Name: "b"}, Value: &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{{Value: name("x")}}}},
		},
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpAdd, Left: name("a"), Right: name("b")}}},
		nil, nil)
	mainImg := buildImage(t, mainDesc, emptyCtx("f"), map[string]*function.Image{"f": f})

	bp, err := blueprint.Build(mainImg, []any{4})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	out, err := New(8).Execute(bp, store.NewAccessor(memstore.New()))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != 8 {
		t.Fatalf("out = %v, want 8", out)
	}
	if calls != 1 {
		t.Fatalf("count() ran %d times, want 1", calls)
	}
}
