package driver

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/blueprint"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/decompose"
	"github.com/mrSundvoll/xun/internal/function"
	"github.com/mrSundvoll/xun/internal/store"
	"github.com/mrSundvoll/xun/internal/store/memstore"
)

func run(t *testing.T, img *function.Image, args []any) any {
	t.Helper()
	bp, err := blueprint.Build(img, args)
	if err != nil {
		t.Fatalf("blueprint.Build: %v", err)
	}
	out, err := New().Execute(bp, store.NewAccessor(memstore.New()))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return out
}

func name(n string) *cbast.Name { return &cbast.Name{Value: n} }
func lit(i int) *cbast.Literal  { return &cbast.Literal{Kind: cbast.IntLiteral, Value: i} }

func buildImage(t *testing.T, desc *function.Description, ctx *decompose.Context, deps map[string]*function.Image) *function.Image {
	t.Helper()
	result, err := decompose.Decompose(desc, ctx)
	if err != nil {
		t.Fatalf("Decompose: %v", err)
	}
	return function.NewImage(desc, deps, result.BuildGraph, result.RunBody)
}

func emptyCtx(known ...string) *decompose.Context {
	k := make(map[string]bool, len(known))
	for _, n := range known {
		k[n] = true
	}
	return &decompose.Context{Known: k, Ordinary: map[string]decompose.OrdinaryFunc{}}
}

// f(x) = x + 1, with no annotated dependencies of its own.
func fImage(t *testing.T) *function.Image {
	desc := function.NewDescription("pkg.f", []string{"x"}, nil,
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpAdd, Left: name("x"), Right: lit(1)}}},
		nil, nil)
	return buildImage(t, desc, emptyCtx(), nil)
}

// main(x): y = f(x); return y * 2
func TestSequentialRunsDependencyThenBody(t *testing.T) {
	f := fImage(t)

	mainDesc := function.NewDescription("pkg.main", []string{"x"},
		[]cbast.Statement{&cbast.AssignStmt{
			Target: &cbast.NameTarget{Name: "y"},
			Value:  &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{{Value: name("x")}}},
		}},
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpMul, Left: name("y"), Right: lit(2)}}},
		nil, nil)
	mainImg := buildImage(t, mainDesc, emptyCtx("f"), map[string]*function.Image{"f": f})

	out := run(t, mainImg, []any{5})
	if out != 12 {
		t.Fatalf("out = %v, want 12", out)
	}
}

// Calling the same dependency call twice with identical arguments runs
// it only once (spec.md §9's memoization identity): a side-effect
// counter embedded via an Ordinary function proves it.
func TestSequentialMemoizesRepeatedCall(t *testing.T) {
	calls := 0
	ctx := emptyCtx()
	ctx.Ordinary["count"] = func(args []any, kwargs map[string]any) (any, error) {
		calls++
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

	out := run(t, mainImg, []any{4})
	if out != 8 {
		t.Fatalf("out = %v, want 8", out)
	}
	if calls != 1 {
		t.Fatalf("count() ran %d times, want 1 (single CallNode, memoized)", calls)
	}
}
