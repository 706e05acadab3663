package remoteworker

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

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

func startWorker(t *testing.T, bp *blueprint.Blueprint, accessor *store.Accessor) *bufconn.Listener {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	if err := NewWorker(bp, accessor).Register(srv); err != nil {
		t.Fatalf("Register: %v", err)
	}
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)
	return lis
}

func dialWorker(t *testing.T, lis *bufconn.Listener) *grpc.ClientConn {
	t.Helper()
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return conn
}

// main(x): y = f(x); return y * 2, dispatched to a single remote worker
// process over the Dispatch service, both sides sharing one memstore.
func TestRemoteWorkerDispatchesAndExecutes(t *testing.T) {
	fDesc := function.NewDescription("pkg.f", []string{"x"}, nil,
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpAdd, Left: name("x"), Right: lit(1)}}},
		nil, nil)
	f := buildImage(t, fDesc, emptyCtx(), nil)

	mainDesc := function.NewDescription("pkg.main", []string{"x"},
		[]cbast.Statement{&cbast.AssignStmt{
			Target: &cbast.NameTarget{Name: "y"},
			Value:  &cbast.CallExpr{Callee: "f", Args: []cbast.Arg{{Value: name("x")}}},
		}},
		[]cbast.Statement{&cbast.ExprStmt{Value: &cbast.BinExpr{Op: cbast.OpMul, Left: name("y"), Right: lit(2)}}},
		nil, nil)
	mainImg := buildImage(t, mainDesc, emptyCtx("f"), map[string]*function.Image{"f": f})

	bp, err := blueprint.Build(mainImg, []any{5})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	shared := store.NewAccessor(memstore.New())
	lis := startWorker(t, bp, shared)
	conn := dialWorker(t, lis)
	defer conn.Close()

	coord := &RemoteWorker{conns: []*grpc.ClientConn{conn}}
	out, err := coord.Execute(bp, shared)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out != 12 {
		t.Fatalf("out = %v, want 12", out)
	}
}
