package rpcstore

import (
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/store"
	"github.com/mrSundvoll/xun/internal/store/memstore"
)

func startServer(t *testing.T, backing store.Store) (*bufconn.Listener, func()) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	if err := NewServer(backing).Register(srv); err != nil {
		t.Fatalf("Register: %v", err)
	}
	go func() { _ = srv.Serve(lis) }()
	return lis, srv.Stop
}

func dialClient(t *testing.T, lis *bufconn.Listener) *Client {
	t.Helper()
	sch, err := loadSchema()
	if err != nil || sch == nil {
		t.Fatalf("loadSchema: %v", err)
	}
	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return &Client{conn: conn, schema: sch, runID: uuid.New()}
}

// A value Put through the client is visible both via the client's own
// Contains/Get and directly in the backing store the server wraps,
// round-tripping the (call_hash, version_hash) key over the wire.
func TestClientServerRoundTrip(t *testing.T) {
	backing := memstore.New()
	lis, stop := startServer(t, backing)
	defer stop()

	client := dialClient(t, lis)
	defer client.Close()

	var version callnode.Hash
	version[0] = 7
	key := store.Key{Call: callnode.New("pkg.f", 1, 2), Version: version}

	exists, err := client.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if exists {
		t.Fatalf("expected key absent before Put")
	}

	if err := client.Put(key, []byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	exists, err = client.Contains(key)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !exists {
		t.Fatalf("expected key present after Put")
	}

	got, err := client.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Get = %q, want %q", got, "hello")
	}

	// The server wrote straight into the backing store under the same
	// (call_hash, version_hash) key, so a direct lookup sees it too.
	directOK, err := backing.Contains(key)
	if err != nil {
		t.Fatalf("backing.Contains: %v", err)
	}
	if !directOK {
		t.Fatalf("expected backing store to contain the key directly")
	}
}
