package sqlitestore

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSqliteStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)
	key := store.Key{Call: callnode.New("f", 1), Version: callnode.Hash{9}}

	if ok, err := s.Contains(key); err != nil || ok {
		t.Fatalf("expected absent before Put, got %v %v", ok, err)
	}

	if err := s.Put(key, []byte("hello")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := s.Contains(key)
	if err != nil || !ok {
		t.Fatalf("expected present after Put, got %v %v", ok, err)
	}

	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestSqliteStoreReplaceLatestWins(t *testing.T) {
	s := openTestStore(t)
	key := store.Key{Call: callnode.New("f"), Version: callnode.Hash{1}}

	if err := s.Put(key, []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(key, []byte("v2")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("got %q, want %q", got, "v2")
	}
}
