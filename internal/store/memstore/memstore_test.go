package memstore

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/store"
)

func TestContainsGetPut(t *testing.T) {
	s := New()
	key := store.Key{Call: callnode.New("f", 1), Version: callnode.Hash{1}}

	if ok, _ := s.Contains(key); ok {
		t.Fatalf("expected key absent before Put")
	}

	if err := s.Put(key, []byte("result")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, err := s.Contains(key)
	if err != nil || !ok {
		t.Fatalf("expected key present after Put, ok=%v err=%v", ok, err)
	}

	got, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "result" {
		t.Fatalf("got %q, want %q", got, "result")
	}
}

func TestPutIsIdempotent(t *testing.T) {
	s := New()
	key := store.Key{Call: callnode.New("f"), Version: callnode.Hash{}}
	if err := s.Put(key, []byte("a")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(key, []byte("a")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, _ := s.Get(key)
	if string(got) != "a" {
		t.Fatalf("got %q, want %q", got, "a")
	}
}

func TestDistinctVersionsAreDistinctKeys(t *testing.T) {
	s := New()
	call := callnode.New("f")
	k1 := store.Key{Call: call, Version: callnode.Hash{1}}
	k2 := store.Key{Call: call, Version: callnode.Hash{2}}

	s.Put(k1, []byte("v1"))
	if ok, _ := s.Contains(k2); ok {
		t.Fatalf("expected distinct version hash to be a distinct key")
	}
}
