package store

import (
	"testing"

	"github.com/mrSundvoll/xun/internal/callnode"
)

type fakeStore struct {
	values map[string][]byte
}

func newFakeStore() *fakeStore { return &fakeStore{values: make(map[string][]byte)} }

func fakeKeyString(k Key) string {
	h := k.Call.Hash()
	return string(h[:]) + string(k.Version[:])
}

func (f *fakeStore) Contains(k Key) (bool, error) {
	_, ok := f.values[fakeKeyString(k)]
	return ok, nil
}

func (f *fakeStore) Get(k Key) ([]byte, error) {
	return f.values[fakeKeyString(k)], nil
}

func (f *fakeStore) Put(k Key, v []byte) error {
	f.values[fakeKeyString(k)] = v
	return nil
}

func TestAccessorLoadFailsBeforeStore(t *testing.T) {
	a := NewAccessor(newFakeStore())
	call := callnode.New("f", 1)
	var version callnode.Hash

	completed, err := a.Completed(call, version)
	if err != nil || completed {
		t.Fatalf("expected not completed before Store, got %v %v", completed, err)
	}
	if _, err := a.Load(call, version); err == nil {
		t.Fatalf("expected Load to fail before Store")
	}
}

func TestAccessorRoundTrip(t *testing.T) {
	a := NewAccessor(newFakeStore())
	call := callnode.New("f", 1)
	var version callnode.Hash

	if err := a.Store(call, version, "abc"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	completed, err := a.Completed(call, version)
	if err != nil || !completed {
		t.Fatalf("expected completed after Store, got %v %v", completed, err)
	}
	got, err := a.Load(call, version)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != "abc" {
		t.Fatalf("got %v, want abc", got)
	}
}
