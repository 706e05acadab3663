package store

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// notCompletedError backs Load's failure when a key was never stored.
// spec.md §4.7 names the case ("fails with a not-completed error") but
// leaves it out of the §7 named-kind taxonomy, so it is scoped locally
// to this package rather than added to xunerr.
type notCompletedError struct {
	key Key
}

func (e *notCompletedError) Error() string {
	return fmt.Sprintf("not completed: call %s version %s", e.key.Call, e.key.Version)
}

// Accessor wraps a Store with the completed/load/store contract spec.md
// §4.7 specifies. Encoding is gob: serialization format is an external
// collaborator per spec.md §1 ("pickling/serialization details"), and gob
// is the stdlib default with no pack library specializing in opaque
// Go-value encoding (see DESIGN.md).
type Accessor struct {
	backing Store
}

// NewAccessor wraps a Store.
func NewAccessor(backing Store) *Accessor {
	return &Accessor{backing: backing}
}

func init() {
	// gob requires every concrete type ever stored behind an interface{}
	// to be registered once, up front, regardless of which call site
	// first produces it. These cover the result shapes the lattice
	// itself produces (tuples, lists and sets become []any, dicts become
	// map[string]any) plus the host scalar kinds (spec.md §3, Literal).
	gob.Register("")
	gob.Register(0)
	gob.Register(int64(0))
	gob.Register(0.0)
	gob.Register(false)
	gob.Register([]any{})
	gob.Register(map[string]any{})
}

// Completed reports whether a result has been stored for (call, version).
func (a *Accessor) Completed(call *callnode.CallNode, version callnode.Hash) (bool, error) {
	return a.backing.Contains(Key{Call: call, Version: version})
}

// Load returns the stored result for (call, version), failing if it was
// never stored (spec.md §4.7).
func (a *Accessor) Load(call *callnode.CallNode, version callnode.Hash) (any, error) {
	key := Key{Call: call, Version: version}
	ok, err := a.backing.Contains(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &notCompletedError{key: key}
	}
	raw, err := a.backing.Get(key)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

// Store writes a result for (call, version). Writing is idempotent:
// writing the same value again is a no-op observably, and writing a
// conflicting value is permitted with latest-write-wins semantics —
// drivers must not depend on conflict detection (spec.md §4.7).
func (a *Accessor) Store(call *callnode.CallNode, version callnode.Hash, value any) error {
	raw, err := encode(value)
	if err != nil {
		return xunerr.NewValueError("encoding result for store: %v", err)
	}
	return a.backing.Put(Key{Call: call, Version: version}, raw)
}

func encode(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&value); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(raw []byte) (any, error) {
	var value any
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
