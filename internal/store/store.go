// Package store implements spec.md §4.7: the abstract keyed store plus
// the accessor wrapping it with completed/load/store semantics.
package store

import "github.com/mrSundvoll/xun/internal/callnode"

// Key identifies one stored result: a CallNode paired with the hash of
// the FunctionImage that produced it, so that semantically distinct
// redefinitions never collide (spec.md §3, Store key; §9, Memoization
// identity).
type Key struct {
	Call    *callnode.CallNode
	Version callnode.Hash
}

// Store is the abstract keyed map spec.md §4.7 and §6 require: contains,
// get, put. Values arrive already encoded by the Accessor;
// implementations (memstore, sqlitestore, rpcstore) decide how those
// bytes are persisted.
type Store interface {
	Contains(key Key) (bool, error)
	Get(key Key) ([]byte, error)
	Put(key Key, value []byte) error
}
