// Package decompose implements spec.md §4.4: the ordered AST-to-AST
// passes that split a constants block into a graph-building prelude plus
// a rewritten body, and the side value of annotated functions actually
// used.
package decompose

import (
	"github.com/mrSundvoll/xun/internal/callnode"
)

// OrdinaryFunc is a non-annotated callable reachable from a constants
// block (spec.md §4.2's "all other calls produce Any"). spec.md treats
// the surface parser as an external collaborator and says nothing about
// how an ordinary call is dispatched at graph-build time; this
// implementation resolves that silence with an explicit registry,
// threaded alongside the known-annotated-function set exactly the way
// spec.md §9 says that set itself must be threaded ("not global... an
// explicit argument"). See DESIGN.md, internal/decompose entry.
type OrdinaryFunc func(args []any, kwargs map[string]any) (any, error)

// Context carries the two function-name registries a constants block may
// reference: annotated functions (which defer to CallNodes) and ordinary
// host functions (which run immediately at graph-build time).
type Context struct {
	Known      map[string]bool
	Ordinary   map[string]OrdinaryFunc
	ParamOrder map[string][]string
}

// isDeferred reports whether v is, or structurally contains, a
// *callnode.CallNode or *callnode.Projection — a symbolic (not-yet-
// computed) value.
func isDeferred(v any) bool {
	switch val := v.(type) {
	case *callnode.CallNode, *callnode.Projection:
		return true
	case []any:
		for _, e := range val {
			if isDeferred(e) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, e := range val {
			if isDeferred(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
