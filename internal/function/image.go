package function

import (
	"github.com/mrSundvoll/xun/internal/callnode"
	"github.com/mrSundvoll/xun/internal/dag"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// GraphBuilder replays a function's constants block against a concrete
// argument list (decomposition pass 7, spec.md §4.4): it returns this
// invocation's local dag.Graph plus the name -> value bindings the body
// reads from, each value being either a concrete Go value or a deferred
// *callnode.CallNode / *callnode.Projection.
type GraphBuilder func(args []any) (*dag.Graph, map[string]any, error)

// BodyRunner is the compute produced by decomposition passes 8-9
// (spec.md §4.4): the original function body evaluated against the
// bindings GraphBuilder produced for the same invocation, resolving any
// referenced CallNode through load.
type BodyRunner func(args []any, bindings map[string]any, load callnode.Load) (any, error)

// Image is the frozen unit the driver executes (spec.md §3,
// FunctionImage): a Description bound to the dependency map resolved at
// definition site, plus the rewritten callables and its content hash.
// Two images compare equal iff their hashes match.
type Image struct {
	Description *Description
	// Dependencies maps every annotated function name this image's
	// constants block names to the FunctionImage resolved for it at
	// definition time (spec.md §4.6: "a snapshot of which annotated
	// functions this one names").
	Dependencies map[string]*Image
	BuildGraph   GraphBuilder
	RunBody      BodyRunner

	hash    Hash
	hasHash bool
}

// NewImage binds a Description to its resolved dependency map and
// rewritten callables, computing and caching the content hash.
func NewImage(desc *Description, deps map[string]*Image, buildGraph GraphBuilder, runBody BodyRunner) *Image {
	img := &Image{Description: desc, Dependencies: deps, BuildGraph: buildGraph, RunBody: runBody}
	img.hash = hashOf(desc, deps)
	img.hasHash = true
	return img
}

// Hash returns the image's content digest.
func (img *Image) Hash() Hash {
	if !img.hasHash {
		img.hash = hashOf(img.Description, img.Dependencies)
		img.hasHash = true
	}
	return img.hash
}

// Equal reports whether two images are observationally equivalent at
// invocation time (spec.md §4.6): their hashes match.
func Equal(a, b *Image) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Hash().Equal(b.Hash())
}

// Resolve looks up a dependency by name, failing with
// FunctionDefNotFound (spec.md §7) if the definition-site snapshot never
// recorded it — the decomposition pipeline names a function the caller's
// dependency map does not actually provide.
func (img *Image) Resolve(name string) (*Image, error) {
	dep, ok := img.Dependencies[name]
	if !ok {
		return nil, xunerr.NewFunctionDefNotFoundError(name)
	}
	return dep, nil
}
