package xun

import (
	"sync"

	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/decompose"
	"github.com/mrSundvoll/xun/internal/function"
)

// ordinaryMu guards ordinaryFuncs, following the teacher's own
// registration pattern (internal/evaluator's package-level Builtins map,
// populated by Register* calls at startup) rather than threading a
// registry value through every caller.
var (
	ordinaryMu    sync.RWMutex
	ordinaryFuncs = map[string]decompose.OrdinaryFunc{}
)

// RegisterOrdinary installs fn as a host function any constants block
// may call by name: unlike an annotated function, it runs immediately
// at graph-build time rather than deferring to a CallNode (spec.md
// §4.2's "all other calls produce Any").
func RegisterOrdinary(name string, fn decompose.OrdinaryFunc) {
	ordinaryMu.Lock()
	defer ordinaryMu.Unlock()
	ordinaryFuncs[name] = fn
}

func ordinarySnapshot() map[string]decompose.OrdinaryFunc {
	ordinaryMu.RLock()
	defer ordinaryMu.RUnlock()
	out := make(map[string]decompose.OrdinaryFunc, len(ordinaryFuncs))
	for k, v := range ordinaryFuncs {
		out[k] = v
	}
	return out
}

// Func is the fluent builder for one annotated function definition: a
// qualified name, a parameter signature, a constants block, an
// ordinary body, and the set of other annotated functions (already
// built into Images) its constants block may call.
type Func struct {
	name    string
	params  []string
	consts  []cbast.Statement
	body    []cbast.Statement
	closure map[string]any
	globals []string
	deps    map[string]*function.Image
}

// Define starts a new function definition. name is the qualified name
// used for diagnostics and as the entry CallNode's function name when
// this function is run directly (callers reach it under the name given
// to their own DependsOn); params is the declared parameter signature
// in declaration order.
func Define(name string, params ...string) *Func {
	return &Func{name: name, params: params, deps: map[string]*function.Image{}}
}

// Constants sets the function's constants block: the statements
// decomposed into a graph-building prelude (spec.md §4.4).
func (f *Func) Constants(stmts ...cbast.Statement) *Func {
	f.consts = stmts
	return f
}

// Body sets the function's ordinary body: the statements that run at
// call time against the constants block's resolved bindings.
func (f *Func) Body(stmts ...cbast.Statement) *Func {
	f.body = stmts
	return f
}

// Closure sets the module closure variables captured by value at
// definition time.
func (f *Func) Closure(values map[string]any) *Func {
	f.closure = values
	return f
}

// Globals records source-module globals referenced by the function,
// for diagnostics only (spec.md §3).
func (f *Func) Globals(names ...string) *Func {
	f.globals = names
	return f
}

// DependsOn records that this function's constants block calls the
// annotated function named name, resolved at definition time to img —
// spec.md §4.6's dependency-map snapshot.
func (f *Func) DependsOn(name string, img *function.Image) *Func {
	f.deps[name] = img
	return f
}

// Image runs decomposition over the accumulated definition and returns
// the resulting FunctionImage, ready to be built into a Blueprint and
// executed by a Driver.
func (f *Func) Image() (*function.Image, error) {
	known := make(map[string]bool, len(f.deps))
	paramOrder := make(map[string][]string, len(f.deps))
	for name, dep := range f.deps {
		known[name] = true
		paramOrder[name] = dep.Description.ParamNames
	}

	ctx := &decompose.Context{
		Known:      known,
		Ordinary:   ordinarySnapshot(),
		ParamOrder: paramOrder,
	}

	desc := function.NewDescription(f.name, f.params, f.consts, f.body, f.closure, f.globals)
	result, err := decompose.Decompose(desc, ctx)
	if err != nil {
		return nil, err
	}
	return function.NewImage(desc, f.deps, result.BuildGraph, result.RunBody), nil
}
