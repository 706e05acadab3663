// Package callnode implements spec.md §4.3: the immutable, structurally
// hashed identifier for a deferred call. A CallNode carries no execution
// state — it is a value, suitable for use as a map key and as an argument
// nested inside another CallNode.
package callnode

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/mrSundvoll/xun/internal/astutil"
)

// Projection is a deferred reference into a leaf of a CallNode's result,
// for a structured-unpacking assignment whose source is a single call
// (spec.md §8 scenario #1, `(a,b),c = f()`): Node is the call producing
// the whole value, Path is the multi-index path astutil.IndicesFromShape
// computes for the bound leaf. Materializing a Projection means loading
// Node's stored result, then indexing into it along Path (internal/
// driver).
//
// Starred unpacking (`head,*body,foot = f()`, spec.md §8 scenario #2)
// cannot be resolved to a fixed Path at decomposition time: the starred
// leaf's width depends on the runtime arity of Node's result, not on
// anything known statically. For a starred leaf, ByShape is true and
// Path is unused; the driver instead recomputes astutil.ExpandStarred
// against the loaded value's actual length and reads LeafPos's run.
type Projection struct {
	Node *CallNode
	Path []int

	ByShape bool
	Shape   astutil.Shape
	LeafPos int
}

// KwArg is one keyword argument, preserving declaration order.
type KwArg struct {
	Name  string
	Value any
}

// CallNode is the immutable tuple (function_name, args, kwargs) of
// spec.md §3. Equality and hashing are structural; arguments may embed
// other CallNodes recursively.
type CallNode struct {
	Function string
	Args     []any
	Kwargs   []KwArg

	hash    Hash
	hasHash bool
}

// New builds a CallNode from positional arguments only.
func New(function string, args ...any) *CallNode {
	return &CallNode{Function: function, Args: args}
}

// NewWithKwargs builds a CallNode from both positional and keyword
// arguments. When paramOrder is non-nil (the callee's declared parameter
// signature is known), kwargs are normalized into that declared order;
// names absent from paramOrder keep their original relative order,
// appended after the known ones (spec.md §4.3).
func NewWithKwargs(function string, args []any, kwargs []KwArg, paramOrder []string) *CallNode {
	normalized := kwargs
	if paramOrder != nil {
		normalized = normalizeKwargs(kwargs, paramOrder)
	}
	return &CallNode{Function: function, Args: args, Kwargs: normalized}
}

// FromHash builds an opaque CallNode carrying only a precomputed
// structural hash, with no recoverable Function/Args. A store.Store only
// ever inspects a Key's Hash(), never its structure, so this is enough
// to reconstruct a store.Key server-side in internal/rpcstore, which
// receives just the (call_hash, version_hash) pair a client sends over
// the wire rather than a whole CallNode.
func FromHash(h Hash) *CallNode {
	return &CallNode{hash: h, hasHash: true}
}

func normalizeKwargs(kwargs []KwArg, paramOrder []string) []KwArg {
	rank := make(map[string]int, len(paramOrder))
	for i, name := range paramOrder {
		rank[name] = i
	}
	unknown := len(paramOrder)

	out := make([]KwArg, len(kwargs))
	copy(out, kwargs)
	sort.SliceStable(out, func(i, j int) bool {
		ri, ok := rank[out[i].Name]
		if !ok {
			ri = unknown
		}
		rj, ok := rank[out[j].Name]
		if !ok {
			rj = unknown
		}
		return ri < rj
	})
	return out
}

// IsGround reports whether no embedded CallNode appears anywhere in Args
// or Kwargs — a ground CallNode's result can be computed with no
// predecessor substitution (spec.md §3).
func (c *CallNode) IsGround() bool {
	for _, a := range c.Args {
		if !isGroundValue(a) {
			return false
		}
	}
	for _, kw := range c.Kwargs {
		if !isGroundValue(kw.Value) {
			return false
		}
	}
	return true
}

func isGroundValue(v any) bool {
	switch val := v.(type) {
	case *CallNode:
		return false
	case *Projection:
		return false
	case []any:
		for _, e := range val {
			if !isGroundValue(e) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, e := range val {
			if !isGroundValue(e) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Hash returns the structural digest of c, computing and caching it on
// first use.
func (c *CallNode) Hash() Hash {
	if c.hasHash {
		return c.hash
	}
	enc := &encoder{}
	enc.writeBytes([]byte(c.Function))
	if err := enc.encode(anySlice(c.Args)); err != nil {
		panic(fmt.Sprintf("callnode: %v", err))
	}
	for _, kw := range c.Kwargs {
		enc.writeBytes([]byte(kw.Name))
		if err := enc.encode(kw.Value); err != nil {
			panic(fmt.Sprintf("callnode: %v", err))
		}
	}
	c.hash = sha256.Sum256(enc.buf)
	c.hasHash = true
	return c.hash
}

func anySlice(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}

// Equal reports structural equality: same function name, same args and
// kwargs, with embedded CallNodes compared structurally in turn
// (spec.md §3). Two CallNodes with equal Hash but that fail this check
// would indicate a digest collision; callers that only need a fast
// equivalence test may compare Hash() values directly instead.
func Equal(a, b *CallNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Function != b.Function || len(a.Args) != len(b.Args) || len(a.Kwargs) != len(b.Kwargs) {
		return false
	}
	for i := range a.Args {
		if !valuesEqual(a.Args[i], b.Args[i]) {
			return false
		}
	}
	for i := range a.Kwargs {
		if a.Kwargs[i].Name != b.Kwargs[i].Name || !valuesEqual(a.Kwargs[i].Value, b.Kwargs[i].Value) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case *CallNode:
		bv, ok := b.(*CallNode)
		return ok && Equal(av, bv)
	case *Projection:
		bv, ok := b.(*Projection)
		if !ok || !Equal(av.Node, bv.Node) || av.ByShape != bv.ByShape {
			return false
		}
		if av.ByShape {
			ae, be := &encoder{}, &encoder{}
			ae.encodeShape(av.Shape)
			be.encodeShape(bv.Shape)
			return av.LeafPos == bv.LeafPos && string(ae.buf) == string(be.buf)
		}
		if len(av.Path) != len(bv.Path) {
			return false
		}
		for i := range av.Path {
			if av.Path[i] != bv.Path[i] {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valuesEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !valuesEqual(v, bvv) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// String renders a CallNode for diagnostics and CLI output, e.g.
// `f(1, 2, other=b)` (values print with %v, so strings are unquoted).
func (c *CallNode) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.Kwargs))
	for _, a := range c.Args {
		parts = append(parts, fmt.Sprintf("%v", a))
	}
	for _, kw := range c.Kwargs {
		parts = append(parts, fmt.Sprintf("%s=%v", kw.Name, kw.Value))
	}
	return c.Function + "(" + strings.Join(parts, ", ") + ")"
}
