package function

import (
	"crypto/sha256"
	"fmt"
	"sort"

	"github.com/mrSundvoll/xun/internal/callnode"
)

// Hash is the content digest of a FunctionImage (spec.md §4.6):
// H(description.source, description.closure_values, sorted(dep_name,
// dep.hash)). Reusing callnode.Hash keeps one digest representation
// across the module (fixed-width, Equal/Xor only, per spec.md §6).
type Hash = callnode.Hash

// hashOf computes the image hash of a description bound to a resolved
// dependency map. Redefining a function with a different source or
// different closure values yields a new hash; redefining with
// byte-identical source and identical closures yields the same hash; a
// dependency's hash change propagates to dependents (spec.md §4.6,
// Versioning law), because depNames below is sorted and each
// dependency contributes its own Hash(), not its name alone.
func hashOf(desc *Description, deps map[string]*Image) Hash {
	depNames := make([]string, 0, len(deps))
	for name := range deps {
		depNames = append(depNames, name)
	}
	sort.Strings(depNames)

	h := sha256.New()
	writeString(h, desc.Source())
	writeClosureValues(h, desc.ClosureValues)
	for _, name := range depNames {
		writeString(h, name)
		digest := deps[name].Hash()
		h.Write(digest[:])
	}

	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

func writeString(h interface{ Write([]byte) (int, error) }, s string) {
	h.Write([]byte{byte(len(s) >> 24), byte(len(s) >> 16), byte(len(s) >> 8), byte(len(s))})
	h.Write([]byte(s))
}

func writeClosureValues(h interface{ Write([]byte) (int, error) }, values map[string]any) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeString(h, k)
		writeString(h, fmt.Sprintf("%#v", values[k]))
	}
}
