// Package function implements spec.md §4.6: the FunctionDescription and
// FunctionImage that together make up the frozen, content-hashed unit the
// driver executes.
package function

import (
	"github.com/mrSundvoll/xun/internal/cbast"
)

// Description is the immutable bundle produced once per user definition
// (spec.md §3, FunctionDescription): source text, parsed AST, qualified
// name, parameter signature, closure variables captured by value, and
// module-level globals referenced. Its identity is determined by
// (Source, ClosureValues) alone — two Descriptions with equal Source and
// equal ClosureValues are interchangeable regardless of QualifiedName.
type Description struct {
	// QualifiedName identifies the function for diagnostics and names the
	// entry CallNode when the function is run directly; callers name it in
	// their own constants block by their dependency-map key instead. It
	// does not participate in the content hash (spec.md §4.6).
	QualifiedName string

	// ParamNames is the declared parameter signature, in declaration
	// order; used to normalize CallNode kwargs (spec.md §4.3) and to bind
	// arguments when invoking the rewritten body.
	ParamNames []string

	// ConstantsBlock is the constants block as written, which
	// decomposition sorts and checks; Body is the ordinary statements that
	// run at call time.
	ConstantsBlock []cbast.Statement
	Body           []cbast.Statement

	// ClosureValues are module closure variables captured by value at
	// definition time, keyed by name.
	ClosureValues map[string]any

	// GlobalRefs lists source-module globals referenced by the function,
	// for diagnostics (spec.md §3: "source-module globals referenced").
	GlobalRefs []string
}

// NewDescription builds a Description from its constituent parts.
func NewDescription(qualifiedName string, paramNames []string, constantsBlock, body []cbast.Statement, closureValues map[string]any, globalRefs []string) *Description {
	return &Description{
		QualifiedName:  qualifiedName,
		ParamNames:     paramNames,
		ConstantsBlock: constantsBlock,
		Body:           body,
		ClosureValues:  closureValues,
		GlobalRefs:     globalRefs,
	}
}

// Source is the deterministic pretty-print of the description's AST
// (constants block followed by body), used as the content-hash input in
// place of literal Go source text (SPEC_FULL.md §0): two Descriptions
// built by independent calls to the pkg/xun builder, producing the same
// tree, hash identically regardless of the caller's own source formatting.
func (d *Description) Source() string {
	all := make([]cbast.Statement, 0, len(d.ConstantsBlock)+len(d.Body))
	all = append(all, d.ConstantsBlock...)
	all = append(all, d.Body...)
	return cbast.Print(all)
}
