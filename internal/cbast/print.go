package cbast

import "strings"

// Print renders a constants block deterministically: the same tree,
// however it was built, always yields the same text. FunctionDescription
// (internal/function) hashes this text rather than Go source, so two
// builder calls constructing an identical tree hash identically
// regardless of the caller's own formatting (spec.md §4.6).
func Print(stmts []Statement) string {
	lines := make([]string, len(stmts))
	for i, s := range stmts {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}
