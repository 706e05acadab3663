// Package xunerr holds the named error kinds the decomposition pipeline and
// the drivers surface. Each kind is its own struct type rather than a
// sentinel, so callers can carry structured detail and still use
// errors.As to recover the kind.
package xunerr

import "fmt"

// XunSyntaxError reports an illegal use of a deferred (Xun) value inside a
// constants block: reassigning a known annotated-function name, using a
// deferred result as an operand, or an unsupported node kind.
type XunSyntaxError struct {
	Msg string
}

func (e *XunSyntaxError) Error() string { return "xun syntax error: " + e.Msg }

func NewXunSyntaxError(format string, args ...any) *XunSyntaxError {
	return &XunSyntaxError{Msg: fmt.Sprintf(format, args...)}
}

// NotDAGError reports a cycle in a constants-block statement DAG or in the
// whole-workflow call graph.
type NotDAGError struct {
	Msg string
}

func (e *NotDAGError) Error() string { return "not a dag: " + e.Msg }

func NewNotDAGError(format string, args ...any) *NotDAGError {
	return &NotDAGError{Msg: fmt.Sprintf(format, args...)}
}

// CopyError reports a deferred value escaping into an ordinary function
// call in the function body before it has been loaded from the store.
type CopyError struct {
	Msg string
}

func (e *CopyError) Error() string { return "copy error: " + e.Msg }

func NewCopyError(format string, args ...any) *CopyError {
	return &CopyError{Msg: fmt.Sprintf(format, args...)}
}

// FunctionDefNotFoundError reports that a call node names an annotated
// function absent from the dependency map supplied to the graph builder.
type FunctionDefNotFoundError struct {
	Name string
}

func (e *FunctionDefNotFoundError) Error() string {
	return fmt.Sprintf("function definition not found: %s", e.Name)
}

func NewFunctionDefNotFoundError(name string) *FunctionDefNotFoundError {
	return &FunctionDefNotFoundError{Name: name}
}

// ContextError reports a name read in the constants block that is neither
// bound there, nor a parameter, nor a closure capture.
type ContextError struct {
	Name string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("unbound name in constants block: %s", e.Name)
}

func NewContextError(name string) *ContextError {
	return &ContextError{Name: name}
}

// ValueError reports a structural problem the decomposer rejects outright:
// more than one (or zero found when one was required) constants block,
// mutation inside the block, or an unsupported multi-target assignment.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string { return "value error: " + e.Msg }

func NewValueError(format string, args ...any) *ValueError {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// FunctionError wraps a generic runtime failure raised by user code inside
// a rewritten function body. Drivers propagate it verbatim rather than
// retrying or recovering it.
type FunctionError struct {
	FunctionName string
	Err          error
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("function %q failed: %s", e.FunctionName, e.Err)
}

func (e *FunctionError) Unwrap() error { return e.Err }

func NewFunctionError(name string, err error) *FunctionError {
	return &FunctionError{FunctionName: name, Err: err}
}
