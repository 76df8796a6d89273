// Package engineerr carries the errors the engine's Go API returns
// when a call or edit is rejected (a bad coordinate, unparsable
// formula text, a circular dependency), as opposed to the evaluation
// errors a formula cell's value can hold (see package cellerr).
// Modeled on a gRPC-style status code so callers can branch on Code
// without string-matching the message, skipping codes that don't make
// sense for an embedded, single-user engine (no auth, no quotas).
package engineerr

// Code is a gRPC-style status code scoped to engine misuse.
type Code int

const (
	// OK indicates no error; rarely constructed directly.
	OK Code = 0

	// InvalidCell indicates a coordinate or label outside the grid,
	// or an unparsable label string.
	InvalidCell Code = 3

	// InvalidFormula indicates a formula failed to parse or named an
	// unknown function.
	InvalidFormula Code = 4

	// InvalidRange indicates a rectangle whose top-left does not
	// dominate its bottom-right, or that falls outside the grid.
	InvalidRange Code = 5

	// CircularDependency indicates the proposed edge set would close
	// a cycle; the caller's write was fully rolled back.
	CircularDependency Code = 9

	// FailedPrecondition indicates an operation was rejected because
	// engine state does not support it. No operation in this module
	// returns it: an empty undo or redo stack is reported as a false
	// result with a nil error.
	FailedPrecondition Code = 10

	// Internal indicates an invariant the engine expects to hold was
	// broken.
	Internal Code = 13
)

// Error is the concrete error type returned for engine-level faults.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// New constructs an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}
