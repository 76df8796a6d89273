// Package cellerr defines the formula-domain error kinds a cell value
// can carry. These are distinct from engine-level misuse errors (see
// package engineerr): a CellError is a legitimate evaluation outcome,
// not a programmer mistake.
package cellerr

// Code enumerates the error kinds a cell's computed value can take.
type Code uint8

const (
	// DivideByZero is produced by a division whose denominator
	// evaluates to exactly 0.0.
	DivideByZero Code = iota + 1

	// DependsOnNonNumeric is produced when arithmetic or a range
	// aggregate is applied to a text-valued cell.
	DependsOnNonNumeric

	// DependsOnErr is produced when a range aggregate encounters a
	// cell whose value is itself an error.
	DependsOnErr
)

var display = map[Code]string{
	DivideByZero:        "#DIV/0!",
	DependsOnNonNumeric: "#VALUE!",
	DependsOnErr:        "#ERR!",
}

// Error implements the error interface so a Code can be returned and
// compared directly with errors.Is.
func (c Code) Error() string {
	if s, ok := display[c]; ok {
		return s
	}
	return "#ERROR!"
}

// CellError wraps a Code as an error value; it carries no cell
// address. Unwrap exposes the Code, so errors.Is and errors.As still
// match against the bare Code.
type CellError struct {
	Code Code
}

func (e CellError) Error() string { return e.Code.Error() }

func (e CellError) Unwrap() error { return e.Code }

// New constructs a CellError for the given code.
func New(code Code) CellError { return CellError{Code: code} }
