// Package actionlog implements the linear undo/redo history of
// user-visible edits. Each Action captures enough to replay the edit
// it reverses without reaching into expression-tree internals: a
// plain value, or the textual rendering of a formula captured at the
// moment of the edit. Every Action is stamped with a uuid.UUID so a
// host can correlate an entry with its own audit trail.
package actionlog

import (
	"github.com/google/uuid"

	"github.com/wiredcell/ssheet/internal/calc"
	"github.com/wiredcell/ssheet/internal/coord"
)

// InputKind distinguishes a captured plain value from a captured
// formula string.
type InputKind uint8

const (
	InputValue InputKind = iota
	InputFormula
)

// CellInput is either a literal value or formula text, captured
// relative to its owning cell so it replays correctly via the normal
// setValue/setFormula paths.
type CellInput struct {
	Kind    InputKind
	Value   calc.Value
	Formula string
}

// Action records one user edit: the cell touched, and the input that
// produced its state before and after the edit.
type Action struct {
	ID     uuid.UUID
	Cell   coord.Absolute
	Before CellInput
	After  CellInput
}

// Applier re-applies a captured CellInput to a cell, the callback the
// Log uses during undo/redo so it never needs to know about the
// parser or the store directly.
type Applier func(cell coord.Absolute, input CellInput) error

// Log is a linear undo/redo history with a bounded depth.
type Log struct {
	undo  []Action
	redo  []Action
	limit int
}

// Option configures a new Log.
type Option func(*Log)

// WithHistoryLimit bounds the number of actions retained for undo;
// the oldest action is dropped once the limit is exceeded. Zero means
// unbounded.
func WithHistoryLimit(n int) Option {
	return func(l *Log) { l.limit = n }
}

// New constructs an empty Log.
func New(opts ...Option) *Log {
	l := &Log{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Record appends a successful edit and clears the redo stack, the
// standard behavior any new edit after an undo invalidates the
// previously undone redo chain.
func (l *Log) Record(cell coord.Absolute, before, after CellInput) Action {
	a := Action{ID: uuid.New(), Cell: cell, Before: before, After: after}
	l.undo = append(l.undo, a)
	if l.limit > 0 && len(l.undo) > l.limit {
		l.undo = l.undo[len(l.undo)-l.limit:]
	}
	l.redo = nil
	return a
}

// Undo pops the most recent action, re-applies its Before input via
// apply, and pushes it onto the redo stack. Returns false if there is
// nothing to undo.
func (l *Log) Undo(apply Applier) (bool, error) {
	if len(l.undo) == 0 {
		return false, nil
	}
	a := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	if err := apply(a.Cell, a.Before); err != nil {
		l.undo = append(l.undo, a)
		return false, err
	}
	l.redo = append(l.redo, a)
	return true, nil
}

// Redo pops the most recently undone action, re-applies its After
// input via apply, and pushes it back onto the undo stack. Returns
// false if there is nothing to redo.
func (l *Log) Redo(apply Applier) (bool, error) {
	if len(l.redo) == 0 {
		return false, nil
	}
	a := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	if err := apply(a.Cell, a.After); err != nil {
		l.redo = append(l.redo, a)
		return false, err
	}
	l.undo = append(l.undo, a)
	return true, nil
}

// CanUndo reports whether Undo would find an action to replay.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether Redo would find an action to replay.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }
