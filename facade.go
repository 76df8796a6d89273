// Package ssheet is the controller facade: the single integration
// surface a host program drives. It parses formula text, delegates
// mutation to the dependency-tracking store, records every successful
// edit to the undo log, and serializes mutating calls so a host that
// fans calls in from multiple goroutines gets the single-writer
// semantics the engine assumes rather than undefined behavior.
package ssheet

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"golang.org/x/sync/semaphore"

	"github.com/wiredcell/ssheet/internal/actionlog"
	"github.com/wiredcell/ssheet/internal/calc"
	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/engineerr"
	"github.com/wiredcell/ssheet/internal/parse"
	"github.com/wiredcell/ssheet/internal/render"
	"github.com/wiredcell/ssheet/internal/snapshot"
	"github.com/wiredcell/ssheet/internal/store"
)

// Cell is the public coordinate type; callers may construct it
// directly or obtain one from ParseLabel.
type Cell = coord.Absolute

// Value is the public cell-value type: Empty, a number, or text.
type Value = calc.Value

// EmptyValue, NumberValue, and TextValue construct the three Value
// variants a caller may pass to SetValue.
func EmptyValue() Value           { return Value{Kind: calc.KindEmpty} }
func NumberValue(f float64) Value { return Value{Kind: calc.KindNumber, Num: f} }
func TextValue(s string) Value    { return Value{Kind: calc.KindText, Text: s} }

// Snapshot is an opaque, serializable capture of the sheet, returned
// by Snapshot and consumed by Restore.
type Snapshot = snapshot.Snapshot

// Sheet is the facade a host program embeds.
type Sheet struct {
	store        *store.Store
	log          *actionlog.Log
	sem          *semaphore.Weighted
	historyLimit int
}

// Option configures a new Sheet.
type Option func(*sheetConfig)

type sheetConfig struct {
	bounds       coord.Bounds
	historyLimit int
	clock        calc.Clock
}

// WithRows overrides the default row count.
func WithRows(n int) Option { return func(c *sheetConfig) { c.bounds.Rows = n } }

// WithCols overrides the default column count.
func WithCols(n int) Option { return func(c *sheetConfig) { c.bounds.Cols = n } }

// WithHistoryLimit bounds the undo log's depth.
func WithHistoryLimit(n int) Option { return func(c *sheetConfig) { c.historyLimit = n } }

// WithClock overrides the clock used to realize SLEEP() delays,
// primarily for tests that want deterministic timing.
func WithClock(c calc.Clock) Option {
	return func(cfg *sheetConfig) { cfg.clock = c }
}

// New constructs an empty Sheet with DefaultRows/DefaultCols unless
// overridden.
func New(opts ...Option) *Sheet {
	cfg := sheetConfig{bounds: coord.DefaultBounds(), clock: calc.WallClock{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Sheet{
		store:        store.New(store.WithBounds(cfg.bounds), store.WithClock(cfg.clock)),
		log:          actionlog.New(actionlog.WithHistoryLimit(cfg.historyLimit)),
		sem:          semaphore.NewWeighted(1),
		historyLimit: cfg.historyLimit,
	}
}

// lock serializes one mutating call for the lifetime of the engine;
// it never blocks longer than it takes the previous call to return,
// so a background context is sufficient.
func (s *Sheet) lock() func() {
	_ = s.sem.Acquire(context.Background(), 1)
	return func() { s.sem.Release(1) }
}

// ParseLabel decodes an A1-style label such as "B12" into a Cell.
func ParseLabel(label string) (Cell, bool) { return coord.ParseLabel(label) }

// Label renders a Cell back to its A1-style label.
func Label(c Cell) string { return coord.Label(c) }

func (s *Sheet) captureInput(c Cell) actionlog.CellInput {
	if f, ok := s.store.GetExpression(c); ok {
		return actionlog.CellInput{Kind: actionlog.InputFormula, Formula: f.ToString(c)}
	}
	return actionlog.CellInput{Kind: actionlog.InputValue, Value: s.store.GetValue(c)}
}

func (s *Sheet) applyInput(c Cell, in actionlog.CellInput) error {
	if in.Kind == actionlog.InputFormula {
		node, err := parse.Parse(in.Formula, c, s.store.Bounds())
		if err != nil {
			return parseErrToEngineErr(err)
		}
		return s.store.SetExpression(c, node)
	}
	return s.store.SetValue(c, in.Value)
}

// parseErrToEngineErr classifies a parse.ParseError into the wire
// error taxonomy: a bad range is InvalidRange, a bad single cell
// reference is InvalidCell, everything else is InvalidFormula.
func parseErrToEngineErr(err error) error {
	var pe *parse.ParseError
	if errors.As(err, &pe) {
		switch pe.Kind {
		case parse.KindRange:
			return engineerr.New(engineerr.InvalidRange, pe.Message)
		case parse.KindCell:
			return engineerr.New(engineerr.InvalidCell, pe.Message)
		}
	}
	return engineerr.New(engineerr.InvalidFormula, err.Error())
}

// SetValue writes a literal value into cell, clearing any formula it
// held, and records the edit for undo.
func (s *Sheet) SetValue(cell Cell, v Value) error {
	defer s.lock()()
	before := s.captureInput(cell)
	if err := s.store.SetValue(cell, v); err != nil {
		return err
	}
	s.log.Record(cell, before, actionlog.CellInput{Kind: actionlog.InputValue, Value: v})
	return nil
}

// SetFormulaText parses text and installs it as cell's formula. On a
// parse failure or a circular dependency, cell is left exactly as it
// was and no action is recorded.
func (s *Sheet) SetFormulaText(cell Cell, text string) error {
	defer s.lock()()
	node, err := parse.Parse(text, cell, s.store.Bounds())
	if err != nil {
		return parseErrToEngineErr(err)
	}
	before := s.captureInput(cell)
	if err := s.store.SetExpression(cell, node); err != nil {
		return err
	}
	s.log.Record(cell, before, actionlog.CellInput{Kind: actionlog.InputFormula, Formula: node.ToString(cell)})
	return nil
}

// GetValue returns the current value of cell.
func (s *Sheet) GetValue(cell Cell) Value { return s.store.GetValue(cell) }

// GetFormulaText returns the formula text at cell, if any.
func (s *Sheet) GetFormulaText(cell Cell) (string, bool) {
	node, ok := s.store.GetExpression(cell)
	if !ok {
		return "", false
	}
	return node.ToString(cell), true
}

// Display renders cell's value the way a grid or CSV cell would show
// it.
func (s *Sheet) Display(cell Cell) string { return render.Value(s.store.GetValue(cell)) }

// CellSnapshot is one cell's read-only state, returned by rectangle
// iteration.
type CellSnapshot = store.Snapshot

// Rectangle returns a full iterator over [topLeft, bottomRight]: every
// address in the rectangle, in row-major order, substituting a
// default empty cell for holes.
func (s *Sheet) Rectangle(topLeft, bottomRight Cell) iter.Seq[CellSnapshot] {
	return s.store.Full(topLeft, bottomRight)
}

// Populated returns a sparse iterator over [topLeft, bottomRight]:
// only cells with non-default state, in row-major order.
func (s *Sheet) Populated(topLeft, bottomRight Cell) iter.Seq[CellSnapshot] {
	return s.store.Sparse(topLeft, bottomRight)
}

// CopyFormula copies from's formula (or plain value) onto to,
// rebasing relative references and recording the edit for undo.
func (s *Sheet) CopyFormula(from, to Cell) error {
	defer s.lock()()
	before := s.captureInput(to)
	if err := s.store.CopyExpression(from, to); err != nil {
		return err
	}
	s.log.Record(to, before, s.captureInput(to))
	return nil
}

// Undo reverts the most recent edit. Returns false if there is
// nothing to undo.
func (s *Sheet) Undo() (bool, error) {
	defer s.lock()()
	return s.log.Undo(s.applyInput)
}

// Redo re-applies the most recently undone edit. Returns false if
// there is nothing to redo.
func (s *Sheet) Redo() (bool, error) {
	defer s.lock()()
	return s.log.Redo(s.applyInput)
}

// Search scans populated cells in row-major order starting strictly
// after startAfter, returning the first whose displayed value
// contains needle.
func (s *Sheet) Search(startAfter Cell, needle string) (Cell, bool) {
	return s.store.Search(startAfter, needle)
}

// SearchFromStart begins a search before the first addressable cell.
func (s *Sheet) SearchFromStart(needle string) (Cell, bool) {
	return s.store.SearchFromStart(needle)
}

// TakeSnapshot captures the sheet's current serializable state.
func (s *Sheet) TakeSnapshot() Snapshot {
	defer s.lock()()
	return snapshot.Capture(s.store)
}

// Restore replaces the sheet's contents with a previously captured
// Snapshot. The undo/redo history is cleared: a restore is not itself
// an undoable edit.
func (s *Sheet) Restore(snap Snapshot) error {
	defer s.lock()()
	if err := snapshot.Restore(s.store, snap); err != nil {
		return err
	}
	s.log = actionlog.New(actionlog.WithHistoryLimit(s.historyLimit))
	return nil
}

// String renders cell's label and current display value, useful for
// quick diagnostics (e.g. in the ssheetctl REPL).
func (s *Sheet) String(cell Cell) string {
	return fmt.Sprintf("%s=%s", coord.Label(cell), s.Display(cell))
}
