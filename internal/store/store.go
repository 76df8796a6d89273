// Package store holds the sparse cell map and its dependency graph:
// the component that implements set-expression-with-rollback, the
// dirty-count recomputation pass, and the rectangular iterators the
// rest of the engine reads through.
package store

import (
	"errors"

	"github.com/wiredcell/ssheet/internal/calc"
	"github.com/wiredcell/ssheet/internal/cellerr"
	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/engineerr"
	"github.com/wiredcell/ssheet/internal/expr"
)

// entry is a single populated cell: its formula (nil for a plain
// value) and the value last computed for it.
type entry struct {
	value   calc.Value
	formula expr.Node
}

func defaultValue() calc.Value { return calc.Value{Kind: calc.KindEmpty} }

// Store is the sparse cell map plus its reverse-edge dependency graph.
type Store struct {
	bounds coord.Bounds
	clock  calc.Clock
	cells  map[coord.Absolute]*entry
	graph  *graph
}

// Option configures a new Store.
type Option func(*Store)

// WithBounds overrides the default grid extent.
func WithBounds(b coord.Bounds) Option {
	return func(s *Store) { s.bounds = b }
}

// WithClock overrides the clock used to realize SLEEP() delays.
func WithClock(c calc.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// New constructs an empty Store with DefaultRows/DefaultCols unless
// overridden by options.
func New(opts ...Option) *Store {
	s := &Store{
		bounds: coord.DefaultBounds(),
		clock:  calc.WallClock{},
		cells:  make(map[coord.Absolute]*entry),
		graph:  newGraph(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bounds returns the grid extent this store was constructed with.
func (s *Store) Bounds() coord.Bounds { return s.bounds }

// ValueAt implements calc.Reader.
func (s *Store) ValueAt(a coord.Absolute) calc.Value {
	e, ok := s.cells[a]
	if !ok {
		return defaultValue()
	}
	return e.value
}

// GetValue returns the current value of a cell (Ok(Empty) if absent).
func (s *Store) GetValue(a coord.Absolute) calc.Value {
	return s.ValueAt(a)
}

// GetExpression returns the formula at a cell, if any.
func (s *Store) GetExpression(a coord.Absolute) (expr.Node, bool) {
	e, ok := s.cells[a]
	if !ok || e.formula == nil {
		return nil, false
	}
	return e.formula, true
}

func (s *Store) getOrCreate(a coord.Absolute) *entry {
	e, ok := s.cells[a]
	if !ok {
		e = &entry{value: defaultValue()}
		s.cells[a] = e
	}
	return e
}

// pruneIfDefault removes a cell's entry once it has reverted to the
// default (no formula, empty value), keeping the store's memory
// footprint proportional to populated cells.
func (s *Store) pruneIfDefault(a coord.Absolute) {
	e, ok := s.cells[a]
	if !ok {
		return
	}
	if e.formula == nil && e.value.Kind == calc.KindEmpty {
		delete(s.cells, a)
	}
}

// SetValue stores a literal value at a, clearing any existing formula,
// then recomputes every cell transitively dependent on a.
func (s *Store) SetValue(a coord.Absolute, v calc.Value) error {
	if !s.bounds.Contains(a) {
		return engineerr.New(engineerr.InvalidCell, "cell out of bounds")
	}
	if old, ok := s.cells[a]; ok && old.formula != nil {
		s.graph.removeEdges(expr.Refs(old.formula, a), a)
	}
	e := s.getOrCreate(a)
	e.formula = nil
	e.value = v
	s.pruneIfDefault(a)
	s.recompute(a)
	return nil
}

// SetExpression installs a formula at a. If the resulting edge set
// would close a cycle, every change is rolled back and
// engineerr.CircularDependency is returned; a's value and formula are
// left exactly as they were.
func (s *Store) SetExpression(a coord.Absolute, e expr.Node) error {
	if !s.bounds.Contains(a) {
		return engineerr.New(engineerr.InvalidCell, "cell out of bounds")
	}
	for _, ref := range expr.Refs(e, a) {
		if !s.bounds.Contains(ref) {
			return engineerr.New(engineerr.InvalidCell, "formula references an out-of-bounds cell")
		}
	}

	existing := s.cells[a]
	var oldRefs []coord.Absolute
	if existing != nil && existing.formula != nil {
		oldRefs = expr.Refs(existing.formula, a)
	}

	newRefs := newEdgeSet(expr.Refs(e, a))
	s.graph.removeEdges(oldRefs, a)
	s.graph.addEdges(newRefs.slice(), a)

	if s.graph.hasCycleFrom(a) {
		s.graph.removeEdges(newRefs.slice(), a)
		newRefs.reset()
		s.graph.addEdges(oldRefs, a)
		return engineerr.New(engineerr.CircularDependency, "formula would create a circular dependency")
	}

	cell := s.getOrCreate(a)
	cell.formula = e
	s.recompute(a)
	return nil
}

// CopyExpression copies the formula (or plain value) at from onto to.
// Because references are stored relative to their owning cell, the
// copied formula automatically resolves against to the same way the
// original resolved against from.
func (s *Store) CopyExpression(from, to coord.Absolute) error {
	if !s.bounds.Contains(from) || !s.bounds.Contains(to) {
		return engineerr.New(engineerr.InvalidCell, "cell out of bounds")
	}
	src, ok := s.cells[from]
	if !ok {
		return s.SetValue(to, defaultValue())
	}
	if src.formula == nil {
		return s.SetValue(to, src.value)
	}
	return s.SetExpression(to, cloneNode(src.formula))
}

// cloneNode deep-copies an expression tree unchanged. A CellRef's
// offset is stored relative to its owning cell, so pasting the same
// tree at a new origin already resolves every reference correctly
// shifted: no offset arithmetic is needed here, only a copy so the
// two cells never share mutable node pointers.
func cloneNode(n expr.Node) expr.Node {
	switch t := n.(type) {
	case *expr.Number:
		v := *t
		return &v
	case *expr.CellRef:
		v := *t
		return &v
	case *expr.BinaryOp:
		v := *t
		v.Lhs = cloneNode(t.Lhs)
		v.Rhs = cloneNode(t.Rhs)
		return &v
	case *expr.RangeFn:
		v := *t
		return &v
	case *expr.Delay:
		v := *t
		v.Inner = cloneNode(t.Inner)
		return &v
	default:
		return n
	}
}

// recompute runs the two-pass dirty-count traversal described for the
// store: pass one marks every cell reachable from start with the
// number of direct predecessors (within the affected subgraph) still
// owed a recomputation; pass two pops cells whose count has reached
// zero and recomputes them, guaranteeing each affected cell is
// recomputed exactly once, after all of its own predecessors.
func (s *Store) recompute(start coord.Absolute) {
	dirty := make(map[coord.Absolute]int)
	visited := map[coord.Absolute]struct{}{start: {}}
	markStack := []coord.Absolute{start}
	for len(markStack) > 0 {
		cur := markStack[len(markStack)-1]
		markStack = markStack[:len(markStack)-1]
		for d := range s.graph.dependentsOf(cur) {
			dirty[d]++
			if _, seen := visited[d]; !seen {
				visited[d] = struct{}{}
				markStack = append(markStack, d)
			}
		}
	}

	queue := []coord.Absolute{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		s.recomputeCell(cur)
		for d := range s.graph.dependentsOf(cur) {
			dirty[d]--
			if dirty[d] == 0 {
				queue = append(queue, d)
			}
		}
	}
}

func (s *Store) recomputeCell(a coord.Absolute) {
	e, ok := s.cells[a]
	if !ok || e.formula == nil {
		return
	}
	result, err := calc.Evaluate(s, s.clock, a, e.formula)
	if err != nil {
		var ce cellerr.CellError
		code := cellerr.DependsOnErr
		if errors.As(err, &ce) {
			code = ce.Code
		}
		e.value = calc.Value{Kind: calc.KindError, Err: code}
		return
	}
	e.value = calc.Value{Kind: calc.KindNumber, Num: result}
}
