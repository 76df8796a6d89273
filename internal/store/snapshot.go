package store

import (
	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/snapshot"
)

// AllCells returns every populated cell, satisfying snapshot.Source.
func (s *Store) AllCells() []snapshot.CellRecord {
	out := make([]snapshot.CellRecord, 0, len(s.cells))
	for a, e := range s.cells {
		out = append(out, snapshot.CellRecord{Addr: a, Value: e.value, Formula: e.formula})
	}
	return out
}

// Reset discards all cells and edges and adopts new grid bounds,
// satisfying snapshot.Sink.
func (s *Store) Reset(b coord.Bounds) {
	s.bounds = b
	s.cells = make(map[coord.Absolute]*entry)
	s.graph = newGraph()
}
