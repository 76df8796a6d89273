// Package snapshot captures and restores the serializable surface of
// a store: its grid bounds and, for every populated cell, its formula
// (if any) and current value. Edge sets are never serialized; they
// are re-derived from formulas on restore, avoiding redundant state.
package snapshot

import (
	"github.com/google/uuid"

	"github.com/wiredcell/ssheet/internal/calc"
	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/expr"
)

// CellRecord is one populated cell captured into a Snapshot.
type CellRecord struct {
	Addr    coord.Absolute
	Value   calc.Value
	Formula expr.Node
}

// Snapshot is a point-in-time capture of a store, stamped with a
// uuid.UUID minted at capture time so a host can key a cache entry or
// a file by that ID instead of a path or timestamp. The ID plays no
// part in reconstructing the store.
type Snapshot struct {
	ID     uuid.UUID
	Bounds coord.Bounds
	Cells  []CellRecord
}

// Source is the minimal read surface a store exposes for capture.
type Source interface {
	Bounds() coord.Bounds
	AllCells() []CellRecord
}

// Capture builds a new Snapshot from src.
func Capture(src Source) Snapshot {
	return Snapshot{ID: uuid.New(), Bounds: src.Bounds(), Cells: src.AllCells()}
}

// Sink is the minimal write surface a store exposes for restore.
type Sink interface {
	Reset(bounds coord.Bounds)
	SetValue(coord.Absolute, calc.Value) error
	SetExpression(coord.Absolute, expr.Node) error
}

// Restore replays a Snapshot onto dst. Formula cells are replayed via
// SetExpression so the dependency graph is rebuilt from scratch
// rather than deserialized directly.
func Restore(dst Sink, snap Snapshot) error {
	dst.Reset(snap.Bounds)
	for _, rec := range snap.Cells {
		if rec.Formula != nil {
			if err := dst.SetExpression(rec.Addr, rec.Formula); err != nil {
				return err
			}
			continue
		}
		if err := dst.SetValue(rec.Addr, rec.Value); err != nil {
			return err
		}
	}
	return nil
}
