package store

import (
	"iter"
	"sort"
	"strconv"
	"strings"

	"github.com/wiredcell/ssheet/internal/calc"
	"github.com/wiredcell/ssheet/internal/coord"
	"github.com/wiredcell/ssheet/internal/expr"
)

// Snapshot is a read-only view of one cell, returned by the
// rectangular iterators.
type Snapshot struct {
	Addr    coord.Absolute
	Value   calc.Value
	Formula expr.Node
}

func wellFormed(tl, br coord.Absolute) bool {
	return tl.Row <= br.Row && tl.Col <= br.Col
}

// Sparse iterates only the populated cells within [tl, br], in
// row-major order, skipping holes instead of synthesizing empty cells.
func (s *Store) Sparse(tl, br coord.Absolute) iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		if !wellFormed(tl, br) {
			return
		}
		addrs := make([]coord.Absolute, 0, len(s.cells))
		for a := range s.cells {
			if a.Row >= tl.Row && a.Row <= br.Row && a.Col >= tl.Col && a.Col <= br.Col {
				addrs = append(addrs, a)
			}
		}
		sort.Slice(addrs, func(i, j int) bool {
			if addrs[i].Row != addrs[j].Row {
				return addrs[i].Row < addrs[j].Row
			}
			return addrs[i].Col < addrs[j].Col
		})
		for _, a := range addrs {
			e := s.cells[a]
			if !yield(Snapshot{Addr: a, Value: e.value, Formula: e.formula}) {
				return
			}
		}
	}
}

// Full iterates every cell in [tl, br] in row-major order, substituting
// the default empty cell where nothing is stored, so callers can rely
// on exact rectangle cardinality.
func (s *Store) Full(tl, br coord.Absolute) iter.Seq[Snapshot] {
	return func(yield func(Snapshot) bool) {
		if !wellFormed(tl, br) {
			return
		}
		for row := tl.Row; row <= br.Row; row++ {
			for col := tl.Col; col <= br.Col; col++ {
				a := coord.Absolute{Row: row, Col: col}
				e, ok := s.cells[a]
				if !ok {
					if !yield(Snapshot{Addr: a, Value: defaultValue()}) {
						return
					}
					continue
				}
				if !yield(Snapshot{Addr: a, Value: e.value, Formula: e.formula}) {
					return
				}
			}
		}
	}
}

// render produces the display text used when searching: numbers
// shortest round-trip, text verbatim. Empty and error cells have no
// rendering here; the caller skips them rather than matching against
// a sentinel.
func render(v calc.Value) (string, bool) {
	switch v.Kind {
	case calc.KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64), true
	case calc.KindText:
		return v.Text, true
	default:
		return "", false
	}
}

// Search scans populated cells in row-major order starting strictly
// after startAfter, returning the first whose rendered value contains
// needle. Empty and error-valued cells are skipped.
func (s *Store) Search(startAfter coord.Absolute, needle string) (coord.Absolute, bool) {
	addrs := make([]coord.Absolute, 0, len(s.cells))
	for a := range s.cells {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool {
		if addrs[i].Row != addrs[j].Row {
			return addrs[i].Row < addrs[j].Row
		}
		return addrs[i].Col < addrs[j].Col
	})
	for _, a := range addrs {
		if !after(a, startAfter) {
			continue
		}
		text, ok := render(s.cells[a].value)
		if !ok {
			continue
		}
		if strings.Contains(text, needle) {
			return a, true
		}
	}
	return coord.Absolute{}, false
}

// SearchFromStart begins the search before the first addressable
// cell, equivalent to Search((0, -1), needle).
func (s *Store) SearchFromStart(needle string) (coord.Absolute, bool) {
	return s.Search(coord.Absolute{Row: 0, Col: -1}, needle)
}

func after(a, pivot coord.Absolute) bool {
	if a.Row != pivot.Row {
		return a.Row > pivot.Row
	}
	return a.Col > pivot.Col
}
