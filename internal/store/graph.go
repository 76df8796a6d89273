package store

import (
	"golang.org/x/exp/maps"

	"github.com/wiredcell/ssheet/internal/coord"
)

// graph is the reverse-edge dependency graph: graph[R] is the set of
// cells with formulas that reference R. An entry is created lazily on
// the first inbound edge and pruned once its last edge is removed.
type graph struct {
	edges map[coord.Absolute]map[coord.Absolute]struct{}
}

func newGraph() *graph {
	return &graph{edges: make(map[coord.Absolute]map[coord.Absolute]struct{})}
}

func (g *graph) dependentsOf(r coord.Absolute) map[coord.Absolute]struct{} {
	return g.edges[r]
}

func (g *graph) addEdge(ref, dependent coord.Absolute) {
	set, ok := g.edges[ref]
	if !ok {
		set = make(map[coord.Absolute]struct{})
		g.edges[ref] = set
	}
	set[dependent] = struct{}{}
}

func (g *graph) removeEdge(ref, dependent coord.Absolute) {
	set, ok := g.edges[ref]
	if !ok {
		return
	}
	delete(set, dependent)
	if len(set) == 0 {
		delete(g.edges, ref)
	}
}

func (g *graph) addEdges(refs []coord.Absolute, dependent coord.Absolute) {
	for _, ref := range refs {
		g.addEdge(ref, dependent)
	}
}

func (g *graph) removeEdges(refs []coord.Absolute, dependent coord.Absolute) {
	for _, ref := range refs {
		g.removeEdge(ref, dependent)
	}
}

// hasCycleFrom reports whether start is reachable from itself by
// walking forward edges (a cell to its dependents), the direction
// set-expression needs checked before it commits a new edge set.
func (g *graph) hasCycleFrom(start coord.Absolute) bool {
	visited := make(map[coord.Absolute]struct{})
	stack := []coord.Absolute{start}
	first := true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !first {
			if cur == start {
				return true
			}
			if _, seen := visited[cur]; seen {
				continue
			}
		}
		first = false
		visited[cur] = struct{}{}
		for d := range g.edges[cur] {
			stack = append(stack, d)
		}
	}
	return false
}

// edgeSet is a temporary set of references built up while a
// set-expression is in flight, so a cycle can be rolled back by
// replaying exactly the edges that were added. Cleared with
// golang.org/x/exp/maps rather than a fresh map literal.
type edgeSet map[coord.Absolute]struct{}

func newEdgeSet(refs []coord.Absolute) edgeSet {
	s := make(edgeSet, len(refs))
	for _, r := range refs {
		s[r] = struct{}{}
	}
	return s
}

func (s edgeSet) slice() []coord.Absolute {
	return maps.Keys(s)
}

func (s edgeSet) reset() {
	maps.Clear(s)
}
