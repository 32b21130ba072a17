// Package pathfind implements A* over a 4-connected grid with unit step cost
// and a Manhattan heuristic.
//
// All search state lives inside a single Find call. An unreachable goal is a
// normal outcome reported through Result.Found, not an error.
package pathfind

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/grid"
)

// Result is the outcome of one search.
type Result struct {
	// Path runs from start to goal inclusive. Nil when not found.
	Path []grid.Cell
	// Found is false when the goal is unreachable or the expansion cap was hit.
	Found bool
	// Expanded counts cells taken off the frontier.
	Expanded int
	// Exhausted is set when the search stopped on the expansion cap.
	Exhausted bool
}

// Len returns the number of steps in the path, or -1 when no path was found.
func (r Result) Len() int {
	if !r.Found || len(r.Path) == 0 {
		return -1
	}
	return len(r.Path) - 1
}

type options struct {
	frontier      Frontier
	maxExpansions int
}

// Option configures a search.
type Option func(*options)

// WithFrontier selects the open set strategy.
func WithFrontier(f Frontier) Option {
	return func(o *options) { o.frontier = f }
}

// WithMaxExpansions caps the number of expanded cells. Zero or less means no cap.
func WithMaxExpansions(n int) Option {
	return func(o *options) { o.maxExpansions = n }
}

// Heuristic is the Manhattan distance between a and b.
func Heuristic(a, b grid.Cell) int {
	return grid.Manhattan(a, b)
}

// Find searches for a shortest path from start to goal. walkable decides which
// neighbor cells may be entered; the endpoints themselves are not checked. A nil
// walkable treats every cell as open.
func Find(start, goal grid.Cell, walkable func(grid.Cell) bool, opts ...Option) Result {
	o := options{frontier: FrontierHeap}
	for _, opt := range opts {
		opt(&o)
	}
	if walkable == nil {
		walkable = func(grid.Cell) bool { return true }
	}

	open := newOpenSet(o.frontier)
	closed := make(map[grid.Cell]struct{}, 128)
	cameFrom := make(map[grid.Cell]grid.Cell, 128)
	gScore := map[grid.Cell]int{start: 0}

	h0 := Heuristic(start, goal)
	open.push(start, h0, h0)

	expanded := 0
	for open.len() > 0 {
		if o.maxExpansions > 0 && expanded >= o.maxExpansions {
			return Result{Expanded: expanded, Exhausted: true}
		}

		current := open.pop()
		expanded++

		if current == goal {
			return Result{
				Path:     reconstructPath(cameFrom, current),
				Found:    true,
				Expanded: expanded,
			}
		}

		closed[current] = struct{}{}
		currentG := gScore[current]

		for _, n := range current.Neighbors() {
			if _, done := closed[n]; done {
				continue
			}
			if !walkable(n) {
				continue
			}

			tentative := currentG + 1
			prev, inOpen := gScore[n]
			if inOpen && prev <= tentative {
				continue
			}

			h := Heuristic(n, goal)
			cameFrom[n] = current
			gScore[n] = tentative
			if inOpen {
				open.update(n, tentative+h, h)
			} else {
				open.push(n, tentative+h, h)
			}
		}
	}

	return Result{Expanded: expanded}
}

func reconstructPath(cameFrom map[grid.Cell]grid.Cell, current grid.Cell) []grid.Cell {
	path := make([]grid.Cell, 0, 32)
	path = append(path, current)
	for {
		prev, ok := cameFrom[current]
		if !ok {
			break
		}
		path = append(path, prev)
		current = prev
	}
	// reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// CellCenterer converts a cell to its world-space center.
type CellCenterer interface {
	CellCenterWorld(c grid.Cell) cp.Vector
}

// ToWorld converts a cell path to cell-center world points.
func ToWorld(cells []grid.Cell, ix CellCenterer) []cp.Vector {
	if len(cells) == 0 || ix == nil {
		return nil
	}
	out := make([]cp.Vector, 0, len(cells))
	for _, c := range cells {
		out = append(out, ix.CellCenterWorld(c))
	}
	return out
}
