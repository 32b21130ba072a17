package pathfind

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/occupancy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseGrid builds a bounded map from rows. '#' blocks, 'S' and 'G' mark endpoints.
func parseGrid(t *testing.T, rows ...string) (*occupancy.Map, grid.Cell, grid.Cell) {
	t.Helper()
	require.NotEmpty(t, rows)
	w, h := len(rows[0]), len(rows)
	walls := occupancy.NewCellSet()
	var start, goal grid.Cell
	for y, row := range rows {
		require.Len(t, row, w, "row %d", y)
		for x, ch := range row {
			c := grid.Cell{X: x, Y: y}
			switch ch {
			case '#':
				walls.Block(c)
			case 'S':
				start = c
			case 'G':
				goal = c
			}
		}
	}
	m := occupancy.NewMap(grid.RectWH(w, h))
	m.SetLayer("walls", walls)
	return m, start, goal
}

func openMap(w, h int) *occupancy.Map {
	return occupancy.NewMap(grid.RectWH(w, h))
}

func requireValidPath(t *testing.T, r Result, start, goal grid.Cell, m *occupancy.Map) {
	t.Helper()
	require.True(t, r.Found)
	require.NotEmpty(t, r.Path)
	assert.Equal(t, start, r.Path[0], "path must begin at start")
	assert.Equal(t, goal, r.Path[len(r.Path)-1], "path must end at goal")
	for i := 1; i < len(r.Path); i++ {
		assert.True(t, grid.Adjacent(r.Path[i-1], r.Path[i]), "step %d: %v -> %v", i, r.Path[i-1], r.Path[i])
		assert.True(t, m.Walkable(r.Path[i]), "cell %v is blocked", r.Path[i])
	}
}

var frontiers = []Frontier{FrontierHeap, FrontierLinear}

func TestFindOpenGrid(t *testing.T) {
	for _, f := range frontiers {
		t.Run(f.String(), func(t *testing.T) {
			m := openMap(5, 5)
			start, goal := grid.Cell{X: 0, Y: 0}, grid.Cell{X: 4, Y: 4}

			r := Find(start, goal, m.Walkable, WithFrontier(f))
			requireValidPath(t, r, start, goal, m)
			assert.Len(t, r.Path, 9)
			assert.Equal(t, 8, r.Len())
		})
	}
}

func TestFindWallSeparatesEndpoints(t *testing.T) {
	for _, f := range frontiers {
		t.Run(f.String(), func(t *testing.T) {
			m, start, goal := parseGrid(t,
				".#.",
				"S#G",
				".#.",
			)
			r := Find(start, goal, m.Walkable, WithFrontier(f))
			assert.False(t, r.Found)
			assert.False(t, r.Exhausted)
			assert.Nil(t, r.Path)
			assert.Equal(t, -1, r.Len())
			assert.Equal(t, 3, r.Expanded)
		})
	}
}

func TestFindStartEqualsGoal(t *testing.T) {
	for _, f := range frontiers {
		t.Run(f.String(), func(t *testing.T) {
			c := grid.Cell{X: 2, Y: 3}
			r := Find(c, c, openMap(5, 5).Walkable, WithFrontier(f))
			require.True(t, r.Found)
			assert.Equal(t, []grid.Cell{c}, r.Path)
			assert.Equal(t, 0, r.Len())
			assert.Equal(t, 1, r.Expanded)
		})
	}
}

func TestFindEnclosedGoal(t *testing.T) {
	for _, f := range frontiers {
		t.Run(f.String(), func(t *testing.T) {
			m, start, goal := parseGrid(t,
				"S......",
				".......",
				"..###..",
				"..#G#..",
				"..###..",
				".......",
				".......",
			)
			r := Find(start, goal, m.Walkable, WithFrontier(f))
			assert.False(t, r.Found)
			assert.Nil(t, r.Path)
		})
	}
}

func TestFindDetour(t *testing.T) {
	for _, f := range frontiers {
		t.Run(f.String(), func(t *testing.T) {
			m, start, goal := parseGrid(t,
				"S.#....",
				"..#.##.",
				"..#..#.",
				"....#G.",
			)
			r := Find(start, goal, m.Walkable, WithFrontier(f))
			requireValidPath(t, r, start, goal, m)
			assert.Equal(t, 16, r.Len())
		})
	}
}

func TestFindPinnedTieBreak(t *testing.T) {
	want := []grid.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1}, {X: 2, Y: 2}}
	tests := []struct {
		frontier Frontier
		expanded int
	}{
		{FrontierHeap, 5},
		{FrontierLinear, 9},
	}
	for _, tc := range tests {
		t.Run(tc.frontier.String(), func(t *testing.T) {
			m := openMap(3, 3)
			r := Find(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 2, Y: 2}, m.Walkable, WithFrontier(tc.frontier))
			require.True(t, r.Found)
			if diff := cmp.Diff(want, r.Path); diff != "" {
				t.Fatalf("path mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tc.expanded, r.Expanded)
		})
	}
}

func TestFindIsReproducible(t *testing.T) {
	m, start, goal := parseGrid(t,
		"S.......",
		".##.###.",
		"........",
		".###.##.",
		".......G",
	)
	for _, f := range frontiers {
		t.Run(f.String(), func(t *testing.T) {
			first := Find(start, goal, m.Walkable, WithFrontier(f))
			require.True(t, first.Found)
			for i := 0; i < 5; i++ {
				again := Find(start, goal, m.Walkable, WithFrontier(f))
				if diff := cmp.Diff(first.Path, again.Path); diff != "" {
					t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
				}
			}
		})
	}
}

func TestFindDoesNotLeakClosedCells(t *testing.T) {
	m, start, goal := parseGrid(t,
		"S#G",
		".#.",
		".#.",
	)
	r := Find(start, goal, m.Walkable)
	require.False(t, r.Found)

	m.SetLayer("walls", occupancy.NewCellSet(grid.Cell{X: 1, Y: 0}, grid.Cell{X: 1, Y: 1}))
	r = Find(start, goal, m.Walkable)
	requireValidPath(t, r, start, goal, m)
	assert.Equal(t, 6, r.Len())
}

func TestFindBlockedEndpoints(t *testing.T) {
	t.Run("blocked_goal", func(t *testing.T) {
		m, start, goal := parseGrid(t, "S..G")
		m.SetLayer("crate", occupancy.NewCellSet(goal))
		r := Find(start, goal, m.Walkable)
		assert.False(t, r.Found)
	})
	t.Run("blocked_start", func(t *testing.T) {
		m, start, goal := parseGrid(t, "S..G")
		m.SetLayer("crate", occupancy.NewCellSet(start))
		r := Find(start, goal, m.Walkable)
		require.True(t, r.Found)
		assert.Equal(t, 3, r.Len())
	})
}

func TestFindMaxExpansions(t *testing.T) {
	m := openMap(10, 10)
	r := Find(grid.Cell{}, grid.Cell{X: 9, Y: 9}, m.Walkable, WithMaxExpansions(5))
	assert.False(t, r.Found)
	assert.True(t, r.Exhausted)
	assert.Equal(t, 5, r.Expanded)
	assert.Equal(t, -1, r.Len())

	r = Find(grid.Cell{}, grid.Cell{X: 9, Y: 9}, m.Walkable, WithMaxExpansions(0))
	assert.True(t, r.Found)
}

func TestFindNilWalkable(t *testing.T) {
	r := Find(grid.Cell{X: -3, Y: 2}, grid.Cell{X: 4, Y: -1}, nil)
	require.True(t, r.Found)
	assert.Equal(t, 10, r.Len())
}

// bfsDistance is an independent reference for shortest path lengths.
func bfsDistance(m *occupancy.Map, start, goal grid.Cell) int {
	dist := map[grid.Cell]int{start: 0}
	queue := []grid.Cell{start}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == goal {
			return dist[c]
		}
		for _, n := range c.Neighbors() {
			if _, seen := dist[n]; seen || !m.Walkable(n) {
				continue
			}
			dist[n] = dist[c] + 1
			queue = append(queue, n)
		}
	}
	return -1
}

func TestFindMatchesBreadthFirstOnRandomGrids(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 200; i++ {
		w, h := 4+rng.IntN(12), 4+rng.IntN(12)
		m := openMap(w, h)
		walls := occupancy.NewCellSet()
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				if rng.Float64() < 0.3 {
					walls.Block(grid.Cell{X: x, Y: y})
				}
			}
		}
		start := grid.Cell{X: rng.IntN(w), Y: rng.IntN(h)}
		goal := grid.Cell{X: rng.IntN(w), Y: rng.IntN(h)}
		walls.Unblock(start)
		walls.Unblock(goal)
		m.SetLayer("walls", walls)

		want := bfsDistance(m, start, goal)
		for _, f := range frontiers {
			r := Find(start, goal, m.Walkable, WithFrontier(f))
			if want < 0 {
				assert.False(t, r.Found, "case %d %s: expected no path", i, f)
				continue
			}
			requireValidPath(t, r, start, goal, m)
			assert.Equal(t, want, r.Len(), "case %d %s: %v -> %v", i, f, start, goal)
		}
	}
}

func TestFindOpenGridLengthIsManhattan(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	m := openMap(20, 20)
	for i := 0; i < 50; i++ {
		start := grid.Cell{X: rng.IntN(20), Y: rng.IntN(20)}
		goal := grid.Cell{X: rng.IntN(20), Y: rng.IntN(20)}
		r := Find(start, goal, m.Walkable)
		require.True(t, r.Found)
		assert.Equal(t, grid.Manhattan(start, goal), r.Len())
	}
}

func TestToWorld(t *testing.T) {
	ix := grid.NewIndex(32, cp.Vector{})
	got := ToWorld([]grid.Cell{{X: 0, Y: 0}, {X: 1, Y: 0}}, ix)
	assert.Equal(t, []cp.Vector{{X: 16, Y: 16}, {X: 48, Y: 16}}, got)
	assert.Nil(t, ToWorld(nil, ix))
}

func TestFrontierText(t *testing.T) {
	var f Frontier
	require.NoError(t, f.UnmarshalText([]byte("Linear")))
	assert.Equal(t, FrontierLinear, f)
	require.NoError(t, f.UnmarshalText([]byte("")))
	assert.Equal(t, FrontierHeap, f)
	err := f.UnmarshalText([]byte("dijkstra"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "dijkstra"))
	b, err := FrontierLinear.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "linear", string(b))
}
