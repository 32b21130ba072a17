package grid

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManhattan(t *testing.T) {
	tests := []struct {
		name string
		a, b Cell
		want int
	}{
		{"same", Cell{1, 1}, Cell{1, 1}, 0},
		{"axis", Cell{0, 0}, Cell{3, 0}, 3},
		{"diagonal", Cell{0, 0}, Cell{4, 4}, 8},
		{"negative", Cell{-2, 3}, Cell{1, -1}, 7},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Manhattan(tc.a, tc.b))
			assert.Equal(t, tc.want, Manhattan(tc.b, tc.a))
		})
	}
}

func TestNeighborsOrder(t *testing.T) {
	got := Cell{5, 5}.Neighbors()
	want := [4]Cell{{4, 5}, {6, 5}, {5, 6}, {5, 4}}
	require.Equal(t, want, got)
	for _, n := range got {
		assert.True(t, Adjacent(Cell{5, 5}, n), "neighbor %v", n)
	}
}

func TestRectContains(t *testing.T) {
	r := RectWH(3, 2)
	assert.True(t, r.Contains(Cell{0, 0}))
	assert.True(t, r.Contains(Cell{2, 1}))
	assert.False(t, r.Contains(Cell{3, 1}))
	assert.False(t, r.Contains(Cell{0, 2}))
	assert.False(t, r.Contains(Cell{-1, 0}))
	assert.False(t, r.Empty())
	assert.True(t, Rect{}.Empty())
}

func TestIndexRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		index Index
		world cp.Vector
		cell  Cell
	}{
		{"origin", NewIndex(32, cp.Vector{}), cp.Vector{X: 0, Y: 0}, Cell{0, 0}},
		{"inside", NewIndex(32, cp.Vector{}), cp.Vector{X: 33, Y: 95}, Cell{1, 2}},
		{"negative", NewIndex(32, cp.Vector{}), cp.Vector{X: -1, Y: -33}, Cell{-1, -2}},
		{"offset_origin", NewIndex(10, cp.Vector{X: 5, Y: 5}), cp.Vector{X: 14.9, Y: 15}, Cell{0, 1}},
		{"zero_size_is_unit", Index{}, cp.Vector{X: 2.5, Y: -0.5}, Cell{2, -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.index.WorldToCell(tc.world)
			require.Equal(t, tc.cell, c)
			center := tc.index.CellCenterWorld(c)
			assert.Equal(t, c, tc.index.WorldToCell(center), "center must map back to its cell")
		})
	}
}

func TestCellCenterWorld(t *testing.T) {
	ix := NewIndex(32, cp.Vector{X: 100, Y: 0})
	assert.Equal(t, cp.Vector{X: 116, Y: 48}, ix.CellCenterWorld(Cell{0, 1}))
	assert.Equal(t, cp.Vector{X: 100, Y: 32}, ix.CellMinWorld(Cell{0, 1}))
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "(3,-4)", Cell{3, -4}.String())
}

func TestFormatCells(t *testing.T) {
	assert.Equal(t, "", FormatCells(nil))
	assert.Equal(t, "(0,0) (1,0) (1,-1)", FormatCells([]Cell{{}, {X: 1}, {X: 1, Y: -1}}))
}
