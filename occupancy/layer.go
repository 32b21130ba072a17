package occupancy

import "github.com/milk9111/gridnav/grid"

// Layer is a single obstruction source.
type Layer interface {
	Blocks(c grid.Cell) bool
}

// Func adapts a predicate to a Layer.
type Func func(c grid.Cell) bool

func (f Func) Blocks(c grid.Cell) bool {
	if f == nil {
		return false
	}
	return f(c)
}

// TileLayer stores a row-major tile array. Any non-zero tile blocks.
type TileLayer struct {
	Name   string
	Width  int
	Height int
	// Offset is the cell of tiles[0].
	Offset grid.Cell
	Tiles  []int
}

// NewTileLayer allocates an empty width x height layer.
func NewTileLayer(name string, width, height int) *TileLayer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &TileLayer{
		Name:   name,
		Width:  width,
		Height: height,
		Tiles:  make([]int, width*height),
	}
}

func (l *TileLayer) index(c grid.Cell) (int, bool) {
	if l == nil {
		return 0, false
	}
	x := c.X - l.Offset.X
	y := c.Y - l.Offset.Y
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0, false
	}
	idx := y*l.Width + x
	if idx >= len(l.Tiles) {
		return 0, false
	}
	return idx, true
}

// Tile returns the tile value at c, or 0 outside the layer.
func (l *TileLayer) Tile(c grid.Cell) int {
	idx, ok := l.index(c)
	if !ok {
		return 0
	}
	return l.Tiles[idx]
}

// SetTile writes v at c. Writes outside the layer are ignored.
func (l *TileLayer) SetTile(c grid.Cell, v int) {
	idx, ok := l.index(c)
	if !ok {
		return
	}
	l.Tiles[idx] = v
}

// HasTile reports whether a non-zero tile exists at c.
func (l *TileLayer) HasTile(c grid.Cell) bool {
	return l.Tile(c) != 0
}

func (l *TileLayer) Blocks(c grid.Cell) bool {
	return l.HasTile(c)
}

// Count returns the number of non-zero tiles.
func (l *TileLayer) Count() int {
	if l == nil {
		return 0
	}
	n := 0
	for _, v := range l.Tiles {
		if v != 0 {
			n++
		}
	}
	return n
}

// CellSet is an explicit set of blocked cells.
type CellSet map[grid.Cell]struct{}

// NewCellSet returns a set blocking the given cells.
func NewCellSet(cells ...grid.Cell) CellSet {
	s := make(CellSet, len(cells))
	for _, c := range cells {
		s[c] = struct{}{}
	}
	return s
}

func (s CellSet) Block(c grid.Cell) {
	s[c] = struct{}{}
}

func (s CellSet) Unblock(c grid.Cell) {
	delete(s, c)
}

func (s CellSet) Blocks(c grid.Cell) bool {
	_, ok := s[c]
	return ok
}
