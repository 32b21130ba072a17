package grid

import (
	"strconv"
	"strings"
)

// Cell identifies a grid square by integer coordinates.
type Cell struct {
	X int
	Y int
}

// Directions lists the four axis-aligned neighbor offsets in expansion order.
var Directions = [4]Cell{{X: -1, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

// Add returns the component-wise sum of c and o.
func (c Cell) Add(o Cell) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y}
}

// Neighbors returns the four axis-aligned neighbors of c in Directions order.
func (c Cell) Neighbors() [4]Cell {
	var out [4]Cell
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

func (c Cell) String() string {
	return "(" + strconv.Itoa(c.X) + "," + strconv.Itoa(c.Y) + ")"
}

// FormatCells renders cells as a space separated list of "(x,y)".
func FormatCells(cells []Cell) string {
	var b strings.Builder
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// Manhattan returns |dx| + |dy| between a and b.
func Manhattan(a, b Cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b Cell) bool {
	return Manhattan(a, b) == 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Rect is a half-open cell rectangle [MinX, MaxX) x [MinY, MaxY).
type Rect struct {
	MinX int
	MinY int
	MaxX int
	MaxY int
}

// RectWH returns a rectangle anchored at (0,0) with the given size.
func RectWH(width, height int) Rect {
	return Rect{MaxX: width, MaxY: height}
}

func (r Rect) Width() int {
	return r.MaxX - r.MinX
}

func (r Rect) Height() int {
	return r.MaxY - r.MinY
}

// Empty reports whether the rectangle contains no cells.
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether c lies inside r.
func (r Rect) Contains(c Cell) bool {
	return c.X >= r.MinX && c.X < r.MaxX && c.Y >= r.MinY && c.Y < r.MaxY
}
