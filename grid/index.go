package grid

import (
	"math"

	"github.com/jakecoffman/cp"
)

const DefaultCellSize = 32.0

// Index maps continuous world positions to cells and back.
type Index struct {
	CellSize float64
	Origin   cp.Vector
}

// NewIndex returns an index with the given cell size and origin.
func NewIndex(cellSize float64, origin cp.Vector) Index {
	return Index{CellSize: cellSize, Origin: origin}
}

func (ix Index) size() float64 {
	if ix.CellSize <= 0 {
		return 1
	}
	return ix.CellSize
}

// WorldToCell returns the cell containing p.
func (ix Index) WorldToCell(p cp.Vector) Cell {
	s := ix.size()
	return Cell{
		X: int(math.Floor((p.X - ix.Origin.X) / s)),
		Y: int(math.Floor((p.Y - ix.Origin.Y) / s)),
	}
}

// CellCenterWorld returns the world position of the center of c.
func (ix Index) CellCenterWorld(c Cell) cp.Vector {
	s := ix.size()
	half := s * 0.5
	return cp.Vector{
		X: ix.Origin.X + float64(c.X)*s + half,
		Y: ix.Origin.Y + float64(c.Y)*s + half,
	}
}

// CellMinWorld returns the world position of the top-left corner of c.
func (ix Index) CellMinWorld(c Cell) cp.Vector {
	s := ix.size()
	return cp.Vector{
		X: ix.Origin.X + float64(c.X)*s,
		Y: ix.Origin.Y + float64(c.Y)*s,
	}
}
