package component

import (
	"github.com/google/uuid"
	"github.com/milk9111/gridnav/grid"
)

// PathMarker is a visual waypoint spawned for one calculated path.
type PathMarker struct {
	PathID uuid.UUID
	Cell   grid.Cell
	Order  int
}

var PathMarkerComponent = NewComponent[PathMarker]()
