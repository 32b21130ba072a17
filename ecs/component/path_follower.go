package component

import (
	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
)

// PathFollower walks the agent along the latest calculated path.
type PathFollower struct {
	Speed     float64 // world units per second
	Tolerance float64 // waypoint arrival radius
	PathID    uuid.UUID
	Points    []cp.Vector
	Index     int
	Arrived   bool
	// Blocked is set when the next waypoint turned solid; the replan system
	// clears it after requesting a new path.
	Blocked bool
}

// Active reports whether there is a waypoint left to reach.
func (f *PathFollower) Active() bool {
	return f != nil && f.Index < len(f.Points)
}

var PathFollowerComponent = NewComponent[PathFollower]()
