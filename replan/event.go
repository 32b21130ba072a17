package replan

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/grid"
)

// EventKind identifies what a trigger is reporting.
type EventKind int

const (
	// EventInvalidated retires the previously published path before a new search.
	EventInvalidated EventKind = iota + 1
	// EventCalculated carries a new path.
	EventCalculated
	// EventNotFound reports a search that produced no path.
	EventNotFound
)

func (k EventKind) String() string {
	switch k {
	case EventInvalidated:
		return "invalidated"
	case EventCalculated:
		return "calculated"
	case EventNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is delivered to subscribers.
type Event struct {
	Kind EventKind
	// PathID names the path being published or retired. Zero for EventNotFound.
	PathID uuid.UUID
	Start  grid.Cell
	Goal   grid.Cell
	Cells  []grid.Cell
	// Points holds the cell-center world position of each cell in Cells.
	Points   []cp.Vector
	Expanded int
	// Exhausted is set on EventNotFound when the expansion cap stopped the search.
	Exhausted bool
	// Cleared is set on EventNotFound when the held path was dropped.
	Cleared bool
}

type subscription struct {
	id int
	fn func(Event)
}
