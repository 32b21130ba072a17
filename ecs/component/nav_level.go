package component

import (
	"github.com/milk9111/gridnav/levels"
	"github.com/milk9111/gridnav/occupancy"
)

// NavLevel is the singleton holding the loaded level. Occupancy is shared
// with every trigger and is updated in place on reload.
type NavLevel struct {
	Level     *levels.Level
	Source    string
	Occupancy *occupancy.Map
}

var NavLevelComponent = NewComponent[NavLevel]()
