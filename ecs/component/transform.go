package component

import "github.com/jakecoffman/cp"

// Transform is an entity's world position.
type Transform struct {
	Position cp.Vector
}

var TransformComponent = NewComponent[Transform]()
