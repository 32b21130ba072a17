package component

import "github.com/jakecoffman/cp"

// PhysicsBody links an entity to its kinematic Chipmunk body. The physics
// system copies the body position into the Transform after each step.
type PhysicsBody struct {
	Body   *cp.Body
	Radius float64
}

var PhysicsBodyComponent = NewComponent[PhysicsBody]()
