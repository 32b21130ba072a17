package entity

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
)

// Body exposes an entity's position to a replan trigger. It reads the physics
// body when there is one and the transform otherwise.
type Body struct {
	w *ecs.World
	e ecs.Entity
}

func BodyOf(w *ecs.World, e ecs.Entity) Body {
	return Body{w: w, e: e}
}

func (b Body) Entity() ecs.Entity { return b.e }

func (b Body) Position() cp.Vector {
	if pb, ok := ecs.Get(b.w, b.e, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
		return pb.Body.Position()
	}
	if t, ok := ecs.Get(b.w, b.e, component.TransformComponent.Kind()); ok {
		return t.Position
	}
	return cp.Vector{}
}

// SetPosition teleports the entity.
func (b Body) SetPosition(p cp.Vector) {
	if t, ok := ecs.Get(b.w, b.e, component.TransformComponent.Kind()); ok {
		t.Position = p
	}
	if pb, ok := ecs.Get(b.w, b.e, component.PhysicsBodyComponent.Kind()); ok && pb.Body != nil {
		pb.Body.SetPosition(p)
		pb.Body.SetVelocityVector(cp.Vector{})
	}
}
