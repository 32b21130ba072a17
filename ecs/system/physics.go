package system

import (
	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
)

// PhysicsSystem steps the world's physics space and copies body positions
// back into transforms.
type PhysicsSystem struct{}

func NewPhysicsSystem() *PhysicsSystem {
	return &PhysicsSystem{}
}

func (ps *PhysicsSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return
	}
	pw.Step(w.Delta().Seconds())
	ecs.ForEach2(w, component.PhysicsBodyComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, body *component.PhysicsBody, t *component.Transform) {
		if body.Body != nil {
			t.Position = body.Body.Position()
		}
	})
}
