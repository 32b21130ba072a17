package system

import (
	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
)

// ReplanSystem ticks every agent's trigger with the world clock. An agent
// whose follower is Blocked is replanned immediately.
type ReplanSystem struct{}

func NewReplanSystem() *ReplanSystem {
	return &ReplanSystem{}
}

func (rs *ReplanSystem) Update(w *ecs.World) {
	if rs == nil || w == nil {
		return
	}
	ecs.ForEach(w, component.NavAgentComponent.Kind(), func(e ecs.Entity, nav *component.NavAgent) {
		if f, ok := ecs.Get(w, e, component.PathFollowerComponent.Kind()); ok && f.Blocked && nav.Trigger.Started() {
			f.Blocked = false
			nav.Trigger.Replan()
			return
		}
		nav.Trigger.Update(w.Elapsed())
	})
}
