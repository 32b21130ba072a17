package system

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/replan"
)

// PathEventSystem drains replan events routed into the world queue and
// applies them to the owning agent's follower and markers. Observe, when set,
// sees every event after it was applied.
type PathEventSystem struct {
	Observe func(agent ecs.Entity, ev replan.Event)
	log     *slog.Logger
}

func NewPathEventSystem(logger *slog.Logger) *PathEventSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathEventSystem{log: logger.With("system", "path_events")}
}

func (ps *PathEventSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	var others []ecs.Event
	for _, evt := range w.Events().Drain() {
		ev, ok := evt.Data.(replan.Event)
		if evt.Type != component.EventPath || !ok {
			others = append(others, evt)
			continue
		}
		ps.apply(w, evt.Entity, ev)
		if ps.Observe != nil {
			ps.Observe(evt.Entity, ev)
		}
	}
	for _, evt := range others {
		w.Events().Push(evt)
	}
}

func (ps *PathEventSystem) apply(w *ecs.World, agent ecs.Entity, ev replan.Event) {
	if !ecs.IsAlive(w, agent) {
		return
	}
	nav, _ := ecs.Get(w, agent, component.NavAgentComponent.Kind())
	markers := nav != nil && nav.Markers

	switch ev.Kind {
	case replan.EventInvalidated:
		n := DestroyMarkers(w, ev.PathID)
		ps.log.Debug("path invalidated", "agent", agent, "path", ev.PathID, "markers", n)
	case replan.EventCalculated:
		ps.follow(w, agent, ev)
		if markers {
			SpawnMarkers(w, ev)
		}
	case replan.EventNotFound:
		if ev.Cleared {
			if f, ok := ecs.Get(w, agent, component.PathFollowerComponent.Kind()); ok {
				f.Points, f.Index, f.PathID = nil, 0, uuid.Nil
			}
			return
		}
		// The previous path is still held: restore its markers.
		if nav == nil || !markers {
			return
		}
		if cur, ok := nav.Trigger.Current(); ok && countMarkers(w, cur.PathID) == 0 {
			SpawnMarkers(w, cur)
		}
	}
}

func (ps *PathEventSystem) follow(w *ecs.World, agent ecs.Entity, ev replan.Event) {
	f, ok := ecs.Get(w, agent, component.PathFollowerComponent.Kind())
	if !ok {
		return
	}
	t, ok := ecs.Get(w, agent, component.TransformComponent.Kind())
	if !ok {
		return
	}
	pos := t.Position
	if body, ok := ecs.Get(w, agent, component.PhysicsBodyComponent.Kind()); ok && body.Body != nil {
		pos = body.Body.Position()
	}
	f.PathID = ev.PathID
	Retarget(f, pos, ev.Points)
}

// SpawnMarkers creates one marker entity per waypoint of ev.
func SpawnMarkers(w *ecs.World, ev replan.Event) int {
	for i, c := range ev.Cells {
		e := ecs.CreateEntity(w)
		if err := ecs.Add(w, e, component.PathMarkerComponent.Kind(), &component.PathMarker{PathID: ev.PathID, Cell: c, Order: i}); err != nil {
			panic("path events: add marker: " + err.Error())
		}
		if i < len(ev.Points) {
			if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: ev.Points[i]}); err != nil {
				panic("path events: add marker transform: " + err.Error())
			}
		}
	}
	return len(ev.Cells)
}

// DestroyMarkers removes the markers spawned for path id.
func DestroyMarkers(w *ecs.World, id uuid.UUID) int {
	n := 0
	ecs.ForEach(w, component.PathMarkerComponent.Kind(), func(e ecs.Entity, m *component.PathMarker) {
		if m.PathID == id {
			ecs.DestroyEntity(w, e)
			n++
		}
	})
	return n
}

func countMarkers(w *ecs.World, id uuid.UUID) int {
	n := 0
	ecs.ForEach(w, component.PathMarkerComponent.Kind(), func(_ ecs.Entity, m *component.PathMarker) {
		if m.PathID == id {
			n++
		}
	})
	return n
}
