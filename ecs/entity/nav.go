package entity

import (
	"fmt"
	"log/slog"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/replan"
)

// NewGoal creates the goal entity at pos.
func NewGoal(w *ecs.World, pos cp.Vector) (ecs.Entity, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos}); err != nil {
		return 0, fmt.Errorf("entity: goal transform: %w", err)
	}
	if err := ecs.Add(w, e, component.GoalTagComponent.Kind(), &component.GoalTag{}); err != nil {
		return 0, fmt.Errorf("entity: goal tag: %w", err)
	}
	return e, nil
}

// AgentSpec configures NewAgent.
type AgentSpec struct {
	Position  cp.Vector
	Nav       replan.Config
	Speed     float64
	Tolerance float64
	Radius    float64
	Markers   bool
	Index     replan.CellIndex
	Occupancy replan.Walkability
	Logger    *slog.Logger
}

// NewAgent creates an agent that follows paths toward goal. Its trigger's
// events are pushed onto the world queue as component.EventPath events; the
// first search runs on the first ReplanSystem update.
func NewAgent(w *ecs.World, goal ecs.Entity, spec AgentSpec) (ecs.Entity, *replan.Trigger, error) {
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: spec.Position}); err != nil {
		return 0, nil, fmt.Errorf("entity: agent transform: %w", err)
	}
	if err := ecs.Add(w, e, component.AgentTagComponent.Kind(), &component.AgentTag{}); err != nil {
		return 0, nil, fmt.Errorf("entity: agent tag: %w", err)
	}
	if err := ecs.Add(w, e, component.PathFollowerComponent.Kind(), &component.PathFollower{
		Speed:     spec.Speed,
		Tolerance: spec.Tolerance,
	}); err != nil {
		return 0, nil, fmt.Errorf("entity: agent follower: %w", err)
	}
	if pw := w.PhysicsWorld(); pw != nil {
		body := pw.AddKinematic(e, spec.Position, spec.Radius)
		if err := ecs.Add(w, e, component.PhysicsBodyComponent.Kind(), &component.PhysicsBody{Body: body, Radius: spec.Radius}); err != nil {
			return 0, nil, fmt.Errorf("entity: agent body: %w", err)
		}
	}

	logger := spec.Logger
	if logger == nil {
		logger = slog.Default()
	}
	trig := replan.New(spec.Nav, replan.Deps{
		Index:     spec.Index,
		Occupancy: spec.Occupancy,
		Start:     BodyOf(w, e),
		Goal:      BodyOf(w, goal),
		Logger:    logger.With("agent", e.String()),
	})
	cancel := trig.Subscribe(func(ev replan.Event) {
		w.Events().Push(ecs.Event{Type: component.EventPath, Entity: e, Data: ev})
	})
	if err := ecs.Add(w, e, component.NavAgentComponent.Kind(), &component.NavAgent{
		Trigger:     trig,
		Markers:     spec.Markers,
		Unsubscribe: cancel,
	}); err != nil {
		cancel()
		return 0, nil, fmt.Errorf("entity: nav agent: %w", err)
	}
	return e, trig, nil
}
