package entity

import (
	"fmt"
	"log/slog"

	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/levels"
	"github.com/milk9111/gridnav/occupancy"
	"github.com/milk9111/gridnav/replan"
)

const agentRadiusCells = 0.3

// Scene is what BuildLevel put into the world.
type Scene struct {
	Level     ecs.Entity
	Agent     ecs.Entity
	Goal      ecs.Entity
	Trigger   *replan.Trigger
	Occupancy *occupancy.Map
}

// BuildLevel creates the level singleton, the goal and one agent for lvl.
// source is the file or name the level was loaded from and is used to match
// reload events.
func BuildLevel(w *ecs.World, lvl *levels.Level, source string, logger *slog.Logger) (*Scene, error) {
	if w == nil || lvl == nil {
		return nil, fmt.Errorf("entity: build level: nil world or level")
	}
	occ := lvl.Occupancy()
	ix := lvl.Index()

	levelEnt := ecs.CreateEntity(w)
	if err := ecs.Add(w, levelEnt, component.NavLevelComponent.Kind(), &component.NavLevel{
		Level:     lvl,
		Source:    source,
		Occupancy: occ,
	}); err != nil {
		return nil, fmt.Errorf("entity: level: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if pw := w.PhysicsWorld(); pw != nil {
		n := pw.BuildStatic(ix, lvl.ObstructionTiles()...)
		logger.Debug("static shapes built", "level", lvl.Name, "shapes", n)
	}

	goal, err := NewGoal(w, ix.CellCenterWorld(lvl.Goal.Cell()))
	if err != nil {
		return nil, err
	}
	agent, trig, err := NewAgent(w, goal, AgentSpec{
		Position:  ix.CellCenterWorld(lvl.Start.Cell()),
		Nav:       lvl.Nav,
		Speed:     lvl.AgentSpeed(),
		Tolerance: lvl.AgentTolerance(),
		Radius:    agentRadiusCells * lvl.CellSize,
		Markers:   lvl.Agent.Markers,
		Index:     ix,
		Occupancy: occ,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	if lvl.Script != "" {
		src, err := levels.LoadScript(lvl.Script)
		if err != nil {
			return nil, fmt.Errorf("entity: level %s: %w", lvl.Name, err)
		}
		if err := ecs.Add(w, agent, component.GoalScriptComponent.Kind(), &component.GoalScript{Name: lvl.Script, Source: src}); err != nil {
			return nil, fmt.Errorf("entity: goal script: %w", err)
		}
	}

	return &Scene{
		Level:     levelEnt,
		Agent:     agent,
		Goal:      goal,
		Trigger:   trig,
		Occupancy: occ,
	}, nil
}

// SetScript attaches or replaces the goal script of the scene's agent.
func (s *Scene) SetScript(w *ecs.World, name string) error {
	src, err := levels.LoadScript(name)
	if err != nil {
		return err
	}
	return ecs.Add(w, s.Agent, component.GoalScriptComponent.Kind(), &component.GoalScript{Name: name, Source: src})
}
