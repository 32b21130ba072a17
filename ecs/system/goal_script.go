package system

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/replan"
	"github.com/milk9111/gridnav/script"
)

const scriptRunTimeout = 50 * time.Millisecond

// GoalScriptSystem runs each agent's goal script and moves the goal through
// the agent's trigger.
type GoalScriptSystem struct {
	cache map[ecs.Entity]*goalScriptRuntime
	log   *slog.Logger
}

type goalScriptRuntime struct {
	source  []byte
	program *script.Program
	failed  bool
}

func NewGoalScriptSystem(logger *slog.Logger) *GoalScriptSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoalScriptSystem{
		cache: make(map[ecs.Entity]*goalScriptRuntime),
		log:   logger.With("system", "goal_script"),
	}
}

func (gs *GoalScriptSystem) Update(w *ecs.World) {
	if gs == nil || w == nil {
		return
	}
	nl := currentLevel(w)
	if nl == nil || nl.Level == nil {
		return
	}
	lvl := nl.Level
	tick := int(w.Ticks())

	for e := range gs.cache {
		if !ecs.Has(w, e, component.GoalScriptComponent.Kind()) {
			delete(gs.cache, e)
		}
	}

	ecs.ForEach2(w, component.NavAgentComponent.Kind(), component.GoalScriptComponent.Kind(), func(e ecs.Entity, nav *component.NavAgent, gsc *component.GoalScript) {
		rt := gs.runtime(e, gsc)
		if rt == nil || !rt.program.Due(tick) {
			return
		}
		agent, goal, err := nav.Trigger.EndpointCells()
		if err != nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), scriptRunTimeout)
		defer cancel()
		host := goalHost{nav: nl, trigger: nav.Trigger}
		moved, err := rt.program.Run(ctx, script.Input{
			Tick:   tick,
			Agent:  agent,
			Goal:   goal,
			Width:  lvl.Width,
			Height: lvl.Height,
		}, host)
		if err != nil {
			gs.log.Warn("goal script failed", "entity", e, "script", gsc.Name, "err", err)
			return
		}
		if moved {
			gs.log.Debug("goal moved by script", "entity", e, "script", gsc.Name)
		}
	})
}

func (gs *GoalScriptSystem) runtime(e ecs.Entity, gsc *component.GoalScript) *goalScriptRuntime {
	if rt, ok := gs.cache[e]; ok && bytes.Equal(rt.source, gsc.Source) {
		if rt.failed {
			return nil
		}
		return rt
	}
	rt := &goalScriptRuntime{source: gsc.Source}
	gs.cache[e] = rt
	program, err := script.Compile(gsc.Name, gsc.Source)
	if err != nil {
		gs.log.Warn("goal script compile failed", "entity", e, "script", gsc.Name, "err", err)
		rt.failed = true
		return nil
	}
	rt.program = program
	return rt
}

// goalHost exposes the level to a script. Goals may only be placed on floor
// cells.
type goalHost struct {
	nav     *component.NavLevel
	trigger *replan.Trigger
}

func (h goalHost) SetGoal(c grid.Cell) error {
	if !h.nav.Level.Floor(c) {
		return script.ErrRejected
	}
	return h.trigger.SetGoalCell(c)
}

func (h goalHost) Walkable(c grid.Cell) bool {
	return h.nav.Occupancy.Walkable(c)
}

func (h goalHost) Floor(c grid.Cell) bool {
	return h.nav.Level.Floor(c)
}

func currentLevel(w *ecs.World) *component.NavLevel {
	e, ok := ecs.First(w, component.NavLevelComponent.Kind())
	if !ok {
		return nil
	}
	nl, _ := ecs.Get(w, e, component.NavLevelComponent.Kind())
	return nl
}
