package system

import (
	"log/slog"

	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/replan"
)

// Options configures Install.
type Options struct {
	// Watch and WatchErrors come from a levels.Watcher; nil disables reload.
	Watch       <-chan string
	WatchErrors <-chan error
	Logger      *slog.Logger
	Observe     func(agent ecs.Entity, ev replan.Event)
}

// Install adds the navigation systems to w in update order.
func Install(w *ecs.World, opts Options) {
	w.AddSystem(NewLevelReloadSystem(opts.Watch, opts.WatchErrors, opts.Logger))
	w.AddSystem(NewGoalScriptSystem(opts.Logger))
	w.AddSystem(NewReplanSystem())
	events := NewPathEventSystem(opts.Logger)
	events.Observe = opts.Observe
	w.AddSystem(events)
	w.AddSystem(NewPathFollowSystem(opts.Logger))
	w.AddSystem(NewPhysicsSystem())
}
