package system

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/levels"
)

// LevelReloadSystem applies level and script edits reported by a watcher.
// A reloaded level replaces the obstruction layers and the cell mapping of
// every trigger, then forces every agent to replan; a reloaded script is
// recompiled on its next run.
type LevelReloadSystem struct {
	events <-chan string
	errs   <-chan error
	log    *slog.Logger
}

// NewLevelReloadSystem reads from a watcher's channels. Either may be nil.
func NewLevelReloadSystem(events <-chan string, errs <-chan error, logger *slog.Logger) *LevelReloadSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &LevelReloadSystem{events: events, errs: errs, log: logger.With("system", "level_reload")}
}

func (ls *LevelReloadSystem) Update(w *ecs.World) {
	if ls == nil || w == nil {
		return
	}
	for _, path := range ls.drain() {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".tengo":
			ls.reloadScript(w, path)
		default:
			ls.reloadLevel(w, path)
		}
	}
}

func (ls *LevelReloadSystem) drain() []string {
	var paths []string
	seen := make(map[string]bool)
	for {
		select {
		case err, ok := <-ls.errs:
			if !ok {
				ls.errs = nil
				continue
			}
			ls.log.Warn("watch error", "err", err)
		case path, ok := <-ls.events:
			if !ok {
				ls.events = nil
				continue
			}
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		default:
			return paths
		}
	}
}

func (ls *LevelReloadSystem) reloadLevel(w *ecs.World, path string) {
	nl := currentLevel(w)
	if nl == nil || !sameFile(nl.Source, path, ".yaml") {
		return
	}
	lvl, err := levels.LoadFile(path)
	if err != nil {
		ls.log.Warn("level reload failed, keeping previous", "path", path, "err", err)
		return
	}
	ix := lvl.Index()
	lvl.ApplyTo(nl.Occupancy)
	nl.Level = lvl
	if pw := w.PhysicsWorld(); pw != nil {
		n := pw.BuildStatic(ix, lvl.ObstructionTiles()...)
		ls.log.Debug("static shapes rebuilt", "shapes", n)
	}

	replanned := 0
	ecs.ForEach(w, component.NavAgentComponent.Kind(), func(_ ecs.Entity, nav *component.NavAgent) {
		nav.Trigger.SetIndex(ix)
		nav.Trigger.Replan()
		replanned++
	})
	ls.log.Info("level reloaded", "path", path, "agents", replanned)
}

func (ls *LevelReloadSystem) reloadScript(w *ecs.World, path string) {
	ecs.ForEach(w, component.GoalScriptComponent.Kind(), func(e ecs.Entity, gsc *component.GoalScript) {
		if !sameFile(gsc.Name, path, ".tengo") {
			return
		}
		src, err := levels.LoadScript(path)
		if err != nil {
			ls.log.Warn("script reload failed", "path", path, "err", err)
			return
		}
		gsc.Source = src
		ls.log.Info("script reloaded", "entity", e, "path", path)
	})
}

// sameFile matches a level or script reference against a changed path by
// base name, adding ext to references given without one.
func sameFile(ref, path, ext string) bool {
	if ref == "" {
		return false
	}
	base := filepath.Base(filepath.FromSlash(ref))
	if filepath.Ext(base) == "" {
		base += ext
	}
	return strings.EqualFold(base, filepath.Base(path))
}
