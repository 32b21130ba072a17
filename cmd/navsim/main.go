// Command navsim runs a level headless and logs every path event.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/ecs/entity"
	"github.com/milk9111/gridnav/ecs/system"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/levels"
	"github.com/milk9111/gridnav/replan"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	level  string
	ticks  int
	tps    int
	script string
	watch  bool
	static bool
	debug  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("navsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.level, "level", "corridor", "level name in levels/ or path to a level file")
	fs.IntVar(&opts.ticks, "ticks", 600, "number of simulation ticks to run")
	fs.IntVar(&opts.tps, "tps", 60, "ticks per simulated second")
	fs.StringVar(&opts.script, "script", "", "goal script name or path (overrides the level's)")
	fs.BoolVar(&opts.watch, "watch", false, "run in real time and reload edited level and script files")
	fs.BoolVar(&opts.static, "static", false, "compute the path once and never replan")
	fs.BoolVar(&opts.debug, "v", false, "verbose logging")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.tps <= 0 {
		return opts, fmt.Errorf("navsim: -tps must be positive, got %d", opts.tps)
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	lvl, err := levels.Resolve(opts.level)
	if err != nil {
		logger.Error("load level", "level", opts.level, "err", err)
		return 1
	}

	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld())
	scene, err := entity.BuildLevel(w, lvl, opts.level, logger)
	if err != nil {
		logger.Error("build level", "level", opts.level, "err", err)
		return 1
	}
	if opts.script != "" {
		if err := scene.SetScript(w, opts.script); err != nil {
			logger.Error("load script", "script", opts.script, "err", err)
			return 1
		}
	}
	if opts.static {
		scene.Trigger.SetRecalculateOnTargetChange(false)
	}

	sysOpts := system.Options{Logger: logger, Observe: logEvent(logger)}
	if opts.watch {
		dirs := watchDirs(opts.level)
		if len(dirs) == 0 {
			logger.Warn("watch: nothing to watch, level is embedded and no levels dir exists", "level", opts.level, "dir", levels.Dir)
		} else {
			watcher, err := levels.NewWatcher(dirs...)
			if err != nil {
				logger.Error("watch", "err", err)
				return 1
			}
			defer watcher.Close()
			sysOpts.Watch, sysOpts.WatchErrors = watcher.Events, watcher.Errors
		}
	}
	system.Install(w, sysOpts)

	logger.Info("simulating", "level", lvl.Name, "size", fmt.Sprintf("%dx%d", lvl.Width, lvl.Height), "ticks", opts.ticks)
	dt := time.Second / time.Duration(opts.tps)
	var pace <-chan time.Time
	if opts.watch {
		ticker := time.NewTicker(dt)
		defer ticker.Stop()
		pace = ticker.C
	}
loop:
	for i := 0; i < opts.ticks; i++ {
		if pace != nil {
			select {
			case <-ctx.Done():
				break loop
			case <-pace:
			}
		} else if ctx.Err() != nil {
			break
		}
		w.Step(dt)
	}

	printSummary(stdout, w, scene)
	return 0
}

func watchDirs(level string) []string {
	dirs := []string{}
	if info, err := os.Stat(levels.Dir); err == nil && info.IsDir() {
		dirs = append(dirs, levels.Dir)
		if info, err := os.Stat(filepath.Join(levels.Dir, "scripts")); err == nil && info.IsDir() {
			dirs = append(dirs, filepath.Join(levels.Dir, "scripts"))
		}
	}
	if info, err := os.Stat(level); err == nil && !info.IsDir() {
		dir := filepath.Dir(level)
		if filepath.Clean(dir) != filepath.Clean(levels.Dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

func logEvent(logger *slog.Logger) func(ecs.Entity, replan.Event) {
	return func(agent ecs.Entity, ev replan.Event) {
		attrs := []any{"agent", agent.String(), "kind", ev.Kind.String(), "start", ev.Start, "goal", ev.Goal}
		switch ev.Kind {
		case replan.EventCalculated:
			attrs = append(attrs, "path", ev.PathID, "steps", len(ev.Cells)-1, "expanded", ev.Expanded)
		case replan.EventInvalidated:
			attrs = append(attrs, "path", ev.PathID)
		case replan.EventNotFound:
			attrs = append(attrs, "expanded", ev.Expanded, "exhausted", ev.Exhausted, "cleared", ev.Cleared)
		}
		logger.Info("path event", attrs...)
	}
}

func printSummary(out io.Writer, w *ecs.World, scene *entity.Scene) {
	start, goal, _ := scene.Trigger.EndpointCells()
	fmt.Fprintf(out, "elapsed %v, searches %d, agent %v, goal %v\n", w.Elapsed(), scene.Trigger.Searches(), start, goal)
	cur, ok := scene.Trigger.Current()
	if !ok {
		fmt.Fprintln(out, "no path")
		return
	}
	fmt.Fprintf(out, "path %s (%d cells): %s\n", cur.PathID, len(cur.Cells), grid.FormatCells(cur.Cells))
	if f, ok := ecs.Get(w, scene.Agent, component.PathFollowerComponent.Kind()); ok && f.Arrived {
		fmt.Fprintln(out, "arrived")
	}
}
