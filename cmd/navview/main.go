// Command navview shows a level, its agent and the current path. Click a
// floor cell to move the goal.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gridnav/levels"
)

func main() {
	levelName := flag.String("level", "corridor", "level name in levels/ or path to a level file")
	scriptName := flag.String("script", "", "goal script name or path (overrides the level's)")
	watch := flag.Bool("watch", true, "reload edited level and script files")
	scale := flag.Float64("scale", 2, "window scale")
	debug := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	lvl, err := levels.Resolve(*levelName)
	if err != nil {
		log.Fatal(err)
	}

	var watcher *levels.Watcher
	if *watch {
		if info, err := os.Stat(levels.Dir); err == nil && info.IsDir() {
			watcher, err = levels.NewWatcher(levels.Dir)
			if err != nil {
				logger.Warn("watch disabled", "err", err)
			} else {
				defer watcher.Close()
			}
		}
	}

	game, err := NewGame(lvl, *levelName, *scriptName, watcher, logger)
	if err != nil {
		log.Fatal(err)
	}

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(int(float64(w)**scale), int(float64(h)**scale))
	ebiten.SetWindowTitle("navview - " + lvl.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
