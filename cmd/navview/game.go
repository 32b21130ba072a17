package main

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/ecs/entity"
	"github.com/milk9111/gridnav/ecs/system"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/levels"
	"github.com/milk9111/gridnav/replan"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const (
	panelWidth = 180
	tickRate   = 60
)

// Game is the ebiten game hosting one navigation world.
type Game struct {
	world *ecs.World
	scene *entity.Scene
	log   *slog.Logger

	ui     *ebitenui.UI
	panel  *panel
	status string

	clipboardReady bool
}

func NewGame(lvl *levels.Level, source, scriptName string, watcher *levels.Watcher, logger *slog.Logger) (*Game, error) {
	w := ecs.NewWorld()
	w.SetPhysicsWorld(ecs.NewPhysicsWorld())
	scene, err := entity.BuildLevel(w, lvl, source, logger)
	if err != nil {
		return nil, err
	}
	if scriptName != "" {
		if err := scene.SetScript(w, scriptName); err != nil {
			return nil, err
		}
	}

	g := &Game{world: w, scene: scene, log: logger}
	opts := system.Options{Logger: logger, Observe: g.observe}
	if watcher != nil {
		opts.Watch, opts.WatchErrors = watcher.Events, watcher.Errors
	}
	system.Install(w, opts)

	if err := clipboard.Init(); err != nil {
		logger.Warn("clipboard unavailable", "err", err)
	} else {
		g.clipboardReady = true
	}

	g.ui, g.panel = newPanel(g)
	g.refreshPanel()
	return g, nil
}

func (g *Game) level() *levels.Level {
	nl, ok := ecs.Get(g.world, g.scene.Level, component.NavLevelComponent.Kind())
	if !ok {
		return nil
	}
	return nl.Level
}

func (g *Game) observe(_ ecs.Entity, ev replan.Event) {
	switch ev.Kind {
	case replan.EventCalculated:
		g.status = fmt.Sprintf("path: %d steps, %d expanded", len(ev.Cells)-1, ev.Expanded)
	case replan.EventNotFound:
		g.status = fmt.Sprintf("no path (%d expanded)", ev.Expanded)
	}
}

func (g *Game) Update() error {
	g.handleInput()
	g.world.Step(time.Second / tickRate)
	g.refreshPanel()
	g.ui.Update()
	return nil
}

func (g *Game) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.toggleStatic()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyPath()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.replan()
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		g.clickCell(cp.Vector{X: float64(x), Y: float64(y)})
	}
}

// clickCell moves the goal to the clicked cell when it is a floor cell.
func (g *Game) clickCell(p cp.Vector) {
	lvl := g.level()
	if lvl == nil {
		return
	}
	c := lvl.Index().WorldToCell(p)
	if !lvl.Floor(c) {
		return
	}
	if err := g.scene.Trigger.SetGoalCell(c); err != nil {
		g.log.Warn("set goal", "cell", c, "err", err)
		return
	}
	g.status = "goal " + c.String()
}

func (g *Game) toggleStatic() {
	on := !g.scene.Trigger.Config().RecalculateOnTargetChange
	g.scene.Trigger.SetRecalculateOnTargetChange(on)
	if on {
		g.status = "dynamic: replans on cell change"
	} else {
		g.status = "static: path is kept"
	}
}

func (g *Game) replan() {
	if !g.scene.Trigger.Replan() {
		g.status = "replan skipped"
	}
}

func (g *Game) copyPath() {
	cur, ok := g.scene.Trigger.Current()
	if !ok {
		g.status = "no path to copy"
		return
	}
	if !g.clipboardReady {
		g.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(grid.FormatCells(cur.Cells)))
	g.status = fmt.Sprintf("copied %d cells", len(cur.Cells))
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	lvl := g.level()
	if lvl == nil {
		return
	}
	g.drawLayers(screen, lvl)
	g.drawMarkers(screen, lvl)
	g.drawPath(screen)
	g.drawEntities(screen, lvl)
	g.ui.Draw(screen)
}

func (g *Game) drawLayers(screen *ebiten.Image, lvl *levels.Level) {
	ix := lvl.Index()
	size := float32(lvl.CellSize)
	for _, ls := range lvl.Layers {
		clr, ok := ls.RGBA()
		if !ok {
			clr = colornames.Darkslategray
			if ls.Obstruction {
				clr = colornames.Slategray
			}
		}
		for y := 0; y < lvl.Height; y++ {
			for x := 0; x < lvl.Width; x++ {
				c := grid.Cell{X: x, Y: y}
				if !ls.Tiles.HasTile(c) {
					continue
				}
				p := ix.CellMinWorld(c)
				vector.FillRect(screen, float32(p.X), float32(p.Y), size, size, clr, false)
			}
		}
	}
	for y := 0; y < lvl.Height; y++ {
		for x := 0; x < lvl.Width; x++ {
			p := ix.CellMinWorld(grid.Cell{X: x, Y: y})
			vector.StrokeRect(screen, float32(p.X), float32(p.Y), size, size, 1, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x18}, false)
		}
	}
}

func (g *Game) drawMarkers(screen *ebiten.Image, lvl *levels.Level) {
	half := float32(lvl.CellSize / 8)
	ecs.ForEach2(g.world, component.PathMarkerComponent.Kind(), component.TransformComponent.Kind(), func(_ ecs.Entity, _ *component.PathMarker, t *component.Transform) {
		vector.FillRect(screen, float32(t.Position.X)-half, float32(t.Position.Y)-half, 2*half, 2*half, colornames.Gold, false)
	})
}

func (g *Game) drawPath(screen *ebiten.Image) {
	cur, ok := g.scene.Trigger.Current()
	if !ok {
		return
	}
	for i := 1; i < len(cur.Points); i++ {
		a, b := cur.Points[i-1], cur.Points[i]
		vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), 2, colornames.Orange, true)
	}
}

func (g *Game) drawEntities(screen *ebiten.Image, lvl *levels.Level) {
	r := float32(lvl.CellSize * 0.3)
	goal := entity.BodyOf(g.world, g.scene.Goal).Position()
	vector.StrokeCircle(screen, float32(goal.X), float32(goal.Y), r, 2, colornames.Limegreen, true)
	agent := entity.BodyOf(g.world, g.scene.Agent).Position()
	vector.FillCircle(screen, float32(agent.X), float32(agent.Y), r, colornames.Crimson, true)
}

func (g *Game) Layout(_, _ int) (int, int) {
	lvl := g.level()
	if lvl == nil {
		return 640, 480
	}
	ix := lvl.Index()
	corner := ix.CellMinWorld(grid.Cell{X: lvl.Width, Y: lvl.Height})
	w := int(math.Ceil(corner.X+ix.Origin.X)) + panelWidth
	h := int(math.Ceil(corner.Y + ix.Origin.Y))
	return w, max(h, 240)
}
