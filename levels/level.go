package levels

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/occupancy"
	"github.com/milk9111/gridnav/replan"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

var ErrInvalidLevel = errors.New("levels: invalid level")

// Level is a navigation map stored as YAML.
type Level struct {
	Name     string      `yaml:"name"`
	CellSize float64     `yaml:"cell_size"`
	Origin   PointSpec   `yaml:"origin"`
	Width    int         `yaml:"width"`
	Height   int         `yaml:"height"`
	Start    CellSpec    `yaml:"start"`
	Goal     CellSpec    `yaml:"goal"`
	Nav      NavSpec     `yaml:"nav"`
	Agent    AgentSpec   `yaml:"agent"`
	Script   string      `yaml:"script"`
	Layers   []LayerSpec `yaml:"layers"`
}

type PointSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type CellSpec struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

func (c CellSpec) Cell() grid.Cell {
	return grid.Cell{X: c.X, Y: c.Y}
}

// NavSpec mirrors replan.Config in the level file.
type NavSpec = replan.Config

// AgentSpec configures the path follower. Speed and Tolerance are in cells
// and converted to world units with the level cell size.
type AgentSpec struct {
	Speed     float64 `yaml:"speed"`
	Tolerance float64 `yaml:"tolerance"`
	Markers   bool    `yaml:"markers"`
}

// LayerSpec is one tile layer. Each row is a string; '.' and ' ' are empty
// and any other glyph places a tile.
type LayerSpec struct {
	Name        string   `yaml:"name"`
	Obstruction bool     `yaml:"obstruction"`
	Color       string   `yaml:"color"`
	Rows        []string `yaml:"rows"`

	Tiles *occupancy.TileLayer `yaml:"-"`
}

// RGBA resolves Color, given as "#rrggbb", "#rrggbbaa" or an SVG color name.
func (ls LayerSpec) RGBA() (color.RGBA, bool) {
	s := strings.TrimSpace(strings.ToLower(ls.Color))
	if c, ok := colornames.Map[s]; ok {
		return c, true
	}
	raw, ok := strings.CutPrefix(s, "#")
	if !ok || (len(raw) != 6 && len(raw) != 8) {
		return color.RGBA{}, false
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return color.RGBA{}, false
	}
	c := color.RGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, true
}

const (
	defaultAgentSpeed     = 5.0
	defaultAgentTolerance = 0.1
)

func defaultLevel() Level {
	return Level{
		CellSize: grid.DefaultCellSize,
		Nav:      replan.DefaultConfig(),
		Agent: AgentSpec{
			Speed:     defaultAgentSpeed,
			Tolerance: defaultAgentTolerance,
			Markers:   true,
		},
	}
}

// Parse decodes and validates a level.
func Parse(data []byte) (*Level, error) {
	lvl := defaultLevel()
	if err := yaml.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal: %w", err)
	}
	if err := lvl.build(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) build() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidLevel, l.Width, l.Height)
	}
	if l.CellSize <= 0 {
		return fmt.Errorf("%w: cell_size %v", ErrInvalidLevel, l.CellSize)
	}
	bounds := l.Bounds()
	if !bounds.Contains(l.Start.Cell()) {
		return fmt.Errorf("%w: start %v outside %dx%d", ErrInvalidLevel, l.Start.Cell(), l.Width, l.Height)
	}
	if !bounds.Contains(l.Goal.Cell()) {
		return fmt.Errorf("%w: goal %v outside %dx%d", ErrInvalidLevel, l.Goal.Cell(), l.Width, l.Height)
	}

	seen := make(map[string]bool, len(l.Layers))
	for i := range l.Layers {
		ls := &l.Layers[i]
		if ls.Name == "" {
			ls.Name = fmt.Sprintf("layer%d", i)
		}
		if seen[ls.Name] {
			return fmt.Errorf("%w: duplicate layer %q", ErrInvalidLevel, ls.Name)
		}
		seen[ls.Name] = true

		tiles, err := buildTiles(ls.Name, ls.Rows, l.Width, l.Height)
		if err != nil {
			return err
		}
		ls.Tiles = tiles
	}
	return nil
}

func buildTiles(name string, rows []string, width, height int) (*occupancy.TileLayer, error) {
	if len(rows) > height {
		return nil, fmt.Errorf("%w: layer %q has %d rows, height is %d", ErrInvalidLevel, name, len(rows), height)
	}
	tl := occupancy.NewTileLayer(name, width, height)
	for y, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("%w: layer %q row %d has %d cells, width is %d", ErrInvalidLevel, name, y, len(row), width)
		}
		for x := 0; x < len(row); x++ {
			switch row[x] {
			case '.', ' ':
				continue
			}
			tl.SetTile(grid.Cell{X: x, Y: y}, 1)
		}
	}
	return tl, nil
}

// Bounds returns the level rectangle in cells.
func (l *Level) Bounds() grid.Rect {
	return grid.RectWH(l.Width, l.Height)
}

// Index returns the world/cell mapping for the level.
func (l *Level) Index() grid.Index {
	return grid.NewIndex(l.CellSize, cp.Vector{X: l.Origin.X, Y: l.Origin.Y})
}

// Occupancy builds a walkability map from the obstruction layers.
func (l *Level) Occupancy() *occupancy.Map {
	m := occupancy.NewMap(l.Bounds())
	l.ApplyTo(m)
	return m
}

// ApplyTo replaces the bounds and obstruction layers of m with this level's.
// Named layers of m that the level no longer defines are removed.
func (l *Level) ApplyTo(m *occupancy.Map) {
	if m == nil {
		return
	}
	m.SetBounds(l.Bounds())
	keep := make(map[string]bool, len(l.Layers))
	for _, ls := range l.Layers {
		if !ls.Obstruction {
			continue
		}
		keep[ls.Name] = true
		m.SetLayer(ls.Name, ls.Tiles)
	}
	for _, name := range m.Names() {
		if name != "" && !keep[name] {
			m.SetLayer(name, nil)
		}
	}
}

// ObstructionTiles returns the tile layers that block movement.
func (l *Level) ObstructionTiles() []*occupancy.TileLayer {
	var out []*occupancy.TileLayer
	for _, ls := range l.Layers {
		if ls.Obstruction {
			out = append(out, ls.Tiles)
		}
	}
	return out
}

// Floor reports whether c can be chosen as a destination: some non-obstruction
// layer has a tile there. Without floor layers every in-bounds cell qualifies.
func (l *Level) Floor(c grid.Cell) bool {
	if !l.Bounds().Contains(c) {
		return false
	}
	hasFloor := false
	for _, ls := range l.Layers {
		if ls.Obstruction {
			continue
		}
		hasFloor = true
		if ls.Tiles.HasTile(c) {
			return true
		}
	}
	return !hasFloor
}

// AgentSpeed returns the follower speed in world units per second.
func (l *Level) AgentSpeed() float64 {
	return l.Agent.Speed * l.CellSize
}

// AgentTolerance returns the waypoint arrival radius in world units.
func (l *Level) AgentTolerance() float64 {
	return l.Agent.Tolerance * l.CellSize
}
