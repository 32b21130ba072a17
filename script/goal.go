// Package script runs tengo programs that steer a navigation goal.
//
// A program is compiled once. Each run sees the globals tick, agent, goal,
// width and height, and may call set_goal(x, y), walkable(x, y) and
// floor(x, y). A script may define a global `interval` to run only every
// that many ticks.
package script

import (
	"context"
	"errors"
	"fmt"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/gridnav/grid"
)

var (
	ErrNoHost = errors.New("script: no host")
	// ErrRejected is returned by a Host that refuses a goal cell. set_goal
	// then evaluates to false and the run does not fail.
	ErrRejected = errors.New("script: goal rejected")
)

// Host is what a goal script can see and change.
type Host interface {
	SetGoal(c grid.Cell) error
	Walkable(c grid.Cell) bool
	Floor(c grid.Cell) bool
}

// Input is the per-run state handed to the script.
type Input struct {
	Tick   int
	Agent  grid.Cell
	Goal   grid.Cell
	Width  int
	Height int
}

// Program is a compiled goal script.
type Program struct {
	name     string
	compiled *tengo.Compiled

	host     Host
	moved    bool
	setErr   error
	interval int
	lastRun  int
	ran      bool
}

// Compile parses src and binds the engine functions.
func Compile(name string, src []byte) (*Program, error) {
	p := &Program{name: name, interval: 1}

	s := tengo.NewScript(src)
	err := bind(s, []binding{
		{"tick", 0},
		{"width", 0},
		{"height", 0},
		{"agent", cellObject(grid.Cell{})},
		{"goal", cellObject(grid.Cell{})},
		{"set_goal", &tengo.UserFunction{Name: "set_goal", Value: p.setGoal}},
		{"walkable", &tengo.UserFunction{Name: "walkable", Value: p.query(func(h Host, c grid.Cell) bool { return h.Walkable(c) })}},
		{"floor", &tengo.UserFunction{Name: "floor", Value: p.query(func(h Host, c grid.Cell) bool { return h.Floor(c) })}},
	})
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	p.compiled = compiled
	return p, nil
}

type binding struct {
	name  string
	value any
}

// bind adds each variable to s and stops at the first one tengo rejects.
func bind(s *tengo.Script, vars []binding) error {
	for _, v := range vars {
		if err := s.Add(v.name, v.value); err != nil {
			return fmt.Errorf("bind %s: %w", v.name, err)
		}
	}
	return nil
}

func (p *Program) Name() string { return p.name }

// Interval returns the ticks between runs as last declared by the script.
func (p *Program) Interval() int { return p.interval }

// Due reports whether the program should run on tick. The first call is
// always due.
func (p *Program) Due(tick int) bool {
	if !p.ran {
		return true
	}
	return tick-p.lastRun >= p.interval
}

// Run executes the script once against host. It reports whether set_goal
// moved the goal.
func (p *Program) Run(ctx context.Context, in Input, host Host) (bool, error) {
	if host == nil {
		return false, ErrNoHost
	}
	p.host, p.moved, p.setErr = host, false, nil
	defer func() { p.host = nil }()

	if err := p.compiled.Set("tick", in.Tick); err != nil {
		return false, err
	}
	if err := p.compiled.Set("width", in.Width); err != nil {
		return false, err
	}
	if err := p.compiled.Set("height", in.Height); err != nil {
		return false, err
	}
	if err := p.compiled.Set("agent", cellObject(in.Agent)); err != nil {
		return false, err
	}
	if err := p.compiled.Set("goal", cellObject(in.Goal)); err != nil {
		return false, err
	}

	p.ran = true
	p.lastRun = in.Tick
	if err := p.compiled.RunContext(ctx); err != nil {
		return false, fmt.Errorf("script: run %s: %w", p.name, err)
	}
	if p.compiled.IsDefined("interval") {
		if n, ok := tengo.ToInt(p.compiled.Get("interval").Object()); ok && n > 0 {
			p.interval = n
		}
	}
	return p.moved, p.setErr
}

func (p *Program) setGoal(args ...tengo.Object) (tengo.Object, error) {
	c, ok := cellArgs(args)
	if !ok {
		return nil, tengo.ErrWrongNumArguments
	}
	if p.host == nil {
		return tengo.FalseValue, nil
	}
	if err := p.host.SetGoal(c); err != nil {
		if !errors.Is(err, ErrRejected) {
			p.setErr = err
		}
		return tengo.FalseValue, nil
	}
	p.moved = true
	return tengo.TrueValue, nil
}

func (p *Program) query(fn func(Host, grid.Cell) bool) tengo.CallableFunc {
	return func(args ...tengo.Object) (tengo.Object, error) {
		c, ok := cellArgs(args)
		if !ok {
			return nil, tengo.ErrWrongNumArguments
		}
		if p.host == nil || !fn(p.host, c) {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}
}

func cellArgs(args []tengo.Object) (grid.Cell, bool) {
	if len(args) != 2 {
		return grid.Cell{}, false
	}
	x, okX := tengo.ToInt(args[0])
	y, okY := tengo.ToInt(args[1])
	if !okX || !okY {
		return grid.Cell{}, false
	}
	return grid.Cell{X: x, Y: y}, true
}

func cellObject(c grid.Cell) *tengo.ImmutableArray {
	return &tengo.ImmutableArray{Value: []tengo.Object{
		&tengo.Int{Value: int64(c.X)},
		&tengo.Int{Value: int64(c.Y)},
	}}
}
