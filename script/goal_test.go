package script

import (
	"context"
	"errors"
	"testing"

	"github.com/d5/tengo/v2"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/levels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	goal    grid.Cell
	sets    []grid.Cell
	blocked map[grid.Cell]bool
	err     error
}

func (h *fakeHost) SetGoal(c grid.Cell) error {
	if h.err != nil {
		return h.err
	}
	h.goal = c
	h.sets = append(h.sets, c)
	return nil
}

func (h *fakeHost) Walkable(c grid.Cell) bool { return !h.blocked[c] }
func (h *fakeHost) Floor(c grid.Cell) bool    { return c.X >= 0 && c.Y >= 0 }

func TestRunSetsGoal(t *testing.T) {
	p, err := Compile("inline", []byte(`
if walkable(agent[0] + 1, agent[1]) {
	set_goal(agent[0] + 1, agent[1] + tick)
}
`))
	require.NoError(t, err)

	host := &fakeHost{}
	moved, err := p.Run(context.Background(), Input{Tick: 2, Agent: grid.Cell{X: 3, Y: 1}}, host)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, grid.Cell{X: 4, Y: 3}, host.goal)

	host.blocked = map[grid.Cell]bool{{X: 4, Y: 1}: true}
	moved, err = p.Run(context.Background(), Input{Agent: grid.Cell{X: 3, Y: 1}}, host)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestIntervalGatesRuns(t *testing.T) {
	p, err := Compile("every3", []byte(`interval := 3`))
	require.NoError(t, err)
	assert.Equal(t, 1, p.Interval())
	assert.True(t, p.Due(5), "first run is always due")

	_, err = p.Run(context.Background(), Input{Tick: 5}, &fakeHost{})
	require.NoError(t, err)
	assert.Equal(t, 3, p.Interval())
	assert.False(t, p.Due(6))
	assert.False(t, p.Due(7))
	assert.True(t, p.Due(8))
}

func TestSetGoalErrorIsReported(t *testing.T) {
	p, err := Compile("fail", []byte(`ok := set_goal(1, 1)`))
	require.NoError(t, err)

	boom := errors.New("boom")
	moved, err := p.Run(context.Background(), Input{}, &fakeHost{err: boom})
	assert.False(t, moved)
	assert.ErrorIs(t, err, boom)
}

func TestCompileAndRuntimeErrors(t *testing.T) {
	_, err := Compile("broken", []byte(`if {`))
	assert.Error(t, err)

	p, err := Compile("badargs", []byte(`set_goal(1)`))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), Input{}, &fakeHost{})
	assert.Error(t, err)

	_, err = p.Run(context.Background(), Input{}, nil)
	assert.ErrorIs(t, err, ErrNoHost)
}

func TestStdlibImports(t *testing.T) {
	p, err := Compile("math", []byte(`
math := import("math")
set_goal(int(math.abs(-2)), 0)
`))
	require.NoError(t, err)
	host := &fakeHost{}
	_, err = p.Run(context.Background(), Input{}, host)
	require.NoError(t, err)
	assert.Equal(t, grid.Cell{X: 2}, host.goal)
}

func TestBundledScripts(t *testing.T) {
	t.Run("patrol", func(t *testing.T) {
		src, err := levels.LoadScript("patrol")
		require.NoError(t, err)
		p, err := Compile("patrol", src)
		require.NoError(t, err)

		host := &fakeHost{}
		for tick := 0; tick <= 270; tick++ {
			if !p.Due(tick) {
				continue
			}
			_, err := p.Run(context.Background(), Input{Tick: tick, Goal: host.goal, Width: 12, Height: 8}, host)
			require.NoError(t, err)
		}
		assert.Equal(t, 90, p.Interval())
		assert.Equal(t, []grid.Cell{{X: 11, Y: 7}, {X: 0, Y: 7}, {X: 0, Y: 0}, {X: 11, Y: 0}}, host.sets)
	})
	t.Run("chase", func(t *testing.T) {
		src, err := levels.LoadScript("chase")
		require.NoError(t, err)
		p, err := Compile("chase", src)
		require.NoError(t, err)

		host := &fakeHost{}
		_, err = p.Run(context.Background(), Input{Agent: grid.Cell{X: 9, Y: 2}, Width: 10, Height: 5}, host)
		require.NoError(t, err)
		assert.Equal(t, grid.Cell{X: 7, Y: 2}, host.goal)
		assert.Equal(t, 30, p.Interval())
	})
}

func TestRejectedGoalIsNotAnError(t *testing.T) {
	p, err := Compile("reject", []byte(`moved := set_goal(1, 1)`))
	require.NoError(t, err)
	moved, err := p.Run(context.Background(), Input{}, &fakeHost{err: ErrRejected})
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, false, p.compiled.Get("moved").Bool())
}

func TestBindStopsAtFirstError(t *testing.T) {
	s := tengo.NewScript([]byte(`x := ok`))
	err := bind(s, []binding{
		{"ok", 1},
		{"bad", make(chan int)},
		{"later", 2},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind bad")

	assert.NoError(t, bind(s, []binding{{"ok", 1}, {"later", "two"}}))
}
