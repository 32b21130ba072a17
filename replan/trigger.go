// Package replan decides when a grid path must be recomputed as its endpoints
// move, runs the search, and publishes the outcome to subscribers.
//
// A Trigger is driven by the caller's periodic tick and does all of its work
// synchronously on that tick.
package replan

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/pathfind"
)

var (
	ErrMisconfigured = errors.New("replan: missing grid, occupancy, start or goal")
	ErrNoGoalMover   = errors.New("replan: goal cannot be moved")
)

// Positioner reports a world position.
type Positioner interface {
	Position() cp.Vector
}

// Mover is a Positioner that can be relocated.
type Mover interface {
	Positioner
	SetPosition(p cp.Vector)
}

// CellIndex converts between world positions and cells.
type CellIndex interface {
	WorldToCell(p cp.Vector) grid.Cell
	CellCenterWorld(c grid.Cell) cp.Vector
}

// Walkability answers whether a cell may be entered.
type Walkability interface {
	Walkable(c grid.Cell) bool
}

// Deps are the collaborators a Trigger reads from.
type Deps struct {
	Index     CellIndex
	Occupancy Walkability
	Start     Positioner
	Goal      Positioner
	Logger    *slog.Logger
}

// Trigger recomputes a path whenever the start or goal enters a new cell.
type Trigger struct {
	cfg  Config
	deps Deps
	log  *slog.Logger

	started   bool
	warned    bool
	checked   bool
	lastCheck time.Duration
	lastStart grid.Cell
	lastGoal  grid.Cell

	current    Event
	hasCurrent bool
	searches   int

	subs    []subscription
	nextSub int
}

// New returns a trigger. Missing collaborators are reported when the trigger runs.
func New(cfg Config, deps Deps) *Trigger {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Trigger{
		cfg:  cfg,
		deps: deps,
		log:  logger.With("component", "replan"),
	}
}

func (t *Trigger) Config() Config {
	if t == nil {
		return Config{}
	}
	return t.cfg
}

// SetRecalculateOnTargetChange switches between dynamic and static path mode.
func (t *Trigger) SetRecalculateOnTargetChange(on bool) {
	if t == nil {
		return
	}
	t.cfg.RecalculateOnTargetChange = on
}

// Subscribe registers fn for every event. Subscribers run synchronously in
// registration order. The returned func removes the subscription.
func (t *Trigger) Subscribe(fn func(Event)) (cancel func()) {
	if t == nil || fn == nil {
		return func() {}
	}
	t.nextSub++
	id := t.nextSub
	t.subs = append(t.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

func (t *Trigger) validate() error {
	if t == nil || t.deps.Index == nil || t.deps.Occupancy == nil || t.deps.Start == nil || t.deps.Goal == nil {
		return ErrMisconfigured
	}
	return nil
}

func (t *Trigger) warnMisconfigured(err error) {
	if t == nil || t.warned {
		return
	}
	t.warned = true
	t.log.Warn("replan: skipping", "err", err)
}

// Start records the current endpoint cells and computes the first path. It is
// not subject to the interval or walkability gates.
func (t *Trigger) Start() bool {
	if err := t.validate(); err != nil {
		t.warnMisconfigured(err)
		return false
	}
	t.started = true
	t.checked = false
	t.lastStart, t.lastGoal = t.endpointCells()
	return t.generate(t.lastStart, t.lastGoal)
}

// Started reports whether the first computation has run.
func (t *Trigger) Started() bool {
	return t != nil && t.started
}

// Update runs one scheduling tick at the given elapsed time.
func (t *Trigger) Update(elapsed time.Duration) {
	if err := t.validate(); err != nil {
		t.warnMisconfigured(err)
		return
	}
	if !t.started {
		t.Start()
		return
	}
	if !t.cfg.RecalculateOnTargetChange {
		return
	}
	if t.checked && elapsed-t.lastCheck < t.cfg.Interval {
		return
	}
	t.checked = true
	t.lastCheck = elapsed

	start, goal := t.endpointCells()
	if !t.endpointsWalkable(start, goal) {
		return
	}
	if start == t.lastStart && goal == t.lastGoal {
		return
	}
	t.lastStart, t.lastGoal = start, goal
	t.generate(start, goal)
}

// Replan recomputes the path for the current endpoints even if neither cell
// changed. Hosts call it after the occupancy data was reloaded.
func (t *Trigger) Replan() bool {
	if err := t.validate(); err != nil {
		t.warnMisconfigured(err)
		return false
	}
	start, goal := t.endpointCells()
	if !t.endpointsWalkable(start, goal) {
		return false
	}
	t.started = true
	t.lastStart, t.lastGoal = start, goal
	return t.generate(start, goal)
}

// SetGoalCell moves the goal to the center of c.
func (t *Trigger) SetGoalCell(c grid.Cell) error {
	if t == nil || t.deps.Index == nil {
		return ErrMisconfigured
	}
	mover, ok := t.deps.Goal.(Mover)
	if !ok {
		return ErrNoGoalMover
	}
	mover.SetPosition(t.deps.Index.CellCenterWorld(c))
	return nil
}

// SetIndex swaps the world/cell mapping, e.g. after the level's cell size
// or origin changed. The next Update or Replan maps endpoints with ix.
func (t *Trigger) SetIndex(ix CellIndex) {
	if t == nil || ix == nil {
		return
	}
	t.deps.Index = ix
	t.warned = false
}

// Current returns the path that is still held, if any.
func (t *Trigger) Current() (Event, bool) {
	if t == nil {
		return Event{}, false
	}
	return t.current, t.hasCurrent
}

// LastCells returns the endpoint cells of the last attempted search.
func (t *Trigger) LastCells() (start, goal grid.Cell) {
	if t == nil {
		return grid.Cell{}, grid.Cell{}
	}
	return t.lastStart, t.lastGoal
}

// EndpointCells returns the cells the start and goal occupy right now.
func (t *Trigger) EndpointCells() (start, goal grid.Cell, err error) {
	if err := t.validate(); err != nil {
		return grid.Cell{}, grid.Cell{}, err
	}
	start, goal = t.endpointCells()
	return start, goal, nil
}

// Searches counts how many searches have run.
func (t *Trigger) Searches() int {
	if t == nil {
		return 0
	}
	return t.searches
}

func (t *Trigger) endpointCells() (grid.Cell, grid.Cell) {
	ix := t.deps.Index
	return ix.WorldToCell(t.deps.Start.Position()), ix.WorldToCell(t.deps.Goal.Position())
}

func (t *Trigger) endpointsWalkable(start, goal grid.Cell) bool {
	occ := t.deps.Occupancy
	if occ.Walkable(start) && occ.Walkable(goal) {
		return true
	}
	t.log.Debug("replan: endpoint blocked", "start", start, "goal", goal)
	return false
}

func (t *Trigger) generate(start, goal grid.Cell) bool {
	if t.hasCurrent {
		t.publish(Event{
			Kind:   EventInvalidated,
			PathID: t.current.PathID,
			Start:  t.current.Start,
			Goal:   t.current.Goal,
		})
	}

	t.searches++
	res := pathfind.Find(start, goal, t.deps.Occupancy.Walkable, t.cfg.searchOptions()...)
	if !res.Found {
		t.log.Info("replan: no path found",
			"start", start,
			"goal", goal,
			"expanded", res.Expanded,
			"exhausted", res.Exhausted,
		)
		if t.cfg.ClearOnFailure {
			t.current = Event{}
			t.hasCurrent = false
		}
		t.publish(Event{
			Kind:      EventNotFound,
			Start:     start,
			Goal:      goal,
			Expanded:  res.Expanded,
			Exhausted: res.Exhausted,
			Cleared:   t.cfg.ClearOnFailure,
		})
		return false
	}

	ev := Event{
		Kind:     EventCalculated,
		PathID:   uuid.New(),
		Start:    start,
		Goal:     goal,
		Cells:    res.Path,
		Points:   pathfind.ToWorld(res.Path, t.deps.Index),
		Expanded: res.Expanded,
	}
	t.current = ev
	t.hasCurrent = true
	t.log.Debug("replan: path calculated", "start", start, "goal", goal, "steps", res.Len(), "expanded", res.Expanded)
	t.publish(ev)
	return true
}

func (t *Trigger) publish(ev Event) {
	if len(t.subs) == 0 {
		return
	}
	subs := append([]subscription(nil), t.subs...)
	for _, s := range subs {
		s.fn(ev)
	}
}
