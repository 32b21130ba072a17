package ecs

import (
	"testing"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/ecs/component"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/occupancy"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false the second time")
				}
				if len(Entities(w)) != c.create-1 {
					t.Fatalf("expected %d entities after destroy, got %d", c.create-1, len(Entities(w)))
				}
			}
		})
	}
}

func TestRecycledSlotInvalidatesOldHandle(t *testing.T) {
	w := NewWorld()
	old := CreateEntity(w)
	if !DestroyEntity(w, old) {
		t.Fatal("destroy failed")
	}
	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot reuse, got %v and %v", old, fresh)
	}
	if fresh == old || IsAlive(w, old) {
		t.Fatalf("stale handle %v must not be alive", old)
	}

	h := component.NewComponent[int]()
	if err := Add(w, old, h.Kind(), intPtr(1)); err != component.ErrEntityNotAlive {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
	if !fresh.Valid() || Entity(0).Valid() {
		t.Fatal("validity mismatch")
	}
}

func toSet(ents []Entity) map[Entity]struct{} {
	m := make(map[Entity]struct{}, len(ents))
	for _, e := range ents {
		m[e] = struct{}{}
	}
	return m
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	h1 := component.NewComponent[int]()
	h2 := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, h1.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
			},
			teardown: func() bool { return Remove(w, e1, h1.Kind()) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, h2.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				if !Has(w, e1, h2.Kind()) || !Has(w, e2, h2.Kind()) {
					t.Fatalf("expected both entities to have string component")
				}
				if Count(w, h2.Kind()) != 2 {
					t.Fatalf("expected 2 strings, got %d", Count(w, h2.Kind()))
				}
			},
			teardown: func() bool { return Remove(w, e1, h2.Kind()) },
		},
		{
			name: "mutate_through_pointer",
			setup: func() error {
				return Add(w, e2, h1.Kind(), intPtr(1))
			},
			check: func(t *testing.T) {
				v, _ := Get(w, e2, h1.Kind())
				*v = 42
				again, _ := Get(w, e2, h1.Kind())
				if *again != 42 {
					t.Fatalf("expected in-place mutation, got %d", *again)
				}
			},
			teardown: func() bool { return Remove(w, e2, h1.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}

	if err := Add(w, e1, h1.Kind(), nil); err != component.ErrNilComponent {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	if err := Add(w, e1, component.ComponentKind[int]{}, intPtr(1)); err != component.ErrInvalidComponentKind {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
}

func TestDestroyRemovesComponents(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	e := CreateEntity(w)
	if err := Add(w, e, h.Kind(), intPtr(3)); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, e)
	if Count(w, h.Kind()) != 0 {
		t.Fatalf("expected store to be empty after destroy")
	}
	if _, ok := First(w, h.Kind()); ok {
		t.Fatalf("First should not return a destroyed entity")
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	e3 := CreateEntity(w)

	if err := Add(w, e1, h.Kind(), intPtr(1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := Add(w, e3, h.Kind(), intPtr(3)); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	var ents []Entity
	ForEach(w, h.Kind(), func(e Entity, _ *int) { ents = append(ents, e) })
	set := toSet(ents)

	if _, ok := set[e1]; !ok {
		t.Fatalf("expected e1 in ForEach result")
	}
	if _, ok := set[e3]; !ok {
		t.Fatalf("expected e3 in ForEach result")
	}
	if _, ok := set[e2]; ok {
		t.Fatalf("did not expect e2 in ForEach result")
	}

	first, ok := First(w, h.Kind())
	if !ok || first != e1 {
		t.Fatalf("expected First to return e1, got %v", first)
	}
}

func TestForEachToleratesDestroy(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()
	var ents []Entity
	for i := 0; i < 4; i++ {
		e := CreateEntity(w)
		ents = append(ents, e)
		if err := Add(w, e, h.Kind(), intPtr(i)); err != nil {
			t.Fatal(err)
		}
	}

	visited := 0
	ForEach(w, h.Kind(), func(e Entity, v *int) {
		visited++
		if *v == 0 {
			DestroyEntity(w, ents[1])
			DestroyEntity(w, ents[2])
		}
	})
	if visited != 2 {
		t.Fatalf("expected 2 visits, got %d", visited)
	}
}

func TestForEach2And3(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "intersection",
			run: func(t *testing.T) {
				w := NewWorld()
				e1 := CreateEntity(w)
				e2 := CreateEntity(w)
				e3 := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				must(t, Add(w, e1, ka, intPtr(1)))
				must(t, Add(w, e2, ka, intPtr(2)))
				must(t, Add(w, e2, kb, intPtr(3)))
				must(t, Add(w, e2, kc, intPtr(5)))
				must(t, Add(w, e3, kb, intPtr(4)))

				var two []Entity
				ForEach2(w, ka, kb, func(e Entity, _ *int, _ *int) { two = append(two, e) })
				if len(two) != 1 || two[0] != e2 {
					t.Fatalf("expected only e2, got %v", two)
				}
				var three []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { three = append(three, e) })
				if len(three) != 1 || three[0] != e2 {
					t.Fatalf("expected only e2, got %v", three)
				}
			},
		},
		{
			name: "ignores_dead_entities",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()
				kc := component.NewComponentKind[int]()

				must(t, Add(w, e, ka, intPtr(1)))
				must(t, Add(w, e, kb, intPtr(2)))
				must(t, Add(w, e, kc, intPtr(3)))

				if !DestroyEntity(w, e) {
					t.Fatal("failed to destroy entity")
				}

				var res []Entity
				ForEach3(w, ka, kb, kc, func(e Entity, _ *int, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty result after destroy, got %v", res)
				}
			},
		},
		{
			name: "missing_store",
			run: func(t *testing.T) {
				w := NewWorld()
				e := CreateEntity(w)

				ka := component.NewComponentKind[int]()
				kb := component.NewComponentKind[int]()

				must(t, Add(w, e, ka, intPtr(1)))

				var res []Entity
				ForEach2(w, ka, kb, func(e Entity, _ *int, _ *int) { res = append(res, e) })
				if len(res) != 0 {
					t.Fatalf("expected empty when other store missing, got %v", res)
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, tc.run)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

type recordSystem struct {
	name string
	log  *[]string
}

func (s recordSystem) Update(w *World) {
	*s.log = append(*s.log, s.name)
	w.Events().Push(Event{Type: s.name})
}

func TestUpdateOrderAndClock(t *testing.T) {
	w := NewWorld()
	var order []string
	w.AddSystem(recordSystem{name: "a", log: &order})
	w.AddSystem(nil)
	w.AddSystem(recordSystem{name: "b", log: &order})

	w.Step(16 * time.Millisecond)
	w.Step(16 * time.Millisecond)

	want := []string{"a", "b", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
	if w.Elapsed() != 32*time.Millisecond || w.Delta() != 16*time.Millisecond || w.Ticks() != 2 {
		t.Fatalf("clock mismatch: elapsed=%v delta=%v ticks=%d", w.Elapsed(), w.Delta(), w.Ticks())
	}
	if w.Events().Len() != 0 {
		t.Fatalf("expected events to be flushed after update")
	}
}

func TestPhysicsWorldKinematicBody(t *testing.T) {
	pw := NewPhysicsWorld()
	w := NewWorld()
	w.SetPhysicsWorld(pw)
	e := CreateEntity(w)

	body := pw.AddKinematic(e, cp.Vector{X: 10, Y: 10}, 4)
	body.SetVelocity(20, 0)
	pw.Step(0.5)

	got := body.Position()
	if got.X < 19.99 || got.X > 20.01 || got.Y != 10 {
		t.Fatalf("expected body at (20,10), got %v", got)
	}

	DestroyEntity(w, e)
	if _, ok := pw.Body(e); ok {
		t.Fatalf("destroying the entity should remove its body")
	}
}

func TestPhysicsWorldStaticShapes(t *testing.T) {
	layer := occupancy.NewTileLayer("walls", 4, 3)
	for _, c := range []grid.Cell{{X: 1, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 2}} {
		layer.SetTile(c, 1)
	}
	ix := grid.NewIndex(10, cp.Vector{})

	pw := NewPhysicsWorld()
	if n := pw.BuildStatic(ix, layer, nil); n != 3 || pw.StaticShapes() != 3 {
		t.Fatalf("expected 3 merged boxes, got %d", n)
	}
	// Agent sensors do not count as solid.
	pw.AddKinematic(makeEntity(7, 0), ix.CellCenterWorld(grid.Cell{}), 4)
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			c := grid.Cell{X: x, Y: y}
			if got, want := pw.Solid(ix.CellCenterWorld(c)), layer.HasTile(c); got != want {
				t.Fatalf("cell %v: solid=%v want %v", c, got, want)
			}
		}
	}

	pw.BuildStatic(ix)
	if pw.StaticShapes() != 0 || pw.Solid(ix.CellCenterWorld(grid.Cell{X: 1, Y: 0})) {
		t.Fatalf("rebuild should drop previous shapes")
	}
}
