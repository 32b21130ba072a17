package ecs

import (
	"time"

	"github.com/milk9111/gridnav/ecs/component"
)

// System updates a world each tick.
type System interface {
	Update(w *World)
}

// World owns entities, component stores, and system order.
type World struct {
	entities entityStore
	stores   map[component.ComponentID]*SparseSet
	systems  []System
	events   EventQueue

	delta   time.Duration
	elapsed time.Duration
	ticks   uint64

	physicsWorld *PhysicsWorld
}

// NewWorld creates an empty ECS world.
func NewWorld() *World {
	return &World{stores: make(map[component.ComponentID]*SparseSet)}
}

// CreateEntity allocates a new entity.
func CreateEntity(w *World) Entity {
	return w.entities.create()
}

// DestroyEntity removes every component of e and frees its slot.
func DestroyEntity(w *World, e Entity) bool {
	if w == nil || !w.entities.isAlive(e) {
		return false
	}
	for _, s := range w.stores {
		s.Remove(e.id())
	}
	if w.physicsWorld != nil {
		w.physicsWorld.Remove(e)
	}
	return w.entities.destroy(e)
}

// IsAlive reports whether an entity handle is valid.
func IsAlive(w *World, e Entity) bool {
	return w != nil && w.entities.isAlive(e)
}

// Entities returns the live entities in slot order.
func Entities(w *World) []Entity {
	if w == nil {
		return nil
	}
	return w.entities.all()
}

// AddSystem appends a system to the update order.
func (w *World) AddSystem(s System) {
	if s == nil {
		return
	}
	w.systems = append(w.systems, s)
}

// Advance moves the world clock forward by dt. Systems read the step with
// Delta and the running total with Elapsed.
func (w *World) Advance(dt time.Duration) {
	if w == nil || dt < 0 {
		return
	}
	w.delta = dt
	w.elapsed += dt
}

// Update runs all systems once and drops undrained events.
func (w *World) Update() {
	if w == nil {
		return
	}
	for _, s := range w.systems {
		s.Update(w)
	}
	w.events.flush()
	w.ticks++
}

// Step advances the clock by dt and runs one update.
func (w *World) Step(dt time.Duration) {
	w.Advance(dt)
	w.Update()
}

func (w *World) Delta() time.Duration   { return w.delta }
func (w *World) Elapsed() time.Duration { return w.elapsed }
func (w *World) Ticks() uint64          { return w.ticks }

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// SetPhysicsWorld attaches a physics world to this ECS world.
func (w *World) SetPhysicsWorld(pw *PhysicsWorld) {
	if w == nil {
		return
	}
	w.physicsWorld = pw
}

// PhysicsWorld returns the attached physics world, if any.
func (w *World) PhysicsWorld() *PhysicsWorld {
	if w == nil {
		return nil
	}
	return w.physicsWorld
}

func (w *World) store(id component.ComponentID, create bool) *SparseSet {
	s := w.stores[id]
	if s == nil && create {
		if w.stores == nil {
			w.stores = make(map[component.ComponentID]*SparseSet)
		}
		s = &SparseSet{}
		w.stores[id] = s
	}
	return s
}
