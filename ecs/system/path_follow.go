package system

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/ecs"
	"github.com/milk9111/gridnav/ecs/component"
)

// PathFollowSystem moves followers toward their current waypoint. Entities
// with a physics body are driven through its velocity so the physics step
// does the integration; others are moved directly. A follower whose next
// waypoint lies inside a static box stops, drops its path and is marked
// Blocked.
type PathFollowSystem struct {
	log *slog.Logger
}

func NewPathFollowSystem(logger *slog.Logger) *PathFollowSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &PathFollowSystem{log: logger.With("system", "path_follow")}
}

func (ps *PathFollowSystem) Update(w *ecs.World) {
	if ps == nil || w == nil {
		return
	}
	dt := w.Delta().Seconds()
	pw := w.PhysicsWorld()
	ecs.ForEach2(w, component.PathFollowerComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, f *component.PathFollower, t *component.Transform) {
		body, _ := ecs.Get(w, e, component.PhysicsBodyComponent.Kind())
		pos := t.Position
		if body != nil && body.Body != nil {
			pos = body.Body.Position()
		}

		for f.Active() && pos.Distance(f.Points[f.Index]) <= f.Tolerance {
			f.Index++
		}
		if !f.Active() {
			f.Arrived = len(f.Points) > 0
			setVelocity(body, cp.Vector{})
			return
		}
		f.Arrived = false
		if dt <= 0 {
			return
		}

		target := f.Points[f.Index]
		if pw.Solid(target) {
			ps.log.Warn("waypoint is solid, stopping", "entity", e, "path", f.PathID, "waypoint", f.Index)
			setVelocity(body, cp.Vector{})
			f.Points = nil
			f.Index = 0
			f.Blocked = true
			return
		}
		dist := pos.Distance(target)
		if body != nil && body.Body != nil {
			speed := math.Min(f.Speed, dist/dt)
			setVelocity(body, target.Sub(pos).Normalize().Mult(speed))
			return
		}
		t.Position = moveTowards(pos, target, f.Speed*dt)
	})
}

// Retarget installs a new path and resumes from the waypoint closest to pos.
func Retarget(f *component.PathFollower, pos cp.Vector, points []cp.Vector) {
	f.Points = points
	f.Index = closestPoint(pos, points)
	f.Arrived = false
	f.Blocked = false
}

func closestPoint(pos cp.Vector, points []cp.Vector) int {
	best, bestDist := 0, math.Inf(1)
	for i, p := range points {
		if d := pos.DistanceSq(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func moveTowards(from, to cp.Vector, maxStep float64) cp.Vector {
	d := to.Sub(from)
	dist := d.Length()
	if dist <= maxStep || dist == 0 {
		return to
	}
	return from.Add(d.Mult(maxStep / dist))
}

func setVelocity(body *component.PhysicsBody, v cp.Vector) {
	if body == nil || body.Body == nil {
		return
	}
	body.Body.SetVelocityVector(v)
}
