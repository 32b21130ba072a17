package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/gridnav/grid"
	"github.com/milk9111/gridnav/occupancy"
)

const (
	collisionTypeSolid cp.CollisionType = iota + 1
	collisionTypeAgent
)

const (
	categorySolid uint = 1 << iota
	categoryAgent
)

var solidQuery = cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, categorySolid)

// PhysicsWorld owns a gravity-free Chipmunk space holding one kinematic body
// per moving entity and static boxes for obstruction tiles.
type PhysicsWorld struct {
	space  *cp.Space
	bodies map[Entity]*cp.Body
	static []*cp.Shape
}

func NewPhysicsWorld() *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 10
	space.SetGravity(cp.Vector{})
	return &PhysicsWorld{
		space:  space,
		bodies: make(map[Entity]*cp.Body),
	}
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// AddKinematic creates a kinematic body for e at pos, replacing any previous one.
func (pw *PhysicsWorld) AddKinematic(e Entity, pos cp.Vector, radius float64) *cp.Body {
	if pw == nil || pw.space == nil {
		return nil
	}
	pw.Remove(e)
	body := cp.NewKinematicBody()
	body.SetPosition(pos)
	if radius <= 0 {
		radius = 1
	}
	shape := cp.NewCircle(body, radius, cp.Vector{})
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeAgent)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryAgent, cp.ALL_CATEGORIES))
	pw.space.AddBody(body)
	pw.space.AddShape(shape)
	pw.bodies[e] = body
	return body
}

// Body returns the body registered for e.
func (pw *PhysicsWorld) Body(e Entity) (*cp.Body, bool) {
	if pw == nil {
		return nil, false
	}
	b, ok := pw.bodies[e]
	return b, ok
}

// Remove drops the body of e and its shapes from the space.
func (pw *PhysicsWorld) Remove(e Entity) {
	if pw == nil || pw.space == nil {
		return
	}
	body, ok := pw.bodies[e]
	if !ok {
		return
	}
	var shapes []*cp.Shape
	body.EachShape(func(s *cp.Shape) { shapes = append(shapes, s) })
	for _, s := range shapes {
		pw.space.RemoveShape(s)
	}
	pw.space.RemoveBody(body)
	delete(pw.bodies, e)
}

// Step advances the physics simulation by dt seconds.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil || dt <= 0 {
		return
	}
	pw.space.Step(dt)
}

// BuildStatic replaces the static shapes with boxes covering the tiles of
// layers and returns how many boxes were built. Adjacent tiles are merged into
// as few rectangles as a greedy scan finds.
func (pw *PhysicsWorld) BuildStatic(ix grid.Index, layers ...*occupancy.TileLayer) int {
	if pw == nil || pw.space == nil {
		return 0
	}
	for _, s := range pw.static {
		pw.space.RemoveShape(s)
	}
	pw.static = pw.static[:0]
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		pw.processLayerTiles(ix, layer)
	}
	return len(pw.static)
}

// StaticShapes returns how many static boxes are in the space.
func (pw *PhysicsWorld) StaticShapes() int {
	if pw == nil {
		return 0
	}
	return len(pw.static)
}

// Solid reports whether p lies inside a static box. Agent shapes are ignored.
func (pw *PhysicsWorld) Solid(p cp.Vector) bool {
	if pw == nil || pw.space == nil {
		return false
	}
	info := pw.space.PointQueryNearest(p, 0, solidQuery)
	return info != nil && info.Shape != nil && info.Shape.Body() == pw.space.StaticBody
}

func (pw *PhysicsWorld) processLayerTiles(ix grid.Index, layer *occupancy.TileLayer) {
	width, height := layer.Width, layer.Height
	processed := make([]bool, width*height)
	solid := func(x, y int) bool {
		return layer.HasTile(grid.Cell{X: x + layer.Offset.X, Y: y + layer.Offset.Y})
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := y*width + x
			if processed[idx] {
				continue
			}
			if !solid(x, y) {
				processed[idx] = true
				continue
			}

			w := 1
			for x+w < width && !processed[y*width+x+w] && solid(x+w, y) {
				w++
			}

			h := 1
		heightLoop:
			for y+h < height {
				for xi := x; xi < x+w; xi++ {
					if processed[(y+h)*width+xi] || !solid(xi, y+h) {
						break heightLoop
					}
				}
				h++
			}

			lo := ix.CellMinWorld(grid.Cell{X: x + layer.Offset.X, Y: y + layer.Offset.Y})
			hi := ix.CellMinWorld(grid.Cell{X: x + w + layer.Offset.X, Y: y + h + layer.Offset.Y})
			bb := cp.BB{L: lo.X, B: lo.Y, R: hi.X, T: hi.Y}
			shape := cp.NewBox2(pw.space.StaticBody, bb, 0)
			shape.SetCollisionType(collisionTypeSolid)
			shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categorySolid, cp.ALL_CATEGORIES))
			pw.space.AddShape(shape)
			pw.static = append(pw.static, shape)

			for yy := y; yy < y+h; yy++ {
				for xx := x; xx < x+w; xx++ {
					processed[yy*width+xx] = true
				}
			}
		}
	}
}
