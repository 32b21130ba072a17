// Package occupancy answers whether a grid cell can be walked, by OR-ing
// a set of named obstruction layers inside fixed bounds.
//
// A Map must not be mutated while a search that reads it is running. Hosts
// that reload layers do so between ticks.
package occupancy

import "github.com/milk9111/gridnav/grid"

type namedLayer struct {
	name  string
	layer Layer
}

// Map aggregates obstruction layers over a bounded grid.
type Map struct {
	bounds grid.Rect
	layers []namedLayer
}

// NewMap returns a map over bounds with no layers.
func NewMap(bounds grid.Rect) *Map {
	return &Map{bounds: bounds}
}

// Bounds returns the walkable rectangle.
func (m *Map) Bounds() grid.Rect {
	if m == nil {
		return grid.Rect{}
	}
	return m.bounds
}

// SetBounds replaces the walkable rectangle.
func (m *Map) SetBounds(r grid.Rect) {
	if m == nil {
		return
	}
	m.bounds = r
}

// AddLayer appends an unnamed layer.
func (m *Map) AddLayer(l Layer) {
	m.SetLayer("", l)
}

// SetLayer replaces the layer registered under name, or appends it.
// Unnamed layers are always appended. A nil layer removes a named entry.
func (m *Map) SetLayer(name string, l Layer) {
	if m == nil {
		return
	}
	if name != "" {
		for i := range m.layers {
			if m.layers[i].name != name {
				continue
			}
			if l == nil {
				m.layers = append(m.layers[:i], m.layers[i+1:]...)
				return
			}
			m.layers[i].layer = l
			return
		}
	}
	if l == nil {
		return
	}
	m.layers = append(m.layers, namedLayer{name: name, layer: l})
}

// Layer returns the layer registered under name.
func (m *Map) Layer(name string) (Layer, bool) {
	if m == nil || name == "" {
		return nil, false
	}
	for _, nl := range m.layers {
		if nl.name == name {
			return nl.layer, true
		}
	}
	return nil, false
}

// Names returns layer names in evaluation order. Unnamed layers are "".
func (m *Map) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.layers))
	for _, nl := range m.layers {
		out = append(out, nl.name)
	}
	return out
}

// Blocked reports whether any layer blocks c. Bounds are not consulted.
func (m *Map) Blocked(c grid.Cell) bool {
	if m == nil {
		return false
	}
	for _, nl := range m.layers {
		if nl.layer == nil {
			continue
		}
		if nl.layer.Blocks(c) {
			return true
		}
	}
	return false
}

// Walkable reports whether c is inside bounds and no layer blocks it.
func (m *Map) Walkable(c grid.Cell) bool {
	if m == nil {
		return false
	}
	if !m.bounds.Contains(c) {
		return false
	}
	return !m.Blocked(c)
}
