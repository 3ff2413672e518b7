package raster

import (
	"image/color"

	"voxel-station/internal/mathutil"
)

// Line is a world-space segment.
type Line struct {
	A, B  mathutil.Vec3
	Color color.NRGBA
	Width int // pixels
}

// Triangle is a flat-colored world-space face.
type Triangle struct {
	V     [3]mathutil.Vec3
	Color color.NRGBA
	Unlit bool
}

// Layer is a named group of primitives replaced as a unit.
type Layer struct {
	Name      string
	Lines     []Line
	Triangles []Triangle
	Hidden    bool
}

// Scene is the geometry shared by every camera that renders it. Layers draw
// in insertion order.
type Scene struct {
	layers []Layer
}

func NewScene() *Scene {
	return &Scene{}
}

func (s *Scene) index(name string) int {
	for i := range s.layers {
		if s.layers[i].Name == name {
			return i
		}
	}
	return -1
}

// SetLayer replaces the primitives of a layer, creating it if needed. An
// existing layer keeps its visibility.
func (s *Scene) SetLayer(name string, lines []Line, tris []Triangle) {
	if i := s.index(name); i >= 0 {
		s.layers[i].Lines = lines
		s.layers[i].Triangles = tris
		return
	}
	s.layers = append(s.layers, Layer{Name: name, Lines: lines, Triangles: tris})
}

// SetVisible shows or hides a layer. Unknown names are ignored.
func (s *Scene) SetVisible(name string, visible bool) {
	if i := s.index(name); i >= 0 {
		s.layers[i].Hidden = !visible
	}
}

// Layer returns a copy of the named layer.
func (s *Scene) Layer(name string) (Layer, bool) {
	if i := s.index(name); i >= 0 {
		return s.layers[i], true
	}
	return Layer{}, false
}

// Layers returns the layers in draw order.
func (s *Scene) Layers() []Layer {
	return s.layers
}
