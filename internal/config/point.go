package config

import "github.com/udisondev/skirmish/internal/model"

// Point is a YAML-friendly position.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Vec converts the point to a model vector.
func (p Point) Vec() model.Vec3 {
	return model.Vec3{X: p.X, Y: p.Y, Z: p.Z}
}

// Vecs converts a point list.
func Vecs(points []Point) []model.Vec3 {
	if len(points) == 0 {
		return nil
	}
	out := make([]model.Vec3, len(points))
	for i, p := range points {
		out[i] = p.Vec()
	}
	return out
}

// Rect is an axis-aligned obstacle footprint on the XZ plane.
type Rect struct {
	MinX float64 `yaml:"min_x"`
	MinZ float64 `yaml:"min_z"`
	MaxX float64 `yaml:"max_x"`
	MaxZ float64 `yaml:"max_z"`
}
