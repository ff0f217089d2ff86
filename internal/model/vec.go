package model

import "math"

// Vec3 is a position or direction in world space. Y is up.
// Value type, passed by value.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

// Zero and Up are the common constant vectors.
var (
	Zero = Vec3{}
	Up   = Vec3{Y: 1}
)

// NewVec3 creates a vector from components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// LenSq returns squared length (no sqrt for hot paths).
func (v Vec3) LenSq() float64 {
	return v.Dot(v)
}

// Len returns vector length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// Normalize returns unit vector. Zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Flat returns the vector projected on the ground plane (Y zeroed).
func (v Vec3) Flat() Vec3 {
	return Vec3{X: v.X, Z: v.Z}
}

// DistanceSquared returns squared distance to another point.
func (v Vec3) DistanceSquared(o Vec3) float64 {
	return v.Sub(o).LenSq()
}

// Distance returns distance to another point.
func (v Vec3) Distance(o Vec3) float64 {
	return math.Sqrt(v.DistanceSquared(o))
}

// Lerp interpolates between v and o. t is not clamped.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}
