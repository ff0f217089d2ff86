package geo

import (
	"math"

	"github.com/udisondev/skirmish/internal/model"
)

// AngleBetween returns the angle between two directions in degrees [0, 180].
// Returns 0 if either vector is zero.
func AngleBetween(a, b model.Vec3) float64 {
	la, lb := a.Len(), b.Len()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// HorizontalAngle returns the angle between forward and toTarget on the ground plane.
func HorizontalAngle(forward, toTarget model.Vec3) float64 {
	return AngleBetween(forward.Flat(), toTarget.Flat())
}

// WithinCone reports whether point lies inside the horizontal cone of angleDeg
// (full opening) around forward, starting at origin.
// angleDeg >= UnlimitedAngle always passes; a point at the origin always passes.
func WithinCone(origin, forward, point model.Vec3, angleDeg float64) bool {
	if angleDeg >= UnlimitedAngle {
		return true
	}
	to := point.Sub(origin).Flat()
	if to.IsZero() {
		return true
	}
	return HorizontalAngle(forward, to) <= angleDeg/2
}

// Yaw returns the heading of a direction in degrees, 0 = +Z, clockwise towards +X.
func Yaw(dir model.Vec3) float64 {
	return math.Atan2(dir.X, dir.Z) * 180 / math.Pi
}

// FromYaw returns the unit ground direction for a heading in degrees.
func FromYaw(deg float64) model.Vec3 {
	rad := deg * math.Pi / 180
	return model.Vec3{X: math.Sin(rad), Z: math.Cos(rad)}
}

// RotateY rotates v around the up axis by deg degrees (same convention as Yaw).
func RotateY(v model.Vec3, deg float64) model.Vec3 {
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return model.Vec3{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// RotateTowards turns current towards target by at most maxDeg degrees on the ground plane.
// maxDeg <= 0 snaps instantly.
func RotateTowards(current, target model.Vec3, maxDeg float64) model.Vec3 {
	target = target.Flat().Normalize()
	if target.IsZero() {
		return current
	}
	current = current.Flat().Normalize()
	if current.IsZero() || maxDeg <= 0 {
		return target
	}

	delta := normalizeDeg(Yaw(target) - Yaw(current))
	if math.Abs(delta) <= maxDeg {
		return target
	}
	if delta < 0 {
		maxDeg = -maxDeg
	}
	return FromYaw(Yaw(current) + maxDeg)
}

// Parabola returns the point at normalized progress t (0..1) on an arc from start to end
// peaking height units above the straight line at t=0.5.
// t=0 returns start and t=1 returns end exactly.
func Parabola(start, end model.Vec3, height, t float64) model.Vec3 {
	if t <= 0 {
		return start
	}
	if t >= 1 {
		return end
	}
	p := start.Lerp(end, t)
	p.Y += -4*height*t*t + 4*height*t
	return p
}

func normalizeDeg(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}
