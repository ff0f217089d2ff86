package geo

import (
	"math"

	"github.com/udisondev/skirmish/internal/model"
)

// CanSeeTarget checks line of sight between two world positions.
// Walks the cells between both points; any blocked cell hides the target.
// Height is ignored: walls are infinitely tall.
func (g *Grid) CanSeeTarget(from, to model.Vec3) bool {
	x1, z1 := g.CellOf(from)
	x2, z2 := g.CellOf(to)

	if x1 == x2 && z1 == z2 {
		return !g.IsBlocked(x2, z2)
	}

	it := NewLineIterator(x1, z1, x2, z2)
	prevX, prevZ := x1, z1
	for it.Next() {
		cx, cz := it.X(), it.Z()
		if g.IsBlocked(cx, cz) {
			return false
		}
		// Diagonal step: both adjacent cardinals blocked means the corner is sealed.
		if cx != prevX && cz != prevZ && g.IsBlocked(prevX, cz) && g.IsBlocked(cx, prevZ) {
			return false
		}
		prevX, prevZ = cx, cz
	}

	return true
}

// CanMoveToTarget checks whether direct movement between two points is possible.
// Stricter than CanSeeTarget: diagonal steps may not cut any wall corner.
func (g *Grid) CanMoveToTarget(from, to model.Vec3) bool {
	x1, z1 := g.CellOf(from)
	x2, z2 := g.CellOf(to)

	it := NewLineIterator(x1, z1, x2, z2)
	prevX, prevZ := x1, z1
	for it.Next() {
		cx, cz := it.X(), it.Z()
		if g.IsBlocked(cx, cz) {
			return false
		}
		if cx != prevX && cz != prevZ && (g.IsBlocked(prevX, cz) || g.IsBlocked(cx, prevZ)) {
			return false
		}
		prevX, prevZ = cx, cz
	}

	return true
}

// Raycast casts a ray over the ground plane and returns the first point where it
// enters a blocked cell, with the travelled distance.
// Uses a cell-exact grid traversal (Amanatides & Woo). The vertical component of
// dir only scales the returned point's height.
func (g *Grid) Raycast(origin, dir model.Vec3, maxDist float64) (model.Vec3, float64, bool) {
	dir = dir.Normalize()
	flat := dir.Flat()
	flatLen := flat.Len()

	cx, cz := g.CellOf(origin)
	if g.IsBlocked(cx, cz) {
		return origin, 0, true
	}
	if flatLen == 0 || maxDist <= 0 {
		return model.Vec3{}, 0, false
	}

	// Parametrize in units of distance along dir.
	stepX, stepZ := int32(1), int32(1)
	tMaxX, tMaxZ := math.Inf(1), math.Inf(1)
	tDeltaX, tDeltaZ := math.Inf(1), math.Inf(1)

	if dir.X != 0 {
		tDeltaX = g.cellSize / math.Abs(dir.X)
		nextX := g.origin.X + float64(cx+1)*g.cellSize
		if dir.X < 0 {
			stepX = -1
			nextX = g.origin.X + float64(cx)*g.cellSize
		}
		tMaxX = (nextX - origin.X) / dir.X
	}
	if dir.Z != 0 {
		tDeltaZ = g.cellSize / math.Abs(dir.Z)
		nextZ := g.origin.Z + float64(cz+1)*g.cellSize
		if dir.Z < 0 {
			stepZ = -1
			nextZ = g.origin.Z + float64(cz)*g.cellSize
		}
		tMaxZ = (nextZ - origin.Z) / dir.Z
	}

	for {
		var t float64
		if tMaxX < tMaxZ {
			t = tMaxX
			cx += stepX
			tMaxX += tDeltaX
		} else {
			t = tMaxZ
			cz += stepZ
			tMaxZ += tDeltaZ
		}
		if t > maxDist {
			return model.Vec3{}, 0, false
		}
		if g.IsBlocked(cx, cz) {
			return origin.Add(dir.Scale(t)), t, true
		}
	}
}
