package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/udisondev/skirmish/internal/model"
)

// ErrOutOfBounds is returned when a cell or point is outside the grid.
var ErrOutOfBounds = errors.New("geo: out of bounds")

// Grid is a walkability map over the ground (XZ) plane.
// Cells are square, cellSize world units wide; blocked cells are walls for both
// movement and line of sight.
//
// A Grid is built once at session start and read concurrently afterwards;
// mutations after construction are not synchronized.
type Grid struct {
	origin   model.Vec3 // world position of cell (0,0) corner
	cellSize float64
	width    int32 // cells along X
	depth    int32 // cells along Z
	blocked  []bool
}

// NewGrid creates a grid with all cells walkable.
func NewGrid(origin model.Vec3, cellSize float64, width, depth int32) (*Grid, error) {
	if cellSize <= 0 {
		return nil, fmt.Errorf("creating grid: cell size %v must be positive", cellSize)
	}
	if width <= 0 || depth <= 0 {
		return nil, fmt.Errorf("creating grid: dimensions %dx%d must be positive", width, depth)
	}
	return &Grid{
		origin:   origin,
		cellSize: cellSize,
		width:    width,
		depth:    depth,
		blocked:  make([]bool, int(width)*int(depth)),
	}, nil
}

// CellSize returns the cell edge length in world units.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Dimensions returns grid size in cells.
func (g *Grid) Dimensions() (width, depth int32) {
	return g.width, g.depth
}

// CellOf converts a world position to cell coordinates (may be out of bounds).
func (g *Grid) CellOf(p model.Vec3) (cx, cz int32) {
	cx = int32(math.Floor((p.X - g.origin.X) / g.cellSize))
	cz = int32(math.Floor((p.Z - g.origin.Z) / g.cellSize))
	return cx, cz
}

// CellCenter returns the world position of a cell center at ground height.
func (g *Grid) CellCenter(cx, cz int32) model.Vec3 {
	return model.Vec3{
		X: g.origin.X + (float64(cx)+0.5)*g.cellSize,
		Y: g.origin.Y,
		Z: g.origin.Z + (float64(cz)+0.5)*g.cellSize,
	}
}

// InBounds reports whether cell coordinates are inside the grid.
func (g *Grid) InBounds(cx, cz int32) bool {
	return cx >= 0 && cx < g.width && cz >= 0 && cz < g.depth
}

// IsBlocked reports whether a cell is a wall. Out-of-bounds cells are blocked.
func (g *Grid) IsBlocked(cx, cz int32) bool {
	if !g.InBounds(cx, cz) {
		return true
	}
	return g.blocked[g.index(cx, cz)]
}

// SetBlocked marks a cell as wall or free.
func (g *Grid) SetBlocked(cx, cz int32, blocked bool) error {
	if !g.InBounds(cx, cz) {
		return fmt.Errorf("setting cell (%d,%d): %w", cx, cz, ErrOutOfBounds)
	}
	g.blocked[g.index(cx, cz)] = blocked
	return nil
}

// BlockRect marks every cell overlapping the world-space rectangle [min, max] as wall.
// The rectangle is clipped to the grid.
func (g *Grid) BlockRect(minP, maxP model.Vec3) {
	x0, z0 := g.CellOf(minP)
	x1, z1 := g.CellOf(maxP)
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if z0 > z1 {
		z0, z1 = z1, z0
	}
	for cx := max(x0, 0); cx <= min(x1, g.width-1); cx++ {
		for cz := max(z0, 0); cz <= min(z1, g.depth-1); cz++ {
			g.blocked[g.index(cx, cz)] = true
		}
	}
}

// IsWalkable reports whether a world position is on a free in-bounds cell.
func (g *Grid) IsWalkable(p model.Vec3) bool {
	cx, cz := g.CellOf(p)
	return !g.IsBlocked(cx, cz)
}

// NearestFree returns the closest walkable point to p within radius.
// p itself is returned when walkable; otherwise the nearest free cell center
// (ring search, ties broken by scan order).
func (g *Grid) NearestFree(p model.Vec3, radius float64) (model.Vec3, bool) {
	if g.IsWalkable(p) {
		return p, true
	}

	cx, cz := g.CellOf(p)
	maxRing := int32(math.Ceil(radius / g.cellSize))
	radiusSq := radius * radius

	for ring := int32(1); ring <= maxRing; ring++ {
		best := model.Vec3{}
		bestDist := math.Inf(1)
		for dx := -ring; dx <= ring; dx++ {
			for dz := -ring; dz <= ring; dz++ {
				if max(abs32(dx), abs32(dz)) != ring {
					continue
				}
				nx, nz := cx+dx, cz+dz
				if g.IsBlocked(nx, nz) {
					continue
				}
				c := g.CellCenter(nx, nz)
				c.Y = p.Y
				d := c.DistanceSquared(p)
				if d <= radiusSq && d < bestDist {
					best, bestDist = c, d
				}
			}
		}
		if !math.IsInf(bestDist, 1) {
			return best, true
		}
	}
	return model.Vec3{}, false
}

func (g *Grid) index(cx, cz int32) int {
	return int(cx)*int(g.depth) + int(cz)
}
