package geo

import (
	"container/heap"
	"math"

	"github.com/udisondev/skirmish/internal/model"
)

// FindPath finds a path from start to end using A* pathfinding over grid cells.
// Returns waypoints in world coordinates (start excluded, end included) or nil if
// no path exists. The last waypoint is end itself when end is walkable.
func (g *Grid) FindPath(start, end model.Vec3) []model.Vec3 {
	sx, sz := g.CellOf(start)
	ex, ez := g.CellOf(end)

	if g.IsBlocked(ex, ez) {
		return nil
	}

	// Same cell, already there
	if sx == ex && sz == ez {
		return []model.Vec3{end}
	}

	// Straight line is free: no search needed.
	if g.CanMoveToTarget(start, end) {
		return []model.Vec3{end}
	}

	result := g.astar(sx, sz, ex, ez)
	if result == nil {
		return nil // No path found
	}

	path := make([]model.Vec3, 0, 32)
	for n := result; n != nil; n = n.parent {
		p := g.CellCenter(n.x, n.z)
		p.Y = end.Y
		path = append(path, p)
	}

	// Reverse (A* builds path backward)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	// Replace start cell center with the actual start and the goal cell center with end.
	path[0] = start
	path[len(path)-1] = end

	path = g.smoothPath(path)

	// Drop the start point: callers already stand there.
	return path[1:]
}

// smoothPath removes unnecessary intermediate waypoints from an A* path.
// If waypoint N can be reached directly from the last kept waypoint, N-1 is removed.
func (g *Grid) smoothPath(path []model.Vec3) []model.Vec3 {
	for range smoothPasses {
		if len(path) <= 2 {
			return path
		}

		changed := false
		smoothed := make([]model.Vec3, 0, len(path))
		smoothed = append(smoothed, path[0])

		for i := 1; i < len(path)-1; i++ {
			prev := smoothed[len(smoothed)-1]
			next := path[i+1]

			if g.CanMoveToTarget(prev, next) {
				changed = true
				continue
			}
			smoothed = append(smoothed, path[i])
		}
		smoothed = append(smoothed, path[len(path)-1])
		path = smoothed

		if !changed {
			break
		}
	}
	return path
}

// PathLength returns the polyline length from start through every waypoint.
func PathLength(start model.Vec3, path []model.Vec3) float64 {
	total := 0.0
	prev := start
	for _, p := range path {
		total += prev.Distance(p)
		prev = p
	}
	return total
}

// gridNode represents a node in the A* search graph.
type gridNode struct {
	x, z   int32
	parent *gridNode
	gCost  float64 // Actual cost from start
	hCost  float64 // Heuristic cost to target
	fCost  float64 // gCost + hCost
	index  int     // heap index
}

// astar implements the A* algorithm on grid cells.
func (g *Grid) astar(sx, sz, tx, tz int32) *gridNode {
	start := &gridNode{x: sx, z: sz}
	start.hCost = heuristic(sx, sz, tx, tz)
	start.fCost = start.hCost

	openList := &nodeHeap{}
	heap.Init(openList)
	heap.Push(openList, start)

	closed := make(map[nodeKey]struct{}, 256)

	for range MaxPathfindIterations {
		if openList.Len() == 0 {
			return nil
		}

		current := heap.Pop(openList).(*gridNode)

		if current.x == tx && current.z == tz {
			return current
		}

		key := nodeKey{current.x, current.z}
		if _, exists := closed[key]; exists {
			continue
		}
		closed[key] = struct{}{}

		g.expandNeighbors(current, tx, tz, openList, closed)
	}

	return nil // Max iterations exceeded
}

// expandNeighbors adds valid adjacent cells to the open list.
func (g *Grid) expandNeighbors(
	current *gridNode,
	tx, tz int32,
	openList *nodeHeap,
	closed map[nodeKey]struct{},
) {
	// Cardinal directions: N, E, S, W
	cardinals := [4][2]int32{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	passable := [4]bool{}

	for i, d := range cardinals {
		nx := current.x + d[0]
		nz := current.z + d[1]
		if g.IsBlocked(nx, nz) {
			continue
		}
		passable[i] = true
		g.pushNode(current, nx, nz, WeightStraight, tx, tz, openList, closed)
	}

	// Diagonal directions (anti-corner-cut: both adjacent cardinals must be passable)
	diagonals := [4]struct {
		dx, dz     int32
		adj1, adj2 int
	}{
		{1, 1, 0, 1},   // NE: need N(0) and E(1)
		{1, -1, 1, 2},  // SE: need E(1) and S(2)
		{-1, -1, 2, 3}, // SW: need S(2) and W(3)
		{-1, 1, 3, 0},  // NW: need W(3) and N(0)
	}

	for _, d := range diagonals {
		if !passable[d.adj1] || !passable[d.adj2] {
			continue
		}
		nx := current.x + d.dx
		nz := current.z + d.dz
		if g.IsBlocked(nx, nz) {
			continue
		}
		g.pushNode(current, nx, nz, WeightDiagonal, tx, tz, openList, closed)
	}
}

func (g *Grid) pushNode(current *gridNode, nx, nz int32, weight float64, tx, tz int32, openList *nodeHeap, closed map[nodeKey]struct{}) {
	if _, exists := closed[nodeKey{nx, nz}]; exists {
		return
	}
	node := &gridNode{
		x: nx, z: nz,
		parent: current,
		gCost:  current.gCost + weight,
		hCost:  heuristic(nx, nz, tx, tz),
	}
	node.fCost = node.gCost + node.hCost
	heap.Push(openList, node)
}

// heuristic is the octile distance between two cells.
func heuristic(x, z, tx, tz int32) float64 {
	dx := math.Abs(float64(x - tx))
	dz := math.Abs(float64(z - tz))
	return WeightStraight*(dx+dz) + (WeightDiagonal-2*WeightStraight)*math.Min(dx, dz)
}

// nodeKey uniquely identifies a cell position for the closed set.
type nodeKey struct {
	x, z int32
}

// nodeHeap implements container/heap for A* open list (min-heap by fCost).
type nodeHeap []*gridNode

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].fCost < h[j].fCost }
func (h nodeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)        { n := x.(*gridNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil // GC
	node.index = -1
	*h = old[:n-1]
	return node
}
