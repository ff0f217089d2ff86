package geo

// Angle sentinels.
const (
	// UnlimitedAngle disables cone checks (full circle).
	UnlimitedAngle = 360.0
)

// Pathfinding configuration.
const (
	MaxPathfindIterations = 7000

	// A* weights.
	WeightStraight = 1.0
	WeightDiagonal = 1.41421356 // sqrt(2)

	// smoothPath passes.
	smoothPasses = 3
)
