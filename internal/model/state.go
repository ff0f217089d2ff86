package model

// EnemyState is the controller state of an enemy. Exactly one is active.
type EnemyState int32

const (
	// StateIdle - enemy stands in place, faces target if visible
	StateIdle EnemyState = iota
	// StatePatrolling - enemy walks its patrol route
	StatePatrolling
	// StateChasing - enemy pursues a target inside detection range
	StateChasing
	// StateAttacking - target inside attack range
	StateAttacking
	// StateRetreating - enemy disengages after heavy damage
	StateRetreating
	// StateDead - terminal, no outgoing transitions
	StateDead
)

// String returns human-readable state name
func (s EnemyState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePatrolling:
		return "PATROLLING"
	case StateChasing:
		return "CHASING"
	case StateAttacking:
		return "ATTACKING"
	case StateRetreating:
		return "RETREATING"
	case StateDead:
		return "DEAD"
	default:
		return "UNKNOWN"
	}
}

// ParseEnemyState parses a config name ("idle", "patrolling"...).
// Returns false for unknown names.
func ParseEnemyState(name string) (EnemyState, bool) {
	switch name {
	case "idle", "IDLE":
		return StateIdle, true
	case "patrolling", "patrol", "PATROLLING":
		return StatePatrolling, true
	case "chasing", "CHASING":
		return StateChasing, true
	case "attacking", "ATTACKING":
		return StateAttacking, true
	case "retreating", "RETREATING":
		return StateRetreating, true
	case "dead", "DEAD":
		return StateDead, true
	default:
		return StateIdle, false
	}
}
