package model

import "sync/atomic"

// IDGenerator generates unique entity IDs.
//
// ID ranges (convention):
//
//	0x00000000 - 0x0FFFFFFF: Reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: Players
//	0x20000000 - 0x2FFFFFFF: Enemies
//	0x30000000 - 0x3FFFFFFF: Projectiles
type IDGenerator struct {
	nextPlayerID     atomic.Uint32
	nextEnemyID      atomic.Uint32
	nextProjectileID atomic.Uint32
}

// NewIDGenerator creates a new ID generator.
// One generator per simulation session; there is no global instance.
func NewIDGenerator() *IDGenerator {
	gen := &IDGenerator{}
	gen.nextPlayerID.Store(0x10000000)
	gen.nextEnemyID.Store(0x20000000)
	gen.nextProjectileID.Store(0x30000000)
	return gen
}

// NextPlayerID generates next unique player ID.
func (g *IDGenerator) NextPlayerID() EntityID {
	return EntityID(g.nextPlayerID.Add(1))
}

// NextEnemyID generates next unique enemy ID.
func (g *IDGenerator) NextEnemyID() EntityID {
	return EntityID(g.nextEnemyID.Add(1))
}

// NextProjectileID generates next unique projectile ID.
func (g *IDGenerator) NextProjectileID() EntityID {
	return EntityID(g.nextProjectileID.Add(1))
}

// IsEnemyID reports whether id is in the enemy range.
func IsEnemyID(id EntityID) bool {
	return id >= 0x20000000 && id < 0x30000000
}

// IsPlayerID reports whether id is in the player range.
func IsPlayerID(id EntityID) bool {
	return id >= 0x10000000 && id < 0x20000000
}
