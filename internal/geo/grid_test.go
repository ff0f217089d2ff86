package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/skirmish/internal/model"
)

// setupGrid creates a 20x20 grid of 1-unit cells with origin at (0,0,0).
func setupGrid(t *testing.T) *Grid {
	t.Helper()
	g, err := NewGrid(model.Vec3{}, 1, 20, 20)
	require.NoError(t, err)
	return g
}

// setupWallGrid adds a wall along x=10 from z=0 to z=15, leaving a gap at the top.
func setupWallGrid(t *testing.T) *Grid {
	t.Helper()
	g := setupGrid(t)
	for z := int32(0); z <= 15; z++ {
		require.NoError(t, g.SetBlocked(10, z, true))
	}
	return g
}

func TestNewGrid_InvalidArgs(t *testing.T) {
	_, err := NewGrid(model.Vec3{}, 0, 10, 10)
	assert.Error(t, err)

	_, err = NewGrid(model.Vec3{}, 1, 0, 10)
	assert.Error(t, err)
}

func TestGrid_CellOfAndCenter(t *testing.T) {
	g, err := NewGrid(model.NewVec3(-10, 0, -10), 2, 10, 10)
	require.NoError(t, err)

	cx, cz := g.CellOf(model.NewVec3(-9.5, 0, -7))
	assert.Equal(t, int32(0), cx)
	assert.Equal(t, int32(1), cz)
	assert.Equal(t, model.NewVec3(-9, 0, -7), g.CellCenter(0, 1))
}

func TestGrid_OutOfBoundsIsBlocked(t *testing.T) {
	g := setupGrid(t)
	assert.True(t, g.IsBlocked(-1, 0))
	assert.True(t, g.IsBlocked(0, 20))
	assert.False(t, g.IsBlocked(0, 0))

	err := g.SetBlocked(25, 0, true)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestGrid_BlockRect(t *testing.T) {
	g := setupGrid(t)
	g.BlockRect(model.NewVec3(2.5, 0, 2.5), model.NewVec3(4.5, 0, 3.5))

	assert.True(t, g.IsBlocked(2, 2))
	assert.True(t, g.IsBlocked(4, 3))
	assert.False(t, g.IsBlocked(5, 3))
	assert.False(t, g.IsBlocked(2, 4))
}

func TestGrid_NearestFree(t *testing.T) {
	g := setupWallGrid(t)

	free := model.NewVec3(3.5, 0, 3.5)
	got, ok := g.NearestFree(free, 2)
	require.True(t, ok)
	assert.Equal(t, free, got, "walkable point is returned unchanged")

	inWall := model.NewVec3(10.5, 0, 5.5)
	got, ok = g.NearestFree(inWall, 2)
	require.True(t, ok)
	assert.True(t, g.IsWalkable(got))
	assert.InDelta(t, 1.0, got.Distance(inWall), 1e-9)

	_, ok = g.NearestFree(inWall, 0.4)
	assert.False(t, ok, "no free cell inside a tiny radius")
}

func TestLineIterator_Diagonal(t *testing.T) {
	it := NewLineIterator(0, 0, 3, 3)
	var cells [][2]int32
	for it.Next() {
		cells = append(cells, [2]int32{it.X(), it.Z()})
	}
	assert.Equal(t, [][2]int32{{0, 0}, {1, 1}, {2, 2}, {3, 3}}, cells)
}

func TestLineIterator_Shallow(t *testing.T) {
	it := NewLineIterator(0, 0, 4, 1)
	count := 0
	lastX, lastZ := int32(0), int32(0)
	for it.Next() {
		count++
		lastX, lastZ = it.X(), it.Z()
	}
	assert.Equal(t, 5, count)
	assert.Equal(t, int32(4), lastX)
	assert.Equal(t, int32(1), lastZ)
}
