package maze

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGridObstacles(t *testing.T) {
	g := DefaultGrid()
	require.NoError(t, g.Validate())
	assert.Equal(t, 10, g.Width())
	assert.Equal(t, 10, g.Height())

	obstacles := g.Obstacles()
	require.Len(t, obstacles, g.WallCount())

	// First wall in row-major order is (x=1, z=0).
	assert.Equal(t, mgl64.Vec3{1.5, 0.5, 0.5}, obstacles[0].Position)
	assert.Equal(t, mgl64.Vec3{1, 1, 1}, obstacles[0].Extents)

	// Last row is solid.
	last := obstacles[len(obstacles)-1]
	assert.Equal(t, mgl64.Vec3{9.5, 0.5, 9.5}, last.Position)
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, Grid{}.Validate(), ErrEmptyGrid)
	assert.ErrorIs(t, Grid{{}}.Validate(), ErrEmptyGrid)
	assert.ErrorIs(t, Grid{{0, 1}, {1}}.Validate(), ErrRaggedGrid)
	assert.Error(t, Grid{{0, 2}}.Validate())
	assert.NoError(t, Grid{{0, 1}, {1, 0}}.Validate())
}

func TestAt(t *testing.T) {
	g := DefaultGrid()
	assert.Equal(t, Open, g.At(0.2, 0.9))
	assert.Equal(t, Wall, g.At(1.99, 0.1))
	assert.Equal(t, Wall, g.At(4.5, 4.5))
	assert.Equal(t, Open, g.At(-1, 3))
	assert.Equal(t, Open, g.At(3, 42))
}

func TestCloneIsIndependent(t *testing.T) {
	g := DefaultGrid()
	c := g.Clone()
	c[0][0] = Wall
	assert.Equal(t, Open, g[0][0])
}

func TestGenerate(t *testing.T) {
	cfg := GenerateConfig{Width: 12, Height: 9, Seed: 42}
	g := Generate(cfg)
	require.NoError(t, g.Validate())

	assert.Equal(t, 11, g.Width())
	assert.Equal(t, 9, g.Height())
	assert.Equal(t, Open, g[1][1])

	for x := 0; x < g.Width(); x++ {
		assert.Equal(t, Wall, g[0][x])
		assert.Equal(t, Wall, g[g.Height()-1][x])
	}
	for z := 0; z < g.Height(); z++ {
		assert.Equal(t, Wall, g[z][0])
		assert.Equal(t, Wall, g[z][g.Width()-1])
	}

	// Every odd/odd room is reachable in a perfect maze.
	for z := 1; z < g.Height(); z += 2 {
		for x := 1; x < g.Width(); x += 2 {
			assert.Equal(t, Open, g[z][x], "room (%d,%d)", x, z)
		}
	}

	assert.Equal(t, g, Generate(cfg), "same seed must give the same maze")
}

func TestGenerateMinimumSize(t *testing.T) {
	g := Generate(GenerateConfig{Width: 1, Height: 2, Seed: 7})
	assert.Equal(t, 5, g.Width())
	assert.Equal(t, 5, g.Height())
}
