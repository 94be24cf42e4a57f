package maze

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/amalg/go-mazewalk/internal/motion"
)

// Cell is one square of the maze floor plan.
type Cell int

const (
	Open Cell = iota
	Wall
)

// Grid is a floor plan indexed as Grid[z][x]. Every wall cell becomes a
// unit cube standing on the floor.
type Grid [][]Cell

var (
	ErrEmptyGrid  = errors.New("maze grid is empty")
	ErrRaggedGrid = errors.New("maze grid rows differ in length")
)

// DefaultGrid returns the demo's 10x10 layout.
func DefaultGrid() Grid {
	return Grid{
		{0, 1, 1, 1, 1, 1, 1, 1, 1, 1},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
		{0, 0, 1, 1, 1, 1, 1, 1, 0, 1},
		{0, 0, 1, 0, 0, 0, 0, 1, 0, 1},
		{0, 0, 1, 0, 1, 1, 0, 1, 0, 1},
		{0, 0, 1, 0, 1, 1, 0, 1, 0, 1},
		{0, 0, 1, 0, 0, 0, 0, 1, 0, 1},
		{0, 0, 1, 1, 1, 1, 1, 1, 0, 1},
		{0, 0, 0, 0, 0, 0, 0, 0, 0, 1},
		{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	}
}

// Width is the number of columns (x).
func (g Grid) Width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// Height is the number of rows (z).
func (g Grid) Height() int {
	return len(g)
}

// Validate checks that the grid is non-empty and rectangular and holds only
// Open or Wall cells.
func (g Grid) Validate() error {
	if len(g) == 0 || len(g[0]) == 0 {
		return ErrEmptyGrid
	}
	w := len(g[0])
	for z, row := range g {
		if len(row) != w {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedGrid, z, len(row), w)
		}
		for x, c := range row {
			if c != Open && c != Wall {
				return fmt.Errorf("maze cell (%d,%d): unknown value %d", x, z, c)
			}
		}
	}
	return nil
}

// At returns the cell under world coordinates (x, z). Anything outside the
// grid counts as open floor.
func (g Grid) At(x, z float64) Cell {
	if x < 0 || z < 0 {
		return Open
	}
	cx, cz := int(x), int(z)
	if cz >= len(g) || cx >= len(g[cz]) {
		return Open
	}
	return g[cz][cx]
}

// WallCount returns the number of wall cells.
func (g Grid) WallCount() int {
	n := 0
	for _, row := range g {
		for _, c := range row {
			if c == Wall {
				n++
			}
		}
	}
	return n
}

// Obstacles builds the static obstacle set: one unit cube per wall cell,
// centered on the cell and resting on the floor.
func (g Grid) Obstacles() []motion.Obstacle {
	obstacles := make([]motion.Obstacle, 0, g.WallCount())
	for z, row := range g {
		for x, c := range row {
			if c != Wall {
				continue
			}
			obstacles = append(obstacles, motion.Obstacle{
				Position: mgl64.Vec3{float64(x) + 0.5, 0.5, float64(z) + 0.5},
				Extents:  mgl64.Vec3{1, 1, 1},
			})
		}
	}
	return obstacles
}

// Clone returns a deep copy of the grid.
func (g Grid) Clone() Grid {
	out := make(Grid, len(g))
	for z := range g {
		out[z] = make([]Cell, len(g[z]))
		copy(out[z], g[z])
	}
	return out
}
