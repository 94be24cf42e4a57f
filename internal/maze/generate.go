package maze

import (
	"math/rand"
	"time"
)

// GenerateConfig controls random maze generation.
type GenerateConfig struct {
	Width  int   `yaml:"width"`
	Height int   `yaml:"height"`
	Seed   int64 `yaml:"seed"` // 0 = time-based
}

type point struct{ x, z int }

// Generate carves a perfect maze with a recursive backtracker. Dimensions are
// rounded down to odd numbers (minimum 5) so the outer ring stays solid wall.
// The cell at (1,1) is always open and is a convenient spawn point.
func Generate(cfg GenerateConfig) Grid {
	cols := ensureOdd(cfg.Width)
	rows := ensureOdd(cfg.Height)

	grid := make(Grid, rows)
	for z := range grid {
		grid[z] = make([]Cell, cols)
		for x := range grid[z] {
			grid[z][x] = Wall
		}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := point{1, 1}
	grid[start.z][start.x] = Open
	stack := []point{start}
	dirs := []point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]point, 0, 4)
		for _, d := range dirs {
			nx, nz := curr.x+d.x, curr.z+d.z
			if nx > 0 && nx < cols-1 && nz > 0 && nz < rows-1 && grid[nz][nx] == Wall {
				candidates = append(candidates, d)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[rng.Intn(len(candidates))]
		grid[curr.z+d.z/2][curr.x+d.x/2] = Open
		next := point{curr.x + d.x, curr.z + d.z}
		grid[next.z][next.x] = Open
		stack = append(stack, next)
	}

	return grid
}

func ensureOdd(n int) int {
	if n < 5 {
		return 5
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}
