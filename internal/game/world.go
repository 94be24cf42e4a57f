package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/amalg/go-mazewalk/internal/config"
	"github.com/amalg/go-mazewalk/internal/maze"
	"github.com/amalg/go-mazewalk/internal/motion"
)

// World is everything built once at session start: the floor plan, the
// obstacles derived from it and the mover's spawn state.
type World struct {
	Grid      maze.Grid
	Obstacles []motion.Obstacle
	Spawn     motion.Mover
}

// NewWorld builds the static world described by cfg.
//
// Layout rules:
//   - Each wall cell becomes a unit cube centered on its cell
//   - The mover spawns at the configured point with its vertical pinned to the ground
//   - A generated maze overrides the configured spawn with its (1,1) room
func NewWorld(cfg config.Config) (*World, error) {
	grid := cfg.BuildGrid()
	if err := grid.Validate(); err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}

	spawn := mgl64.Vec3(cfg.Motion.Spawn)
	if cfg.Maze.Generate != nil {
		spawn = mgl64.Vec3{1.5, 0, 1.5}
	}
	spawn[1] = cfg.Motion.GroundHeight

	return &World{
		Grid:      grid,
		Obstacles: grid.Obstacles(),
		Spawn: motion.Mover{
			Position: spawn,
			Extents:  mgl64.Vec3(cfg.Motion.MoverExtents),
		},
	}, nil
}
