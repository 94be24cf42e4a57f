package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amalg/go-mazewalk/internal/maze"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "maze.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 0.7, cfg.Motion.ShrinkFactor)
	assert.Equal(t, 0.001, cfg.Motion.PushDistance)
	assert.Equal(t, time.Second/60, cfg.TickInterval())
	assert.Equal(t, maze.DefaultGrid(), cfg.BuildGrid())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
motion:
  speed: 4
  shrink_factor: 0.9
  spawn: [1.5, 1, 1.5]
maze:
  grid:
    - [1, 1, 1]
    - [1, 0, 1]
    - [1, 1, 1]
engine:
  tick_rate: 30
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4.0, cfg.Motion.Speed)
	assert.Equal(t, 0.9, cfg.Motion.ShrinkFactor)
	assert.Equal(t, 0.001, cfg.Motion.PushDistance, "unset keys keep defaults")
	assert.Equal(t, [3]float64{1.5, 1, 1.5}, cfg.Motion.Spawn)
	assert.Equal(t, 30, cfg.Engine.TickRate)
	assert.Equal(t, 8, cfg.BuildGrid().WallCount())
}

func TestLoadGenerate(t *testing.T) {
	path := writeFile(t, `
maze:
  generate:
    width: 9
    height: 7
    seed: 3
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	g := cfg.BuildGrid()
	assert.Equal(t, 9, g.Width())
	assert.Equal(t, 7, g.Height())
}

func TestLoadWithoutMazeUsesDefaultGrid(t *testing.T) {
	cfg, err := Load(writeFile(t, "engine:\n  tick_rate: 20\n"))
	require.NoError(t, err)
	assert.Equal(t, maze.DefaultGrid(), cfg.Maze.Grid)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeFile(t, "motion:\n  shrink_factor: 1.5\n  speed: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shrink_factor")
	assert.Contains(t, err.Error(), "speed")

	_, err = Load(writeFile(t, "maze:\n  grid:\n    - [0, 1]\n    - [1]\n"))
	assert.ErrorIs(t, err, maze.ErrRaggedGrid)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "motion: [nope"))
	assert.Error(t, err)
}

func TestLoadRejectsNonFiniteValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"nan speed", "motion:\n  speed: .nan\n", "speed"},
		{"nan shrink", "motion:\n  shrink_factor: .nan\n", "shrink_factor"},
		{"inf push", "motion:\n  push_distance: .inf\n", "push_distance"},
		{"nan ground", "motion:\n  ground_height: .nan\n", "ground_height"},
		{"nan extents", "motion:\n  mover_extents: [1, .nan, 1]\n", "mover_extents[1]"},
		{"inf spawn", "motion:\n  spawn: [-.inf, 1, 0]\n", "spawn[0]"},
		{"nan yaw sensitivity", "motion:\n  yaw_sensitivity: .nan\n", "yaw_sensitivity"},
		{"inf pitch sensitivity", "motion:\n  pitch_sensitivity: .inf\n", "pitch_sensitivity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}
