package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amalg/go-mazewalk/internal/maze"
	"github.com/amalg/go-mazewalk/internal/motion"
)

// Config is the full set of knobs for a walking session.
type Config struct {
	Motion MotionConfig `yaml:"motion"`
	Maze   MazeConfig   `yaml:"maze"`
	Engine EngineConfig `yaml:"engine"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// MotionConfig holds the mover and pipeline constants.
type MotionConfig struct {
	motion.Tuning    `yaml:",inline"`
	MoverExtents     [3]float64 `yaml:"mover_extents"`
	Spawn            [3]float64 `yaml:"spawn"`
	YawSensitivity   float64    `yaml:"yaw_sensitivity"`   // Radians per pointer unit
	PitchSensitivity float64    `yaml:"pitch_sensitivity"` // Radians per pointer unit
}

// MazeConfig selects the world layout. A non-nil Generate wins over Grid.
type MazeConfig struct {
	Grid     maze.Grid            `yaml:"grid"`
	Generate *maze.GenerateConfig `yaml:"generate"`
}

// EngineConfig controls the frame loop.
type EngineConfig struct {
	TickRate int `yaml:"tick_rate"` // Frames per second
}

// ServerConfig is used by the headless host.
type ServerConfig struct {
	Name   string `yaml:"name"`
	Addr   string `yaml:"addr"`
	WSAddr string `yaml:"ws_addr"` // Empty disables the WebSocket feed
}

// LogConfig points the rolling log file. Empty discards logs.
type LogConfig struct {
	File string `yaml:"file"`
}

// Default returns the demo configuration.
func Default() Config {
	return Config{
		Motion: MotionConfig{
			Tuning:           motion.DefaultTuning(),
			MoverExtents:     [3]float64{1, 1, 1},
			Spawn:            [3]float64{0, 1, 0},
			YawSensitivity:   0.003,
			PitchSensitivity: 0.002,
		},
		Maze: MazeConfig{
			Grid: maze.DefaultGrid(),
		},
		Engine: EngineConfig{
			TickRate: 60,
		},
		Server: ServerConfig{
			Name:   "maze",
			Addr:   "0.0.0.0:9999",
			WSAddr: "0.0.0.0:9997",
		},
	}
}

// Load reads a YAML file on top of Default. Fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	// A file that names a grid replaces the default one outright.
	cfg.Maze.Grid = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if cfg.Maze.Grid == nil && cfg.Maze.Generate == nil {
		cfg.Maze.Grid = maze.DefaultGrid()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	m := c.Motion
	if err := m.Tuning.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("motion: %w", err))
	}
	for i, e := range m.MoverExtents {
		if !finiteNum(e) || e <= 0 {
			errs = append(errs, fmt.Errorf("motion.mover_extents[%d] must be positive and finite, got %v", i, e))
		}
	}
	for i, v := range m.Spawn {
		if !finiteNum(v) {
			errs = append(errs, fmt.Errorf("motion.spawn[%d] must be finite, got %v", i, v))
		}
	}
	if !finiteNum(m.YawSensitivity) {
		errs = append(errs, fmt.Errorf("motion.yaw_sensitivity must be finite, got %v", m.YawSensitivity))
	}
	if !finiteNum(m.PitchSensitivity) {
		errs = append(errs, fmt.Errorf("motion.pitch_sensitivity must be finite, got %v", m.PitchSensitivity))
	}
	if c.Engine.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("engine.tick_rate must be positive, got %d", c.Engine.TickRate))
	}
	if c.Maze.Generate == nil {
		if err := c.Maze.Grid.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("maze.grid: %w", err))
		}
	}
	return errors.Join(errs...)
}

// BuildGrid returns the layout this config describes.
func (c Config) BuildGrid() maze.Grid {
	if c.Maze.Generate != nil {
		return maze.Generate(*c.Maze.Generate)
	}
	return c.Maze.Grid.Clone()
}

func finiteNum(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// TickInterval is the wall-clock time between frames.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Engine.TickRate)
}
