package game

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/amalg/go-mazewalk/internal/config"
	"github.com/amalg/go-mazewalk/internal/maze"
	"github.com/amalg/go-mazewalk/internal/motion"
)

// Engine is the frame loop that owns the single mover of a session.
type Engine struct {
	Config config.Config

	world    *World
	mover    motion.Mover
	pipeline *motion.Pipeline
	control  Control
	last     Snapshot
	blocked  bool

	done   chan struct{}
	mu     sync.Mutex
	onTick func(Snapshot) // Callback after each frame with a copy of the result
	log    *zap.SugaredLogger
}

// NewEngine builds the world from config and places the mover at its spawn.
func NewEngine(cfg config.Config, log *zap.SugaredLogger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	world, err := NewWorld(cfg)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	e := &Engine{
		Config:   cfg,
		world:    world,
		mover:    world.Spawn,
		pipeline: motion.NewPipeline(cfg.Motion.Tuning),
		done:     make(chan struct{}),
		log:      log,
	}
	e.last = e.snapshotLocked(motion.Frame{Proposed: e.mover.Position, Position: e.mover.Position})

	log.Infow("world built",
		"width", world.Grid.Width(),
		"height", world.Grid.Height(),
		"obstacles", len(world.Obstacles),
		"spawn", world.Spawn.Position,
	)
	return e, nil
}

// Grid returns a copy of the floor plan.
func (e *Engine) Grid() maze.Grid {
	return e.world.Grid.Clone()
}

// OnTick sets a callback invoked after every frame with a copy of the result.
func (e *Engine) OnTick(fn func(Snapshot)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// Run drives frames at the configured tick rate using measured elapsed time.
// This blocks until Stop() is called.
func (e *Engine) Run() {
	ticker := time.NewTicker(e.Config.TickInterval())
	defer ticker.Stop()

	prev := time.Now()
	for {
		select {
		case <-e.done:
			return
		case now := <-ticker.C:
			dt := now.Sub(prev).Seconds()
			prev = now
			if dt < 0 {
				dt = 0
			}
			e.Step(dt)
		}
	}
}

// Stop halts the frame loop.
func (e *Engine) Stop() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}

// Step runs exactly one frame with the given elapsed seconds and returns the
// published snapshot. A rejected frame leaves the mover where it was and
// republishes the previous snapshot.
// IMPORTANT: the callback runs after the lock is released so it may call
// back into the engine.
func (e *Engine) Step(dt float64) Snapshot {
	e.mu.Lock()

	e.applyLookLocked()
	frame, err := e.pipeline.Step(&e.mover, e.world.Obstacles, motion.Input{
		Keys:      e.control.Keys,
		DeltaTime: dt,
	})
	if err != nil {
		e.log.Errorw("frame abandoned", "frame", e.last.Frame+1, "error", err)
	} else {
		e.noteCollisionLocked(frame)
		e.last = e.snapshotLocked(frame)
		e.last.Frame++
	}

	snap := e.last
	onTick := e.onTick
	e.mu.Unlock()

	if onTick != nil {
		onTick(snap)
	}
	return snap
}

// Snapshot returns the most recently published frame.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// Mover returns a copy of the mover.
func (e *Engine) Mover() motion.Mover {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mover
}

// snapshotLocked copies the mover state into a Snapshot.
// MUST be called while e.mu is held.
func (e *Engine) snapshotLocked(f motion.Frame) Snapshot {
	return Snapshot{
		Frame:       e.last.Frame,
		Position:    e.mover.Position,
		Orientation: e.mover.Orientation,
		Proposed:    f.Proposed,
		Collided:    f.Collided,
		Keys:        e.control.Keys,
	}
}

// noteCollisionLocked logs transitions between walking freely and pushing
// against a wall, not every blocked frame.
func (e *Engine) noteCollisionLocked(f motion.Frame) {
	if f.Collided == e.blocked {
		return
	}
	e.blocked = f.Collided
	if f.Collided {
		e.log.Debugw("blocked", "frame", e.last.Frame+1, "position", f.Position, "proposed", f.Proposed)
	} else {
		e.log.Debugw("clear", "frame", e.last.Frame+1, "position", f.Position)
	}
}
