package ui

import (
	"github.com/amalg/go-mazewalk/internal/game"
	"github.com/amalg/go-mazewalk/internal/maze"
)

// LocalSource drives an in-process engine. The local player always pilots.
type LocalSource struct {
	engine *game.Engine
	states chan game.Snapshot
}

// NewLocalSource hooks into the engine's tick callback.
func NewLocalSource(engine *game.Engine) *LocalSource {
	s := &LocalSource{
		engine: engine,
		states: make(chan game.Snapshot, 4),
	}
	engine.OnTick(s.push)
	return s
}

// push keeps only the freshest snapshots when the view falls behind.
func (s *LocalSource) push(snap game.Snapshot) {
	select {
	case s.states <- snap:
	default:
		select {
		case <-s.states:
		default:
		}
		select {
		case s.states <- snap:
		default:
		}
	}
}

func (s *LocalSource) Grid() maze.Grid { return s.engine.Grid() }
func (s *LocalSource) States() <-chan game.Snapshot { return s.states }
func (s *LocalSource) Pilot() bool { return true }
func (s *LocalSource) SendControl(c game.Control) error {
	s.engine.ApplyControl(c)
	return nil
}
