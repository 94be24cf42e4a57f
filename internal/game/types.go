package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/amalg/go-mazewalk/internal/motion"
)

// Control is the latest input from whoever drives the mover. Keys are a held
// snapshot; look deltas accumulate until the next frame consumes them.
type Control struct {
	Keys   motion.Keys `json:"keys"`
	LookDX float64     `json:"look_dx"`
	LookDY float64     `json:"look_dy"`
}

// Snapshot is the resolved state published after every frame.
type Snapshot struct {
	Frame       uint64             `json:"frame"`
	Position    mgl64.Vec3         `json:"position"`
	Orientation motion.Orientation `json:"orientation"`
	Proposed    mgl64.Vec3         `json:"proposed"`
	Collided    bool               `json:"collided"`
	Keys        motion.Keys        `json:"keys"`
}
