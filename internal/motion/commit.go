package motion

import "github.com/go-gl/mathgl/mgl64"

// Committer applies a collision verdict to the mover's position.
type Committer struct {
	PushDistance float64
	GroundHeight float64
}

// Commit moves m to proposed when the path is clear. On collision it nudges m
// by PushDistance along the direction from proposed back toward the current
// position; the nudged spot is not re-tested. A zero-length attempt yields no
// correction.
func (c Committer) Commit(m *Mover, proposed mgl64.Vec3, collided bool) {
	if !collided {
		m.Position = proposed
		m.Position[1] = c.GroundHeight
		return
	}

	push := normalizeOrZero(m.Position.Sub(proposed)).Mul(c.PushDistance)
	m.Position = m.Position.Add(push)
	m.Position[1] = c.GroundHeight
}
