package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Tester decides whether a mover box placed at a position overlaps any obstacle.
type Tester struct {
	// ShrinkFactor scales the touching distance below the true box bounds
	// so the mover can get visually closer to walls before it is blocked.
	ShrinkFactor float64
}

// Overlaps reports whether a mover of the given extents centered at pos
// overlaps obstacle o on every axis at once.
func (t Tester) Overlaps(pos, extents mgl64.Vec3, o Obstacle) bool {
	minDistance := extents.Add(o.Extents).Mul(0.5 * t.ShrinkFactor)
	for i := 0; i < 3; i++ {
		if math.Abs(pos[i]-o.Position[i]) > minDistance[i] {
			return false
		}
	}
	return true
}

// Collides reports whether pos overlaps at least one obstacle. It stops at the
// first hit; which obstacle was hit is not reported.
func (t Tester) Collides(pos, extents mgl64.Vec3, obstacles []Obstacle) bool {
	for _, o := range obstacles {
		if t.Overlaps(pos, extents, o) {
			return true
		}
	}
	return false
}
