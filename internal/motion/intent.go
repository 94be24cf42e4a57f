package motion

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Basis returns the horizontal forward and right unit vectors for a yaw.
// Yaw 0 faces -Z with +X to the right; pitch does not tilt the walking plane.
func (o Orientation) Basis() (forward, right mgl64.Vec3) {
	rot := mgl64.Rotate3DY(o.Yaw)
	forward = rot.Mul3x1(mgl64.Vec3{0, 0, -1})
	right = rot.Mul3x1(mgl64.Vec3{1, 0, 0})
	return forward, right
}

// maxPitch keeps the view just short of straight up/down.
const maxPitch = math.Pi/2 - 0.01

// Look turns the orientation by a pointer delta scaled by the per-axis sensitivity.
// Moving right turns right; moving down looks down.
func (o Orientation) Look(dx, dy, yawSensitivity, pitchSensitivity float64) Orientation {
	o.Yaw -= dx * yawSensitivity
	o.Pitch -= dy * pitchSensitivity
	o.Pitch = math.Max(-maxPitch, math.Min(maxPitch, o.Pitch))
	o.Yaw = math.Remainder(o.Yaw, 2*math.Pi)
	return o
}

// Resolver turns held keys into a proposed position. It never sees obstacles.
type Resolver struct {
	Speed        float64
	GroundHeight float64
}

// Direction sums the orientation-relative unit vectors of the held keys and
// normalizes the result. Cancelling keys yield the zero vector.
func (r Resolver) Direction(o Orientation, keys Keys) mgl64.Vec3 {
	forward, right := o.Basis()

	var dir mgl64.Vec3
	if keys.Forward {
		dir = dir.Add(forward)
	}
	if keys.Back {
		dir = dir.Sub(forward)
	}
	if keys.Left {
		dir = dir.Sub(right)
	}
	if keys.Right {
		dir = dir.Add(right)
	}

	return normalizeOrZero(dir)
}

// Propose returns where the mover would stand after this frame's input,
// with the vertical component pinned to the ground.
func (r Resolver) Propose(m Mover, in Input) mgl64.Vec3 {
	step := r.Direction(m.Orientation, in.Keys).Mul(r.Speed * in.DeltaTime)
	proposed := m.Position.Add(step)
	proposed[1] = r.GroundHeight
	return proposed
}

// normalizeOrZero is Normalize with the zero vector mapped to itself
// (mgl64 divides by the length unconditionally).
func normalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	if v.Len() == 0 {
		return mgl64.Vec3{}
	}
	return v.Normalize()
}
