package motion

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidFrame is returned when a frame's inputs break the pipeline's
// preconditions (non-finite values or negative elapsed time).
var ErrInvalidFrame = errors.New("invalid frame input")

// Keys is the set of movement keys held during a frame.
// Each key is independent; opposing keys may be held together.
type Keys struct {
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Left    bool `json:"left"`
	Right   bool `json:"right"`
}

// Any reports whether at least one movement key is held.
func (k Keys) Any() bool {
	return k.Forward || k.Back || k.Left || k.Right
}

// Input is the per-frame snapshot consumed by the pipeline.
type Input struct {
	Keys      Keys
	DeltaTime float64 // Seconds since the previous frame, >= 0
}

// Orientation is the mover's view direction in radians.
type Orientation struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// Mover is the single player-controlled body.
type Mover struct {
	Position    mgl64.Vec3  `json:"position"`
	Orientation Orientation `json:"orientation"`
	Extents     mgl64.Vec3  `json:"extents"` // Full size, constant for the session
}

// Obstacle is a static blocking box. Position is its center.
type Obstacle struct {
	Position mgl64.Vec3 `json:"position"`
	Extents  mgl64.Vec3 `json:"extents"`
}

// Tuning holds the fixed constants of the movement pipeline.
type Tuning struct {
	Speed        float64 `json:"speed" yaml:"speed"`                 // Units per second
	ShrinkFactor float64 `json:"shrink_factor" yaml:"shrink_factor"` // Collision envelope scale, (0, 1]
	PushDistance float64 `json:"push_distance" yaml:"push_distance"` // Correction length on collision
	GroundHeight float64 `json:"ground_height" yaml:"ground_height"` // Pinned vertical component
}

// DefaultTuning returns the walking demo's constants.
func DefaultTuning() Tuning {
	return Tuning{
		Speed:        10,
		ShrinkFactor: 0.7,
		PushDistance: 0.001,
		GroundHeight: 1.0,
	}
}

// Validate reports every constant the pipeline cannot run with. NaN and
// infinities are rejected along with out-of-range values.
func (t Tuning) Validate() error {
	var errs []error
	if !finiteNum(t.Speed) || t.Speed <= 0 {
		errs = append(errs, fmt.Errorf("speed must be positive and finite, got %v", t.Speed))
	}
	if !finiteNum(t.ShrinkFactor) || t.ShrinkFactor <= 0 || t.ShrinkFactor > 1 {
		errs = append(errs, fmt.Errorf("shrink_factor must be in (0,1], got %v", t.ShrinkFactor))
	}
	if !finiteNum(t.PushDistance) || t.PushDistance < 0 {
		errs = append(errs, fmt.Errorf("push_distance must be finite and not negative, got %v", t.PushDistance))
	}
	if !finiteNum(t.GroundHeight) {
		errs = append(errs, fmt.Errorf("ground_height must be finite, got %v", t.GroundHeight))
	}
	return errors.Join(errs...)
}

func finiteNum(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if !finiteNum(c) {
			return false
		}
	}
	return true
}
