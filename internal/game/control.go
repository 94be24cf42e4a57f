package game

import "github.com/amalg/go-mazewalk/internal/motion"

// ApplyControl latches input for the next frame: held keys replace the
// previous set and look deltas are added to any not yet consumed.
func (e *Engine) ApplyControl(c Control) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.control.Keys = c.Keys
	e.control.LookDX += c.LookDX
	e.control.LookDY += c.LookDY
}

// Release lets go of every key and drops pending look input.
// Used when the driver disconnects so the mover does not keep walking.
func (e *Engine) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.control = Control{}
}

// applyLookLocked turns the mover by the pending look deltas.
// MUST be called while e.mu is held.
func (e *Engine) applyLookLocked() {
	c := &e.control
	if c.LookDX == 0 && c.LookDY == 0 {
		return
	}
	e.mover.Orientation = e.mover.Orientation.Look(
		c.LookDX, c.LookDY,
		e.Config.Motion.YawSensitivity, e.Config.Motion.PitchSensitivity,
	)
	c.LookDX, c.LookDY = 0, 0
}

// Keys returns the currently latched key set.
func (e *Engine) Keys() motion.Keys {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.control.Keys
}
