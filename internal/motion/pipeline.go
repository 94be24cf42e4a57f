package motion

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Frame is the outcome of one pipeline run.
type Frame struct {
	Proposed mgl64.Vec3 `json:"proposed"`
	Collided bool       `json:"collided"`
	Position mgl64.Vec3 `json:"position"` // Mover position after commit
}

// Pipeline runs intent resolution, collision testing and commit in that order.
// Each stage's output is passed to the next as a value; nothing survives
// between frames except the mover itself.
type Pipeline struct {
	resolver  Resolver
	tester    Tester
	committer Committer
}

// NewPipeline wires the three stages from one set of constants.
func NewPipeline(t Tuning) *Pipeline {
	return &Pipeline{
		resolver:  Resolver{Speed: t.Speed, GroundHeight: t.GroundHeight},
		tester:    Tester{ShrinkFactor: t.ShrinkFactor},
		committer: Committer{PushDistance: t.PushDistance, GroundHeight: t.GroundHeight},
	}
}

// Step resolves one frame for m against the obstacle set. Bad input aborts
// the frame and leaves m untouched, including a result that would not be
// finite.
func (p *Pipeline) Step(m *Mover, obstacles []Obstacle, in Input) (Frame, error) {
	if err := validate(m, in); err != nil {
		return Frame{}, err
	}

	proposed := p.resolver.Propose(*m, in)
	if !finite(proposed) {
		return Frame{}, fmt.Errorf("%w: proposed position %v", ErrInvalidFrame, proposed)
	}
	collided := p.tester.Collides(proposed, m.Extents, obstacles)

	next := *m
	p.committer.Commit(&next, proposed, collided)
	if !finite(next.Position) {
		return Frame{}, fmt.Errorf("%w: committed position %v", ErrInvalidFrame, next.Position)
	}
	*m = next

	return Frame{
		Proposed: proposed,
		Collided: collided,
		Position: m.Position,
	}, nil
}

func validate(m *Mover, in Input) error {
	if m == nil {
		return fmt.Errorf("%w: no mover", ErrInvalidFrame)
	}
	if !finiteNum(in.DeltaTime) || in.DeltaTime < 0 {
		return fmt.Errorf("%w: delta time %v", ErrInvalidFrame, in.DeltaTime)
	}
	if !finite(m.Position) {
		return fmt.Errorf("%w: mover position %v", ErrInvalidFrame, m.Position)
	}
	if !finite(m.Extents) {
		return fmt.Errorf("%w: mover extents %v", ErrInvalidFrame, m.Extents)
	}
	if !finiteNum(m.Orientation.Yaw) {
		return fmt.Errorf("%w: yaw %v", ErrInvalidFrame, m.Orientation.Yaw)
	}
	return nil
}
