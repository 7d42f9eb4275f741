package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Command is a discrete interaction submitted between ticks and consumed at
// the start of the next one.
type Command interface {
	apply(c *Cloth, cfg StepConfig) error
	fmt.Stringer
}

// PointForce targets the particle nearest Point. Under ForceContinuous it
// adds Force; under ForceDisplacement it offsets the particle by the step's
// HitOffset.
type PointForce struct {
	Point mgl64.Vec3
	Force mgl64.Vec3
}

func (cmd PointForce) apply(c *Cloth, cfg StepConfig) error {
	if cfg.ForceMode == ForceDisplacement {
		return c.Hit(cmd.Point, cfg.HitOffset)
	}
	return c.ApplyPointForce(cmd.Point, cmd.Force)
}

func (cmd PointForce) String() string {
	return fmt.Sprintf("point_force(at=%v, f=%v)", cmd.Point, cmd.Force)
}

// RadiusForce pushes every particle near Center with a linear falloff.
type RadiusForce struct {
	Center    mgl64.Vec3
	Radius    float64
	MaxForce  float64
	Direction mgl64.Vec3
}

func (cmd RadiusForce) apply(c *Cloth, _ StepConfig) error {
	return c.ApplyRadiusForce(cmd.Center, cmd.Radius, cmd.MaxForce, cmd.Direction)
}

func (cmd RadiusForce) String() string {
	return fmt.Sprintf("radius_force(at=%v, r=%.3f, max=%.3f)", cmd.Center, cmd.Radius, cmd.MaxForce)
}

// Displace moves the particle nearest Point by Offset regardless of the
// step's force mode.
type Displace struct {
	Point  mgl64.Vec3
	Offset mgl64.Vec3
}

func (cmd Displace) apply(c *Cloth, _ StepConfig) error { return c.Hit(cmd.Point, cmd.Offset) }

func (cmd Displace) String() string {
	return fmt.Sprintf("displace(at=%v, by=%v)", cmd.Point, cmd.Offset)
}

// Unpin releases every particle.
type Unpin struct{}

func (Unpin) apply(c *Cloth, _ StepConfig) error { return c.Unpin() }
func (Unpin) String() string                     { return "unpin" }

// Reset restores the rest layout and default pins.
type Reset struct{}

func (Reset) apply(c *Cloth, _ StepConfig) error { return c.Reset() }
func (Reset) String() string                     { return "reset" }

// SetPin pins or releases a single particle.
type SetPin struct {
	Index  int
	Pinned bool
}

func (cmd SetPin) apply(c *Cloth, _ StepConfig) error { return c.SetPinned(cmd.Index, cmd.Pinned) }

func (cmd SetPin) String() string {
	return fmt.Sprintf("set_pin(%d, %t)", cmd.Index, cmd.Pinned)
}
