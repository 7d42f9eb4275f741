package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// windForce returns the wind push at simulation time t.
func (c *Cloth) windForce(w Wind, t float64) mgl64.Vec3 {
	if w.Strength == 0 || w.Direction.Len() == 0 {
		return mgl64.Vec3{}
	}
	f := w.Direction.Normalize().Mul(w.Strength)
	if w.Oscillate {
		f = f.Mul(math.Sin(t * w.OscillationSpeed))
	}
	if w.Turbulence != 0 && c.noise != nil {
		f = f.Mul(1 + w.Turbulence*c.noise.Noise1D(t*0.5))
	}
	return f
}

// accumulateForces adds gravity and wind to every free particle.
func (c *Cloth) accumulateForces(cfg StepConfig) {
	gravity := mgl64.Vec3{0, -cfg.Gravity, 0}
	wind := c.windForce(cfg.Wind, c.time)
	for i := range c.particles {
		p := &c.particles[i]
		if p.Pinned {
			continue
		}
		p.AddForce(gravity)
		p.AddForce(wind)
	}
}

// Nearest returns the index of the particle closest to point. Ties resolve
// to the lowest index.
func (c *Cloth) Nearest(point mgl64.Vec3) (int, error) {
	if len(c.particles) == 0 {
		return -1, ErrNotBuilt
	}
	return c.nearest(point, false), nil
}

// nearest returns the index of the particle closest to point, or -1. With
// freeOnly set pinned particles are skipped.
func (c *Cloth) nearest(point mgl64.Vec3, freeOnly bool) int {
	best, bestDist := -1, math.MaxFloat64
	for i := range c.particles {
		if freeOnly && c.particles[i].Pinned {
			continue
		}
		d := c.particles[i].Position.Sub(point).Len()
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// ApplyPointForce adds force to the particle nearest point for the next step.
func (c *Cloth) ApplyPointForce(point, force mgl64.Vec3) error {
	idx, err := c.Nearest(point)
	if err != nil {
		return err
	}
	c.particles[idx].AddForce(force)
	return nil
}

// ApplyRadiusForce pushes every particle strictly within radius of center by
// direction scaled from maxForce at the center down to 0 at the boundary.
func (c *Cloth) ApplyRadiusForce(center mgl64.Vec3, radius, maxForce float64, direction mgl64.Vec3) error {
	if len(c.particles) == 0 {
		return ErrNotBuilt
	}
	if radius <= 0 {
		return nil
	}
	for i := range c.particles {
		p := &c.particles[i]
		dist := p.Position.Sub(center).Len()
		if dist >= radius {
			continue
		}
		strength := lerp(maxForce, 0, dist/radius)
		p.AddForce(direction.Mul(strength))
	}
	return nil
}

// Hit displaces the free particle nearest point by offset without going
// through integration. The implied velocity changes accordingly. Pinned
// particles are never candidates; with every particle pinned Hit does
// nothing.
func (c *Cloth) Hit(point, offset mgl64.Vec3) error {
	if len(c.particles) == 0 {
		return ErrNotBuilt
	}
	idx := c.nearest(point, true)
	if idx < 0 {
		return nil
	}
	p := &c.particles[idx]
	p.Position = p.Position.Add(offset)
	return nil
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
