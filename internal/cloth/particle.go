package cloth

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Particle is a point mass on the cloth grid. Velocity is implicit in
// Position - Previous.
type Particle struct {
	Position     mgl64.Vec3
	Previous     mgl64.Vec3
	Acceleration mgl64.Vec3
	Pinned       bool

	// Grid coordinates, fixed at build time.
	I, J int
}

// Velocity returns the displacement over the last step.
func (p *Particle) Velocity() mgl64.Vec3 {
	return p.Position.Sub(p.Previous)
}

// AddForce accumulates into the per-step acceleration. Mass is unit.
func (p *Particle) AddForce(f mgl64.Vec3) {
	p.Acceleration = p.Acceleration.Add(f)
}

// place puts the particle at rest at pos.
func (p *Particle) place(pos mgl64.Vec3) {
	p.Position = pos
	p.Previous = pos
	p.Acceleration = mgl64.Vec3{}
}

// IsFinite reports whether position and previous position are free of NaN and Inf.
func (p *Particle) IsFinite() bool {
	for k := 0; k < 3; k++ {
		if !finite(p.Position[k]) || !finite(p.Previous[k]) {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Sample is a published particle position for renderers.
type Sample struct {
	I, J     int
	Position mgl64.Vec3
}
