package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// KineticEnergy is the unit-mass kinetic energy of the cloth, using the
// Verlet velocity (pos - prev) / h. Position and previous position are one
// sub-step apart, so h must be the sub-step length, not the tick length.
// Value is the mean over the run.
type KineticEnergy struct {
	name    string
	dt      float64
	current float64
	total   float64
	samples int
}

func NewKineticEnergy(h float64) *KineticEnergy {
	return &KineticEnergy{
		name: "kinetic_energy",
		dt:   h,
	}
}

func (e *KineticEnergy) Name() string { return e.name }

func (e *KineticEnergy) Observe(c *cloth.Cloth) {
	if e.dt <= 0 {
		return
	}
	ke := 0.0
	for _, p := range c.Particles() {
		v := p.Velocity().Mul(1 / e.dt)
		ke += 0.5 * v.Dot(v)
	}
	e.current = ke
	e.total += ke
	e.samples++
}

func (e *KineticEnergy) Current() float64 { return e.current }

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.current = 0
	e.total = 0
	e.samples = 0
}
