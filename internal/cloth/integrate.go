package cloth

// integrate advances every free particle by one Verlet step of length dt and
// clears accumulated acceleration on all particles.
func (c *Cloth) integrate(dt, damping float64) {
	dt2 := dt * dt
	for i := range c.particles {
		p := &c.particles[i]
		if !p.Pinned {
			velocity := p.Position.Sub(p.Previous).Mul(damping)
			next := p.Position.Add(velocity).Add(p.Acceleration.Mul(dt2))
			p.Previous = p.Position
			p.Position = next
		}
		p.Acceleration[0], p.Acceleration[1], p.Acceleration[2] = 0, 0, 0
	}
}
