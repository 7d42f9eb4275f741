package cloth

// resolveGround lifts every particle below groundHeight back onto the floor,
// damping its implied velocity and cancelling the vertical component.
func (c *Cloth) resolveGround(groundHeight, damping float64) int {
	contacts := 0
	for i := range c.particles {
		p := &c.particles[i]
		if p.Position[1] >= groundHeight {
			continue
		}
		contacts++
		velocity := p.Position.Sub(p.Previous).Mul(damping)
		p.Position[1] = groundHeight
		p.Previous = p.Position.Sub(velocity)
		p.Previous[1] = p.Position[1]
	}
	return contacts
}
