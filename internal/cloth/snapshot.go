package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// ParticleState is the persisted part of a particle.
type ParticleState struct {
	Position mgl64.Vec3 `json:"position"`
	Previous mgl64.Vec3 `json:"previous"`
	Pinned   bool       `json:"pinned"`
}

// Snapshot captures particle state and pins so that an external collaborator
// can save and later restore a cloth. Constraints are rebuilt from the grid.
type Snapshot struct {
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Spacing   float64         `json:"spacing"`
	YOffset   float64         `json:"y_offset"`
	Tick      int             `json:"tick"`
	Time      float64         `json:"time"`
	Particles []ParticleState `json:"particles"`
}

func (c *Cloth) Snapshot() Snapshot {
	var s Snapshot
	c.SnapshotInto(&s)
	return s
}

// SnapshotInto fills dst with the current state, reusing its particle slice
// when it is large enough.
func (c *Cloth) SnapshotInto(dst *Snapshot) {
	dst.Width, dst.Height = c.grid.Width, c.grid.Height
	dst.Spacing, dst.YOffset = c.grid.Spacing, c.grid.YOffset
	dst.Tick, dst.Time = c.tick, c.time
	if cap(dst.Particles) < len(c.particles) {
		dst.Particles = make([]ParticleState, len(c.particles))
	}
	dst.Particles = dst.Particles[:len(c.particles)]
	for i := range c.particles {
		p := &c.particles[i]
		dst.Particles[i] = ParticleState{Position: p.Position, Previous: p.Previous, Pinned: p.Pinned}
	}
}

// IsFinite reports whether every particle state is free of NaN and Inf.
func (s Snapshot) IsFinite() bool {
	for _, st := range s.Particles {
		p := Particle{Position: st.Position, Previous: st.Previous}
		if !p.IsFinite() {
			return false
		}
	}
	return true
}

// Restore loads particle state from s into an already built cloth of the
// same dimensions. Pending accelerations are dropped.
func (c *Cloth) Restore(s Snapshot) error {
	if len(c.particles) == 0 {
		return ErrNotBuilt
	}
	if s.Width != c.grid.Width || s.Height != c.grid.Height || len(s.Particles) != len(c.particles) {
		return fmt.Errorf("restore %dx%d into %dx%d: %w",
			s.Width, s.Height, c.grid.Width, c.grid.Height, ErrDimensionMismatch)
	}
	for i := range c.particles {
		p := &c.particles[i]
		st := s.Particles[i]
		p.Position, p.Previous, p.Pinned = st.Position, st.Previous, st.Pinned
		p.Acceleration = mgl64.Vec3{}
	}
	c.tick, c.time = s.Tick, s.Time
	return nil
}

// FromSnapshot builds a cloth with the snapshot's grid and restores it.
func FromSnapshot(p Params, s Snapshot) (*Cloth, error) {
	c := New(p)
	if err := c.Build(s.Width, s.Height, s.Spacing, s.YOffset); err != nil {
		return nil, err
	}
	if err := c.Restore(s); err != nil {
		return nil, err
	}
	return c, nil
}
