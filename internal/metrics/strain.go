package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// MaxStrain returns the largest relative elongation (len - rest) / rest over
// the structural constraints. Compressed springs count as zero.
func MaxStrain(c *cloth.Cloth) float64 {
	particles := c.Particles()
	worst := 0.0
	for _, s := range c.Topology().Structural {
		if s.RestLength == 0 {
			continue
		}
		length := particles[s.B].Position.Sub(particles[s.A].Position).Len()
		worst = max(worst, (length-s.RestLength)/s.RestLength)
	}
	return worst
}

// Strain tracks MaxStrain per tick. Value is the peak over the run.
type Strain struct {
	name    string
	current float64
	peak    float64
}

func NewStrain() *Strain {
	return &Strain{name: "strain"}
}

func (s *Strain) Name() string { return s.name }

func (s *Strain) Observe(c *cloth.Cloth) {
	s.current = MaxStrain(c)
	s.peak = max(s.peak, s.current)
}

func (s *Strain) Current() float64 { return s.current }
func (s *Strain) Value() float64   { return s.peak }

func (s *Strain) Reset() {
	s.current = 0
	s.peak = 0
}
