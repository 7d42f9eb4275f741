package metrics

import "github.com/san-kum/clothsim/internal/cloth"

// Stability is the fraction of ticks whose max strain stayed under threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
	current    float64
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(c *cloth.Cloth) {
	s.samples++
	s.current = 1
	if MaxStrain(c) > s.threshold {
		s.violations++
		s.current = 0
	}
}

func (s *Stability) Current() float64 { return s.current }

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
	s.current = 0
}
