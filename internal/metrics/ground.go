package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/cloth"
)

// LowestPoint tracks the minimum particle height. Value is the minimum over
// the run.
type LowestPoint struct {
	name    string
	current float64
	lowest  float64
}

func NewLowestPoint() *LowestPoint {
	return &LowestPoint{name: "lowest_point", lowest: math.Inf(1)}
}

func (l *LowestPoint) Name() string { return l.name }

func (l *LowestPoint) Observe(c *cloth.Cloth) {
	lo, _ := c.Bounds()
	l.current = lo.Y()
	l.lowest = math.Min(l.lowest, l.current)
}

func (l *LowestPoint) Current() float64 { return l.current }

func (l *LowestPoint) Value() float64 {
	if math.IsInf(l.lowest, 1) {
		return 0
	}
	return l.lowest
}

func (l *LowestPoint) Reset() {
	l.current = 0
	l.lowest = math.Inf(1)
}

// GroundContacts counts particles resting on the floor. Value is the peak.
type GroundContacts struct {
	name    string
	current float64
	peak    float64
}

func NewGroundContacts() *GroundContacts {
	return &GroundContacts{name: "ground_contacts"}
}

func (g *GroundContacts) Name() string { return g.name }

func (g *GroundContacts) Observe(c *cloth.Cloth) {
	g.current = float64(c.GroundContacts())
	g.peak = math.Max(g.peak, g.current)
}

func (g *GroundContacts) Current() float64 { return g.current }
func (g *GroundContacts) Value() float64   { return g.peak }

func (g *GroundContacts) Reset() {
	g.current = 0
	g.peak = 0
}
