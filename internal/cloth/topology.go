package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind classifies a constraint by the deformation it resists.
type Kind int

const (
	Structural Kind = iota // axis-aligned neighbours, stretching
	Shear                  // diagonal neighbours, shearing
	Bend                   // axis-aligned neighbours two cells apart, bending
)

var kindNames = [...]string{"structural", "shear", "bend"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Kinds lists constraint classes in relaxation order.
var Kinds = []Kind{Structural, Shear, Bend}

// Constraint keeps particles A and B at RestLength. RestLength is captured
// once at build time and never recomputed.
type Constraint struct {
	A, B            int
	RestLength      float64
	Stiffness       float64
	MaxStretchRatio float64 // 0 disables the stretch clamp
	Kind            Kind
}

// Grid describes the rest layout of a W x H cloth.
type Grid struct {
	Width, Height int
	Spacing       float64
	YOffset       float64
}

// Len returns the particle count.
func (g Grid) Len() int { return g.Width * g.Height }

// Index maps grid coordinates to a flat particle index.
func (g Grid) Index(i, j int) int { return i + j*g.Width }

// Coords is the inverse of Index.
func (g Grid) Coords(idx int) (i, j int) { return idx % g.Width, idx / g.Width }

// InBounds reports whether (i, j) lies on the grid.
func (g Grid) InBounds(i, j int) bool {
	return i >= 0 && i < g.Width && j >= 0 && j < g.Height
}

// RestPosition is the build-time position of particle (i, j).
func (g Grid) RestPosition(i, j int) mgl64.Vec3 {
	return mgl64.Vec3{float64(i) * g.Spacing, float64(j)*g.Spacing + g.YOffset, 0}
}

// DefaultPinned reports whether (i, j) is one of the two top corners.
func (g Grid) DefaultPinned(i, j int) bool {
	return j == g.Height-1 && (i == 0 || i == g.Width-1)
}

// Topology holds the three constraint lists of a built cloth.
type Topology struct {
	Structural []Constraint
	Shear      []Constraint
	Bend       []Constraint
}

// List returns the constraint list for k.
func (t *Topology) List(k Kind) []Constraint {
	switch k {
	case Structural:
		return t.Structural
	case Shear:
		return t.Shear
	case Bend:
		return t.Bend
	}
	return nil
}

// Edges returns the constraints of kind k with each particle pair once,
// keeping the copy with A < B. Use it for drawing, not for relaxation.
func (t *Topology) Edges(k Kind) []Constraint {
	list := t.List(k)
	out := make([]Constraint, 0, len(list))
	for _, con := range list {
		if con.A < con.B {
			out = append(out, con)
		}
	}
	return out
}

// Len returns the total number of constraints.
func (t *Topology) Len() int {
	return len(t.Structural) + len(t.Shear) + len(t.Bend)
}

var (
	shearOffsets = [4][2]int{{1, 1}, {-1, 1}, {1, -1}, {-1, -1}}
	bendOffsets  = [4][2]int{{2, 0}, {-2, 0}, {0, 2}, {0, -2}}
)

type topologyBuilder struct {
	grid      Grid
	particles []Particle
	params    Params
}

func (b *topologyBuilder) spring(i1, j1, i2, j2 int, kind Kind, stiffness float64) (Constraint, bool) {
	if !b.grid.InBounds(i2, j2) {
		return Constraint{}, false
	}
	a, c := b.grid.Index(i1, j1), b.grid.Index(i2, j2)
	return Constraint{
		A:               a,
		B:               c,
		RestLength:      b.particles[c].Position.Sub(b.particles[a].Position).Len(),
		Stiffness:       stiffness,
		MaxStretchRatio: b.params.MaxStretchRatio,
		Kind:            kind,
	}, true
}

// build walks the grid column by column. Shear and bend pairs are emitted
// from both endpoints.
func (b *topologyBuilder) build() Topology {
	var t Topology
	g := b.grid
	for i := 0; i < g.Width; i++ {
		for j := 0; j < g.Height; j++ {
			if s, ok := b.spring(i, j, i+1, j, Structural, b.params.StructuralStiffness); ok {
				t.Structural = append(t.Structural, s)
			}
			if s, ok := b.spring(i, j, i, j+1, Structural, b.params.StructuralStiffness); ok {
				t.Structural = append(t.Structural, s)
			}
		}
	}
	for i := 0; i < g.Width; i++ {
		for j := 0; j < g.Height; j++ {
			for _, o := range shearOffsets {
				if s, ok := b.spring(i, j, i+o[0], j+o[1], Shear, b.params.ShearStiffness); ok {
					t.Shear = append(t.Shear, s)
				}
			}
		}
	}
	for i := 0; i < g.Width; i++ {
		for j := 0; j < g.Height; j++ {
			for _, o := range bendOffsets {
				if s, ok := b.spring(i, j, i+o[0], j+o[1], Bend, b.params.BendStiffness); ok {
					t.Bend = append(t.Bend, s)
				}
			}
		}
	}
	return t
}
