package cloth

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func built(t *testing.T, w, h int, spacing, yOffset float64) *Cloth {
	t.Helper()
	c := New(DefaultParams())
	if err := c.Build(w, h, spacing, yOffset); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return c
}

func vecNear(a, b mgl64.Vec3, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

func TestBuild_ConstraintCounts(t *testing.T) {
	tests := []struct {
		w, h                    int
		structural, shear, bend int
	}{
		{1, 1, 0, 0, 0},
		{2, 2, 4, 4, 0},
		{3, 3, 12, 16, 12},
		{4, 4, 24, 36, 32},
		{5, 2, 13, 16, 12},
	}

	for _, tt := range tests {
		c := built(t, tt.w, tt.h, 0.5, 1)
		top := c.Topology()
		if got := len(top.Structural); got != tt.structural {
			t.Errorf("%dx%d structural = %d, want %d", tt.w, tt.h, got, tt.structural)
		}
		if got := len(top.Shear); got != tt.shear {
			t.Errorf("%dx%d shear = %d, want %d", tt.w, tt.h, got, tt.shear)
		}
		if got := len(top.Bend); got != tt.bend {
			t.Errorf("%dx%d bend = %d, want %d", tt.w, tt.h, got, tt.bend)
		}
	}
}

func TestTopology_EdgesCoverEachPairOnce(t *testing.T) {
	for _, dims := range [][2]int{{3, 3}, {4, 3}, {5, 2}} {
		top := built(t, dims[0], dims[1], 0.5, 1).Topology()
		for _, k := range Kinds {
			want := make(map[[2]int]bool)
			for _, con := range top.List(k) {
				want[[2]int{min(con.A, con.B), max(con.A, con.B)}] = true
			}
			got := make(map[[2]int]bool)
			for _, con := range top.Edges(k) {
				pair := [2]int{con.A, con.B}
				if con.A >= con.B || got[pair] {
					t.Errorf("%dx%d %s: edge %v repeated or unordered", dims[0], dims[1], k, pair)
				}
				got[pair] = true
			}
			if len(got) != len(want) {
				t.Errorf("%dx%d %s: %d edges for %d pairs", dims[0], dims[1], k, len(got), len(want))
			}
			for pair := range want {
				if !got[pair] {
					t.Errorf("%dx%d %s: pair %v not drawn", dims[0], dims[1], k, pair)
				}
			}
		}
	}
}

func TestBuild_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 3},
		{"zero height", 3, 0},
		{"negative", -1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(DefaultParams())
			if err := c.Build(tt.w, tt.h, 0.5, 0); !errors.Is(err, ErrInvalidDimensions) {
				t.Errorf("expected ErrInvalidDimensions, got %v", err)
			}
		})
	}
}

func TestBuild_LayoutAndPins(t *testing.T) {
	c := built(t, 3, 2, 0.5, 1)
	if c.Len() != 6 {
		t.Fatalf("expected 6 particles, got %d", c.Len())
	}

	p, err := c.Particle(5)
	if err != nil {
		t.Fatal(err)
	}
	if p.I != 2 || p.J != 1 {
		t.Errorf("index 5 should be (2,1), got (%d,%d)", p.I, p.J)
	}
	if !vecNear(p.Position, mgl64.Vec3{1, 1.5, 0}, 1e-12) {
		t.Errorf("unexpected position %v", p.Position)
	}

	pinned := 0
	for _, p := range c.Particles() {
		if p.Pinned {
			pinned++
			if p.J != 1 || (p.I != 0 && p.I != 2) {
				t.Errorf("unexpected pin at (%d,%d)", p.I, p.J)
			}
		}
	}
	if pinned != 2 {
		t.Errorf("expected 2 pinned corners, got %d", pinned)
	}
}

func TestBuild_RestLengths(t *testing.T) {
	const spacing = 0.5
	c := built(t, 4, 4, spacing, 1)
	want := map[Kind]float64{
		Structural: spacing,
		Shear:      spacing * math.Sqrt2,
		Bend:       2 * spacing,
	}
	for _, k := range Kinds {
		for _, s := range c.Topology().List(k) {
			if math.Abs(s.RestLength-want[k]) > 1e-12 {
				t.Fatalf("%s rest length = %v, want %v", k, s.RestLength, want[k])
			}
			if s.Stiffness != c.Params().Stiffness(k) {
				t.Fatalf("%s stiffness = %v", k, s.Stiffness)
			}
		}
	}
}

func TestBuild_DiscardsPreviousState(t *testing.T) {
	c := built(t, 4, 4, 0.5, 1)
	c.Submit(Unpin{})
	if err := c.Step(DefaultStepConfig()); err != nil {
		t.Fatal(err)
	}
	if err := c.Build(2, 2, 1, 0); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 4 || c.Tick() != 0 || c.Pending() != 0 {
		t.Errorf("rebuild kept state: len=%d tick=%d pending=%d", c.Len(), c.Tick(), c.Pending())
	}
	if len(c.Topology().Structural) != 4 {
		t.Errorf("expected 4 structural constraints after rebuild, got %d", len(c.Topology().Structural))
	}
}

func TestColorBatches_Disjoint(t *testing.T) {
	c := built(t, 6, 5, 0.5, 0)
	for _, k := range Kinds {
		list := c.Topology().List(k)
		batches := colorBatches(list, c.Len())
		seen := make([]int, len(list))
		for _, batch := range batches {
			touched := make(map[int]bool)
			for _, idx := range batch {
				s := list[idx]
				if touched[s.A] || touched[s.B] {
					t.Fatalf("%s batch shares a particle", k)
				}
				touched[s.A], touched[s.B] = true, true
				seen[idx]++
			}
		}
		for idx, n := range seen {
			if n != 1 {
				t.Fatalf("%s constraint %d scheduled %d times", k, idx, n)
			}
		}
	}
}

func TestConstraint_Correction(t *testing.T) {
	tests := []struct {
		name     string
		s        Constraint
		pa, pb   mgl64.Vec3
		wantCorr mgl64.Vec3
		wantLen  float64
		ok       bool
	}{
		{
			name:     "stretched",
			s:        Constraint{RestLength: 1, Stiffness: 1},
			pa:       mgl64.Vec3{0, 0, 0},
			pb:       mgl64.Vec3{2, 0, 0},
			wantCorr: mgl64.Vec3{0.5, 0, 0},
			wantLen:  2,
			ok:       true,
		},
		{
			name:     "compressed half stiffness",
			s:        Constraint{RestLength: 2, Stiffness: 0.5},
			pa:       mgl64.Vec3{0, 0, 0},
			pb:       mgl64.Vec3{0, 1, 0},
			wantCorr: mgl64.Vec3{0, -0.25, 0},
			wantLen:  1,
			ok:       true,
		},
		{
			name:     "clamped",
			s:        Constraint{RestLength: 1, Stiffness: 1, MaxStretchRatio: 1.5},
			pa:       mgl64.Vec3{0, 0, 0},
			pb:       mgl64.Vec3{4, 0, 0},
			wantCorr: mgl64.Vec3{0.25, 0, 0},
			wantLen:  1.5,
			ok:       true,
		},
		{
			name:     "clamp inactive below ratio",
			s:        Constraint{RestLength: 1, Stiffness: 1, MaxStretchRatio: 3},
			pa:       mgl64.Vec3{0, 0, 0},
			pb:       mgl64.Vec3{2, 0, 0},
			wantCorr: mgl64.Vec3{0.5, 0, 0},
			wantLen:  2,
			ok:       true,
		},
		{
			name: "degenerate",
			s:    Constraint{RestLength: 1, Stiffness: 1},
			pa:   mgl64.Vec3{1, 1, 1},
			pb:   mgl64.Vec3{1, 1, 1},
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corr, length, ok := tt.s.Correction(tt.pa, tt.pb)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if !vecNear(corr, tt.wantCorr, 1e-12) {
				t.Errorf("corr = %v, want %v", corr, tt.wantCorr)
			}
			if math.Abs(length-tt.wantLen) > 1e-12 {
				t.Errorf("length = %v, want %v", length, tt.wantLen)
			}
		})
	}
}

func pair(a, b mgl64.Vec3, pinA, pinB bool) []Particle {
	return []Particle{
		{Position: a, Previous: a, Pinned: pinA},
		{Position: b, Previous: b, Pinned: pinB},
	}
}

func TestRelax_Endpoints(t *testing.T) {
	s := Constraint{A: 0, B: 1, RestLength: 1, Stiffness: 1}
	a, b := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}

	tests := []struct {
		name         string
		pinA, pinB   bool
		mode         CorrectionMode
		wantA, wantB mgl64.Vec3
	}{
		{"both free", false, false, CorrectionPull, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{1.5, 0, 0}},
		{"A pinned", true, false, CorrectionPull, a, mgl64.Vec3{1.5, 0, 0}},
		{"B pinned", false, true, CorrectionPull, mgl64.Vec3{0.5, 0, 0}, b},
		{"both pinned", true, true, CorrectionPull, a, b},
		{"uniform", false, false, CorrectionUniform, mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{2.5, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := pair(a, b, tt.pinA, tt.pinB)
			relax(ps, &s, tt.mode)
			if !vecNear(ps[0].Position, tt.wantA, 1e-12) {
				t.Errorf("A = %v, want %v", ps[0].Position, tt.wantA)
			}
			if !vecNear(ps[1].Position, tt.wantB, 1e-12) {
				t.Errorf("B = %v, want %v", ps[1].Position, tt.wantB)
			}
		})
	}
}

func TestRelax_SymmetricForFreePair(t *testing.T) {
	s := Constraint{A: 0, B: 1, RestLength: 0.7, Stiffness: 0.3}
	a, b := mgl64.Vec3{0.1, -0.4, 0.2}, mgl64.Vec3{1.3, 0.8, -0.5}
	ps := pair(a, b, false, false)
	relax(ps, &s, CorrectionPull)

	da := ps[0].Position.Sub(a)
	db := ps[1].Position.Sub(b)
	if !vecNear(da, db.Mul(-1), 1e-12) {
		t.Errorf("corrections not opposite: %v vs %v", da, db)
	}
	if da.Len() == 0 {
		t.Error("expected a non-zero correction")
	}
}

func TestRelax_ErrorDecreasesMonotonically(t *testing.T) {
	for _, k := range []float64{0.05, 0.5, 1} {
		s := Constraint{A: 0, B: 1, RestLength: 1, Stiffness: k}
		ps := pair(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 3, 0}, false, false)
		prev := math.Inf(1)
		for it := 0; it < 50; it++ {
			relax(ps, &s, CorrectionPull)
			e := math.Abs(ps[1].Position.Sub(ps[0].Position).Len() - s.RestLength)
			if e > prev+1e-15 {
				t.Fatalf("stiffness %v: error rose at iteration %d: %v > %v", k, it, e, prev)
			}
			prev = e
		}
	}
}

func TestIntegrate(t *testing.T) {
	c := &Cloth{particles: []Particle{
		{Position: mgl64.Vec3{0, 0, 0}, Previous: mgl64.Vec3{0, 0, 0}, Acceleration: mgl64.Vec3{0, -10, 0}},
		{Position: mgl64.Vec3{1, 0, 0}, Previous: mgl64.Vec3{0.5, 0, 0}},
		{Position: mgl64.Vec3{5, 5, 5}, Previous: mgl64.Vec3{5, 5, 5}, Acceleration: mgl64.Vec3{0, -10, 0}, Pinned: true},
	}}
	c.integrate(0.1, 1)

	if !vecNear(c.particles[0].Position, mgl64.Vec3{0, -0.1, 0}, 1e-12) {
		t.Errorf("accelerated particle at %v", c.particles[0].Position)
	}
	if !vecNear(c.particles[1].Position, mgl64.Vec3{1.5, 0, 0}, 1e-12) {
		t.Errorf("coasting particle at %v", c.particles[1].Position)
	}
	if !vecNear(c.particles[1].Previous, mgl64.Vec3{1, 0, 0}, 1e-12) {
		t.Errorf("previous not advanced: %v", c.particles[1].Previous)
	}
	if c.particles[2].Position != (mgl64.Vec3{5, 5, 5}) {
		t.Errorf("pinned particle moved to %v", c.particles[2].Position)
	}
	for i, p := range c.particles {
		if p.Acceleration != (mgl64.Vec3{}) {
			t.Errorf("particle %d acceleration not cleared: %v", i, p.Acceleration)
		}
	}
}

func TestResolveGround(t *testing.T) {
	c := &Cloth{particles: []Particle{
		{Position: mgl64.Vec3{1, -4, 0}, Previous: mgl64.Vec3{0, -3.5, 0}},
		{Position: mgl64.Vec3{0, 2, 0}, Previous: mgl64.Vec3{0, 2, 0}},
	}}
	contacts := c.resolveGround(-3, 0.5)
	if contacts != 1 {
		t.Errorf("expected 1 contact, got %d", contacts)
	}
	p := c.particles[0]
	if !vecNear(p.Position, mgl64.Vec3{1, -3, 0}, 1e-12) {
		t.Errorf("position = %v", p.Position)
	}
	if !vecNear(p.Previous, mgl64.Vec3{0.5, -3, 0}, 1e-12) {
		t.Errorf("previous = %v", p.Previous)
	}
	if c.particles[1].Position != (mgl64.Vec3{0, 2, 0}) {
		t.Error("particle above ground was touched")
	}
}

func TestNearest_TieGoesToLowestIndex(t *testing.T) {
	c := built(t, 2, 1, 1, 0)
	idx, err := c.Nearest(mgl64.Vec3{0.5, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if idx != 0 {
		t.Errorf("expected index 0, got %d", idx)
	}
}

func TestApplyRadiusForce_Falloff(t *testing.T) {
	c := built(t, 3, 1, 1, 0)
	if err := c.ApplyRadiusForce(mgl64.Vec3{}, 1.5, 10, mgl64.Vec3{0, 1, 0}); err != nil {
		t.Fatal(err)
	}
	want := []float64{10, 10.0 / 3.0, 0}
	for i, w := range want {
		if got := c.particles[i].Acceleration[1]; math.Abs(got-w) > 1e-12 {
			t.Errorf("particle %d force = %v, want %v", i, got, w)
		}
	}

	if err := c.ApplyRadiusForce(mgl64.Vec3{}, 0, 10, mgl64.Vec3{0, 1, 0}); err != nil {
		t.Errorf("zero radius should be a no-op, got %v", err)
	}
}

func TestWindForce(t *testing.T) {
	c := New(DefaultParams())
	w := Wind{Direction: mgl64.Vec3{2, 0, 0}, Strength: 0.5}
	if got := c.windForce(w, 3); !vecNear(got, mgl64.Vec3{0.5, 0, 0}, 1e-12) {
		t.Errorf("steady wind = %v", got)
	}

	w.Oscillate, w.OscillationSpeed = true, 1
	if got := c.windForce(w, math.Pi/2); !vecNear(got, mgl64.Vec3{0.5, 0, 0}, 1e-12) {
		t.Errorf("peak oscillation = %v", got)
	}
	if got := c.windForce(w, 0); !vecNear(got, mgl64.Vec3{}, 1e-12) {
		t.Errorf("oscillation at t=0 = %v", got)
	}

	if got := c.windForce(Wind{Strength: 1}, 1); got != (mgl64.Vec3{}) {
		t.Errorf("zero direction should give no wind, got %v", got)
	}
}

func TestEmptyCloth(t *testing.T) {
	c := New(DefaultParams())
	checks := map[string]error{
		"step":         c.Step(DefaultStepConfig()),
		"unpin":        c.Unpin(),
		"reset":        c.Reset(),
		"pin":          c.SetPinned(0, true),
		"point force":  c.ApplyPointForce(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}),
		"radius force": c.ApplyRadiusForce(mgl64.Vec3{}, 1, 1, mgl64.Vec3{0, 1, 0}),
		"hit":          c.Hit(mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}),
		"restore":      c.Restore(Snapshot{}),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrNotBuilt) {
			t.Errorf("%s: expected ErrNotBuilt, got %v", name, err)
		}
	}
}

func TestSetPinned_OutOfRange(t *testing.T) {
	c := built(t, 2, 2, 1, 0)
	if err := c.SetPinned(4, true); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := c.SetPinned(-1, true); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSetStiffness(t *testing.T) {
	c := built(t, 3, 3, 0.5, 0)
	c.SetStiffness(Shear, 0.8)
	for _, s := range c.Topology().Shear {
		if s.Stiffness != 0.8 {
			t.Fatalf("shear stiffness = %v", s.Stiffness)
		}
	}
	if c.Params().ShearStiffness != 0.8 {
		t.Errorf("params not updated: %v", c.Params().ShearStiffness)
	}
	if c.Topology().Structural[0].Stiffness != DefaultStructuralStiffness {
		t.Error("structural stiffness changed")
	}
}

func TestSubsteps_AdvanceClockByDt(t *testing.T) {
	c := built(t, 3, 3, 0.5, 1)
	cfg := DefaultStepConfig()
	cfg.Substeps = 4
	for i := 0; i < 10; i++ {
		if err := c.Step(cfg); err != nil {
			t.Fatal(err)
		}
	}
	if math.Abs(c.Time()-10*cfg.Dt) > 1e-12 {
		t.Errorf("time = %v, want %v", c.Time(), 10*cfg.Dt)
	}
	if c.Tick() != 10 {
		t.Errorf("tick = %d", c.Tick())
	}
}

func TestParallelSolver_StaysFiniteAndPinned(t *testing.T) {
	c := built(t, 20, 20, 0.25, 1)
	cfg := DefaultStepConfig()
	cfg.Parallel = true
	cfg.Workers = 4
	pinned := []int{c.grid.Index(0, 19), c.grid.Index(19, 19)}
	before := []mgl64.Vec3{c.particles[pinned[0]].Position, c.particles[pinned[1]].Position}

	for i := 0; i < 60; i++ {
		if err := c.Step(cfg); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	for k, idx := range pinned {
		if c.particles[idx].Position != before[k] {
			t.Errorf("pinned particle %d moved", idx)
		}
	}
	if c.Batches(Structural) < 2 {
		t.Errorf("expected several structural batches, got %d", c.Batches(Structural))
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	c := built(t, 4, 3, 0.5, 1)
	for i := 0; i < 20; i++ {
		if err := c.Step(DefaultStepConfig()); err != nil {
			t.Fatal(err)
		}
	}
	snap := c.Snapshot()

	other, err := FromSnapshot(DefaultParams(), snap)
	if err != nil {
		t.Fatal(err)
	}
	if other.Tick() != c.Tick() || other.Time() != c.Time() {
		t.Errorf("clock not restored")
	}
	for i := range c.particles {
		if other.particles[i].Position != c.particles[i].Position {
			t.Fatalf("particle %d differs", i)
		}
	}

	small := built(t, 2, 2, 0.5, 1)
	if err := small.Restore(snap); !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}
