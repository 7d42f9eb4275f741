package cloth

import (
	"fmt"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl64"
)

// Observer receives the published positions at the end of every tick.
type Observer interface {
	OnStep(tick int, t float64, positions []Sample)
}

// Cloth owns the particle grid, its constraints and the tick pipeline.
type Cloth struct {
	params    Params
	grid      Grid
	particles []Particle
	topology  Topology
	batches   [3][][]int
	queue     []Command
	observers []Observer
	noise     *perlin.Perlin

	tick     int
	time     float64
	contacts int
}

func New(p Params) *Cloth {
	return &Cloth{
		params: p,
		noise:  perlin.NewPerlin(2, 2, 3, p.Seed),
	}
}

// Build creates a width x height grid and its constraints, discarding any
// previous state.
func (c *Cloth) Build(width, height int, spacing, yOffset float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("build %dx%d: %w", width, height, ErrInvalidDimensions)
	}
	g := Grid{Width: width, Height: height, Spacing: spacing, YOffset: yOffset}

	particles := make([]Particle, g.Len())
	for i := 0; i < width; i++ {
		for j := 0; j < height; j++ {
			p := &particles[g.Index(i, j)]
			p.I, p.J = i, j
			p.place(g.RestPosition(i, j))
			p.Pinned = g.DefaultPinned(i, j)
		}
	}

	b := topologyBuilder{grid: g, particles: particles, params: c.params}
	c.grid = g
	c.particles = particles
	c.topology = b.build()
	for _, k := range Kinds {
		c.batches[k] = colorBatches(c.topology.List(k), len(particles))
	}
	c.queue = nil
	c.tick, c.time, c.contacts = 0, 0, 0
	return nil
}

func (c *Cloth) Params() Params { return c.params }
func (c *Cloth) Grid() Grid     { return c.grid }
func (c *Cloth) Len() int       { return len(c.particles) }
func (c *Cloth) Tick() int      { return c.tick }

// Time is the accumulated simulation time in seconds.
func (c *Cloth) Time() float64 { return c.time }

// GroundContacts is the number of particles lifted onto the floor during
// the last sub-step.
func (c *Cloth) GroundContacts() int { return c.contacts }

// Particles exposes the particle store. Callers must not modify it.
func (c *Cloth) Particles() []Particle { return c.particles }

// Topology exposes the constraint lists. Callers must not modify them.
func (c *Cloth) Topology() *Topology { return &c.topology }

// Batches returns the number of conflict-free batches used by the parallel
// solver for k.
func (c *Cloth) Batches(k Kind) int { return len(c.batches[k]) }

func (c *Cloth) AddObserver(o Observer) { c.observers = append(c.observers, o) }

// Submit queues a command for the next tick.
func (c *Cloth) Submit(cmd Command) { c.queue = append(c.queue, cmd) }

// Pending returns the number of queued commands.
func (c *Cloth) Pending() int { return len(c.queue) }

// Step advances the cloth by one tick of cfg.Dt. Queued commands run first,
// followed by pending, then the physics pipeline once per sub-step.
//
// When a command fails Step returns its error without advancing the clock.
// Commands applied before it keep their effect, the failing one is dropped
// and the ones after it stay queued for the next Step.
func (c *Cloth) Step(cfg StepConfig, pending ...Command) error {
	if len(c.particles) == 0 {
		return ErrNotBuilt
	}

	cmds := append(c.queue, pending...)
	c.queue = nil
	for i, cmd := range cmds {
		if err := cmd.apply(c, cfg); err != nil {
			c.queue = append([]Command(nil), cmds[i+1:]...)
			return fmt.Errorf("tick %d: %s: %w", c.tick, cmd, err)
		}
	}

	substeps := max(cfg.Substeps, 1)
	h := cfg.SubstepDt()
	for s := 0; s < substeps; s++ {
		c.accumulateForces(cfg)
		c.integrate(h, cfg.Damping)
		if cfg.Parallel {
			if err := c.relaxParallel(cfg.Iterations, cfg.Toggles, cfg.Workers); err != nil {
				return fmt.Errorf("tick %d: relax: %w", c.tick, err)
			}
		} else {
			c.relaxSequential(cfg.Iterations, cfg.Toggles)
		}
		c.contacts = c.resolveGround(cfg.GroundHeight, cfg.Damping)
		c.time += h
	}
	c.tick++

	c.publish()
	return nil
}

func (c *Cloth) publish() {
	if len(c.observers) == 0 {
		return
	}
	positions := c.Positions()
	for _, o := range c.observers {
		o.OnStep(c.tick, c.time, positions)
	}
}

// Positions returns every particle position ordered by flat index.
func (c *Cloth) Positions() []Sample {
	out := make([]Sample, len(c.particles))
	for i := range c.particles {
		p := &c.particles[i]
		out[i] = Sample{I: p.I, J: p.J, Position: p.Position}
	}
	return out
}

// Particle returns a copy of the particle at idx.
func (c *Cloth) Particle(idx int) (Particle, error) {
	if idx < 0 || idx >= len(c.particles) {
		return Particle{}, fmt.Errorf("particle %d: %w", idx, ErrIndexOutOfRange)
	}
	return c.particles[idx], nil
}

// Unpin releases every particle so the whole cloth falls.
func (c *Cloth) Unpin() error {
	if len(c.particles) == 0 {
		return ErrNotBuilt
	}
	for i := range c.particles {
		c.particles[i].Pinned = false
	}
	return nil
}

// SetPinned pins or releases one particle.
func (c *Cloth) SetPinned(idx int, pinned bool) error {
	if len(c.particles) == 0 {
		return ErrNotBuilt
	}
	if idx < 0 || idx >= len(c.particles) {
		return fmt.Errorf("pin %d: %w", idx, ErrIndexOutOfRange)
	}
	c.particles[idx].Pinned = pinned
	return nil
}

// Reset puts every particle back on its grid position at rest and restores
// the default pins. Constraints are kept and the clock keeps running.
func (c *Cloth) Reset() error {
	if len(c.particles) == 0 {
		return ErrNotBuilt
	}
	for i := range c.particles {
		p := &c.particles[i]
		p.place(c.grid.RestPosition(p.I, p.J))
		p.Pinned = c.grid.DefaultPinned(p.I, p.J)
	}
	c.contacts = 0
	return nil
}

// SetStiffness retunes every constraint of kind k.
func (c *Cloth) SetStiffness(k Kind, stiffness float64) {
	switch k {
	case Structural:
		c.params.StructuralStiffness = stiffness
	case Shear:
		c.params.ShearStiffness = stiffness
	case Bend:
		c.params.BendStiffness = stiffness
	}
	list := c.topology.List(k)
	for i := range list {
		list[i].Stiffness = stiffness
	}
}

// Bounds returns the axis-aligned box around all particles.
func (c *Cloth) Bounds() (lo, hi mgl64.Vec3) {
	if len(c.particles) == 0 {
		return
	}
	lo, hi = c.particles[0].Position, c.particles[0].Position
	for i := 1; i < len(c.particles); i++ {
		p := c.particles[i].Position
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi
}

// Validate reports ErrUnstable if any particle has a non-finite component.
func (c *Cloth) Validate() error {
	for i := range c.particles {
		if !c.particles[i].IsFinite() {
			return fmt.Errorf("particle %d: %w", i, ErrUnstable)
		}
	}
	return nil
}
