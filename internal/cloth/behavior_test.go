package cloth_test

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/clothsim/internal/cloth"
)

type countingObserver struct {
	ticks []int
	sizes []int
}

func (o *countingObserver) OnStep(tick int, _ float64, positions []cloth.Sample) {
	o.ticks = append(o.ticks, tick)
	o.sizes = append(o.sizes, len(positions))
}

func calm() cloth.StepConfig {
	cfg := cloth.DefaultStepConfig()
	cfg.Wind.Strength = 0
	return cfg
}

func stiff() cloth.Params {
	p := cloth.DefaultParams()
	p.StructuralStiffness = 1
	p.ShearStiffness = 0.5
	p.BendStiffness = 0.5
	return p
}

func run(c *cloth.Cloth, cfg cloth.StepConfig, ticks int) {
	for i := 0; i < ticks; i++ {
		Expect(c.Step(cfg)).To(Succeed())
	}
}

func pinnedIndices(c *cloth.Cloth) []int {
	var out []int
	for i, p := range c.Particles() {
		if p.Pinned {
			out = append(out, i)
		}
	}
	return out
}

var _ = Describe("Cloth", func() {
	var c *cloth.Cloth

	Context("hanging from its top corners", func() {
		BeforeEach(func() {
			c = cloth.New(stiff())
			Expect(c.Build(4, 4, 1, 1)).To(Succeed())
		})

		It("never moves pinned particles", func() {
			pins := pinnedIndices(c)
			Expect(pins).To(HaveLen(2))
			before := map[int]mgl64.Vec3{}
			for _, idx := range pins {
				before[idx] = c.Particles()[idx].Position
			}

			cfg := cloth.DefaultStepConfig()
			cfg.Wind.Oscillate = true
			for i := 0; i < 200; i++ {
				c.Submit(cloth.RadiusForce{Center: mgl64.Vec3{0, 4, 0}, Radius: 3, MaxForce: 50, Direction: mgl64.Vec3{0, 0, 1}})
				Expect(c.Step(cfg)).To(Succeed())
			}
			for idx, pos := range before {
				Expect(c.Particles()[idx].Position).To(Equal(pos))
			}
		})

		It("settles above the ground with the bottom corners sagging", func() {
			run(c, calm(), 600)

			bottomLeft := c.Particles()[0].Position
			bottomRight := c.Particles()[3].Position
			Expect(bottomLeft.Y()).To(BeNumerically("<", 1))
			Expect(bottomRight.Y()).To(BeNumerically("<", 1))
			Expect(bottomLeft.Y()).To(BeNumerically(">", cloth.DefaultGroundHeight))
			Expect(bottomRight.Y()).To(BeNumerically(">", cloth.DefaultGroundHeight))

			before := c.Positions()
			Expect(c.Step(calm())).To(Succeed())
			for i, s := range c.Positions() {
				Expect(s.Position.Sub(before[i].Position).Len()).To(BeNumerically("<", 0.05))
			}
			Expect(c.Validate()).To(Succeed())
		})

		It("keeps rest lengths fixed while the cloth deforms", func() {
			rest := make([]float64, len(c.Topology().Structural))
			for i, s := range c.Topology().Structural {
				rest[i] = s.RestLength
			}
			run(c, cloth.DefaultStepConfig(), 100)
			for i, s := range c.Topology().Structural {
				Expect(s.RestLength).To(Equal(rest[i]))
			}
		})

		It("publishes positions to observers once per tick", func() {
			obs := &countingObserver{}
			c.AddObserver(obs)
			run(c, calm(), 3)
			Expect(obs.ticks).To(Equal([]int{1, 2, 3}))
			Expect(obs.sizes).To(Equal([]int{16, 16, 16}))
		})
	})

	Context("with the default parameters", func() {
		BeforeEach(func() {
			c = cloth.New(cloth.DefaultParams())
			Expect(c.Build(4, 4, 1, 1)).To(Succeed())
		})

		It("sags for 100 ticks without reaching the ground", func() {
			run(c, calm(), 100)

			Expect(c.Validate()).To(Succeed())
			for _, idx := range []int{0, 3} {
				y := c.Particles()[idx].Position.Y()
				Expect(y).To(BeNumerically("<", 1))
				Expect(y).To(BeNumerically(">", cloth.DefaultGroundHeight))
			}
		})

		It("moves every particle downward on the first tick after unpinning", func() {
			Expect(c.Unpin()).To(Succeed())
			Expect(c.Step(calm())).To(Succeed())

			for _, p := range c.Particles() {
				Expect(p.Velocity().Y()).To(BeNumerically("<", 0))
			}
		})
	})

	Context("after unpinning everything", func() {
		BeforeEach(func() {
			c = cloth.New(stiff())
			Expect(c.Build(4, 4, 1, 1)).To(Succeed())
		})

		It("falls onto the ground and stays there", func() {
			c.Submit(cloth.Unpin{})
			Expect(c.Pending()).To(Equal(1))
			run(c, calm(), 600)

			Expect(c.Pending()).To(BeZero())
			Expect(pinnedIndices(c)).To(BeEmpty())
			lowest := 1e9
			for _, s := range c.Positions() {
				Expect(s.Position.Y()).To(BeNumerically(">=", cloth.DefaultGroundHeight))
				lowest = min(lowest, s.Position.Y())
			}
			Expect(lowest).To(BeNumerically("~", cloth.DefaultGroundHeight, 1e-6))
			Expect(c.GroundContacts()).To(BeNumerically(">", 0))
		})
	})

	Context("reset", func() {
		BeforeEach(func() {
			c = cloth.New(cloth.DefaultParams())
			Expect(c.Build(5, 4, 0.5, 1)).To(Succeed())
		})

		It("restores rest positions, zero velocity and default pins", func() {
			Expect(c.Unpin()).To(Succeed())
			run(c, cloth.DefaultStepConfig(), 50)
			clock := c.Time()

			c.Submit(cloth.Reset{})
			cfg := calm()
			cfg.Gravity = 0
			cfg.Iterations = 0
			Expect(c.Step(cfg)).To(Succeed())

			g := c.Grid()
			for _, p := range c.Particles() {
				Expect(p.Position).To(Equal(g.RestPosition(p.I, p.J)))
				Expect(p.Velocity().Len()).To(BeZero())
				Expect(p.Pinned).To(Equal(g.DefaultPinned(p.I, p.J)))
			}
			Expect(c.Time()).To(BeNumerically(">", clock))
		})
	})

	Context("point interactions", func() {
		BeforeEach(func() {
			c = cloth.New(cloth.DefaultParams())
			Expect(c.Build(3, 3, 1, 0)).To(Succeed())
		})

		It("displaces the nearest particle in hit mode", func() {
			cfg := calm()
			cfg.Gravity = 0
			cfg.Iterations = 0
			cfg.Damping = 1
			cfg.ForceMode = cloth.ForceDisplacement
			cfg.HitOffset = mgl64.Vec3{0, 0.2, 0.2}

			target := mgl64.Vec3{1, 1, 0}
			Expect(c.Step(cfg, cloth.PointForce{Point: target})).To(Succeed())

			got := c.Particles()[4].Position
			Expect(got.Y()).To(BeNumerically("~", 1.4, 1e-12))
			Expect(got.Z()).To(BeNumerically("~", 0.4, 1e-12))
		})

		It("skips pinned particles in hit mode", func() {
			cfg := calm()
			cfg.Gravity = 0
			cfg.Iterations = 0
			cfg.Damping = 1
			cfg.ForceMode = cloth.ForceDisplacement
			cfg.HitOffset = mgl64.Vec3{0, 0, 0.5}
			pinned := c.Particles()[6].Position

			Expect(c.Step(cfg, cloth.PointForce{Point: mgl64.Vec3{0, 2.1, 0}})).To(Succeed())

			Expect(c.Particles()[6].Position).To(Equal(pinned))
			Expect(c.Particles()[7].Position.Z()).To(BeNumerically("~", 1.0, 1e-12))
		})

		It("accelerates the nearest particle in force mode", func() {
			cfg := calm()
			cfg.Gravity = 0
			cfg.Iterations = 0
			Expect(c.Step(cfg, cloth.PointForce{Point: mgl64.Vec3{1, 1, 0.1}, Force: mgl64.Vec3{0, 0, 3600}})).To(Succeed())

			Expect(c.Particles()[4].Position.Z()).To(BeNumerically("~", 3600*cfg.Dt*cfg.Dt, 1e-9))
			Expect(c.Particles()[0].Position.Z()).To(BeZero())
		})

		It("pins and releases single particles through commands", func() {
			Expect(c.Step(calm(), cloth.SetPin{Index: 4, Pinned: true}, cloth.SetPin{Index: 6, Pinned: false})).To(Succeed())
			Expect(c.Particles()[4].Pinned).To(BeTrue())
			Expect(c.Particles()[6].Pinned).To(BeFalse())
		})

		It("reports command failures with the tick", func() {
			err := c.Step(calm(), cloth.SetPin{Index: 99})
			Expect(err).To(MatchError(cloth.ErrIndexOutOfRange))
			Expect(c.Tick()).To(BeZero())
		})

		It("keeps the commands after a failing one queued", func() {
			c.Submit(cloth.SetPin{Index: 4, Pinned: true})
			err := c.Step(calm(), cloth.SetPin{Index: 99}, cloth.SetPin{Index: 6, Pinned: false})
			Expect(err).To(MatchError(cloth.ErrIndexOutOfRange))
			Expect(c.Particles()[4].Pinned).To(BeTrue())
			Expect(c.Particles()[6].Pinned).To(BeTrue())
			Expect(c.Pending()).To(Equal(1))

			Expect(c.Step(calm())).To(Succeed())
			Expect(c.Particles()[6].Pinned).To(BeFalse())
			Expect(c.Pending()).To(BeZero())
		})
	})

	Context("with every constraint class disabled", func() {
		It("lets free particles fall freely", func() {
			c = cloth.New(cloth.DefaultParams())
			Expect(c.Build(3, 3, 0.5, 0)).To(Succeed())
			cfg := calm()
			cfg.Toggles = cloth.Toggles{}
			cfg.Damping = 1
			run(c, cfg, 1)

			drop := cfg.Gravity * cfg.Dt * cfg.Dt
			Expect(c.Particles()[0].Position.Y()).To(BeNumerically("~", -drop, 1e-12))
			Expect(c.Particles()[1].Position.Y()).To(BeNumerically("~", -drop, 1e-12))
		})
	})
})
