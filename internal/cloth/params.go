package cloth

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultIterations          = 15
	DefaultGravity             = 9.81
	DefaultDamping             = 0.99
	DefaultGroundHeight        = -3.0
	DefaultStructuralStiffness = 0.05
	DefaultShearStiffness      = 0.00005
	DefaultBendStiffness       = 0.005
	DefaultDt                  = 1.0 / 60.0
	DefaultWorkers             = 4
)

// CorrectionMode selects how a constraint distributes its correction.
type CorrectionMode int

const (
	// CorrectionPull moves A by +c and B by -c, pulling both endpoints
	// towards the rest length.
	CorrectionPull CorrectionMode = iota
	// CorrectionUniform adds +c to both endpoints. Kept for reproducing
	// older runs; it translates a stretched pair instead of contracting it.
	CorrectionUniform
)

func (m CorrectionMode) String() string {
	switch m {
	case CorrectionPull:
		return "pull"
	case CorrectionUniform:
		return "uniform"
	}
	return fmt.Sprintf("correction(%d)", int(m))
}

// ParseCorrectionMode accepts "pull" or "uniform". Empty means pull.
func ParseCorrectionMode(s string) (CorrectionMode, error) {
	switch s {
	case "", "pull":
		return CorrectionPull, nil
	case "uniform":
		return CorrectionUniform, nil
	}
	return 0, fmt.Errorf("unknown correction mode: %s", s)
}

// ForceMode selects what a point interaction does to the nearest particle.
type ForceMode int

const (
	// ForceContinuous accumulates the interaction as a force.
	ForceContinuous ForceMode = iota
	// ForceDisplacement offsets the particle position directly, bypassing
	// integration.
	ForceDisplacement
)

func (m ForceMode) String() string {
	switch m {
	case ForceContinuous:
		return "force"
	case ForceDisplacement:
		return "hit"
	}
	return fmt.Sprintf("force_mode(%d)", int(m))
}

// ParseForceMode accepts "force" or "hit". Empty means force.
func ParseForceMode(s string) (ForceMode, error) {
	switch s {
	case "", "force":
		return ForceContinuous, nil
	case "hit":
		return ForceDisplacement, nil
	}
	return 0, fmt.Errorf("unknown force mode: %s", s)
}

// Params are captured when the cloth is built.
type Params struct {
	StructuralStiffness float64
	ShearStiffness      float64
	BendStiffness       float64
	MaxStretchRatio     float64
	Correction          CorrectionMode
	// Seed drives the wind turbulence noise.
	Seed int64
}

func DefaultParams() Params {
	return Params{
		StructuralStiffness: DefaultStructuralStiffness,
		ShearStiffness:      DefaultShearStiffness,
		BendStiffness:       DefaultBendStiffness,
		Correction:          CorrectionPull,
		Seed:                1,
	}
}

// Stiffness returns the build-time stiffness for k.
func (p Params) Stiffness(k Kind) float64 {
	switch k {
	case Structural:
		return p.StructuralStiffness
	case Shear:
		return p.ShearStiffness
	case Bend:
		return p.BendStiffness
	}
	return 0
}

// Toggles enable evaluation of each constraint class.
type Toggles struct {
	Structural bool
	Shear      bool
	Bend       bool
}

func AllEnabled() Toggles { return Toggles{Structural: true, Shear: true, Bend: true} }

// Enabled reports whether constraints of kind k are relaxed.
func (t Toggles) Enabled(k Kind) bool {
	switch k {
	case Structural:
		return t.Structural
	case Shear:
		return t.Shear
	case Bend:
		return t.Bend
	}
	return false
}

// Wind is a uniform push along Direction.
type Wind struct {
	Direction        mgl64.Vec3
	Strength         float64
	Oscillate        bool
	OscillationSpeed float64
	// Turbulence scales a smooth noise gust on top of the base wind. 0 disables it.
	Turbulence float64
}

// StepConfig is the immutable configuration snapshot passed to every Step.
type StepConfig struct {
	Dt           float64
	Substeps     int
	Iterations   int
	Toggles      Toggles
	Wind         Wind
	Gravity      float64
	Damping      float64
	GroundHeight float64
	ForceMode    ForceMode
	HitOffset    mgl64.Vec3
	Parallel     bool
	Workers      int
}

// SubstepDt is the integration step h = Dt / Substeps. Substeps below one
// count as one.
func (c StepConfig) SubstepDt() float64 {
	if c.Substeps < 1 {
		return c.Dt
	}
	return c.Dt / float64(c.Substeps)
}

func DefaultStepConfig() StepConfig {
	return StepConfig{
		Dt:         DefaultDt,
		Substeps:   1,
		Iterations: DefaultIterations,
		Toggles:    AllEnabled(),
		Wind: Wind{
			Direction:        mgl64.Vec3{1, 0, 0},
			Strength:         0.5,
			OscillationSpeed: 1,
		},
		Gravity:      DefaultGravity,
		Damping:      DefaultDamping,
		GroundHeight: DefaultGroundHeight,
		ForceMode:    ForceContinuous,
		HitOffset:    mgl64.Vec3{0, 0.2, 0.2},
		Workers:      DefaultWorkers,
	}
}
