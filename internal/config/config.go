package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
)

const (
	DefaultWidth           = 10
	DefaultHeight          = 10
	DefaultSpacing         = 0.5
	DefaultYOffset         = 1.0
	DefaultTicks           = 600
	DefaultWindStrength    = 0.5
	DefaultClickForce      = 100000.0 / 60.0
	DefaultRadius          = 1.5
	DefaultRadiusMaxForce  = 5.0
	DefaultOscillationRate = 1.0
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Cloth       ClothConfig       `yaml:"cloth"`
	Solver      SolverConfig      `yaml:"solver"`
	Forces      ForcesConfig      `yaml:"forces"`
	Toggles     TogglesConfig     `yaml:"toggles"`
	Interaction InteractionConfig `yaml:"interaction"`
	Run         RunConfig         `yaml:"run"`
}

type ClothConfig struct {
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
	Spacing float64 `yaml:"spacing"`
	YOffset float64 `yaml:"y_offset"`
}

type SolverConfig struct {
	Iterations          int     `yaml:"iterations"`
	Substeps            int     `yaml:"substeps"`
	StructuralStiffness float64 `yaml:"structural_stiffness"`
	ShearStiffness      float64 `yaml:"shear_stiffness"`
	BendStiffness       float64 `yaml:"bend_stiffness"`
	MaxStretchRatio     float64 `yaml:"max_stretch_ratio"`
	Correction          string  `yaml:"correction"`
	Parallel            bool    `yaml:"parallel"`
	Workers             int     `yaml:"workers"`
}

type WindConfig struct {
	Direction        [3]float64 `yaml:"direction"`
	Strength         float64    `yaml:"strength"`
	Oscillate        bool       `yaml:"oscillate"`
	OscillationSpeed float64    `yaml:"oscillation_speed"`
	Turbulence       float64    `yaml:"turbulence"`
}

type ForcesConfig struct {
	Gravity      float64    `yaml:"gravity"`
	Damping      float64    `yaml:"damping"`
	GroundHeight float64    `yaml:"ground_height"`
	Wind         WindConfig `yaml:"wind"`
}

type TogglesConfig struct {
	Structural bool `yaml:"structural"`
	Shear      bool `yaml:"shear"`
	Bend       bool `yaml:"bend"`
}

type InteractionConfig struct {
	ForceMode      string     `yaml:"force_mode"`
	ClickForce     [3]float64 `yaml:"click_force"`
	HitOffset      [3]float64 `yaml:"hit_offset"`
	Radius         float64    `yaml:"radius"`
	RadiusMaxForce float64    `yaml:"radius_max_force"`
}

type RunConfig struct {
	Dt    float64 `yaml:"dt"`
	Ticks int     `yaml:"ticks"`
	Seed  int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Cloth: ClothConfig{
			Width:   DefaultWidth,
			Height:  DefaultHeight,
			Spacing: DefaultSpacing,
			YOffset: DefaultYOffset,
		},
		Solver: SolverConfig{
			Iterations:          cloth.DefaultIterations,
			Substeps:            1,
			StructuralStiffness: cloth.DefaultStructuralStiffness,
			ShearStiffness:      cloth.DefaultShearStiffness,
			BendStiffness:       cloth.DefaultBendStiffness,
			Correction:          cloth.CorrectionPull.String(),
			Workers:             cloth.DefaultWorkers,
		},
		Forces: ForcesConfig{
			Gravity:      cloth.DefaultGravity,
			Damping:      cloth.DefaultDamping,
			GroundHeight: cloth.DefaultGroundHeight,
			Wind: WindConfig{
				Direction:        [3]float64{1, 0, 0},
				Strength:         DefaultWindStrength,
				OscillationSpeed: DefaultOscillationRate,
			},
		},
		Toggles: TogglesConfig{Structural: true, Shear: true, Bend: true},
		Interaction: InteractionConfig{
			ForceMode:      cloth.ForceContinuous.String(),
			ClickForce:     [3]float64{0, DefaultClickForce, 1.5 * DefaultClickForce},
			HitOffset:      [3]float64{0, 0.2, 0.2},
			Radius:         DefaultRadius,
			RadiusMaxForce: DefaultRadiusMaxForce,
		},
		Run: RunConfig{
			Dt:    cloth.DefaultDt,
			Ticks: DefaultTicks,
			Seed:  1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the core leaves unchecked.
func (c *Config) Validate() error {
	switch {
	case c.Cloth.Width <= 0 || c.Cloth.Height <= 0:
		return fmt.Errorf("%w: cloth %dx%d", ErrInvalidConfig, c.Cloth.Width, c.Cloth.Height)
	case c.Run.Dt <= 0:
		return fmt.Errorf("%w: dt must be positive", ErrInvalidConfig)
	case c.Run.Ticks < 0:
		return fmt.Errorf("%w: ticks must not be negative", ErrInvalidConfig)
	case c.Solver.Iterations < 0:
		return fmt.Errorf("%w: iterations must not be negative", ErrInvalidConfig)
	case c.Solver.Substeps < 1:
		return fmt.Errorf("%w: substeps must be at least 1", ErrInvalidConfig)
	case c.Solver.MaxStretchRatio != 0 && c.Solver.MaxStretchRatio < 1:
		return fmt.Errorf("%w: max_stretch_ratio must be 0 or >= 1", ErrInvalidConfig)
	}
	if _, err := cloth.ParseCorrectionMode(c.Solver.Correction); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := cloth.ParseForceMode(c.Interaction.ForceMode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Params converts the build-time part of the config.
func (c *Config) Params() (cloth.Params, error) {
	mode, err := cloth.ParseCorrectionMode(c.Solver.Correction)
	if err != nil {
		return cloth.Params{}, err
	}
	return cloth.Params{
		StructuralStiffness: c.Solver.StructuralStiffness,
		ShearStiffness:      c.Solver.ShearStiffness,
		BendStiffness:       c.Solver.BendStiffness,
		MaxStretchRatio:     c.Solver.MaxStretchRatio,
		Correction:          mode,
		Seed:                c.Run.Seed,
	}, nil
}

// StepConfig converts the per-tick part of the config.
func (c *Config) StepConfig() (cloth.StepConfig, error) {
	mode, err := cloth.ParseForceMode(c.Interaction.ForceMode)
	if err != nil {
		return cloth.StepConfig{}, err
	}
	w := c.Forces.Wind
	return cloth.StepConfig{
		Dt:         c.Run.Dt,
		Substeps:   c.Solver.Substeps,
		Iterations: c.Solver.Iterations,
		Toggles: cloth.Toggles{
			Structural: c.Toggles.Structural,
			Shear:      c.Toggles.Shear,
			Bend:       c.Toggles.Bend,
		},
		Wind: cloth.Wind{
			Direction:        mgl64.Vec3(w.Direction),
			Strength:         w.Strength,
			Oscillate:        w.Oscillate,
			OscillationSpeed: w.OscillationSpeed,
			Turbulence:       w.Turbulence,
		},
		Gravity:      c.Forces.Gravity,
		Damping:      c.Forces.Damping,
		GroundHeight: c.Forces.GroundHeight,
		ForceMode:    mode,
		HitOffset:    mgl64.Vec3(c.Interaction.HitOffset),
		Parallel:     c.Solver.Parallel,
		Workers:      c.Solver.Workers,
	}, nil
}

// NewCloth builds a cloth from the config.
func (c *Config) NewCloth() (*cloth.Cloth, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	cl := cloth.New(p)
	if err := cl.Build(c.Cloth.Width, c.Cloth.Height, c.Cloth.Spacing, c.Cloth.YOffset); err != nil {
		return nil, err
	}
	return cl, nil
}

// ClickForce is the force applied by a point interaction.
func (c *Config) ClickForce() mgl64.Vec3 { return mgl64.Vec3(c.Interaction.ClickForce) }
