package automation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/metrics"
	"github.com/san-kum/clothsim/internal/sim"
)

var ErrUnknownAction = errors.New("unknown action")

// Scenario is a scripted run: a base config plus timed events.
type Scenario struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Preset      string  `yaml:"preset"`
	Ticks       int     `yaml:"ticks"`
	Events      []Event `yaml:"events"`
}

// Event fires once at At seconds of run time.
type Event struct {
	At     float64 `yaml:"at"`
	Action string  `yaml:"action"`

	Point     [3]float64 `yaml:"point"`
	Force     [3]float64 `yaml:"force"`
	Offset    [3]float64 `yaml:"offset"`
	Direction [3]float64 `yaml:"direction"`
	Radius    float64    `yaml:"radius"`
	MaxForce  float64    `yaml:"max_force"`
	Index     int        `yaml:"index"`
	Kind      string     `yaml:"kind"`
	Enabled   bool       `yaml:"enabled"`
	Value     float64    `yaml:"value"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	for i, ev := range scenario.Events {
		if err := ev.validate(); err != nil {
			return nil, fmt.Errorf("%s: event %d: %w", path, i+1, err)
		}
	}
	return &scenario, nil
}

func (ev Event) validate() error {
	switch ev.Action {
	case "unpin", "reset", "point_force", "hit", "radius_force", "pin", "release",
		"wind", "oscillate", "gravity":
		return nil
	case "toggle":
		if _, err := parseKind(ev.Kind); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
}

func parseKind(s string) (cloth.Kind, error) {
	for _, k := range cloth.Kinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown constraint kind: %q", s)
}

// Tick converts the event time to a run-relative tick index.
func (ev Event) Tick(dt float64) int {
	if dt <= 0 || ev.At <= 0 {
		return 0
	}
	return int(math.Round(ev.At / dt))
}

// Schedule registers the event with s. Interactions become commands,
// everything else becomes a config change.
func (ev Event) Schedule(s *sim.Simulator, dt float64) error {
	tick := ev.Tick(dt)
	switch ev.Action {
	case "unpin":
		s.Schedule(tick, cloth.Unpin{})
	case "reset":
		s.Schedule(tick, cloth.Reset{})
	case "point_force":
		s.Schedule(tick, cloth.PointForce{Point: mgl64.Vec3(ev.Point), Force: mgl64.Vec3(ev.Force)})
	case "hit":
		s.Schedule(tick, cloth.Displace{Point: mgl64.Vec3(ev.Point), Offset: mgl64.Vec3(ev.Offset)})
	case "radius_force":
		s.Schedule(tick, cloth.RadiusForce{
			Center:    mgl64.Vec3(ev.Point),
			Radius:    ev.Radius,
			MaxForce:  ev.MaxForce,
			Direction: mgl64.Vec3(ev.Direction),
		})
	case "pin":
		s.Schedule(tick, cloth.SetPin{Index: ev.Index, Pinned: true})
	case "release":
		s.Schedule(tick, cloth.SetPin{Index: ev.Index, Pinned: false})
	case "toggle":
		k, err := parseKind(ev.Kind)
		if err != nil {
			return err
		}
		enabled := ev.Enabled
		s.ScheduleConfig(tick, func(cfg *cloth.StepConfig) {
			switch k {
			case cloth.Structural:
				cfg.Toggles.Structural = enabled
			case cloth.Shear:
				cfg.Toggles.Shear = enabled
			case cloth.Bend:
				cfg.Toggles.Bend = enabled
			}
		})
	case "wind":
		strength := ev.Value
		s.ScheduleConfig(tick, func(cfg *cloth.StepConfig) { cfg.Wind.Strength = strength })
	case "oscillate":
		enabled := ev.Enabled
		s.ScheduleConfig(tick, func(cfg *cloth.StepConfig) { cfg.Wind.Oscillate = enabled })
	case "gravity":
		g := ev.Value
		s.ScheduleConfig(tick, func(cfg *cloth.StepConfig) { cfg.Gravity = g })
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, ev.Action)
	}
	return nil
}

// Resolve picks the scenario's config: its preset if set, base otherwise.
func (sc *Scenario) Resolve(base *config.Config) (*config.Config, error) {
	cfg := base
	if sc.Preset != "" {
		cfg = config.GetPreset(sc.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", sc.Preset)
		}
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if sc.Ticks > 0 {
		clone := *cfg
		clone.Run.Ticks = sc.Ticks
		cfg = &clone
	}
	return cfg, cfg.Validate()
}

// RunScenario builds a cloth from the resolved config, schedules every event
// and runs it with all metrics attached.
func RunScenario(ctx context.Context, sc *Scenario, base *config.Config) (*sim.Result, *config.Config, error) {
	cfg, err := sc.Resolve(base)
	if err != nil {
		return nil, nil, err
	}
	s, simCfg, err := NewSimulator(cfg)
	if err != nil {
		return nil, nil, err
	}
	for i, ev := range sc.Events {
		if err := ev.Schedule(s, cfg.Run.Dt); err != nil {
			return nil, nil, fmt.Errorf("event %d: %w", i+1, err)
		}
	}

	log.Printf("scenario %s: %d events over %d ticks", sc.Name, len(sc.Events), cfg.Run.Ticks)
	result, err := s.Run(ctx, simCfg)
	return result, cfg, err
}

// NewSimulator builds a cloth and a simulator with every metric from cfg.
func NewSimulator(cfg *config.Config) (*sim.Simulator, sim.Config, error) {
	c, err := cfg.NewCloth()
	if err != nil {
		return nil, sim.Config{}, err
	}
	step, err := cfg.StepConfig()
	if err != nil {
		return nil, sim.Config{}, err
	}

	s := sim.New(c)
	for _, m := range metrics.All(step.SubstepDt()) {
		s.AddMetric(m)
	}
	return s, sim.Config{Step: step, Ticks: cfg.Run.Ticks, ValidateState: true}, nil
}
