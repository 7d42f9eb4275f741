package automation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

// SweepParams lists the parameters SetParam understands.
var SweepParams = map[string]func(*config.Config, float64){
	"structural_stiffness": func(c *config.Config, v float64) { c.Solver.StructuralStiffness = v },
	"shear_stiffness":      func(c *config.Config, v float64) { c.Solver.ShearStiffness = v },
	"bend_stiffness":       func(c *config.Config, v float64) { c.Solver.BendStiffness = v },
	"max_stretch_ratio":    func(c *config.Config, v float64) { c.Solver.MaxStretchRatio = v },
	"iterations":           func(c *config.Config, v float64) { c.Solver.Iterations = int(math.Round(v)) },
	"substeps":             func(c *config.Config, v float64) { c.Solver.Substeps = int(math.Round(v)) },
	"damping":              func(c *config.Config, v float64) { c.Forces.Damping = v },
	"gravity":              func(c *config.Config, v float64) { c.Forces.Gravity = v },
	"wind_strength":        func(c *config.Config, v float64) { c.Forces.Wind.Strength = v },
	"turbulence":           func(c *config.Config, v float64) { c.Forces.Wind.Turbulence = v },
}

func SweepParamNames() []string {
	names := make([]string, 0, len(SweepParams))
	for name := range SweepParams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetParam writes one named parameter into cfg.
func SetParam(cfg *config.Config, name string, value float64) error {
	set, ok := SweepParams[name]
	if !ok {
		return fmt.Errorf("unknown sweep parameter: %s", name)
	}
	set(cfg, value)
	return nil
}

// ParameterSweep runs the base config across evenly spaced values of Param.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	NumSteps int
	Workers  int
}

type SweepResult struct {
	ParamValue float64
	Metrics    map[string]float64
	StepsTaken int
	Stable     bool
}

// Values returns the swept parameter values.
func (sw *ParameterSweep) Values() []float64 {
	if sw.NumSteps <= 1 {
		return []float64{sw.Min}
	}
	step := (sw.Max - sw.Min) / float64(sw.NumSteps-1)
	vals := make([]float64, sw.NumSteps)
	for i := range vals {
		vals[i] = sw.Min + float64(i)*step
	}
	return vals
}

// RunSweep runs one simulation per value concurrently. A run that goes
// unstable is reported with Stable false rather than failing the sweep.
func RunSweep(ctx context.Context, base *config.Config, sw *ParameterSweep) ([]SweepResult, error) {
	if _, ok := SweepParams[sw.Param]; !ok {
		return nil, fmt.Errorf("unknown sweep parameter: %s", sw.Param)
	}

	values := sw.Values()
	jobs := make([]sim.Job, len(values))
	for i, v := range values {
		cfg := *base
		if err := SetParam(&cfg, sw.Param, v); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sw.Param, v, err)
		}
		step, err := cfg.StepConfig()
		if err != nil {
			return nil, err
		}
		jobs[i] = sim.Job{
			Name:   fmt.Sprintf("%s=%g", sw.Param, v),
			Config: sim.Config{Step: step, Ticks: cfg.Run.Ticks, ValidateState: true},
			Setup: func() (*sim.Simulator, error) {
				s, _, err := NewSimulator(&cfg)
				return s, err
			},
		}
	}

	results, err := sim.RunBatch(ctx, jobs, sw.Workers)
	if err != nil {
		return nil, err
	}

	out := make([]SweepResult, len(results))
	for i, r := range results {
		out[i] = SweepResult{
			ParamValue: values[i],
			Metrics:    r.Metrics,
			StepsTaken: r.StepsTaken,
			Stable:     len(r.Errors) == 0,
		}
	}
	return out, nil
}

// Best returns the stable result with the lowest value of metric.
func Best(results []SweepResult, metric string) (SweepResult, bool) {
	var best SweepResult
	found := false
	for _, r := range results {
		if !r.Stable {
			continue
		}
		v, ok := r.Metrics[metric]
		if !ok {
			continue
		}
		if !found || v < best.Metrics[metric] {
			best, found = r, true
		}
	}
	return best, found
}
