package sim

import (
	"context"
	"fmt"
	"log"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Simulator drives a cloth for a fixed number of ticks, feeding scheduled
// commands and config changes, metrics and observers.
type Simulator struct {
	cloth     *cloth.Cloth
	metrics   []Metric
	observers []Observer
	commands  map[int][]cloth.Command
	changes   map[int][]func(*cloth.StepConfig)
}

func New(c *cloth.Cloth) *Simulator {
	return &Simulator{
		cloth:     c,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		commands:  make(map[int][]cloth.Command),
		changes:   make(map[int][]func(*cloth.StepConfig)),
	}
}

func (s *Simulator) Cloth() *cloth.Cloth { return s.cloth }

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Schedule queues cmd for the tick with run-relative index tick.
func (s *Simulator) Schedule(tick int, cmd cloth.Command) {
	s.commands[tick] = append(s.commands[tick], cmd)
}

// ScheduleConfig changes the step config from tick onwards.
func (s *Simulator) ScheduleConfig(tick int, fn func(*cloth.StepConfig)) {
	s.changes[tick] = append(s.changes[tick], fn)
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Times:   make([]float64, 0, cfg.Ticks),
		Series:  make(map[string][]float64, len(s.metrics)),
		Metrics: make(map[string]float64, len(s.metrics)),
		Errors:  make([]error, 0),
	}
	for _, m := range s.metrics {
		m.Reset()
		result.Series[m.Name()] = make([]float64, 0, cfg.Ticks)
	}

	// With validation on, Final falls back to the last state that passed it.
	var lastGood *cloth.Snapshot
	if cfg.ValidateState {
		lastGood = &cloth.Snapshot{}
		s.cloth.SnapshotInto(lastGood)
	}

	step := cfg.Step
	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, nil)
			return result, ctx.Err()
		default:
		}

		for _, fn := range s.changes[i] {
			fn(&step)
		}
		if err := s.cloth.Step(step, s.commands[i]...); err != nil {
			simErr := &SimulationError{Tick: s.cloth.Tick(), Time: s.cloth.Time(), Wrapped: err}
			result.Errors = append(result.Errors, simErr)
			s.finish(result, nil)
			return result, simErr
		}

		if cfg.ValidateState {
			if err := s.cloth.Validate(); err != nil {
				simErr := &SimulationError{Tick: s.cloth.Tick(), Time: s.cloth.Time(), Wrapped: err}
				result.Errors = append(result.Errors, simErr)
				log.Printf("sim: stopping: %v", simErr)
				s.finish(result, lastGood)
				return result, nil
			}
			s.cloth.SnapshotInto(lastGood)
		}

		result.StepsTaken++
		result.Times = append(result.Times, s.cloth.Time())
		for _, m := range s.metrics {
			m.Observe(s.cloth)
			result.Series[m.Name()] = append(result.Series[m.Name()], m.Current())
		}
		for _, obs := range s.observers {
			obs.OnTick(s.cloth)
		}
	}

	s.finish(result, nil)
	return result, nil
}

func (s *Simulator) finish(result *Result, final *cloth.Snapshot) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if final != nil {
		result.Final = *final
		return
	}
	result.Final = s.cloth.Snapshot()
}

func (s *Simulator) validateConfig(cfg Config) error {
	if s.cloth == nil || s.cloth.Len() == 0 {
		return cloth.ErrNotBuilt
	}
	if cfg.Step.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Step.Dt)
	}
	if cfg.Ticks <= 0 {
		return fmt.Errorf("ticks must be positive, got %d", cfg.Ticks)
	}
	return nil
}

// RunWithCallback steps the cloth until cfg.Ticks ticks have run or callback
// returns false. Scheduled events and metrics are not used.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(c *cloth.Cloth) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	for i := 0; i < cfg.Ticks; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := s.cloth.Step(cfg.Step); err != nil {
			return &SimulationError{Tick: s.cloth.Tick(), Time: s.cloth.Time(), Wrapped: err}
		}
		if cfg.ValidateState {
			if err := s.cloth.Validate(); err != nil {
				return &SimulationError{Tick: s.cloth.Tick(), Time: s.cloth.Time(), Wrapped: err}
			}
		}
		if !callback(s.cloth) {
			return nil
		}
	}

	return nil
}
