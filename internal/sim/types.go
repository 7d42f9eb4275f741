package sim

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/cloth"
)

// Metric reduces the cloth state to a scalar, sampled once per tick.
type Metric interface {
	Name() string
	Observe(c *cloth.Cloth)
	// Current is the value for the last observed tick.
	Current() float64
	// Value is the aggregate over the run.
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(c *cloth.Cloth)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c *cloth.Cloth)

func (f ObserverFunc) OnTick(c *cloth.Cloth) { f(c) }

type Config struct {
	Step          cloth.StepConfig
	Ticks         int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Step:          cloth.DefaultStepConfig(),
		Ticks:         600,
		ValidateState: true,
	}
}

type Result struct {
	Times   []float64
	Series  map[string][]float64
	Metrics map[string]float64
	// Final is the cloth at the end of the run. When state validation stops
	// the run it is the last state that passed validation instead.
	Final      cloth.Snapshot
	StepsTaken int
	Errors     []error
}

// SimulationError records the tick at which a run stopped.
type SimulationError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%.4f): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error { return e.Wrapped }
