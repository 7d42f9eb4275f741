package metrics

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/sim"
)

// DefaultStabilityThreshold is the strain above which a tick counts as unstable.
const DefaultStabilityThreshold = 0.5

// Names lists the metrics known to New.
var Names = []string{"strain", "kinetic_energy", "lowest_point", "ground_contacts", "stability"}

// New creates the metric called name. h is the sub-step length used for
// velocities, see cloth.StepConfig.SubstepDt.
func New(name string, h float64) (sim.Metric, error) {
	switch name {
	case "strain":
		return NewStrain(), nil
	case "kinetic_energy":
		return NewKineticEnergy(h), nil
	case "lowest_point":
		return NewLowestPoint(), nil
	case "ground_contacts":
		return NewGroundContacts(), nil
	case "stability":
		return NewStability(DefaultStabilityThreshold), nil
	}
	return nil, fmt.Errorf("unknown metric: %s", name)
}

// All creates every metric in Names.
func All(h float64) []sim.Metric {
	out := make([]sim.Metric, 0, len(Names))
	for _, name := range Names {
		m, _ := New(name, h)
		out = append(out, m)
	}
	return out
}
