// Package cloth implements a mass-spring cloth advanced by Verlet integration
// and iterative constraint relaxation.
//
// The package is organised around a single orchestrator, [Cloth], which owns:
//
//   - a flat particle store ([Particle]), indexed i + j*width
//   - three constraint lists ([Constraint]): structural, shear and bend
//   - a command queue drained at the start of every tick ([Command])
//
// Each call to [Cloth.Step] runs, in order: pending commands, force
// accumulation, Verlet integration, constraint relaxation, ground collision
// and publication to registered observers.
//
// # Example
//
//	c := cloth.New(cloth.DefaultParams())
//	if err := c.Build(10, 10, 0.5, 1.0); err != nil {
//	    return err
//	}
//	cfg := cloth.DefaultStepConfig()
//	for i := 0; i < 600; i++ {
//	    _ = c.Step(cfg)
//	}
//	positions := c.Positions()
//
// # Thread Safety
//
// Cloth instances are NOT thread-safe. [Cloth.Step] may fan out constraint
// relaxation over workers when [StepConfig.Parallel] is set, but it always
// returns with all workers finished.
package cloth
