package cloth

import (
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// Correction computes the displacement for endpoint A given the current
// endpoint positions. B receives the negated displacement under
// CorrectionPull. length is the effective length after stretch clamping.
// ok is false for a degenerate (coincident) pair, which must be skipped.
func (s *Constraint) Correction(pa, pb mgl64.Vec3) (corr mgl64.Vec3, length float64, ok bool) {
	delta := pb.Sub(pa)
	length = delta.Len()
	if length == 0 {
		return mgl64.Vec3{}, 0, false
	}
	if s.MaxStretchRatio > 0 && s.RestLength > 0 && length/s.RestLength > s.MaxStretchRatio {
		clamped := s.RestLength * s.MaxStretchRatio
		delta = delta.Mul(clamped / length)
		length = clamped
	}
	diff := (length - s.RestLength) / length
	return delta.Mul(0.5 * diff * s.Stiffness), length, true
}

// relax applies one correction to a constraint in place.
func relax(particles []Particle, s *Constraint, mode CorrectionMode) {
	a, b := &particles[s.A], &particles[s.B]
	if a.Pinned && b.Pinned {
		return
	}
	corr, _, ok := s.Correction(a.Position, b.Position)
	if !ok {
		return
	}
	if !a.Pinned {
		a.Position = a.Position.Add(corr)
	}
	if !b.Pinned {
		if mode == CorrectionUniform {
			b.Position = b.Position.Add(corr)
		} else {
			b.Position = b.Position.Sub(corr)
		}
	}
}

// relaxSequential runs Gauss-Seidel passes: every constraint sees the
// positions left by the ones before it.
func (c *Cloth) relaxSequential(iterations int, toggles Toggles) {
	mode := c.params.Correction
	for it := 0; it < iterations; it++ {
		for _, k := range Kinds {
			if !toggles.Enabled(k) {
				continue
			}
			list := c.topology.List(k)
			for i := range list {
				relax(c.particles, &list[i], mode)
			}
		}
	}
}

// minChunk keeps tiny batches on the calling goroutine.
const minChunk = 64

// relaxParallel runs the same passes over conflict-free batches. Batches of a
// class run in order; constraints inside a batch touch disjoint particles and
// are spread over workers.
func (c *Cloth) relaxParallel(iterations int, toggles Toggles, workers int) error {
	if workers < 1 {
		workers = 1
	}
	mode := c.params.Correction
	for it := 0; it < iterations; it++ {
		for _, k := range Kinds {
			if !toggles.Enabled(k) {
				continue
			}
			list := c.topology.List(k)
			for _, batch := range c.batches[k] {
				if err := c.relaxBatch(list, batch, mode, workers); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Cloth) relaxBatch(list []Constraint, batch []int, mode CorrectionMode, workers int) error {
	n := len(batch)
	if n <= minChunk || workers == 1 {
		for _, idx := range batch {
			relax(c.particles, &list[idx], mode)
		}
		return nil
	}

	chunks := workers
	if n/minChunk < chunks {
		chunks = n / minChunk
	}
	size := (n + chunks - 1) / chunks

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		part := batch[start:end]
		g.Go(func() error {
			for _, idx := range part {
				relax(c.particles, &list[idx], mode)
			}
			return nil
		})
	}
	return g.Wait()
}
