// Package analysis provides post-run analysis of cloth metric series and
// particle motion.
//
//   - [PowerSpectrum] and [DominantFrequency]: sway frequency of a metric series
//   - [Summarize]: min, max, mean and settle time of a series
//   - [Trace]: trajectory of one particle, rendered with [TraceToASCII]
//
// # Sway Frequency
//
// A cloth swinging in oscillating wind shows a peak at the wind frequency:
//
//	f, err := analysis.DominantFrequency(result.Series["lowest_point"], dt)
package analysis
