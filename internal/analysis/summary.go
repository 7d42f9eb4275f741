package analysis

import "math"

type Summary struct {
	Min, Max, Mean float64
	Final          float64
	// SettleIndex is the first sample after which the series stays within
	// tolerance of Final, or -1 for an empty series.
	SettleIndex int
}

func Summarize(data []float64, tolerance float64) Summary {
	if len(data) == 0 {
		return Summary{SettleIndex: -1}
	}
	s := Summary{Min: math.Inf(1), Max: math.Inf(-1), Final: data[len(data)-1]}
	for _, v := range data {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		s.Mean += v
	}
	s.Mean /= float64(len(data))

	s.SettleIndex = len(data) - 1
	for i := len(data) - 1; i >= 0; i-- {
		if math.Abs(data[i]-s.Final) > tolerance {
			break
		}
		s.SettleIndex = i
	}
	return s
}
