package progress

import (
	"math"
	"slices"
)

// Summary holds the descriptive statistics for one transition label.
// Count == 0 is the "no data" state: Mean and Median are meaningless and
// Modes is nil, which callers must distinguish from a numeric zero.
type Summary struct {
	Label         string
	Mean          float64
	Median        float64
	Modes         []int
	ModeFrequency int
	Count         int
}

// HasData reports whether any observation backs this summary.
func (s Summary) HasData() bool {
	return s.Count > 0
}

// Summarize computes mean, median and the mode set over a transition's
// duration observations.
func Summarize(label string, durations []int) Summary {
	s := Summary{Label: label, Count: len(durations)}
	if len(durations) == 0 {
		return s
	}

	sum := 0
	for _, d := range durations {
		sum += d
	}
	s.Mean = math.Round(float64(sum)/float64(len(durations))*100) / 100
	s.Median = medianDiscrete(durations)
	s.Modes, s.ModeFrequency = modes(durations)
	return s
}

// medianDiscrete finds the median of a slice of integers, averaging the
// two middle values on even counts.
func medianDiscrete(values []int) float64 {
	// Work on a copy to avoid mutating the original
	temp := make([]int, len(values))
	copy(temp, values)
	slices.Sort(temp)

	n := len(temp)
	if n%2 == 1 {
		return float64(temp[n/2])
	}
	return float64(temp[n/2-1]+temp[n/2]) / 2.0
}

// modes returns every value attaining the maximum frequency, ascending,
// together with that frequency. Ties produce multiple values.
func modes(values []int) ([]int, int) {
	counts := make(map[int]int)
	maxFreq := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > maxFreq {
			maxFreq = counts[v]
		}
	}

	var tied []int
	for v, freq := range counts {
		if freq == maxFreq {
			tied = append(tied, v)
		}
	}
	slices.Sort(tied)
	return tied, maxFreq
}
