// internal/bench/outliers.go
// Package: bench
package bench

import (
	"math"
	"slices"
)

// Class is the Tukey classification of one sample.
type Class int

const (
	Normal Class = iota
	Outlier
	SevereOutlier
)

func (c Class) String() string {
	switch c {
	case Normal:
		return "normal"
	case Outlier:
		return "outlier"
	case SevereOutlier:
		return "severe"
	default:
		return "unknown"
	}
}

// Fencing holds the IQR multipliers for the mild and severe fences.
type Fencing struct {
	Mild   float64 `json:"mild"`
	Severe float64 `json:"severe"`
}

// DefaultFencing returns Tukey's customary 1.5 and 3 multipliers.
func DefaultFencing() Fencing {
	return Fencing{Mild: 1.5, Severe: 3}
}

// Fences are the classification bounds of one bin, in seconds.
type Fences struct {
	LowerMild   float64 `json:"lowerMild"`
	UpperMild   float64 `json:"upperMild"`
	LowerSevere float64 `json:"lowerSevere"`
	UpperSevere float64 `json:"upperSevere"`
}

// Classify places a duration (in seconds) relative to the fences. Bounds are inclusive.
func (f Fences) Classify(d float64) Class {
	switch {
	case d >= f.LowerMild && d <= f.UpperMild:
		return Normal
	case d >= f.LowerSevere && d <= f.UpperSevere:
		return Outlier
	default:
		return SevereOutlier
	}
}

// FenceBin computes the fences for one bin of durations in seconds.
//
// Quartiles are taken by rank: Q1 is the floor(n/4)-th smallest value and Q3
// the ceil(3n/4)-th. A rank outside [1, n] has no value; Q1 then reads as -Inf
// and Q3 as +Inf, which opens the fences completely for small bins.
func FenceBin(durations []float64, fencing Fencing) Fences {
	sorted := slices.Clone(durations)
	slices.Sort(sorted)
	n := len(sorted)

	q1, q3 := math.Inf(-1), math.Inf(1)
	if r := n / 4; r >= 1 {
		q1 = sorted[r-1]
	}
	if r := (3*n + 3) / 4; r >= 1 && r <= n {
		q3 = sorted[r-1]
	}

	iqr := q3 - q1
	if math.IsInf(iqr, 0) {
		return Fences{
			LowerMild:   math.Inf(-1),
			UpperMild:   math.Inf(1),
			LowerSevere: math.Inf(-1),
			UpperSevere: math.Inf(1),
		}
	}
	return Fences{
		LowerMild:   q1 - fencing.Mild*iqr,
		UpperMild:   q3 + fencing.Mild*iqr,
		LowerSevere: q1 - fencing.Severe*iqr,
		UpperSevere: q3 + fencing.Severe*iqr,
	}
}

// Classification is the per-bin fencing of a sample set.
type Classification struct {
	Samples []Sample
	Classes []Class
	// Bins maps an invocation count to the fences of its bin.
	Bins map[uint64]Fences
	// Outliers counts every sample outside the mild fences, severe ones included.
	Outliers int
	// Severe counts the samples outside the severe fences.
	Severe int
}

// Classify bins samples by invocation count and fences each bin separately,
// since durations scale with the invocation count.
func Classify(samples []Sample, fencing Fencing) Classification {
	bins := make(map[uint64][]float64)
	for _, s := range samples {
		bins[s.Iterations] = append(bins[s.Iterations], s.Duration.Seconds())
	}

	c := Classification{
		Samples: samples,
		Classes: make([]Class, len(samples)),
		Bins:    make(map[uint64]Fences, len(bins)),
	}
	for iterations, durations := range bins {
		c.Bins[iterations] = FenceBin(durations, fencing)
	}

	for i, s := range samples {
		class := c.Bins[s.Iterations].Classify(s.Duration.Seconds())
		c.Classes[i] = class
		switch class {
		case Outlier:
			c.Outliers++
		case SevereOutlier:
			c.Outliers++
			c.Severe++
		}
	}
	return c
}

// Retained returns the Normal samples in their original order.
func (c Classification) Retained() []Sample {
	out := make([]Sample, 0, len(c.Samples)-c.Outliers)
	for i, s := range c.Samples {
		if c.Classes[i] == Normal {
			out = append(out, s)
		}
	}
	return out
}
