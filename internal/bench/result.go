// internal/bench/result.go
// Package: bench
package bench

import "math"

// Result is the final measurement of one workload.
type Result struct {
	Name         string  `json:"name"`
	OpsPerSecond float64 `json:"opsPerSecond"`
	// ErrorMargin is the larger of the two one-sided gaps between
	// OpsPerSecond and the rate bounds implied by the slope's confidence interval.
	ErrorMargin    float64     `json:"errorMargin"`
	Significance   float64     `json:"significance"`
	Retained       int         `json:"retained"`
	Outliers       int         `json:"outliers"`
	SevereOutliers int         `json:"severeOutliers"`
	Fit            Fit         `json:"fit"`
	Calibration    Calibration `json:"calibration"`
}

// Synthesize turns a fit into a rate. The interval [Slope-r, Slope+r] maps to
// the asymmetric rate interval [1/(Slope+r), 1/(Slope-r)]; the reported margin
// is the wider side. When Slope-r is not positive the upper rate is unbounded.
func Synthesize(name string, fit Fit, cls Classification, significance float64) Result {
	ops := 1 / fit.Slope
	low := 1 / (fit.Slope + fit.ConfidenceRadius)
	high := math.Inf(1)
	if d := fit.Slope - fit.ConfidenceRadius; d > 0 {
		high = 1 / d
	}

	return Result{
		Name:           name,
		OpsPerSecond:   ops,
		ErrorMargin:    math.Max(high-ops, ops-low),
		Significance:   significance,
		Retained:       fit.N,
		Outliers:       cls.Outliers,
		SevereOutliers: cls.Severe,
		Fit:            fit,
	}
}
