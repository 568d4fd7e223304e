// internal/bench/regression.go
// Package: bench
package bench

import (
	"fmt"
	"math"
)

// DefaultSignificance is the two-sided significance level of the reported
// confidence interval.
const DefaultSignificance = 0.001

// CriticalValue returns the two-sided critical value for the given
// significance level under the large-sample normal approximation of the
// t-distribution. It does not depend on the sample count, so for small
// retained sets the interval is somewhat too narrow.
func CriticalValue(significance float64) float64 {
	return math.Sqrt2 * math.Erfinv(1-significance)
}

// Fit is an ordinary least squares fit of duration (seconds) against
// invocation count.
type Fit struct {
	Intercept        float64 `json:"intercept"`
	Slope            float64 `json:"slope"`
	StandardError    float64 `json:"standardError"`
	ConfidenceRadius float64 `json:"confidenceRadius"`
	N                int     `json:"n"`
}

// Regress fits duration = Intercept + Slope*iterations over samples.
// With exactly two samples the residual variance has no degrees of freedom
// and the standard error is reported as +Inf.
func Regress(samples []Sample, critical float64) (Fit, error) {
	n := len(samples)
	if n < 2 {
		return Fit{}, fmt.Errorf("%w: have %d, need at least 2", ErrInsufficientSamples, n)
	}

	var sumX, sumD float64
	for _, s := range samples {
		sumX += float64(s.Iterations)
		sumD += s.Duration.Seconds()
	}
	meanX := sumX / float64(n)
	meanD := sumD / float64(n)

	var sxx, sxd float64
	for _, s := range samples {
		dx := float64(s.Iterations) - meanX
		sxx += dx * dx
		sxd += dx * (s.Duration.Seconds() - meanD)
	}
	if sxx == 0 {
		return Fit{}, ErrDegenerateSweep
	}

	beta := sxd / sxx
	alpha := meanD - beta*meanX

	stderr := math.Inf(1)
	if n > 2 {
		var ssr float64
		for _, s := range samples {
			r := s.Duration.Seconds() - alpha - beta*float64(s.Iterations)
			ssr += r * r
		}
		variance := ssr / float64(n-2)
		stderr = math.Sqrt(variance / sxx)
	}

	return Fit{
		Intercept:        alpha,
		Slope:            beta,
		StandardError:    stderr,
		ConfidenceRadius: critical * stderr,
		N:                n,
	}, nil
}
