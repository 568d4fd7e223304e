// internal/bench/calibrate.go
// Package: bench
package bench

import (
	"fmt"
	"math"
	"time"
)

// DefaultCalibrationCeiling bounds the doubling search. A workload that still
// measures below the per-sample ceiling at this many invocations is treated
// as unresolvable by the clock.
const DefaultCalibrationCeiling uint64 = 1 << 34

// Calibration is the outcome of the doubling search.
type Calibration struct {
	// BaseIterations is the invocation count of a base-scale sample.
	BaseIterations uint64 `json:"baseIterations"`
	// PerIteration is the rough cost of one invocation in seconds.
	PerIteration float64 `json:"perIterationSeconds"`
	// MaxSample is the wall-clock ceiling for one base-scale sample.
	MaxSample time.Duration `json:"maxSample"`
	// Probes is the number of timed doubling steps taken.
	Probes int `json:"probes"`
}

// Calibrate warms the workload up and then finds how many invocations make
// one base-scale sample take about Duration/SweepTotal.
func Calibrate(w Workload, clock Clock, ceiling uint64) (Calibration, error) {
	if ceiling == 0 {
		ceiling = DefaultCalibrationCeiling
	}

	var warm float64
	for i := 0; i < w.Options.WarmUp; i++ {
		warm += w.Invoke()
	}
	sink += warm

	maxSample := w.Options.Duration.Seconds() / float64(w.Options.SweepTotal())

	iterations := uint64(1)
	probes := 0
	for {
		elapsed, _ := run(w.Invoke, iterations, clock)
		probes++

		d := elapsed.Seconds()
		if d > maxSample {
			base := math.Max(float64(iterations/2), math.Round(maxSample/d*float64(iterations)))
			if base < 1 {
				base = 1
			}
			return Calibration{
				BaseIterations: uint64(base),
				PerIteration:   d / float64(iterations),
				MaxSample:      time.Duration(maxSample * float64(time.Second)),
				Probes:         probes,
			}, nil
		}

		if iterations >= ceiling {
			return Calibration{}, fmt.Errorf("%w: %d invocations took %v, never exceeding the %v sample ceiling",
				ErrCalibration, iterations, elapsed, time.Duration(maxSample*float64(time.Second)))
		}
		iterations *= 2
	}
}
