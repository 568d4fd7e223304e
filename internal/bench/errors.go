// internal/bench/errors.go
// Package: bench
package bench

import (
	"errors"
	"fmt"
)

var (
	// ErrCalibration is returned when the clock cannot resolve the workload
	// even at the largest allowed invocation count.
	ErrCalibration = errors.New("calibration failed")

	// ErrDeadCodeEliminationSuspected is returned when the accumulated
	// workload return values are not a number.
	ErrDeadCodeEliminationSuspected = errors.New("dead code elimination suspected: accumulated workload result is NaN")

	// ErrInsufficientSamples is returned when fewer than two samples remain for the fit.
	ErrInsufficientSamples = errors.New("insufficient samples for regression")

	// ErrDegenerateSweep is returned when every retained sample has the same
	// invocation count, which leaves the slope undefined.
	ErrDegenerateSweep = errors.New("degenerate sweep: all samples share one invocation count")

	// ErrNonPositiveSlope is returned when the fitted cost per invocation is
	// zero or negative and cannot be inverted into a rate.
	ErrNonPositiveSlope = errors.New("fitted cost per invocation is not positive")
)

// ConfigError reports one invalid option of one workload.
type ConfigError struct {
	Workload string
	Field    string
	Reason   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("workload %q: invalid %s: %s", e.Workload, e.Field, e.Reason)
}

// Phase names the stage of a run in which a measurement failed.
type Phase string

const (
	PhaseCalibrate Phase = "calibrate"
	PhaseSample    Phase = "sample"
	PhaseFit       Phase = "fit"
)

// MeasurementError wraps a failure of a single workload run.
type MeasurementError struct {
	Workload string
	Phase    Phase
	Err      error
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("workload %q: %s: %v", e.Workload, e.Phase, e.Err)
}

func (e *MeasurementError) Unwrap() error { return e.Err }
