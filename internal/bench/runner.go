// internal/bench/runner.go
// Package: bench
package bench

import (
	"context"
	"fmt"
	"log/slog"
)

// Config holds the statistical parameters of a Runner.
type Config struct {
	// Significance is the two-sided significance level of the interval.
	Significance float64 `json:"significance"`
	// Fencing holds the outlier fence multipliers.
	Fencing Fencing `json:"fencing"`
	// CalibrationCeiling bounds the doubling search (0 selects DefaultCalibrationCeiling).
	CalibrationCeiling uint64 `json:"calibrationCeiling"`
}

// DefaultConfig returns p=0.001 with Tukey's fences.
func DefaultConfig() Config {
	return Config{
		Significance:       DefaultSignificance,
		Fencing:            DefaultFencing(),
		CalibrationCeiling: DefaultCalibrationCeiling,
	}
}

// Observer is told when each workload of RunAll starts and finishes.
type Observer interface {
	ProgressSink
	Started(w Workload)
	Finished(r Result)
}

// Runner measures workloads one at a time. It is not safe for concurrent use;
// measurements must never overlap.
type Runner struct {
	cfg      Config
	critical float64
	clock    Clock
	progress ProgressSink
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the monotonic clock.
func WithClock(c Clock) Option {
	return func(r *Runner) { r.clock = c }
}

// WithProgress sets the sink used by Measure.
func WithProgress(p ProgressSink) Option {
	return func(r *Runner) { r.progress = p }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a Runner for cfg.
func NewRunner(cfg Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		critical: CriticalValue(cfg.Significance),
		clock:    MonotonicClock(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Config returns the runner's statistical parameters.
func (r *Runner) Config() Config { return r.cfg }

// Measure runs calibration, the sample sweep, outlier fencing, the fit and
// result synthesis for w.
func (r *Runner) Measure(w Workload) (Result, error) {
	return r.measure(w, r.progress)
}

func (r *Runner) measure(w Workload, progress ProgressSink) (Result, error) {
	if err := w.Validate(); err != nil {
		return Result{}, err
	}
	log := r.logger.With("workload", w.Name)

	cal, err := Calibrate(w, r.clock, r.cfg.CalibrationCeiling)
	if err != nil {
		return Result{}, &MeasurementError{Workload: w.Name, Phase: PhaseCalibrate, Err: err}
	}
	log.Debug("calibrated",
		"base_iterations", cal.BaseIterations,
		"per_iteration_ns", cal.PerIteration*1e9,
		"max_sample", cal.MaxSample,
		"probes", cal.Probes)

	samples, err := Sweep(w, cal, r.clock, progress)
	if err != nil {
		return Result{}, &MeasurementError{Workload: w.Name, Phase: PhaseSample, Err: err}
	}

	cls := Classify(samples, r.cfg.Fencing)
	retained := cls.Retained()
	log.Debug("sweep complete",
		"samples", len(samples),
		"retained", len(retained),
		"outliers", cls.Outliers,
		"severe", cls.Severe)

	fit, err := Regress(retained, r.critical)
	if err != nil {
		return Result{}, &MeasurementError{Workload: w.Name, Phase: PhaseFit, Err: err}
	}
	if fit.Slope <= 0 {
		return Result{}, &MeasurementError{
			Workload: w.Name,
			Phase:    PhaseFit,
			Err:      fmt.Errorf("%w: slope %g s/op", ErrNonPositiveSlope, fit.Slope),
		}
	}
	log.Debug("fit",
		"slope", fit.Slope,
		"intercept", fit.Intercept,
		"standard_error", fit.StandardError,
		"radius", fit.ConfidenceRadius)

	res := Synthesize(w.Name, fit, cls, r.cfg.Significance)
	res.Calibration = cal
	return res, nil
}

// RunAll validates every workload, then measures them in order. The context
// is checked only between workloads; a run in progress is never interrupted.
// The first error aborts the remaining workloads.
func (r *Runner) RunAll(ctx context.Context, workloads []Workload, obs Observer) ([]Result, error) {
	for _, w := range workloads {
		if err := w.Validate(); err != nil {
			return nil, err
		}
	}

	var progress ProgressSink = r.progress
	if obs != nil {
		progress = obs
	}

	results := make([]Result, 0, len(workloads))
	for _, w := range workloads {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if obs != nil {
			obs.Started(w)
		}
		res, err := r.measure(w, progress)
		if err != nil {
			return results, err
		}
		r.logger.Info("measured", "workload", w.Name, "ops_per_sec", res.OpsPerSecond, "margin", res.ErrorMargin)
		if obs != nil {
			obs.Finished(res)
		}
		results = append(results, res)
	}
	return results, nil
}
