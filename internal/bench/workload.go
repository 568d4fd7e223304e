// internal/bench/workload.go
// Package: bench
package bench

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Func is a workload body. Its return value is folded into a running sum so
// the computation cannot be discarded by the compiler.
type Func func() float64

// Options holds the measurement parameters for one workload.
type Options struct {
	// Duration is the total wall-clock budget for the sample sweep.
	Duration time.Duration `json:"duration" yaml:"duration" validate:"gt=0"`
	// Samples is the number of timed samples taken.
	Samples int `json:"samples" yaml:"samples" validate:"gt=0"`
	// SweepWidth is the number of distinct invocation-count scales cycled through.
	SweepWidth int `json:"sweepWidth" yaml:"sweepWidth" validate:"gt=1"`
	// WarmUp is the number of unmeasured invocations run before calibration.
	WarmUp int `json:"warmUpIterations" yaml:"warmUpIterations" validate:"gt=0"`
}

// DefaultOptions returns the run-level defaults.
func DefaultOptions() Options {
	return Options{
		Duration:   5 * time.Second,
		Samples:    100,
		SweepWidth: 10,
		WarmUp:     100,
	}
}

// Overrides is a partial Options; nil fields keep the value they are merged onto.
type Overrides struct {
	Duration   *time.Duration `json:"duration,omitempty" yaml:"duration"`
	Samples    *int           `json:"samples,omitempty" yaml:"samples"`
	SweepWidth *int           `json:"sweepWidth,omitempty" yaml:"sweepWidth"`
	WarmUp     *int           `json:"warmUpIterations,omitempty" yaml:"warmUpIterations"`
}

// Merge returns o with every non-nil field of ov applied.
func (o Options) Merge(ov Overrides) Options {
	if ov.Duration != nil {
		o.Duration = *ov.Duration
	}
	if ov.Samples != nil {
		o.Samples = *ov.Samples
	}
	if ov.SweepWidth != nil {
		o.SweepWidth = *ov.SweepWidth
	}
	if ov.WarmUp != nil {
		o.WarmUp = *ov.WarmUp
	}
	return o
}

// SweepTotal is the sum of the invocation-count multipliers consumed by a
// full sweep, i.e. sum over i in [0, Samples) of 1 + i mod SweepWidth.
func (o Options) SweepTotal() uint64 {
	var total uint64
	for i := 0; i < o.Samples; i++ {
		total += uint64(1 + i%o.SweepWidth)
	}
	return total
}

// Workload is a named Func with the options it is measured under. It must not
// be modified once a measurement has started.
type Workload struct {
	Name    string
	Options Options
	Invoke  Func
}

// Validate checks w's options and reports every violation as a *ConfigError.
func (w Workload) Validate() error {
	if w.Invoke == nil {
		return &ConfigError{Workload: w.Name, Field: "invoke", Reason: "workload has no function"}
	}
	return w.Options.Validate(w.Name)
}

var optionsValidate *validator.Validate

func init() {
	optionsValidate = validator.New(validator.WithRequiredStructEnabled())

	// report fields under their declared names (duration, sweepWidth, ...)
	optionsValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	optionsValidate.RegisterStructValidation(validateSweepCycles, Options{})
}

// validateSweepCycles enforces samples >= 2*sweepWidth so every scale is
// visited at least twice.
func validateSweepCycles(sl validator.StructLevel) {
	o := sl.Current().Interface().(Options)
	if o.Samples > 0 && o.SweepWidth > 1 && o.Samples < 2*o.SweepWidth {
		sl.ReportError(o.Samples, "samples", "Samples", "sweepcycles", "")
	}
}

// Validate checks o on behalf of the named workload.
func (o Options) Validate(workload string) error {
	err := optionsValidate.Struct(o)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, &ConfigError{
			Workload: workload,
			Field:    fe.Field(),
			Reason:   reasonFor(fe, o),
		})
	}
	return errors.Join(errs...)
}

func reasonFor(fe validator.FieldError, o Options) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "sweepcycles":
		return "must be at least 2*sweepWidth (" + strconv.Itoa(2*o.SweepWidth) + ")"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
