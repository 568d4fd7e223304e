// internal/bench/sampler.go
// Package: bench
package bench

import (
	"math"
	"time"
)

// progressTicks is the number of progress notifications a sweep emits when it
// consumes exactly its time budget.
const progressTicks = 100

// Sample is one timed execution of Iterations consecutive invocations.
type Sample struct {
	Iterations uint64        `json:"iterations"`
	Duration   time.Duration `json:"duration"`
}

// Progress is emitted by the sampler as a sweep advances.
type Progress struct {
	Workload string
	// Completed is the number of samples taken so far.
	Completed int
	// Total is the number of samples the sweep will take.
	Total int
	// Fraction estimates how much of the time budget has been consumed.
	Fraction float64
}

// ProgressSink receives progress notifications. Implementations must not
// block; a notification may be dropped.
type ProgressSink interface {
	Progress(p Progress)
}

// ProgressFunc adapts a function to a ProgressSink.
type ProgressFunc func(p Progress)

func (f ProgressFunc) Progress(p Progress) { f(p) }

// Sweep takes w.Options.Samples samples, sample i running
// cal.BaseIterations*(1+i mod SweepWidth) invocations.
func Sweep(w Workload, cal Calibration, clock Clock, progress ProgressSink) ([]Sample, error) {
	opts := w.Options
	samples := make([]Sample, 0, opts.Samples)

	tick := math.Inf(1)
	if cal.PerIteration > 0 {
		tick = math.Max(1, opts.Duration.Seconds()/progressTicks/cal.PerIteration)
	}
	next := tick

	var acc, total float64
	for i := 0; i < opts.Samples; i++ {
		iterations := cal.BaseIterations * uint64(1+i%opts.SweepWidth)
		elapsed, sum := run(w.Invoke, iterations, clock)

		acc += sum
		if math.IsNaN(acc) {
			return nil, ErrDeadCodeEliminationSuspected
		}
		samples = append(samples, Sample{Iterations: iterations, Duration: elapsed})

		total += float64(iterations)
		if progress != nil && total >= next {
			next = (math.Floor(total/tick) + 1) * tick
			progress.Progress(Progress{
				Workload:  w.Name,
				Completed: i + 1,
				Total:     opts.Samples,
				Fraction:  math.Min(1, total*cal.PerIteration/opts.Duration.Seconds()),
			})
		}
	}
	return samples, nil
}
