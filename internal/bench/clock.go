// internal/bench/clock.go
// Package: bench
package bench

import "time"

// Clock reads a monotonic timestamp relative to an arbitrary fixed origin.
// Only differences between two readings are meaningful.
type Clock interface {
	Now() time.Duration
}

type monotonicClock struct {
	origin time.Time
}

// MonotonicClock returns a Clock backed by the runtime's monotonic timer.
func MonotonicClock() Clock {
	return monotonicClock{origin: time.Now()}
}

func (c monotonicClock) Now() time.Duration {
	return time.Since(c.origin)
}

// sink keeps accumulated workload results reachable so the calls producing
// them cannot be optimized away.
var sink float64

// run invokes fn n times back to back and returns the elapsed time together
// with the sum of the returned values. Nothing else happens between the two
// clock readings.
func run(fn Func, n uint64, clock Clock) (time.Duration, float64) {
	var acc float64
	start := clock.Now()
	for i := uint64(0); i < n; i++ {
		acc += fn()
	}
	elapsed := clock.Now() - start
	sink += acc
	return elapsed, acc
}
