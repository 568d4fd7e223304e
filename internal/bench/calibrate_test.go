package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrate_InterpolatesBetweenDoublings(t *testing.T) {
	clock := newFakeClock()
	w := Workload{
		Name:    "fixed",
		Options: Options{Duration: time.Second, Samples: 20, SweepWidth: 5, WarmUp: 10},
		Invoke:  clock.workload(time.Microsecond),
	}

	cal, err := Calibrate(w, clock, 0)
	require.NoError(t, err)

	// sweep total is 60, so one base sample may take 1s/60 = 16.67ms.
	// 16384 calls take 16.38ms, 32768 take 32.77ms; the search stops at
	// 32768 and interpolates back to 16667.
	assert.Equal(t, uint64(16667), cal.BaseIterations)
	assert.InDelta(t, 1e-6, cal.PerIteration, 1e-15)
	assert.Equal(t, 16, cal.Probes)
	assert.Equal(t, time.Duration(16666666), cal.MaxSample)
}

func TestCalibrate_HalvesWhenOvershootIsSmall(t *testing.T) {
	clock := newFakeClock()
	// 5 samples/width 2 -> total 1+2+1+2+1 = 7; budget 7ms -> 1ms per sample.
	w := Workload{
		Name:    "slow",
		Options: Options{Duration: 7 * time.Millisecond, Samples: 5, SweepWidth: 2, WarmUp: 1},
		Invoke:  clock.workload(600 * time.Microsecond),
	}

	cal, err := Calibrate(w, clock, 0)
	require.NoError(t, err)
	// one call (0.6ms) is below 1ms, two calls (1.2ms) exceed it;
	// interpolation gives round(1/1.2*2) = 2, halving gives 1.
	assert.Equal(t, uint64(2), cal.BaseIterations)
	assert.Equal(t, 2, cal.Probes)
}

func TestCalibrate_SingleInvocationAlreadyTooSlow(t *testing.T) {
	clock := newFakeClock()
	w := Workload{
		Name:    "very slow",
		Options: Options{Duration: 10 * time.Millisecond, Samples: 4, SweepWidth: 2, WarmUp: 1},
		Invoke:  clock.workload(time.Second),
	}

	cal, err := Calibrate(w, clock, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cal.BaseIterations)
	assert.Equal(t, 1, cal.Probes)
}

func TestCalibrate_FailsWhenClockCannotResolve(t *testing.T) {
	clock := newFakeClock()
	w := Workload{
		Name:    "free",
		Options: Options{Duration: time.Second, Samples: 4, SweepWidth: 2, WarmUp: 1},
		Invoke:  clock.workload(0),
	}

	_, err := Calibrate(w, clock, 1<<10)
	require.ErrorIs(t, err, ErrCalibration)
	assert.Contains(t, err.Error(), "1024 invocations")
}

func TestCalibrate_RunsWarmUp(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	fn := clock.workload(time.Millisecond)
	w := Workload{
		Name:    "counted",
		Options: Options{Duration: time.Millisecond, Samples: 4, SweepWidth: 2, WarmUp: 25},
		Invoke: func() float64 {
			calls++
			return fn()
		},
	}

	_, err := Calibrate(w, clock, 0)
	require.NoError(t, err)
	// 25 warm-up calls plus the single probe that already exceeds 1ms/6.
	assert.Equal(t, 26, calls)
}
