package bench

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	events   []string
	progress int
}

func (o *recordingObserver) Progress(Progress) { o.progress++ }
func (o *recordingObserver) Started(w Workload) { o.events = append(o.events, "start "+w.Name) }
func (o *recordingObserver) Finished(r Result) { o.events = append(o.events, "done "+r.Name) }

func fixedWorkload(clock *fakeClock, name string, cost time.Duration) Workload {
	return Workload{
		Name:    name,
		Options: Options{Duration: time.Second, Samples: 20, SweepWidth: 5, WarmUp: 10},
		Invoke:  clock.workload(cost),
	}
}

func TestRunner_Measure_NoiselessWorkload(t *testing.T) {
	clock := newFakeClock()
	r := NewRunner(DefaultConfig(), WithClock(clock))

	res, err := r.Measure(fixedWorkload(clock, "one-us", time.Microsecond))
	require.NoError(t, err)

	assert.Equal(t, "one-us", res.Name)
	assert.InEpsilon(t, 1e6, res.OpsPerSecond, 1e-9)
	assert.GreaterOrEqual(t, res.ErrorMargin, 0.0)
	assert.Less(t, res.ErrorMargin, 1e-3)
	assert.Equal(t, 20, res.Retained)
	assert.Zero(t, res.Outliers)
	assert.Zero(t, res.SevereOutliers)
	assert.Equal(t, DefaultSignificance, res.Significance)
	assert.Equal(t, uint64(16667), res.Calibration.BaseIterations)
}

func TestRunner_Measure_RejectsInvalidOptions(t *testing.T) {
	clock := newFakeClock()
	w := fixedWorkload(clock, "bad", time.Microsecond)
	w.Options.Duration = 0

	_, err := NewRunner(DefaultConfig(), WithClock(clock)).Measure(w)
	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "duration", ce.Field)
	assert.Equal(t, "bad", ce.Workload)
}

func TestRunner_Measure_DeadCode(t *testing.T) {
	clock := newFakeClock()
	w := fixedWorkload(clock, "nan", time.Microsecond)
	inner := w.Invoke
	w.Invoke = func() float64 { return inner() * math.NaN() }

	_, err := NewRunner(DefaultConfig(), WithClock(clock)).Measure(w)
	require.ErrorIs(t, err, ErrDeadCodeEliminationSuspected)

	var me *MeasurementError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, PhaseSample, me.Phase)
	assert.Equal(t, "nan", me.Workload)
}

func TestRunner_Measure_CalibrationCeiling(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultConfig()
	cfg.CalibrationCeiling = 1 << 8

	_, err := NewRunner(cfg, WithClock(clock)).Measure(fixedWorkload(clock, "free", 0))
	require.ErrorIs(t, err, ErrCalibration)

	var me *MeasurementError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, PhaseCalibrate, me.Phase)
}

func TestRunner_Measure_ReportsProgress(t *testing.T) {
	clock := newFakeClock()
	calls := 0
	r := NewRunner(DefaultConfig(), WithClock(clock), WithProgress(ProgressFunc(func(Progress) { calls++ })))

	_, err := r.Measure(fixedWorkload(clock, "p", time.Microsecond))
	require.NoError(t, err)
	assert.Positive(t, calls)
}

func TestRunner_RunAll_SequentialInOrder(t *testing.T) {
	clock := newFakeClock()
	obs := &recordingObserver{}
	r := NewRunner(DefaultConfig(), WithClock(clock))

	results, err := r.RunAll(context.Background(), []Workload{
		fixedWorkload(clock, "first", time.Microsecond),
		fixedWorkload(clock, "second", 4*time.Microsecond),
	}, obs)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"start first", "done first", "start second", "done second"}, obs.events)
	assert.Positive(t, obs.progress)
	assert.InEpsilon(t, 1e6, results[0].OpsPerSecond, 1e-9)
	assert.InEpsilon(t, 2.5e5, results[1].OpsPerSecond, 1e-9)
}

func TestRunner_RunAll_ValidatesBeforeMeasuring(t *testing.T) {
	clock := newFakeClock()
	bad := fixedWorkload(clock, "bad", time.Microsecond)
	bad.Options.WarmUp = 0
	obs := &recordingObserver{}

	results, err := NewRunner(DefaultConfig(), WithClock(clock)).RunAll(context.Background(), []Workload{
		fixedWorkload(clock, "good", time.Microsecond),
		bad,
	}, obs)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "warmUpIterations", ce.Field)
	assert.Nil(t, results)
	assert.Empty(t, obs.events, "nothing is measured once any workload is invalid")
}

func TestRunner_RunAll_StopsAtFirstFailure(t *testing.T) {
	clock := newFakeClock()
	obs := &recordingObserver{}
	cfg := DefaultConfig()
	cfg.CalibrationCeiling = 1 << 20

	results, err := NewRunner(cfg, WithClock(clock)).RunAll(context.Background(), []Workload{
		fixedWorkload(clock, "ok", time.Microsecond),
		fixedWorkload(clock, "free", 0),
		fixedWorkload(clock, "never", time.Microsecond),
	}, obs)

	require.ErrorIs(t, err, ErrCalibration)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"start ok", "done ok", "start free"}, obs.events)
}

func TestRunner_RunAll_CancelledBetweenWorkloads(t *testing.T) {
	clock := newFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunner(DefaultConfig(), WithClock(clock))

	obs := &cancelAfterFirst{cancel: cancel}
	results, err := r.RunAll(ctx, []Workload{
		fixedWorkload(clock, "a", time.Microsecond),
		fixedWorkload(clock, "b", time.Microsecond),
	}, obs)

	assert.True(t, errors.Is(err, context.Canceled))
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Name)
	assert.Equal(t, 1, obs.started)
}

type cancelAfterFirst struct {
	cancel  context.CancelFunc
	started int
}

func (c *cancelAfterFirst) Progress(Progress) {}
func (c *cancelAfterFirst) Started(Workload) { c.started++ }
func (c *cancelAfterFirst) Finished(Result) { c.cancel() }

func TestRunner_ErrorMarginShrinksWithMoreSamples(t *testing.T) {
	meanMargin := func(samples int) float64 {
		var sum float64
		const seeds = 6
		for seed := int64(1); seed <= seeds; seed++ {
			clock := newNoisyClock(0.02, seed)
			w := Workload{
				Name:    "noisy",
				Options: Options{Duration: time.Second, Samples: samples, SweepWidth: 5, WarmUp: 10},
				Invoke:  clock.workload(time.Microsecond),
			}
			res, err := NewRunner(DefaultConfig(), WithClock(clock)).Measure(w)
			require.NoError(t, err)
			require.InEpsilon(t, 1e6, res.OpsPerSecond, 0.05)
			sum += res.ErrorMargin
		}
		return sum / seeds
	}

	small, large := meanMargin(20), meanMargin(200)
	t.Logf("mean margin: n=20 %.1f, n=200 %.1f", small, large)
	assert.Less(t, large, small)
}
