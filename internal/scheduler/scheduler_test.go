package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counter(n *atomic.Int32, err error) Job {
	return func(context.Context) error {
		n.Add(1)
		return err
	}
}

func TestNextDaily(t *testing.T) {
	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"already passed today", time.Date(2026, 3, 4, 9, 0, 0, 0, loc), time.Date(2026, 3, 5, 8, 0, 0, 0, loc)},
		{"later today", time.Date(2026, 3, 4, 7, 0, 0, 0, loc), time.Date(2026, 3, 4, 8, 0, 0, 0, loc)},
		{"exactly now moves to tomorrow", time.Date(2026, 3, 4, 8, 0, 0, 0, loc), time.Date(2026, 3, 5, 8, 0, 0, 0, loc)},
		{"end of month", time.Date(2026, 3, 31, 23, 0, 0, 0, loc), time.Date(2026, 4, 1, 8, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(NextDaily(tt.now, 8, 0)), "got %v", NextDaily(tt.now, 8, 0))
		})
	}
}

func TestNextWeekly(t *testing.T) {
	// 2026-03-04 is a Wednesday.
	wed := time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)
	require.Equal(t, time.Wednesday, wed.Weekday())

	assert.Equal(t, time.Date(2026, 3, 8, 8, 0, 0, 0, time.UTC), NextWeekly(wed, time.Sunday, 8, 0))
	assert.Equal(t, time.Date(2026, 3, 4, 10, 30, 0, 0, time.UTC), NextWeekly(wed, time.Wednesday, 10, 30))
	assert.Equal(t, time.Date(2026, 3, 11, 8, 0, 0, 0, time.UTC), NextWeekly(wed, time.Wednesday, 8, 0))
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), NextWeekly(wed, time.Monday, 0, 0))
}

func TestScheduleDailyAtComputesFirstRun(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 4, 9, 0, 0, 0, loc)
	s := New(WithLocation(loc), WithClock(func() time.Time { return now }))
	t.Cleanup(s.ClearAll)

	require.NoError(t, s.ScheduleDailyAt("digest", counter(new(atomic.Int32), nil), 8, 0))

	st := s.Status()
	require.Len(t, st, 1)
	assert.Equal(t, KindDaily, st[0].Kind)
	assert.Equal(t, 24*time.Hour, st[0].Period)
	assert.True(t, st[0].NextRun.Equal(time.Date(2026, 3, 5, 8, 0, 0, 0, loc)))
}

func TestScheduleRejectsInvalidArguments(t *testing.T) {
	s := New()
	job := counter(new(atomic.Int32), nil)

	assert.Error(t, s.ScheduleRecurring("r", job, 0))
	assert.Error(t, s.ScheduleDailyAt("d", job, 24, 0))
	assert.Error(t, s.ScheduleWeeklyAt("w", job, time.Weekday(7), 8, 0))
	assert.Error(t, s.ScheduleWeeklyAt("w", job, time.Sunday, 8, 60))
	assert.Empty(t, s.Names())
}

func TestRecurringJobSurvivesFailures(t *testing.T) {
	s := New()
	t.Cleanup(s.ClearAll)

	var calls atomic.Int32
	require.NoError(t, s.ScheduleRecurring("flaky", func(context.Context) error {
		if calls.Add(1)%2 == 0 {
			panic("boom")
		}
		return errors.New("upstream down")
	}, 10*time.Millisecond))

	require.Eventually(t, func() bool { return calls.Load() >= 4 }, 2*time.Second, 5*time.Millisecond)

	st := s.Status()
	require.Len(t, st, 1)
	assert.GreaterOrEqual(t, st[0].Runs, 3)
	assert.NotNil(t, st[0].LastRun)
	assert.NotEmpty(t, st[0].LastError)
}

func TestScheduleReplacesExistingJob(t *testing.T) {
	s := New()
	t.Cleanup(s.ClearAll)

	var first, second atomic.Int32
	require.NoError(t, s.ScheduleRecurring("news", counter(&first, nil), 10*time.Millisecond))
	require.NoError(t, s.ScheduleRecurring("news", counter(&second, nil), 10*time.Millisecond))

	require.Eventually(t, func() bool { return second.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Zero(t, first.Load())
	assert.Equal(t, []string{"news"}, s.Names())
}

func TestTrigger(t *testing.T) {
	s := New()
	t.Cleanup(s.ClearAll)

	var calls atomic.Int32
	require.NoError(t, s.ScheduleWeeklyAt("tools", counter(&calls, nil), time.Sunday, 8, 0))

	require.NoError(t, s.Trigger(context.Background(), "tools"))
	assert.Equal(t, int32(1), calls.Load())

	err := s.Trigger(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUnknownJob)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTriggerReturnsJobFailure(t *testing.T) {
	s := New()
	t.Cleanup(s.ClearAll)

	require.NoError(t, s.ScheduleRecurring("explode", func(context.Context) error { panic("bad") }, time.Hour))
	err := s.Trigger(context.Background(), "explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestClearStopsFutureRuns(t *testing.T) {
	s := New()

	var a, b atomic.Int32
	require.NoError(t, s.ScheduleRecurring("a", counter(&a, nil), 10*time.Millisecond))
	require.NoError(t, s.ScheduleRecurring("b", counter(&b, nil), time.Hour))
	assert.Equal(t, []string{"a", "b"}, s.Names())

	s.Clear("a")
	s.Clear("unknown")
	assert.Equal(t, []string{"b"}, s.Names())

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, a.Load())

	s.ClearAll()
	assert.Empty(t, s.Names())
	assert.ErrorIs(t, s.Trigger(context.Background(), "b"), ErrUnknownJob)
}
