package schedule

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchedulerValidation(t *testing.T) {
	t.Parallel()

	run := func(context.Context, time.Time) error { return nil }

	_, err := NewScheduler(nil, DefaultSchedulerConfig(), nil)
	assert.Error(t, err)

	_, err = NewScheduler(run, SchedulerConfig{Interval: 0, RunTimeout: time.Second}, nil)
	assert.Error(t, err)

	_, err = NewScheduler(run, SchedulerConfig{Interval: time.Second, RunTimeout: 0}, nil)
	assert.Error(t, err)
}

func TestSchedulerRunsOnTicks(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	scheduler, err := NewScheduler(
		func(context.Context, time.Time) error {
			runs.Add(1)
			return nil
		},
		SchedulerConfig{
			Interval:     10 * time.Millisecond,
			RunTimeout:   time.Second,
			RetryBackoff: time.Millisecond,
		},
		nil,
	)
	require.NoError(t, err)

	scheduler.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 3 },
		time.Second, 5*time.Millisecond)
	scheduler.Stop()
}

func TestSchedulerRetriesOnceThenAbandons(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	scheduler, err := NewScheduler(
		func(context.Context, time.Time) error {
			attempts.Add(1)
			return errors.New("database unavailable")
		},
		SchedulerConfig{
			Interval:     50 * time.Millisecond,
			RunTimeout:   time.Second,
			RetryBackoff: time.Millisecond,
		},
		nil,
	)
	require.NoError(t, err)

	scheduler.Start()
	// First tick fires at 50ms and produces exactly two attempts; the next
	// tick has not fired yet at 75ms.
	time.Sleep(75 * time.Millisecond)
	scheduler.Stop()

	assert.Equal(t, int32(2), attempts.Load())
}

func TestSchedulerStopWaitsForInFlightRun(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var once sync.Once
	var finished atomic.Bool
	scheduler, err := NewScheduler(
		func(ctx context.Context, _ time.Time) error {
			once.Do(func() { close(started) })
			time.Sleep(20 * time.Millisecond)
			finished.Store(true)
			return nil
		},
		SchedulerConfig{
			Interval:     5 * time.Millisecond,
			RunTimeout:   time.Second,
			RetryBackoff: time.Millisecond,
		},
		nil,
	)
	require.NoError(t, err)

	scheduler.Start()
	<-started
	scheduler.Stop()

	assert.True(t, finished.Load())
}
