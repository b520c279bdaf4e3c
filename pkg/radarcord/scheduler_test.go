package radarcord

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunsTaskEachInterval(t *testing.T) {
	var runs atomic.Int64
	s := Every(context.Background(), 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, WithScheduleLogger(quietLogger()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 10*time.Millisecond, s.Interval())
}

func TestScheduler_NonPositiveIntervalUsesDefault(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		s := Every(context.Background(), interval, func(context.Context) error { return nil },
			WithScheduleLogger(quietLogger()))

		assert.Equal(t, constants.DefaultInterval, s.Interval())
		s.Stop()

		select {
		case <-s.Done():
		case <-time.After(time.Second):
			t.Fatalf("scheduler with interval %v did not stop", interval)
		}
	}
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := Every(context.Background(), time.Hour, func(context.Context) error { return nil },
		WithScheduleLogger(quietLogger()))

	s.Stop()
	s.Stop()

	select {
	case <-s.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
}

func TestScheduler_NoTicksAfterStop(t *testing.T) {
	var runs atomic.Int64
	s := Every(context.Background(), 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}, WithScheduleLogger(quietLogger()))

	time.Sleep(30 * time.Millisecond)
	s.Stop()
	after := s.Ticks()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, after, s.Ticks())
}

func TestScheduler_AllowConcurrentOverlaps(t *testing.T) {
	var running, maxRunning atomic.Int64
	release := make(chan struct{})

	s := Every(context.Background(), 5*time.Millisecond, func(context.Context) error {
		n := running.Add(1)
		for {
			old := maxRunning.Load()
			if n <= old || maxRunning.CompareAndSwap(old, n) {
				break
			}
		}
		<-release
		running.Add(-1)
		return nil
	}, WithScheduleLogger(quietLogger()))

	assert.Eventually(t, func() bool { return maxRunning.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()
	close(release)
	assert.Equal(t, int64(0), s.Skipped())
}

func TestScheduler_SkipIfBusy(t *testing.T) {
	var runs atomic.Int64
	release := make(chan struct{})

	s := Every(context.Background(), 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		<-release
		return nil
	}, WithOverlapPolicy(SkipIfBusy), WithScheduleLogger(quietLogger()))

	assert.Eventually(t, func() bool { return s.Skipped() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(1), runs.Load())

	s.Stop()
	close(release)
}

func TestScheduler_ErrorHandlerReceivesTaskErrors(t *testing.T) {
	taskErr := errors.New("post failed")
	errs := make(chan error, 16)

	s := Every(context.Background(), 5*time.Millisecond, func(context.Context) error {
		return taskErr
	}, WithErrorHandler(func(err error) {
		select {
		case errs <- err:
		default:
		}
	}), WithScheduleLogger(quietLogger()))
	defer s.Stop()

	select {
	case err := <-errs:
		assert.Same(t, taskErr, err)
	case <-time.After(time.Second):
		t.Fatal("error handler was not called")
	}

	// a failing tick must not stop the loop
	assert.Eventually(t, func() bool { return s.Ticks() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_TaskContextCancelledOnStop(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan struct{})

	s := Every(context.Background(), 5*time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
			return nil
		}
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}, WithOverlapPolicy(SkipIfBusy), WithScheduleLogger(quietLogger()))

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("task never started")
	}
	s.Stop()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("task context was not cancelled")
	}
}

func TestOverlapPolicy_String(t *testing.T) {
	require.Equal(t, "allow", AllowConcurrent.String())
	require.Equal(t, "skip", SkipIfBusy.String())
}
