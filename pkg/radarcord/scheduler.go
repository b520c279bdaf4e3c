package radarcord

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/sirupsen/logrus"
)

// OverlapPolicy decides what happens when a tick fires while the previous
// tick's task is still running
type OverlapPolicy int

const (
	// AllowConcurrent starts every tick regardless of in-flight tasks
	AllowConcurrent OverlapPolicy = iota
	// SkipIfBusy drops a tick while a previous task is still running
	SkipIfBusy
)

func (p OverlapPolicy) String() string {
	switch p {
	case SkipIfBusy:
		return "skip"
	default:
		return "allow"
	}
}

// ScheduleOption configures a Scheduler
type ScheduleOption func(*Scheduler)

// WithOverlapPolicy sets the tick overlap policy (default AllowConcurrent)
func WithOverlapPolicy(policy OverlapPolicy) ScheduleOption {
	return func(s *Scheduler) {
		s.policy = policy
	}
}

// WithErrorHandler registers a function receiving every failed tick's error
func WithErrorHandler(fn func(error)) ScheduleOption {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// WithScheduleLogger sets the logger used for tick diagnostics
func WithScheduleLogger(log logrus.FieldLogger) ScheduleOption {
	return func(s *Scheduler) {
		if log != nil {
			s.log = log
		}
	}
}

// Scheduler runs a task on a fixed interval until stopped.
// There is no drift correction; ticks come from a time.Ticker.
type Scheduler struct {
	id       string
	interval time.Duration
	task     func(ctx context.Context) error
	policy   OverlapPolicy
	onError  func(error)
	log      logrus.FieldLogger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	busy    atomic.Bool
	ticks   atomic.Int64
	skipped atomic.Int64
}

// Every starts a Scheduler that runs task each interval. The first run happens
// after one interval. Cancelling ctx has the same effect as Stop. A zero or
// negative interval means constants.DefaultInterval.
func Every(ctx context.Context, interval time.Duration, task func(ctx context.Context) error, opts ...ScheduleOption) *Scheduler {
	if ctx == nil {
		ctx = context.Background()
	}
	if interval <= 0 {
		interval = constants.DefaultInterval
	}
	s := &Scheduler{
		id:       uuid.NewString(),
		interval: interval,
		task:     task,
		policy:   AllowConcurrent,
		log:      logrus.StandardLogger(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.log.WithFields(logrus.Fields{
		"job_id":   s.id,
		"interval": interval,
		"overlap":  s.policy.String(),
	}).Info("scheduler-started")

	go s.loop()
	return s
}

func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			s.log.WithFields(logrus.Fields{
				"job_id": s.id,
				"ticks":  s.ticks.Load(),
			}).Info("scheduler-stopped")
			return
		case <-ticker.C:
			s.fire()
		}
	}
}

func (s *Scheduler) fire() {
	if s.policy == SkipIfBusy && !s.busy.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.log.WithField("job_id", s.id).Warn("scheduler-tick-skipped-previous-still-running")
		return
	}
	tick := s.ticks.Add(1)

	go func() {
		if s.policy == SkipIfBusy {
			defer s.busy.Store(false)
		}
		if err := s.task(s.ctx); err != nil {
			s.log.WithFields(logrus.Fields{
				"job_id": s.id,
				"tick":   tick,
				"error":  err,
			}).Error("scheduled-task-failed")
			if s.onError != nil {
				s.onError(err)
			}
		}
	}()
}

// ID returns the job id used in log entries
func (s *Scheduler) ID() string {
	return s.id
}

// Interval returns the tick interval
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Ticks returns how many ticks started a task
func (s *Scheduler) Ticks() int64 {
	return s.ticks.Load()
}

// Skipped returns how many ticks were dropped by SkipIfBusy
func (s *Scheduler) Skipped() int64 {
	return s.skipped.Load()
}

// Done is closed once the scheduler loop has exited
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Stop cancels future ticks and waits for the loop to exit. Tasks already
// running see their context cancelled but are not waited for.
// Stop is safe to call more than once.
func (s *Scheduler) Stop() {
	s.once.Do(s.cancel)
	<-s.done
}
