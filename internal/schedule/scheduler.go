// Package schedule drives the periodic status sweep from inside the server
// process. A single goroutine ticks at a fixed interval and invokes the
// sweep with a per-run timeout; a failed run is retried once after a short
// backoff and then abandoned until the next tick.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunFunc executes one unit of scheduled work against the given instant.
type RunFunc func(ctx context.Context, now time.Time) error

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	// Interval is the time between runs.
	Interval time.Duration

	// RunTimeout bounds a single run, including its retry.
	RunTimeout time.Duration

	// RetryBackoff is how long to wait before the single retry.
	// If zero, defaults to 5 seconds.
	RetryBackoff time.Duration
}

// DefaultSchedulerConfig returns a SchedulerConfig with reasonable defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Interval:     time.Minute,
		RunTimeout:   30 * time.Second,
		RetryBackoff: 5 * time.Second,
	}
}

// Scheduler runs a RunFunc on a fixed interval.
type Scheduler struct {
	run        RunFunc
	config     SchedulerConfig
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	timeFunc   func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(run RunFunc, config SchedulerConfig, logger *slog.Logger) (*Scheduler, error) {
	if run == nil {
		return nil, fmt.Errorf("run function cannot be nil")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", config.Interval)
	}
	if config.RunTimeout <= 0 {
		return nil, fmt.Errorf("run timeout must be positive, got %s", config.RunTimeout)
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 5 * time.Second
	}

	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		run:        run,
		config:     config,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With("component", "scheduler"),
		timeFunc:   time.Now,
	}, nil
}

// Start begins ticking in a background goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.loop()
}

// Stop cancels the loop and waits for any in-flight run to finish.
func (s *Scheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *Scheduler) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.config.Interval)

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("scheduler stopped")
			return

		case <-ticker.C:
			s.runOnce()
		}
	}
}

// runOnce executes the run with a timeout, retrying once after a backoff.
// A run that fails twice is abandoned until the next tick.
func (s *Scheduler) runOnce() {
	now := s.timeFunc()

	if err := s.attempt(now); err != nil {
		s.logger.Error("scheduled run failed, retrying",
			"error", err,
			"backoff", s.config.RetryBackoff)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.config.RetryBackoff):
		}

		if err := s.attempt(now); err != nil {
			s.logger.Error("scheduled run failed after retry, abandoning until next tick",
				"error", err)
		}
	}
}

func (s *Scheduler) attempt(now time.Time) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.config.RunTimeout)
	defer cancel()
	return s.run(ctx, now)
}
