package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/lexigo/reviewd/internal/logger"
)

// DefaultSweepInterval is how often stale exercises are purged when no interval is configured.
const DefaultSweepInterval = 10 * time.Minute

// Sweeper deletes exercises that were generated but never submitted.
type Sweeper interface {
	SweepStale(ctx context.Context) (int64, error)
}

// Scheduler manages background maintenance tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	timeout   time.Duration
	log       *logger.Logger
}

// New creates a new scheduler instance
func New(sweeper Sweeper, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		sweeper:   sweeper,
		interval:  interval,
		timeout:   interval,
		log:       logger.Default().WithPrefix("scheduler"),
	}
}

// Start registers the jobs and runs them without blocking.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return fmt.Errorf("schedule stale exercise sweep: %w", err)
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started: sweep every %s", s.interval)
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// RunNow performs one sweep synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (int64, error) {
	return s.sweeper.SweepStale(logger.NewContext(ctx, s.log))
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.RunNow(ctx)
	if err != nil {
		s.log.Error("stale exercise sweep failed: %v", err)
		return
	}
	s.log.Debug("stale exercise sweep removed %d rows", n)
}
