package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fleet-console/fleet-console/internal/metrics"
)

// Scheduler runs Runner every Interval. Consecutive failures stretch the wait
// exponentially up to MaxBackoff.
type Scheduler struct {
	Runner     Runner
	Interval   time.Duration
	MaxBackoff time.Duration
	// RunAtStart runs a pass before the first wait.
	RunAtStart bool
	Logger     *slog.Logger
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Scheduler) Run(ctx context.Context) {
	if s.Runner == nil || s.Interval <= 0 {
		return
	}

	failures := 0
	if s.RunAtStart {
		failures = s.runOnce(ctx, failures)
	}

	timer := time.NewTimer(nextDelay(s.Interval, failures, s.MaxBackoff))
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			failures = s.runOnce(ctx, failures)
			timer.Reset(nextDelay(s.Interval, failures, s.MaxBackoff))
		}
	}
}

// runOnce runs one pass and returns the updated failure count.
func (s *Scheduler) runOnce(ctx context.Context, failures int) int {
	start := time.Now()
	err := s.Runner.RunOnce(ctx)
	switch {
	case err == nil:
		metrics.ConfigRefreshesTotal.WithLabelValues("success").Inc()
		s.logger().Debug("config refreshed", "duration", time.Since(start))
		return 0
	case errors.Is(err, ErrRefreshAlreadyRunning):
		metrics.ConfigRefreshesTotal.WithLabelValues("busy").Inc()
		return failures
	case ctx.Err() != nil:
		return failures
	default:
		metrics.ConfigRefreshesTotal.WithLabelValues("error").Inc()
		s.logger().Error("config refresh failed", "err", err, "consecutive_failures", failures+1)
		return failures + 1
	}
}

// nextDelay is interval after a success and interval doubled per consecutive
// failure otherwise, capped at max when max is positive.
func nextDelay(interval time.Duration, failures int, max time.Duration) time.Duration {
	delay := interval
	for i := 0; i < failures; i++ {
		if max > 0 && delay > max/2 {
			return max
		}
		delay *= 2
	}
	if max > 0 && delay > max {
		return max
	}
	return delay
}
