// Package sync keeps the shared app config and current user fresh while the
// console runs.
package sync

import (
	"context"
	"errors"
)

// Runner executes a single refresh pass.
type Runner interface {
	RunOnce(context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(context.Context) error

func (f RunnerFunc) RunOnce(ctx context.Context) error { return f(ctx) }

// ErrRefreshAlreadyRunning is returned by a try-lock runner when another pass
// is still in progress.
var ErrRefreshAlreadyRunning = errors.New("refresh is already running")

type tryLockRunner struct {
	inner Runner
	sem   chan struct{}
}

// NewTryLockRunner wraps inner so overlapping passes fail fast instead of
// stacking up behind a slow Fleet server.
func NewTryLockRunner(inner Runner) Runner {
	return &tryLockRunner{inner: inner, sem: make(chan struct{}, 1)}
}

func (r *tryLockRunner) RunOnce(ctx context.Context) error {
	if r == nil || r.inner == nil {
		return errors.New("refresh runner is not configured")
	}
	select {
	case r.sem <- struct{}{}:
	default:
		return ErrRefreshAlreadyRunning
	}
	defer func() { <-r.sem }()
	return r.inner.RunOnce(ctx)
}
