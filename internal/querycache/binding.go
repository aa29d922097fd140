package querycache

import (
	"context"
	"fmt"
	"sync"
)

// Options configures a binding.
type Options[T, R any] struct {
	// Disabled registers the binding without letting Load fetch. Only Refetch
	// issues a request. Used when another binding owns the initial read of the
	// same resource, or when a prerequisite (identity, permission) is missing.
	Disabled bool

	// Select projects the raw payload. It must be pure. When nil, T must be R.
	Select func(T) R

	// OnSuccess runs once per successful network resolution. It does not run
	// when the data was served from cache.
	OnSuccess func(R)

	// OnError runs once per failed resolution.
	OnError func(error)
}

// State is a snapshot of a binding.
type State[R any] struct {
	Data       R
	HasData    bool
	IsLoading  bool
	IsFetching bool
	IsError    bool
	Err        error
}

// Loading reports whether the binding has no data yet and is fetching it.
func (s State[R]) Loading() bool { return s.IsLoading }

// Settled reports whether the binding resolved at least once.
func (s State[R]) Settled() bool { return !s.IsLoading && (s.HasData || s.IsError) }

// Status is implemented by every State.
type Status interface {
	Loading() bool
}

// AnyLoading ORs the loading flags of independent bindings.
func AnyLoading(states ...Status) bool {
	for _, s := range states {
		if s != nil && s.Loading() {
			return true
		}
	}
	return false
}

// Binding ties a fetch function to a cache key inside a scope.
type Binding[T, R any] struct {
	scope *Scope
	key   Key
	fetch func(context.Context) (T, error)
	opts  Options[T, R]

	mu    sync.Mutex
	state State[R]
	done  chan struct{}
}

// Bind creates a binding. Nothing is fetched until Load, Start or Refetch.
func Bind[T, R any](scope *Scope, key Key, fetch func(context.Context) (T, error), opts Options[T, R]) *Binding[T, R] {
	return &Binding[T, R]{scope: scope, key: key, fetch: fetch, opts: opts}
}

func (b *Binding[T, R]) Key() Key { return b.key }

func (b *Binding[T, R]) Enabled() bool { return !b.opts.Disabled }

// State returns the current snapshot.
func (b *Binding[T, R]) State() State[R] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Start begins an enabled read in the background. Fresh cached data is used
// when available.
func (b *Binding[T, R]) Start(ctx context.Context) {
	if b.opts.Disabled {
		return
	}
	b.start(ctx, false)
}

// StartRefetch begins a network read in the background, even when disabled.
func (b *Binding[T, R]) StartRefetch(ctx context.Context) {
	b.start(ctx, true)
}

// Load performs an enabled read and waits for it. A disabled binding returns
// its current state untouched.
func (b *Binding[T, R]) Load(ctx context.Context) State[R] {
	if b.opts.Disabled {
		return b.State()
	}
	b.start(ctx, false)
	return b.Wait(ctx)
}

// Refetch performs a network read and waits for it, even when disabled.
func (b *Binding[T, R]) Refetch(ctx context.Context) State[R] {
	b.start(ctx, true)
	return b.Wait(ctx)
}

// Wait blocks until the in-flight read (if any) settles or ctx is done, and
// returns the snapshot at that point.
func (b *Binding[T, R]) Wait(ctx context.Context) State[R] {
	b.mu.Lock()
	done := b.done
	b.mu.Unlock()
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return b.State()
}

func (b *Binding[T, R]) start(ctx context.Context, force bool) {
	b.mu.Lock()
	if b.done != nil {
		b.mu.Unlock()
		return
	}
	done := make(chan struct{})
	b.done = done
	b.state.IsFetching = true
	b.state.IsLoading = !b.state.HasData
	b.mu.Unlock()

	go b.resolve(ctx, force, done)
}

func (b *Binding[T, R]) resolve(ctx context.Context, force bool, done chan struct{}) {
	defer func() {
		b.mu.Lock()
		b.done = nil
		b.mu.Unlock()
		close(done)
	}()

	fn := func(ctx context.Context) (any, error) {
		if b.fetch == nil {
			return nil, fmt.Errorf("querycache: %s has no fetch function", b.key.Kind)
		}
		return b.fetch(ctx)
	}

	var (
		raw       any
		fromCache bool
		err       error
	)
	client := b.scope.Client()
	if force {
		raw, err = client.Refetch(ctx, b.key, fn)
	} else {
		raw, fromCache, err = client.Fetch(ctx, b.key, fn)
	}

	var data R
	if err == nil {
		data, err = b.project(raw)
	}

	b.mu.Lock()
	b.state.IsFetching = false
	b.state.IsLoading = false
	if err != nil {
		b.state.IsError = true
		b.state.Err = err
	} else {
		b.state.Data = data
		b.state.HasData = true
		b.state.IsError = false
		b.state.Err = nil
	}
	b.mu.Unlock()

	switch {
	case err != nil:
		if b.opts.OnError != nil {
			b.scope.run(func() { b.opts.OnError(err) })
		}
	case !fromCache:
		if b.opts.OnSuccess != nil {
			b.scope.run(func() { b.opts.OnSuccess(data) })
		}
	}
}

func (b *Binding[T, R]) project(raw any) (R, error) {
	var zero R
	value, ok := raw.(T)
	if !ok {
		return zero, fmt.Errorf("querycache: %s holds %T, want %T", b.key.Kind, raw, *new(T))
	}
	if b.opts.Select != nil {
		return b.opts.Select(value), nil
	}
	out, ok := any(value).(R)
	if !ok {
		return zero, fmt.Errorf("querycache: %s needs a Select from %T to %T", b.key.Kind, value, zero)
	}
	return out, nil
}
