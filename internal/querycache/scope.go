package querycache

import "sync"

// Scope is one page mount. Success and error callbacks of bindings created in a
// scope stop running once the scope is disposed.
type Scope struct {
	client *Client

	mu       sync.RWMutex
	disposed bool
}

// NewScope starts a scope backed by c.
func (c *Client) NewScope() *Scope {
	return &Scope{client: c}
}

// Client returns the cache behind the scope.
func (s *Scope) Client() *Client {
	return s.client
}

// Dispose turns every later callback of the scope into a no-op. It waits for
// callbacks that are already running. Calling Dispose from inside a callback
// deadlocks.
func (s *Scope) Dispose() {
	s.mu.Lock()
	s.disposed = true
	s.mu.Unlock()
}

// Disposed reports whether Dispose has been called.
func (s *Scope) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}

func (s *Scope) run(f func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return false
	}
	f()
	return true
}
