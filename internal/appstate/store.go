// Package appstate holds the console-wide context shared by every page: the
// tenant app config and the user behind the API token.
package appstate

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fleet-console/fleet-console/internal/fleetapi"
)

// ErrWriterClaimed is returned when a second config writer is requested.
var ErrWriterClaimed = errors.New("app config writer already claimed")

// Store is a lock-protected container. The app config has exactly one writer,
// obtained through ClaimConfigWriter.
type Store struct {
	mu     sync.RWMutex
	config *fleetapi.AppConfig
	user   *fleetapi.CurrentUser

	writerClaimed atomic.Bool
}

func New() *Store {
	return &Store{}
}

// ConfigWriter is the only way to replace the app config.
type ConfigWriter struct {
	store *Store
}

// ClaimConfigWriter hands out the config writer. It succeeds once per store.
func (s *Store) ClaimConfigWriter() (*ConfigWriter, error) {
	if !s.writerClaimed.CompareAndSwap(false, true) {
		return nil, ErrWriterClaimed
	}
	return &ConfigWriter{store: s}, nil
}

// SetConfig replaces the app config.
func (w *ConfigWriter) SetConfig(cfg fleetapi.AppConfig) {
	w.store.mu.Lock()
	w.store.config = &cfg
	w.store.mu.Unlock()
}

// Config returns a copy of the app config and whether one has been loaded.
func (s *Store) Config() (fleetapi.AppConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.config == nil {
		return fleetapi.AppConfig{}, false
	}
	return *s.config, true
}

// SetCurrentUser records the user behind the API token.
func (s *Store) SetCurrentUser(u fleetapi.CurrentUser) {
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
}

// CurrentUser returns the user behind the API token, if loaded.
func (s *Store) CurrentUser() (fleetapi.CurrentUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return fleetapi.CurrentUser{}, false
	}
	return *s.user, true
}

// Permissions derives role checks from the loaded user and license.
func (s *Store) Permissions() Permissions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var p Permissions
	if s.user != nil {
		p.user = s.user.User
	}
	if s.config != nil {
		p.premium = s.config.IsPremium()
	}
	return p
}
