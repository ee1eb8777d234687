package config

import (
	"sync/atomic"
)

// Store holds the current configuration snapshot behind an atomic pointer
// swap, per spec.md §5: "the Config snapshot is immutable behind a swap;
// readers get a snapshot without locking."
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a Store initialized with the given configuration.
func NewStore(initial Config) *Store {
	s := &Store{}
	s.current.Store(&initial)
	return s
}

// Get returns the current configuration snapshot.
func (s *Store) Get() Config {
	return *s.current.Load()
}

// Set atomically replaces the current configuration snapshot.
func (s *Store) Set(c Config) {
	s.current.Store(&c)
}
