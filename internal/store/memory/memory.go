// Package memory is a process-local record store used for development and
// tests. Nothing survives a restart.
package memory

import (
	"context"
	"sync"

	"tractorlog/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.LogEntry
}

// New returns a store holding seed in order.
func New(seed ...core.LogEntry) *Store {
	return &Store{items: append([]core.LogEntry(nil), seed...)}
}

// Append stores the entry after the existing ones.
func (s *Store) Append(_ context.Context, e core.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return nil
}

// LoadAll returns a copy of every entry in insertion order.
func (s *Store) LoadAll(_ context.Context) ([]core.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.LogEntry, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Len reports how many entries are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
