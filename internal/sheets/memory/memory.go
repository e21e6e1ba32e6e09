// Package memory is an in-process RowWriter for development without
// spreadsheet credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tractorlog/internal/core"
)

type Sheet struct {
	mu   sync.Mutex
	rows []core.LogEntry
}

func New() *Sheet {
	return &Sheet{}
}

// AppendRow records e and returns a synthetic row reference.
func (s *Sheet) AppendRow(_ context.Context, e core.LogEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, e)
	// Row 1 is the header.
	return fmt.Sprintf("mem:%d", len(s.rows)+1), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sheet) Rows() []core.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.LogEntry(nil), s.rows...)
}
