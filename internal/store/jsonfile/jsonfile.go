// Package jsonfile keeps the work log in a single JSON document of the form
// {"logs": [...]}, rewritten in full on every append.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
)

// DefaultPath is the store file used when none is configured.
const DefaultPath = "db.json"

type document struct {
	Logs []core.LogEntry `json:"logs"`
}

// Store is a file-backed record store. Appends are serialized within the
// process; concurrent writers in other processes are not coordinated.
type Store struct {
	mu   sync.Mutex
	path string
}

// New returns a store reading and writing path. The file is created on the
// first append.
func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// LoadAll returns every stored entry in insertion order. A missing file is
// an empty store. Unreadable or malformed content yields a StoreError that
// matches core.ErrStoreUnavailable.
func (s *Store) LoadAll(ctx context.Context) ([]core.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		slog.WarnContext(ctx, "Record store unavailable",
			applog.FieldComponent, applog.ComponentStore,
			applog.FieldOperation, applog.OpLoad,
			"path", s.path,
			applog.FieldError, err)
		return nil, &core.StoreError{Op: core.OpLoad, Err: err}
	}
	return entries, nil
}

// Append adds e after the existing entries and rewrites the file. A file
// that cannot be parsed is left untouched and the append fails.
func (s *Store) Append(ctx context.Context, e core.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return &core.StoreError{Op: core.OpAppend, Err: fmt.Errorf("read existing entries: %w", err)}
	}
	entries = append(entries, e)
	if err := s.write(entries); err != nil {
		return &core.StoreError{Op: core.OpAppend, Err: err}
	}

	slog.DebugContext(ctx, "Entry appended to JSON store",
		applog.FieldComponent, applog.ComponentStore,
		"path", s.path,
		applog.FieldCount, len(entries))
	return nil
}

func (s *Store) read() ([]core.LogEntry, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []core.LogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []core.LogEntry{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc.Logs == nil {
		doc.Logs = []core.LogEntry{}
	}
	return doc.Logs, nil
}

// write replaces the file through a temporary sibling so a failed write
// never leaves a truncated document behind.
func (s *Store) write(entries []core.LogEntry) error {
	data, err := json.MarshalIndent(document{Logs: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
