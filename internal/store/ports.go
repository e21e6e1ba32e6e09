// Package store defines the record store port and the backends behind it.
package store

import (
	"context"
	"io"

	"tractorlog/internal/core"
)

// Store is the append-only log of work entries. LoadAll returns entries in
// insertion order. A store that was never written to is empty, not an error.
type Store interface {
	Append(ctx context.Context, e core.LogEntry) error
	LoadAll(ctx context.Context) ([]core.LogEntry, error)
}

// Closer is implemented by stores holding connections or file handles.
type Closer interface {
	io.Closer
}

// Close closes s when it holds resources.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}

// CopyAll appends every entry of src to dst in order and returns how many
// were written before the first failure.
func CopyAll(ctx context.Context, dst Store, src []core.LogEntry) (int, error) {
	for i, e := range src {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := dst.Append(ctx, e); err != nil {
			return i, err
		}
	}
	return len(src), nil
}
