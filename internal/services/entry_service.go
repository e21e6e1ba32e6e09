package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tractorlog/internal/aggregate"
	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
	"tractorlog/internal/store"
)

// EventPublisher announces stored entries to other processes.
type EventPublisher interface {
	PublishEntryCreated(ctx context.Context, e core.LogEntry) error
}

// Submission is the raw entry form as typed by an employee.
type Submission struct {
	Date     string
	Customer string
	Location string
	Tractor  string
	Acres    string
}

// Snapshot is the store content as seen by a view. Unavailable is set when
// the store could not be read; Entries is then empty.
type Snapshot struct {
	Entries     []core.LogEntry
	Unavailable bool
}

// EntryService orchestrates entry operations across the record store and AMQP
type EntryService struct {
	store  store.Store
	events EventPublisher
	today  func() core.Date
}

// NewEntryService wires the service. events may be nil when no broker is
// configured.
func NewEntryService(s store.Store, events EventPublisher) *EntryService {
	return &EntryService{
		store:  s,
		events: events,
		today:  core.Today,
	}
}

// Submit validates the form, saves the entry and publishes an entry created
// event. Only employees submit; the employee field is the session user.
func (s *EntryService) Submit(ctx context.Context, sess core.Session, sub Submission) (core.LogEntry, error) {
	if sess.Role != core.RoleEmployee || sess.Username == "" {
		return core.LogEntry{}, core.ErrAuth
	}

	date, err := core.ParseDate(sub.Date)
	if err != nil {
		return core.LogEntry{}, &core.ValidationError{Field: "date", Err: core.ErrInvalidDate}
	}
	if date.Before(s.today()) {
		return core.LogEntry{}, &core.ValidationError{Field: "date", Err: core.ErrBackdated}
	}
	acres, err := core.ParseAcres(sub.Acres)
	if err != nil {
		return core.LogEntry{}, &core.ValidationError{Field: "acres", Err: err}
	}

	e, err := core.NewLogEntry(date, sub.Customer, sub.Location, sub.Tractor, acres, sess.Username)
	if err != nil {
		return core.LogEntry{}, err
	}

	// Save first; the event is best effort.
	if err := s.store.Append(ctx, e); err != nil {
		return core.LogEntry{}, fmt.Errorf("save entry: %w", err)
	}

	if err := s.publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry created message",
			applog.FieldComponent, applog.ComponentEntry,
			applog.FieldEmployee, e.Employee,
			applog.FieldError, err)
	}

	applog.NewStructuredLogger(applog.FromContext(ctx)).LogEntryCreated(ctx,
		e.Date.String(), e.Customer, e.Location, e.Tractor, e.Acres, e.Cost, e.Employee)
	return e, nil
}

func (s *EntryService) publish(ctx context.Context, e core.LogEntry) error {
	if s.events == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping entry created message",
			applog.FieldComponent, applog.ComponentEntry)
		return nil
	}
	return s.events.PublishEntryCreated(ctx, e)
}

// Snapshot loads every entry. An unreadable store degrades to an empty,
// flagged snapshot instead of failing the view.
func (s *EntryService) Snapshot(ctx context.Context) (Snapshot, error) {
	entries, err := s.store.LoadAll(ctx)
	switch {
	case err == nil:
		return Snapshot{Entries: entries}, nil
	case errors.Is(err, core.ErrStoreUnavailable):
		slog.WarnContext(ctx, "Record store unavailable, showing empty data",
			applog.FieldComponent, applog.ComponentEntry,
			applog.FieldOperation, applog.OpLoad,
			applog.FieldError, err)
		return Snapshot{Entries: []core.LogEntry{}, Unavailable: true}, nil
	default:
		return Snapshot{}, fmt.Errorf("load entries: %w", err)
	}
}

// ForEmployee is the employee's own work log, in insertion order.
func (s *EntryService) ForEmployee(ctx context.Context, username string) (Snapshot, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Entries = aggregate.ForEmployee(snap.Entries, username)
	return snap, nil
}

// Close releases the store and the publisher when they hold resources.
func (s *EntryService) Close() error {
	var errs []error

	if s.store != nil {
		if err := store.Close(s.store); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if c, ok := s.events.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %w", errors.Join(errs...))
	}
	return nil
}
