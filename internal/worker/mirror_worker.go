package worker

import (
	"context"
	"fmt"
	"log/slog"

	"tractorlog/internal/amqp"
	applog "tractorlog/internal/log"
	"tractorlog/internal/sheets"
)

// MirrorWorker copies every created entry into a spreadsheet.
type MirrorWorker struct {
	rows sheets.RowWriter
}

func NewMirrorWorker(rows sheets.RowWriter) *MirrorWorker {
	return &MirrorWorker{rows: rows}
}

// HandleEntryCreated appends the entry of msg as one sheet row. A returned
// error makes the broker redeliver the message; entries that can never be
// written are logged and dropped instead.
func (w *MirrorWorker) HandleEntryCreated(ctx context.Context, msg *amqp.EntryCreatedMessage) error {
	slog.InfoContext(ctx, "Processing entry created message",
		applog.FieldComponent, applog.ComponentWorker,
		"event_id", msg.EventID)

	if err := msg.Entry.Validate(); err != nil {
		slog.ErrorContext(ctx, "Dropping invalid entry",
			applog.FieldComponent, applog.ComponentWorker,
			applog.FieldErrorType, applog.ErrorTypeValidation,
			"event_id", msg.EventID,
			applog.FieldError, err)
		return nil
	}

	ref, err := w.rows.AppendRow(ctx, msg.Entry)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored entry to sheet",
		applog.FieldComponent, applog.ComponentWorker,
		applog.FieldOperation, applog.OpMirror,
		"event_id", msg.EventID,
		"sheets_ref", ref,
		applog.FieldEmployee, msg.Entry.Employee,
		applog.FieldEntryDate, msg.Entry.Date.String())
	return nil
}
