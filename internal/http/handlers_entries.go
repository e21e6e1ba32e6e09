package http

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
	"tractorlog/internal/middleware/trace"
)

func (s *Server) handleEmployee(w http.ResponseWriter, r *http.Request, sess core.Session) {
	snap, err := s.entries.ForEmployee(r.Context(), sess.Username)
	if err != nil {
		trace.LogRequestError(r.Context(), "Failed to load employee entries", err, applog.ComponentEntry, applog.OpList, errorType(err))
		InternalServerError("Could not load your work log").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "employee.html", employeePage{
		pageData: pageData{Title: "Employee Dashboard", Session: &sess, Unavailable: snap.Unavailable},
		Today:    core.Today().String(),
		Table:    newTable(snap.Entries),
	})
}

// handleEmployeeEntries renders only the table, for HTMX refreshes.
func (s *Server) handleEmployeeEntries(w http.ResponseWriter, r *http.Request, sess core.Session) {
	snap, err := s.entries.ForEmployee(r.Context(), sess.Username)
	if err != nil {
		trace.LogRequestError(r.Context(), "Failed to load employee entries", err, applog.ComponentEntry, applog.OpList, errorType(err))
		InternalServerError("Could not load your work log").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "entries_table", newTable(snap.Entries))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request, sess core.Session) {
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		BadRequestError("Invalid request format").Write(w)
		return
	}

	entry, err := s.entries.Submit(r.Context(), sess, parser.Submission())
	if err != nil {
		s.entryError(w, r, err)
		return
	}
	atomic.AddInt64(&s.metrics.entriesCreated, 1)

	if !isHTMX(r) {
		http.Redirect(w, r, "/employee", http.StatusSeeOther)
		return
	}
	msg := "Log submitted successfully! Cost: Rs " + formatCost(entry.Cost)
	NewReply().
		Status(http.StatusCreated).
		TriggerEntryCreated(entry.Employee, entry.Date.String()).
		TriggerFormReset().
		TriggerNotification(NotificationSuccess, msg, 3000).
		Message(NotificationSuccess, msg).
		Write(w)
}

func (s *Server) entryError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		UnprocessableEntityError(validationMessage(verr)).Write(w)
	case errors.Is(err, core.ErrAuth):
		ErrorResponse(http.StatusForbidden, "Only employees can submit entries").Write(w)
	default:
		trace.LogRequestError(r.Context(), "Failed to save entry", err, applog.ComponentEntry, applog.OpCreate, errorType(err))
		InternalServerError("Could not save the entry. Please try again.").Write(w)
	}
}

func validationMessage(err *core.ValidationError) string {
	switch {
	case errors.Is(err, core.ErrBackdated):
		return "Date cannot be before today."
	case errors.Is(err, core.ErrInvalidDate):
		return "Please enter a valid date."
	case errors.Is(err, core.ErrInvalidAcres):
		return "Acres must be greater than zero."
	default:
		return "Please fill all fields properly."
	}
}

// handleCostPreview shows the derived cost while the acres field is edited.
// Unparseable input previews as zero.
func (s *Server) handleCostPreview(w http.ResponseWriter, r *http.Request, _ core.Session) {
	var cost int64
	if acres, err := core.ParseAcres(r.URL.Query().Get("acres")); err == nil {
		cost = core.CostForAcres(acres)
	}
	NewReply().
		HTML("Auto-calculated Cost: Rs " + strconv.FormatInt(cost, 10)).
		Write(w)
}
