package http

import (
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
	"tractorlog/internal/middleware/trace"
	"tractorlog/internal/report"
	"tractorlog/internal/services"
)

func (s *Server) handleAdmin(w http.ResponseWriter, r *http.Request, sess core.Session) {
	fq := ParseFilterQuery(r.URL.Query())
	view, err := s.reports.Admin(r.Context(), fq.Spec, fq.Page)
	if err != nil {
		trace.LogRequestError(r.Context(), "Failed to build admin view", err, applog.ComponentReport, applog.OpList, errorType(err))
		InternalServerError("Could not load the work log").Write(w)
		return
	}
	s.render(w, r, http.StatusOK, "admin.html", newAdminPage(sess, view, fq))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request, _ core.Session) {
	kind, err := report.ParseChartKind(r.PathValue("kind"))
	if err != nil {
		NotFoundError("Unknown chart").Write(w)
		return
	}
	fq := ParseFilterQuery(r.URL.Query())
	img, err := s.reports.Chart(r.Context(), kind, fq.Spec)
	if err != nil {
		s.reportError(w, r, "Failed to render chart", applog.OpRender, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	_, _ = w.Write(img)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request, _ core.Session) {
	fq := ParseFilterQuery(r.URL.Query())
	exp, err := s.reports.CSV(r.Context(), fq.Spec)
	if err != nil {
		s.reportError(w, r, "Failed to export CSV", applog.OpExport, err)
		return
	}
	atomic.AddInt64(&s.metrics.exports, 1)
	writeExport(w, exp)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request, _ core.Session) {
	fq := ParseFilterQuery(r.URL.Query())
	exp, err := s.reports.PDF(r.Context(), fq.Spec)
	if err != nil {
		s.reportError(w, r, "Failed to export PDF", applog.OpExport, err)
		return
	}
	atomic.AddInt64(&s.metrics.exports, 1)
	writeExport(w, exp)
}

func writeExport(w http.ResponseWriter, exp services.Export) {
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+exp.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(exp.Data)
}

func (s *Server) reportError(w http.ResponseWriter, r *http.Request, msg, operation string, err error) {
	trace.LogRequestError(r.Context(), msg, err, applog.ComponentReport, operation, errorType(err))
	switch {
	case errors.Is(err, core.ErrStoreUnavailable):
		ErrorResponse(http.StatusServiceUnavailable, "The work log could not be read").Write(w)
	case errors.Is(err, core.ErrRender):
		InternalServerError("The report could not be generated").Write(w)
	default:
		InternalServerError("Unexpected error").Write(w)
	}
}
