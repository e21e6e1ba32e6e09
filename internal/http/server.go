package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"tractorlog/internal/auth"
	applog "tractorlog/internal/log"
	"tractorlog/internal/middleware/ratelimit"
	"tractorlog/internal/middleware/security"
	"tractorlog/internal/middleware/trace"
	"tractorlog/internal/services"
	appweb "tractorlog/web"
)

type Server struct {
	http.Server
	templates *template.Template
	entries   *services.EntryService
	reports   *services.ReportService
	gate      *auth.Gate
	logger    *applog.Logger

	limiter      *ratelimit.Limiter
	loginLimiter *ratelimit.Limiter
	detector     *security.Detector
	headers      *security.HeadersMiddleware
	tracer       *trace.Middleware

	metrics      appMetrics
	started      time.Time
	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires every route behind the
// security, tracing and rate limiting middleware.
func NewServer(addr string, entries *services.EntryService, reports *services.ReportService, gate *auth.Gate, logger *applog.Logger) (*Server, error) {
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	tmpl, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	detector := security.NewDetector()
	s := &Server{
		templates:    tmpl,
		entries:      entries,
		reports:      reports,
		gate:         gate,
		logger:       logger,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		loginLimiter: ratelimit.NewLimiter(ratelimit.LoginConfig()),
		detector:     detector,
		headers:      security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		tracer:       trace.NewMiddleware(detector.ExtractClientIP, logger),
		started:      time.Now(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.Handle("POST /login", s.loginLimiter.Middleware(detector.ExtractClientIP, tooManyRequests)(http.HandlerFunc(s.handleLogin)))
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.Handle("GET /employee", s.requireRole(employeeRole, s.handleEmployee))
	mux.Handle("GET /employee/entries", s.requireRole(employeeRole, s.handleEmployeeEntries))
	mux.Handle("POST /entries", s.requireRole(employeeRole, s.handleCreateEntry))
	mux.Handle("GET /entries/cost", s.requireRole(employeeRole, s.handleCostPreview))

	mux.Handle("GET /admin", s.requireRole(adminRole, s.handleAdmin))
	mux.Handle("GET /admin/charts/{kind}", s.requireRole(adminRole, s.handleChart))
	mux.Handle("GET /admin/export.csv", s.requireRole(adminRole, s.handleExportCSV))
	mux.Handle("GET /admin/export.pdf", s.requireRole(adminRole, s.handleExportPDF))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.Handle("GET /static/", http.StripPrefix("/static/",
		security.StaticAssetMiddleware(3600)(http.FileServerFS(static))))

	var handler http.Handler = mux
	handler = s.limiter.Middleware(detector.ExtractClientIP, tooManyRequests, http.MethodPost)(handler)
	handler = s.headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)
	handler = detector.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Too many requests. Please try again later.").Write(w)
}

// Shutdown stops accepting requests and releases the limiter goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.InfoContext(ctx, "Shutting down HTTP server", applog.FieldOperation, applog.OpShutdown)
	err := s.Server.Shutdown(ctx)
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.loginLimiter.Stop()
	})
	return err
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		trace.LogRequestError(r.Context(), "Template execution failed", err, applog.ComponentTemplate, applog.OpRender, applog.ErrorTypeRender)
	}
}
