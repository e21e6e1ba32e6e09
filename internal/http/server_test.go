package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"tractorlog/internal/auth"
	"tractorlog/internal/core"
	"tractorlog/internal/report"
	"tractorlog/internal/services"
	"tractorlog/internal/store/memory"
)

func seedEntries() []core.LogEntry {
	mk := func(day int, customer, tractor string, acres float64, employee string) core.LogEntry {
		e, err := core.NewLogEntry(core.NewDate(2025, 7, day), customer, "North", tractor, acres, employee)
		if err != nil {
			panic(err)
		}
		return e
	}
	return []core.LogEntry{
		mk(1, "Rao", "JD 5050", 2.5, "employee1"),
		mk(2, "Singh", "Mahindra 575", 4, "employee2"),
		mk(3, "Rao", "Mahindra 575", 1.5, "employee1"),
	}
}

func newTestServer(t *testing.T, seed ...core.LogEntry) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New(seed...)
	entries := services.NewEntryService(st, nil)
	renderer := report.NewPlotRenderer()
	reports := services.NewReportService(entries, renderer, report.NewAssembler(renderer, ""), 10)
	gate := auth.NewGate(auth.DefaultTable(), auth.NewSessions(time.Hour, 10))

	srv, err := NewServer(":0", entries, reports, gate, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		srv.limiter.Stop()
		srv.loginLimiter.Stop()
	})
	return srv, st
}

func postForm(srv *Server, path string, form url.Values, cookie *http.Cookie, htmx bool) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func get(srv *Server, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func login(t *testing.T, srv *Server, username, password string, role core.Role) *http.Cookie {
	t.Helper()
	rr := postForm(srv, "/login", url.Values{
		"username": {username},
		"password": {password},
		"role":     {string(role)},
	}, nil, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("login %s: status=%d body=%s", username, rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == sessionCookie {
			return c
		}
	}
	t.Fatalf("login %s: no session cookie", username)
	return nil
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(srv, "/login", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Tractor Work Logger - Login") {
		t.Fatalf("login page status=%d", rr.Code)
	}

	tests := []struct {
		name     string
		form     url.Values
		wantCode int
	}{
		{"wrong password", url.Values{"username": {"employee1"}, "password": {"nope"}, "role": {"employee"}}, http.StatusUnauthorized},
		{"role mismatch", url.Values{"username": {"employee1"}, "password": {"pass123"}, "role": {"admin"}}, http.StatusUnauthorized},
		{"unknown role", url.Values{"username": {"admin"}, "password": {"admin123"}, "role": {"owner"}}, http.StatusUnauthorized},
		{"unknown user", url.Values{"username": {"ghost"}, "password": {"pass123"}, "role": {"employee"}}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postForm(srv, "/login", tt.form, nil, false)
			if rr.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d", rr.Code, tt.wantCode)
			}
			if !strings.Contains(rr.Body.String(), "Invalid credentials or role mismatch.") {
				t.Errorf("missing error message")
			}
			if len(rr.Result().Cookies()) != 0 {
				t.Errorf("failed login must not set a cookie")
			}
		})
	}

	rr = postForm(srv, "/login", url.Values{"username": {"admin"}, "password": {"admin123"}, "role": {"admin"}}, nil, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/admin" {
		t.Fatalf("admin login status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(srv, "/employee", nil)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = postForm(srv, "/entries", url.Values{}, nil, true)
	if rr.Code != http.StatusUnauthorized || rr.Header().Get("HX-Redirect") != "/login" {
		t.Fatalf("expected htmx redirect, got %d %q", rr.Code, rr.Header().Get("HX-Redirect"))
	}

	rr = get(srv, "/", nil)
	if rr.Header().Get("Location") != "/login" {
		t.Errorf("index should send anonymous users to /login")
	}
}

func TestRolesAreSeparated(t *testing.T) {
	srv, _ := newTestServer(t)
	emp := login(t, srv, "employee1", "pass123", core.RoleEmployee)
	adm := login(t, srv, "admin", "admin123", core.RoleAdmin)

	if rr := get(srv, "/admin", emp); rr.Code != http.StatusForbidden {
		t.Errorf("employee on /admin: status=%d", rr.Code)
	}
	if rr := get(srv, "/admin/export.csv", emp); rr.Code != http.StatusForbidden {
		t.Errorf("employee on export: status=%d", rr.Code)
	}
	if rr := get(srv, "/employee", adm); rr.Code != http.StatusForbidden {
		t.Errorf("admin on /employee: status=%d", rr.Code)
	}
	if rr := get(srv, "/", adm); rr.Header().Get("Location") != "/admin" {
		t.Errorf("index should send admins to /admin")
	}
}

func TestCreateEntry(t *testing.T) {
	srv, st := newTestServer(t)
	emp := login(t, srv, "employee1", "pass123", core.RoleEmployee)
	today := core.Today()

	rr := get(srv, "/entries", emp)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /entries: expected 405, got %d", rr.Code)
	}

	valid := func() url.Values {
		return url.Values{
			"date":     {today.String()},
			"customer": {"Rao"},
			"location": {"North"},
			"tractor":  {"JD 5050"},
			"acres":    {"2.5"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(url.Values)
		wantMsg string
	}{
		{"zero acres", func(v url.Values) { v.Set("acres", "0") }, "Acres must be greater than zero."},
		{"bad acres", func(v url.Values) { v.Set("acres", "abc") }, "Acres must be greater than zero."},
		{"backdated", func(v url.Values) { v.Set("date", today.AddDate(0, 0, -1).Format(core.DateLayout)) }, "Date cannot be before today."},
		{"bad date", func(v url.Values) { v.Set("date", "09/08/2025") }, "Please enter a valid date."},
		{"missing customer", func(v url.Values) { v.Set("customer", "  ") }, "Please fill all fields properly."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid()
			tt.mutate(form)
			rr := postForm(srv, "/entries", form, emp, true)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status=%d, want 422", rr.Code)
			}
			if !strings.Contains(rr.Body.String(), tt.wantMsg) {
				t.Errorf("body %q missing %q", rr.Body.String(), tt.wantMsg)
			}
		})
	}
	if st.Len() != 0 {
		t.Fatalf("rejected entries must not be stored, have %d", st.Len())
	}

	rr = postForm(srv, "/entries", valid(), emp, true)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	if !strings.Contains(trigger, "entry:created") || !strings.Contains(trigger, "form:reset") {
		t.Errorf("unexpected HX-Trigger %q", trigger)
	}
	if !strings.Contains(rr.Body.String(), "Cost: Rs 250") {
		t.Errorf("unexpected body %q", rr.Body.String())
	}

	rr = postForm(srv, "/entries", valid(), emp, false)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/employee" {
		t.Errorf("plain form post should redirect, got %d", rr.Code)
	}
	if st.Len() != 2 {
		t.Fatalf("expected 2 stored entries, have %d", st.Len())
	}
}

func TestAdminCannotSubmit(t *testing.T) {
	srv, st := newTestServer(t)
	adm := login(t, srv, "admin", "admin123", core.RoleAdmin)

	rr := postForm(srv, "/entries", url.Values{"date": {core.Today().String()}, "customer": {"Rao"}, "location": {"N"}, "tractor": {"JD"}, "acres": {"1"}}, adm, true)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status=%d, want 403", rr.Code)
	}
	if st.Len() != 0 {
		t.Errorf("nothing should be stored")
	}
}

func TestCostPreview(t *testing.T) {
	srv, _ := newTestServer(t)
	emp := login(t, srv, "employee1", "pass123", core.RoleEmployee)

	tests := []struct {
		acres string
		want  string
	}{
		{"2.5", "Auto-calculated Cost: Rs 250"},
		{"0.29", "Auto-calculated Cost: Rs 29"},
		{"abc", "Auto-calculated Cost: Rs 0"},
		{"", "Auto-calculated Cost: Rs 0"},
	}
	for _, tt := range tests {
		rr := get(srv, "/entries/cost?acres="+url.QueryEscape(tt.acres), emp)
		if rr.Code != http.StatusOK || rr.Body.String() != tt.want {
			t.Errorf("acres %q: status=%d body=%q", tt.acres, rr.Code, rr.Body.String())
		}
	}
}

func TestEmployeeSeesOwnEntries(t *testing.T) {
	srv, _ := newTestServer(t, seedEntries()...)
	emp := login(t, srv, "employee1", "pass123", core.RoleEmployee)

	for _, path := range []string{"/employee", "/employee/entries"} {
		rr := get(srv, path, emp)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status=%d", path, rr.Code)
		}
		body := rr.Body.String()
		if !strings.Contains(body, "JD 5050") || strings.Contains(body, "Singh") {
			t.Errorf("%s: expected only employee1 rows", path)
		}
	}
}

func TestAdminDashboard(t *testing.T) {
	srv, _ := newTestServer(t, seedEntries()...)
	adm := login(t, srv, "admin", "admin123", core.RoleAdmin)

	rr := get(srv, "/admin?customer=Rao", adm)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"<strong>Total Acres:</strong> 4",
		"<strong>Total Cost:</strong> Rs 400",
		"<strong>Total Logs:</strong> 2",
		"Page 1 of 1",
		"/admin/charts/tractor?customer=Rao",
		"/admin/export.pdf?customer=Rao",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Contains(body, "<td>Singh</td>") {
		t.Errorf("filtered table should not list Singh")
	}
}

func TestAdminExports(t *testing.T) {
	srv, _ := newTestServer(t, seedEntries()...)
	adm := login(t, srv, "admin", "admin123", core.RoleAdmin)

	rr := get(srv, "/admin/export.csv?employee=employee2", adm)
	if rr.Code != http.StatusOK {
		t.Fatalf("csv status=%d", rr.Code)
	}
	if got := rr.Header().Get("Content-Disposition"); got != `attachment; filename="tractor_logs.csv"` {
		t.Errorf("csv disposition %q", got)
	}
	want := "date,customer,location,tractor,acres,cost,employee\n2025-07-02,Singh,North,Mahindra 575,4,400,employee2\n"
	if rr.Body.String() != want {
		t.Errorf("csv body:\n%s", rr.Body.String())
	}

	rr = get(srv, "/admin/export.pdf", adm)
	if rr.Code != http.StatusOK {
		t.Fatalf("pdf status=%d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("pdf content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="tractor_summary_`) {
		t.Errorf("pdf disposition %q", cd)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Errorf("pdf body does not start with %%PDF")
	}
}

func TestChartEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, seedEntries()...)
	adm := login(t, srv, "admin", "admin123", core.RoleAdmin)

	rr := get(srv, "/admin/charts/tractor", adm)
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("chart status=%d type=%q", rr.Code, rr.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")) {
		t.Errorf("chart body is not a PNG")
	}

	if rr := get(srv, "/admin/charts/pie", adm); rr.Code != http.StatusNotFound {
		t.Errorf("unknown chart: status=%d", rr.Code)
	}
}

type unreadableStore struct{}

func (unreadableStore) Append(context.Context, core.LogEntry) error { return nil }

func (unreadableStore) LoadAll(context.Context) ([]core.LogEntry, error) {
	return nil, &core.StoreError{Op: core.OpLoad, Err: errors.New("corrupt")}
}

func TestChartUnavailableStore(t *testing.T) {
	entries := services.NewEntryService(unreadableStore{}, nil)
	renderer := report.NewPlotRenderer()
	reports := services.NewReportService(entries, renderer, report.NewAssembler(renderer, ""), 10)
	gate := auth.NewGate(auth.DefaultTable(), auth.NewSessions(time.Hour, 10))
	srv, err := NewServer(":0", entries, reports, gate, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() {
		srv.limiter.Stop()
		srv.loginLimiter.Stop()
	})
	adm := login(t, srv, "admin", "admin123", core.RoleAdmin)

	rr := get(srv, "/admin/charts/tractor", adm)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("chart status=%d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if ct := rr.Header().Get("Content-Type"); ct == "image/png" {
		t.Errorf("unavailable store must not serve an image")
	}
}

func TestLogout(t *testing.T) {
	srv, _ := newTestServer(t)
	emp := login(t, srv, "employee1", "pass123", core.RoleEmployee)

	rr := postForm(srv, "/logout", url.Values{}, emp, false)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("logout status=%d", rr.Code)
	}
	if rr := get(srv, "/employee", emp); rr.Header().Get("Location") != "/login" {
		t.Errorf("session should be gone after logout")
	}
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := get(srv, path, nil)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rr.Code)
		}
	}

	rr := get(srv, "/metrics", nil)
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Errorf("metrics missing request counter")
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	srv, _ := newTestServer(t)

	rr := get(srv, "/login", nil)
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("missing X-Frame-Options")
	}
	if !strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_") {
		t.Errorf("missing generated request id")
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest("TRACE", "/login", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE should be blocked, got %d", rr.Code)
	}
}

func TestStaticAssets(t *testing.T) {
	srv, _ := newTestServer(t)
	rr := get(srv, "/static/app.js", nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "form:reset") {
		t.Fatalf("static status=%d", rr.Code)
	}
}
