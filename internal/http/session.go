package http

import (
	"net/http"

	"tractorlog/internal/core"
	"tractorlog/internal/middleware/security"
)

const sessionCookie = "tractorlog_session"

const (
	employeeRole = core.RoleEmployee
	adminRole    = core.RoleAdmin
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess core.Session)

func (s *Server) currentSession(r *http.Request) (core.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return core.Session{}, false
	}
	return s.gate.Session(c.Value)
}

// requireRole sends anonymous callers to the login page and refuses the
// other role.
func (s *Server) requireRole(role core.Role, next sessionHandler) http.Handler {
	return security.NoStore(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.currentSession(r)
		if !ok {
			if isHTMX(r) {
				NewReply().Status(http.StatusUnauthorized).Redirect("/login").Write(w)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if sess.Role != role {
			ErrorResponse(http.StatusForbidden, "Access denied").Write(w)
			return
		}
		next(w, r, sess)
	}))
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, sess core.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func homeFor(sess core.Session) string {
	if sess.IsAdmin() {
		return "/admin"
	}
	return "/employee"
}
