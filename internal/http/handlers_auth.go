package http

import (
	"errors"
	"net/http"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
)

var loginRoles = []core.Role{core.RoleEmployee, core.RoleAdmin}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.currentSession(r); ok {
		http.Redirect(w, r, homeFor(sess), http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.currentSession(r); ok {
		http.Redirect(w, r, homeFor(sess), http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", loginPage{
		pageData: pageData{Title: "Login"},
		Roles:    loginRoles,
		Role:     core.RoleEmployee,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}
	username := sanitizeInput(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	role, roleErr := core.ParseRole(r.PostForm.Get("role"))

	var (
		sess core.Session
		err  = core.ErrAuth
	)
	if roleErr == nil {
		sess, err = s.gate.Login(r.Context(), username, password, role)
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogLogin(r.Context(), username, string(role), s.detector.ExtractClientIP(r), err == nil)
	if err != nil {
		status := http.StatusInternalServerError
		msg := "Login failed. Please try again."
		if errors.Is(err, core.ErrAuth) {
			status = http.StatusUnauthorized
			msg = "Invalid credentials or role mismatch."
		}
		if role == "" {
			role = core.RoleEmployee
		}
		s.render(w, r, status, "login.html", loginPage{
			pageData: pageData{Title: "Login"},
			Error:    msg,
			Roles:    loginRoles,
			Role:     role,
			Username: username,
		})
		return
	}

	setSessionCookie(w, r, sess)
	http.Redirect(w, r, homeFor(sess), http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.gate.Logout(r.Context(), c.Value)
	}
	clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
