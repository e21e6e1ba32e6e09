package auth

import (
	"context"
	"log/slog"
	"time"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"
)

// Gate turns a username, password and selected role into a session.
type Gate struct {
	table    *Table
	sessions *Sessions
	now      func() time.Time
}

func NewGate(table *Table, sessions *Sessions) *Gate {
	if table == nil {
		table = DefaultTable()
	}
	return &Gate{table: table, sessions: sessions, now: time.Now}
}

// Login succeeds only when the password matches and the selected role is
// the user's role. Every failure is reported as core.ErrAuth so callers
// cannot tell which check failed.
func (g *Gate) Login(ctx context.Context, username, password string, role core.Role) (core.Session, error) {
	actual, ok := g.table.Authenticate(username, password)
	if !ok || actual != role {
		return core.Session{}, core.ErrAuth
	}

	sess := core.Session{
		Username:  username,
		Role:      actual,
		CreatedAt: g.now(),
	}
	if g.sessions != nil {
		sess = g.sessions.Create(sess)
	}
	return sess, nil
}

// Logout forgets the session with id.
func (g *Gate) Logout(ctx context.Context, id string) {
	if g.sessions == nil || id == "" {
		return
	}
	g.sessions.Delete(id)
	slog.DebugContext(ctx, "Session closed",
		applog.FieldComponent, applog.ComponentAuth,
		applog.FieldOperation, applog.OpLogout)
}

// Session looks up a live session by id.
func (g *Gate) Session(id string) (core.Session, bool) {
	if g.sessions == nil {
		return core.Session{}, false
	}
	return g.sessions.Get(id)
}
