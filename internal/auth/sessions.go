package auth

import (
	"time"

	"github.com/google/uuid"

	"tractorlog/internal/cache"
	"tractorlog/internal/core"
)

// DefaultMaxSessions bounds how many sessions are kept before the least
// recently used one is dropped.
const DefaultMaxSessions = 1000

// Sessions is the registry of signed-in users keyed by an opaque id. Each
// lookup extends the session's lifetime by the configured TTL.
type Sessions struct {
	store *cache.Expiring[core.Session]
}

func NewSessions(ttl time.Duration, maxSessions int) *Sessions {
	if maxSessions < 1 {
		maxSessions = DefaultMaxSessions
	}
	return &Sessions{store: cache.NewExpiring[core.Session](maxSessions, ttl)}
}

// Create assigns a fresh id to s and registers it.
func (s *Sessions) Create(sess core.Session) core.Session {
	sess.ID = uuid.NewString()
	s.store.Put(sess.ID, sess)
	return sess
}

func (s *Sessions) Get(id string) (core.Session, bool) {
	if id == "" {
		return core.Session{}, false
	}
	return s.store.Renew(id)
}

func (s *Sessions) Delete(id string) {
	s.store.Remove(id)
}

// Sweeper exposes the backing map so a janitor can drop expired sessions.
func (s *Sessions) Sweeper() cache.Sweeper {
	return s.store
}
