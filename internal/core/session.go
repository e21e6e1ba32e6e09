package core

import "time"

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Role selects which view a logged-in user gets.
type Role string

func (r Role) Valid() bool {
	return r == RoleEmployee || r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Session is created at login and handed to every view explicitly.
type Session struct {
	ID        string
	Username  string
	Role      Role
	CreatedAt time.Time
}

func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }
