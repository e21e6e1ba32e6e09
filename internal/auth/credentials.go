// Package auth checks static credentials and tracks signed-in sessions.
package auth

import (
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"tractorlog/internal/core"
)

// Credential is one known user.
type Credential struct {
	Username string    `yaml:"username"`
	Password string    `yaml:"password"`
	Role     core.Role `yaml:"role"`
}

// Table maps usernames to credentials. It is read-only after construction.
type Table struct {
	users map[string]Credential
}

// DefaultTable holds the built-in demo accounts.
func DefaultTable() *Table {
	t, _ := NewTable([]Credential{
		{Username: "employee1", Password: "pass123", Role: core.RoleEmployee},
		{Username: "employee2", Password: "pass456", Role: core.RoleEmployee},
		{Username: "admin", Password: "admin123", Role: core.RoleAdmin},
	})
	return t
}

// NewTable validates creds and indexes them by username.
func NewTable(creds []Credential) (*Table, error) {
	t := &Table{users: make(map[string]Credential, len(creds))}
	for i, c := range creds {
		c.Username = strings.TrimSpace(c.Username)
		if c.Username == "" {
			return nil, fmt.Errorf("credential %d: empty username", i)
		}
		if c.Password == "" {
			return nil, fmt.Errorf("credential %q: empty password", c.Username)
		}
		if !c.Role.Valid() {
			return nil, fmt.Errorf("credential %q: %w: %q", c.Username, core.ErrInvalidRole, c.Role)
		}
		if _, dup := t.users[c.Username]; dup {
			return nil, fmt.Errorf("credential %q: duplicate username", c.Username)
		}
		t.users[c.Username] = c
	}
	return t, nil
}

type credentialsFile struct {
	Users []Credential `yaml:"users"`
}

// LoadTable reads a YAML document with a top-level users list.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	var doc credentialsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	if len(doc.Users) == 0 {
		return nil, fmt.Errorf("credentials file %s lists no users", path)
	}
	return NewTable(doc.Users)
}

// Authenticate returns the role of username when password matches.
func (t *Table) Authenticate(username, password string) (core.Role, bool) {
	c, ok := t.users[username]
	if !ok {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) != 1 {
		return "", false
	}
	return c.Role, true
}

// Len reports how many users the table knows.
func (t *Table) Len() int { return len(t.users) }
