// Package session persists opaque server-side sessions keyed by id.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound covers unknown and expired sessions alike.
var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is injected into the HTTP layer; the current user travels through
// request context, never through package-level state.
type Store interface {
	// Create persists the session and fills in its id.
	Create(ctx context.Context, s *Session) error
	// Get returns the live session for an id; expired ones are ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)
	// Destroy removes a session. Destroying an unknown id is ErrNotFound.
	Destroy(ctx context.Context, id string) error
}
