package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is the server-side record behind a session token. The raw token
// never touches the store; sessions are keyed by a keyed hash of it.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its absolute expiry.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type SessionRepository interface {
	// Create stores a session under the given token hash with a TTL
	// derived from ExpiresAt.
	Create(ctx context.Context, tokenHash string, session *Session) error
	// Get returns (nil, nil) when the token hash is unknown or expired.
	Get(ctx context.Context, tokenHash string) (*Session, error)
	// Update rewrites a session in place (used by refresh).
	Update(ctx context.Context, tokenHash string, session *Session) error
	Delete(ctx context.Context, tokenHash string) error
}
