package session

import (
	"context"
	"time"
)

// Store defines the persistence contract for sessions.
// Implementations must be safe for concurrent use with different tokens.
type Store interface {
	// EnsureSchema creates the backing table if it does not exist yet.
	EnsureSchema(ctx context.Context) error

	// Insert stores a freshly started session.
	Insert(ctx context.Context, session *Session) error

	// Update persists user id, updated timestamp, idle timeout and data.
	// Updating an unknown token is not an error.
	Update(ctx context.Context, session *Session) error

	// SelectByToken returns the stored session, expired or not.
	// ErrSessionNotFound means there is no such row; any other error is a
	// store failure.
	SelectByToken(ctx context.Context, token string) (*Session, error)

	// DeleteByToken removes a session. Missing tokens are not an error.
	DeleteByToken(ctx context.Context, token string) error

	// DeleteExpiredBefore removes sessions with updated + idle < cutoff and
	// returns how many were removed.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
