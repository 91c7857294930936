package session

import "context"

type sessionContextKey struct{}

type contextEntry struct {
	session *Session
	state   State
}

// WithSession adds a session and its request state to the context
func WithSession(ctx context.Context, session *Session, state State) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, contextEntry{session: session, state: state})
}

// FromContext retrieves a session from the context
func FromContext(ctx context.Context) (*Session, bool) {
	entry, ok := ctx.Value(sessionContextKey{}).(contextEntry)
	if !ok || entry.session == nil {
		return nil, false
	}
	return entry.session, true
}

// MustFromContext retrieves a session from the context or panics
func MustFromContext(ctx context.Context) *Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic("session: not found in context")
	}
	return session
}

// StateFromContext returns how the session in context was obtained.
// Returns 0 when the context carries no session.
func StateFromContext(ctx context.Context) State {
	entry, _ := ctx.Value(sessionContextKey{}).(contextEntry)
	return entry.state
}

// UserIDFromContext retrieves the user ID from the session in context
func UserIDFromContext(ctx context.Context) (string, bool) {
	session, ok := FromContext(ctx)
	if !ok || !session.IsAuthenticated() {
		return "", false
	}
	return session.UserID, true
}
