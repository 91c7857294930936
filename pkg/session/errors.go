package session

import "errors"

var (
	// ErrSessionNotFound indicates no session row matches the token
	ErrSessionNotFound = errors.New("session.not_found")

	// ErrSessionExpired indicates the session outlived its idle timeout
	ErrSessionExpired = errors.New("session.expired")

	// ErrInvalidSession indicates the session does not match the current client
	ErrInvalidSession = errors.New("session.invalid")

	// ErrDuplicateToken indicates an insert collided with an existing token
	ErrDuplicateToken = errors.New("session.duplicate_token")

	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("session.token_generation_failed")

	// ErrMalformedData indicates the persisted data blob could not be decoded
	ErrMalformedData = errors.New("session.malformed_data")

	// ErrNoSession indicates the request context carries no session
	ErrNoSession = errors.New("session.not_in_context")
)
