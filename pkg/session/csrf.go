package session

import "net/http"

// CSRFGuard is the CSRF collaborator consulted by the middleware.
type CSRFGuard interface {
	// Prepare makes sure the session carries a CSRF token.
	Prepare(sess *Session)
	// Check validates the request against the session's token.
	Check(r *http.Request, sess *Session) bool
	// IssueCookie hands the session's token to the client.
	IssueCookie(w http.ResponseWriter, sess *Session) error
	// ExpireCookie removes the token cookie from the client.
	ExpireCookie(w http.ResponseWriter)
}

// IsStateChanging reports whether requests with this method may mutate
// server state and therefore always need CSRF validation.
func IsStateChanging(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
