package csrf

import "errors"

// ErrNoToken indicates the session has no CSRF token to issue
var ErrNoToken = errors.New("csrf.no_token")
