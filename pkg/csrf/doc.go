// Package csrf protects session-backed applications against cross-site
// request forgery.
//
// Each session gets a random token stored in its data under SessionKey. The
// token is sent to the client in a cookie that scripts can read; forms and
// XHR calls echo it back in the X-CSRF-Token header or the _csrf form field.
// Safe methods are accepted without a token, POST, PUT, PATCH and DELETE
// must present the session's token. Optionally the Origin or Referer host is
// compared with the request host and a list of allowed hosts.
//
// Protector satisfies session.CSRFGuard and is plugged into the session
// middleware with session.WithCSRF.
package csrf
