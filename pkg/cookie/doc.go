// Package cookie writes and reads HTTP cookies with attributes taken from
// static configuration.
//
// A Manager carries default attributes (path, domain, flags) that every Set
// call starts from; per-call options override them. When constructed with one
// or more secrets the Manager can also sign values with HMAC-SHA256. Signing
// keys are derived from the secrets with HKDF, the first secret signs and all
// of them verify, which allows rotation.
//
//	mgr, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")},
//	    cookie.WithSecure(true),
//	)
//	_ = mgr.SetSigned(w, "sid", token, cookie.WithMaxAge(3600))
//	token, err := mgr.GetSigned(r, "sid")
//
// Errors are sentinel values (ErrCookieNotFound, ErrInvalidSignature, ...)
// to be matched with errors.Is.
package cookie
