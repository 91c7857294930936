package cookie

import "errors"

var (
	ErrNoSecret         = errors.New("cookie.no_secret")
	ErrSecretTooShort   = errors.New("cookie.secret_too_short")
	ErrKeyDerivation    = errors.New("cookie.key_derivation_failed")
	ErrInvalidSignature = errors.New("cookie.invalid_signature")
	ErrCookieNotFound   = errors.New("cookie.not_found")
	ErrInvalidFormat    = errors.New("cookie.invalid_format")
	ErrEmptyName        = errors.New("cookie.empty_name")
	ErrInvalidSameSite  = errors.New("cookie.invalid_same_site")
)
