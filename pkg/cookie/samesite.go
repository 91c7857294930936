package cookie

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// SameSite is an http.SameSite that reads its value from text, so it can be
// set from the environment as "lax", "strict", "none" or "default".
type SameSite http.SameSite

const (
	SameSiteDefault = SameSite(http.SameSiteDefaultMode)
	SameSiteLax     = SameSite(http.SameSiteLaxMode)
	SameSiteStrict  = SameSite(http.SameSiteStrictMode)
	SameSiteNone    = SameSite(http.SameSiteNoneMode)
)

// HTTP returns the net/http value.
func (s SameSite) HTTP() http.SameSite {
	return http.SameSite(s)
}

func (s SameSite) String() string {
	switch s {
	case SameSiteLax:
		return "lax"
	case SameSiteStrict:
		return "strict"
	case SameSiteNone:
		return "none"
	case SameSiteDefault:
		return "default"
	default:
		return strconv.Itoa(int(s))
	}
}

// UnmarshalText accepts the mode names in any case. The numeric http.SameSite
// values are still accepted for older configurations.
func (s *SameSite) UnmarshalText(text []byte) error {
	value := strings.ToLower(strings.TrimSpace(string(text)))
	switch value {
	case "lax":
		*s = SameSiteLax
	case "strict":
		*s = SameSiteStrict
	case "none":
		*s = SameSiteNone
	case "default", "":
		*s = SameSiteDefault
	default:
		n, err := strconv.Atoi(value)
		if err != nil || n < int(SameSiteDefault) || n > int(SameSiteNone) {
			return fmt.Errorf("%w: %q", ErrInvalidSameSite, string(text))
		}
		*s = SameSite(n)
	}
	return nil
}

func (s SameSite) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
