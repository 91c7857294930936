package csrf

// Config holds CSRF protection configuration
type Config struct {
	CookieName string `env:"CSRF_COOKIE_NAME" envDefault:"csrf_token"`
	HeaderName string `env:"CSRF_HEADER_NAME" envDefault:"X-CSRF-Token"`
	FormField  string `env:"CSRF_FORM_FIELD" envDefault:"_csrf"`

	// CheckOrigin compares Origin/Referer with the request host.
	CheckOrigin  bool     `env:"CSRF_CHECK_ORIGIN" envDefault:"false"`
	AllowedHosts []string `env:"CSRF_ALLOWED_HOSTS" envSeparator:","`
}

func (c Config) withDefaults() Config {
	if c.CookieName == "" {
		c.CookieName = "csrf_token"
	}
	if c.HeaderName == "" {
		c.HeaderName = "X-CSRF-Token"
	}
	if c.FormField == "" {
		c.FormField = "_csrf"
	}
	return c
}
