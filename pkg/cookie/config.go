package cookie

import "strings"

// Config holds cookie manager configuration
type Config struct {
	// Secrets is a comma separated list; the first one signs new cookies.
	Secrets string `env:"COOKIE_SECRETS" envDefault:""`
}

// parseSecrets splits the secrets string into a slice
func (c Config) parseSecrets() []string {
	if c.Secrets == "" {
		return nil
	}

	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			secrets = append(secrets, s)
		}
	}
	return secrets
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	return New(cfg.parseSecrets(), opts...)
}
