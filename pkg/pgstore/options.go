package pgstore

import "log/slog"

// DefaultTable is the table used when none is configured.
const DefaultTable = "sessions"

// Config holds the store configuration
type Config struct {
	Table string `env:"SESSION_TABLE" envDefault:"sessions"`
}

// Option configures the Store
type Option func(*Store)

// WithTable sets the table name. Empty names are ignored.
func WithTable(table string) Option {
	return func(s *Store) {
		if table != "" {
			s.table = table
		}
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}
