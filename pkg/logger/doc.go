// Package logger builds *slog.Logger instances with consistent defaults.
//
// New returns a JSON logger at INFO level writing to stdout unless options
// say otherwise. WithEnvironment switches to readable text output at DEBUG
// level outside of staging and production. Context extractors registered with
// WithContextExtractors run on every record, which is how request-scoped
// values such as the request id end up on log lines:
//
//	log := logger.New(
//	    logger.WithEnvironment(os.Getenv("APP_ENV"), "sessiond"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(r.Context(), "session started", logger.Token(sess.Token))
//
// The attribute helpers keep key names uniform across packages. Token never
// logs a full session token.
package logger
