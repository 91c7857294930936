// Package requestid assigns a correlation id to every HTTP request.
//
// Middleware reuses a client supplied X-Request-ID when it is short and made
// of [a-zA-Z0-9_-], and generates a UUIDv7 otherwise. The id is echoed in the
// response header and stored in the request context, where LoggerExtractor
// picks it up for the slog handler built by package logger:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
package requestid
