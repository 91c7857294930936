// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run blocks until the context is cancelled or the process receives SIGINT or
// SIGTERM, then drains in-flight requests within the shutdown timeout.
// HealthHandler serves liveness and readiness probes backed by dependency
// checks such as pg.Healthcheck.
package httpserver
