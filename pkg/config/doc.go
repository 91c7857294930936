// Package config loads service configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: .env
// files are merged into the process environment, then any struct annotated
// with `env` tags is populated from it. Every package of this module exposes
// such a struct (session.Config, pg.Config, cookie.Config, csrf.Config, ...).
//
//	var sessCfg session.Config
//	config.MustLoad(&sessCfg)
//
// Each configuration type is parsed once per process and cached by value.
// ResetCache and ForceReload exist for tests that change the environment.
package config
