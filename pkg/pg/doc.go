// Package pg bootstraps the PostgreSQL connection used by the session store.
//
// Config is populated from PG_* environment variables. It accepts either a
// full connection URL or host, port, user, password and database separately;
// DSN assembles the latter into an escaped URL. Connect opens a pgx/v5 pool
// and pings it, retrying a configurable number of times. Migrate runs goose
// migrations from a directory for deployments that pre-provision the schema.
// Healthcheck adapts the pool to a readiness probe.
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
// Error classification helpers (IsNotFoundError, IsDuplicateKeyError,
// IsUndefinedTableError) unwrap *pgconn.PgError.
package pg
