// Package pgstore implements session.Store on PostgreSQL through pgx/v5.
//
// Sessions live in one table (default "sessions") with the columns token,
// userid, created, updated, idle, data, ipaddress and useragent; token is the
// primary key, timestamps are Unix seconds and data is the JSON encoded
// session data. EnsureSchema creates the table idempotently.
//
//	pool, _ := pg.Connect(ctx, pgCfg)
//	store := pgstore.New(pool, pgstore.WithTable("web_sessions"))
//	manager := session.New(session.WithStore(store))
//
// SelectByToken returns session.ErrSessionNotFound when no row matches and a
// wrapped ErrSelect for any database failure, so callers can tell an absent
// session from an unavailable database. Expired rows are returned as they
// are; the session manager decides about expiry.
package pgstore
