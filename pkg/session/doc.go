// Package session provides server-side HTTP sessions persisted in a single
// relational table, plus the middleware that binds them to requests.
//
// # Architecture
//
// A Manager orchestrates the session life-cycle of one request. It reads the
// token from the session cookie, resumes the stored session through a Store,
// or starts a new one, and persists it again before the response headers are
// sent.
//
//	┌────────┐  cookie   ┌─────────────────────────────┐
//	│ Client │ ────────► │ Middleware (request phase)  │── Acquire ─┐
//	└────────┘           └─────────────────────────────┘            │
//	     ▲                                                          ▼
//	     │               ┌─────────────────────────────┐      ┌──────────┐
//	     └── Set-Cookie ─│ Middleware (response phase) │─Save►│  Store   │ (postgres, memory)
//	                     └─────────────────────────────┘      └──────────┘
//
// Per request the session goes through a small state machine:
//
//   - no cookie: Start generates a 256-bit random token, captures client
//     address and user agent, and inserts the record (StateNew).
//   - valid token: Resume selects the record and Validate accepts it
//     (StateResume).
//   - invalid or expired token: the stale record is destroyed and a new
//     session is started in its place.
//
// Expiry is lazy: a stored record whose updated timestamp plus idle timeout
// lies in the past is treated as absent even before it is deleted. Clean and
// RunCleanup remove such records periodically.
//
// # CSRF
//
// The middleware consults an optional CSRFGuard (see package csrf). Every
// request is checked except brand-new sessions on safe methods. A failure is
// handled according to Config.CSRFFailAction: "fail" answers 406 Not
// Acceptable, "log" records a warning and continues, "silent" continues.
//
// # Usage
//
//	store := pgstore.New(pool)
//	manager := session.New(
//	    session.WithStore(store),
//	    session.WithCSRF(csrf.New(csrf.Config{}, cookieMgr)),
//	    session.WithLogger(log),
//	)
//	_ = manager.EnsureSchema(ctx)
//	go manager.RunCleanup(ctx, 10*time.Minute)
//
//	r := chi.NewRouter()
//	r.Use(manager.Middleware)
//	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
//	    sess := session.MustFromContext(r.Context())
//	    n, _ := sess.GetInt("visits")
//	    sess.Set("visits", n+1)
//	})
//
// # Concurrency
//
// Requests sharing a token are not serialized. Two requests that resume the
// same session and save it concurrently overwrite each other: the last save
// wins.
//
// # Error Handling
//
// Nothing in this package is fatal to a request. Store failures are logged
// and degrade to a fresh anonymous session. Sentinel errors:
//
//   - ErrSessionNotFound – no session stored under the token
//   - ErrSessionExpired  – session outlived its idle timeout
//   - ErrInvalidSession  – session belongs to a different client
package session
