package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/pgsession/pkg/clientip"
	"github.com/dmitrymomot/pgsession/pkg/csrf"
	"github.com/dmitrymomot/pgsession/pkg/httpserver"
	"github.com/dmitrymomot/pgsession/pkg/logger"
	"github.com/dmitrymomot/pgsession/pkg/requestid"
	"github.com/dmitrymomot/pgsession/pkg/session"
)

const visitsKey = "visits"

type sessionView struct {
	UserID        string `json:"user_id,omitempty"`
	Authenticated bool   `json:"authenticated"`
	Visits        int    `json:"visits"`
	State         string `json:"state"`
	CSRFToken     string `json:"csrf_token,omitempty"`
}

func newRouter(manager *session.Manager, log *slog.Logger, checks ...httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestid.Middleware)
	r.Use(clientip.Middleware)

	// Probes run outside the session filter so they never create sessions.
	r.Get("/health/live", httpserver.HealthHandler(log))
	r.Get("/health/ready", httpserver.HealthHandler(log, checks...))

	r.Group(func(r chi.Router) {
		r.Use(manager.Middleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			sess := session.MustFromContext(r.Context())
			visits, _ := sess.GetInt(visitsKey)
			visits++
			sess.Set(visitsKey, visits)
			writeJSON(w, log, r, view(r, sess))
		})

		r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
			userID := r.FormValue("user_id")
			if userID == "" {
				http.Error(w, "user_id is required", http.StatusBadRequest)
				return
			}
			sess := session.MustFromContext(r.Context())
			sess.SetUserID(userID)
			log.InfoContext(r.Context(), "user logged in", logger.UserID(userID))
			writeJSON(w, log, r, view(r, sess))
		})

		r.With(manager.RequireAuth).Get("/me", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, log, r, view(r, session.MustFromContext(r.Context())))
		})

		r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
			if err := manager.Logout(r.Context(), w); err != nil {
				log.ErrorContext(r.Context(), "logout failed", logger.Error(err))
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}

func view(r *http.Request, sess *session.Session) sessionView {
	visits, _ := sess.GetInt(visitsKey)
	token, _ := sess.GetString(csrf.SessionKey)
	return sessionView{
		UserID:        sess.UserID,
		Authenticated: sess.IsAuthenticated(),
		Visits:        visits,
		State:         session.StateFromContext(r.Context()).String(),
		CSRFToken:     token,
	}
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ErrorContext(r.Context(), "failed to write response", logger.Error(err))
	}
}
