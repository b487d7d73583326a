// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/observability"
	"github.com/projectdesk/projectdesk/internal/project"
)

// RouterConfig carries the dependencies of the HTTP API.
type RouterConfig struct {
	Auth          *auth.Service
	Projects      *project.Service
	Logger        *slog.Logger
	Metrics       *observability.Metrics
	SecureCookies bool
}

// NewRouter assembles the ProjectDesk HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics(cfg.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		//nolint:errcheck // health check write error is acceptable
		w.Write([]byte("ok\n"))
	})

	authHandler := NewAuthHandler(cfg.Auth, logger, cfg.Metrics, cfg.SecureCookies)
	projectHandler := NewProjectHandler(cfg.Projects, logger)

	r.Post("/signup", authHandler.Signup)
	r.Post("/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(sessionGuard(cfg.Auth, logger))
		r.Post("/logout", authHandler.Logout)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(sessionGuard(cfg.Auth, logger))
		r.Post("/", projectHandler.Create)
		r.Get("/", projectHandler.List)
		r.Get("/{projectID}", projectHandler.Get)
		r.Put("/{projectID}", projectHandler.Update)
		r.Delete("/{projectID}", projectHandler.Delete)
	})

	return r
}
