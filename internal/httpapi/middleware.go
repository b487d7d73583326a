// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/observability"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "projectdesk_session"

type contextKey string

const accountIDKey contextKey = "accountID"

// AccountIDFromContext returns the authenticated account ID placed by the
// session guard.
func AccountIDFromContext(ctx context.Context) (ulid.ULID, bool) {
	id, ok := ctx.Value(accountIDKey).(ulid.ULID)
	return id, ok
}

// contextWithAccountID is used by the guard and by handler tests.
func contextWithAccountID(ctx context.Context, id ulid.ULID) context.Context {
	return context.WithValue(ctx, accountIDKey, id)
}

// sessionGuard rejects requests without a valid session cookie and stores
// the session's account ID in the request context. The token itself never
// reaches handlers.
func sessionGuard(authService *auth.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil {
				writeError(w, r, logger, oops.Code(auth.CodeSessionInvalid).Errorf("missing session cookie"))
				return
			}

			accountID, err := authService.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, r, logger, err)
				return
			}

			ctx := contextWithAccountID(r.Context(), accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestLogger emits one slog record per request.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}

// requestMetrics counts requests by route pattern and status. The pattern
// label uses the matched chi route so label cardinality stays bounded.
func requestMetrics(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = "unmatched"
			}
			metrics.RequestsTotal.WithLabelValues(pattern, strconv.Itoa(ww.Status())).Inc()
		})
	}
}
