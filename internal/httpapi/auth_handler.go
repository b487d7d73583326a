// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/samber/oops"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/observability"
)

// AuthHandler serves signup, login, and logout.
type AuthHandler struct {
	auth          *auth.Service
	logger        *slog.Logger
	metrics       *observability.Metrics
	secureCookies bool
}

// NewAuthHandler creates an AuthHandler. metrics may be nil.
func NewAuthHandler(authService *auth.Service, logger *slog.Logger, metrics *observability.Metrics, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		auth:          authService,
		logger:        logger,
		metrics:       metrics,
		secureCookies: secureCookies,
	}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newAccountResponse(a *auth.Account) accountResponse {
	return accountResponse{
		ID:        a.ID.String(),
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	}
}

// Signup handles POST /signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	account, err := h.auth.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countSignup("failure")
		writeError(w, r, h.logger, err)
		return
	}

	h.countSignup("success")
	h.logger.InfoContext(r.Context(), "account created", "account_id", account.ID.String())
	writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

// Login handles POST /login. On success the session token is set as an
// HttpOnly cookie; the body carries the account.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	account, session, token, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.countLogin("failure")
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessionCookie(token, session.ExpiresAt))

	h.countLogin("success")
	h.logger.InfoContext(r.Context(), "login", "account_id", session.AccountID.String())
	writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// Logout handles POST /logout. The session guard has already validated
// the cookie; revoke the session, clear the cookie, and return 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		writeError(w, r, h.logger, oops.Code(auth.CodeSessionInvalid).Errorf("missing session cookie"))
		return
	}

	if err := h.auth.RevokeSession(r.Context(), cookie.Value); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, h.expiredCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) expiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *AuthHandler) countSignup(outcome string) {
	if h.metrics != nil {
		h.metrics.SignupsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *AuthHandler) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}
