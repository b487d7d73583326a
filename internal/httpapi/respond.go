// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/project"
	"github.com/projectdesk/projectdesk/pkg/errutil"
)

// errorBody is the JSON error envelope shared by every endpoint.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// clientError is the wire form of an error code: the HTTP status and the
// fixed client-facing message. Internal detail never leaves the process.
type clientError struct {
	status  int
	message string
}

// clientErrors maps internal error codes onto their wire form. Not-found
// and forbidden share one entry so resource existence never leaks across
// accounts. Codes absent here surface as a generic 500.
var clientErrors = map[string]clientError{
	auth.CodeInvalidEmail:          {http.StatusBadRequest, "invalid email address"},
	auth.CodeInvalidPassword:       {http.StatusBadRequest, "invalid password"},
	project.CodeInvalidName:        {http.StatusBadRequest, "invalid project name"},
	project.CodeInvalidDescription: {http.StatusBadRequest, "invalid project description"},
	project.CodeEmptyUpdate:        {http.StatusBadRequest, "no fields to update"},
	auth.CodeEmailTaken:            {http.StatusConflict, "email already registered"},
	auth.CodeInvalidCredentials:    {http.StatusUnauthorized, "invalid email or password"},
	auth.CodeSessionInvalid:        {http.StatusUnauthorized, "authentication required"},
	auth.CodeSessionExpired:        {http.StatusUnauthorized, "session expired"},
	project.CodeNotFound:           {http.StatusNotFound, "project not found"},
	project.CodeForbidden:          {http.StatusNotFound, "project not found"},
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps err onto the error envelope. Unexpected failures are
// logged with full context and surfaced as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := errutil.Code(err)
	ce, known := clientErrors[code]
	if !known {
		errutil.LogError(logger, "request failed", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: errorDetail{
			Code:    "INTERNAL",
			Message: "internal error",
		}})
		return
	}

	logger.DebugContext(r.Context(), "request rejected",
		"code", code,
		"status", ce.status,
		"path", r.URL.Path,
	)
	if code == project.CodeForbidden {
		code = project.CodeNotFound
	}
	writeJSON(w, ce.status, errorBody{Error: errorDetail{
		Code:    code,
		Message: ce.message,
	}})
}

// writeBadRequest reports a malformed request body.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
		Code:    "BAD_REQUEST",
		Message: message,
	}})
}

// decodeJSON decodes a request body into v with a size cap.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	//nolint:wrapcheck // callers report a fixed bad-request message
	return dec.Decode(v)
}
