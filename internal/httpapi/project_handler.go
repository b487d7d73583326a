// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/projectdesk/projectdesk/internal/project"
)

// ProjectHandler serves the ownership-scoped project CRUD endpoints. Every
// handler resolves the account from the request context; the session guard
// guarantees it is present.
type ProjectHandler struct {
	projects *project.Service
	logger   *slog.Logger
}

// NewProjectHandler creates a ProjectHandler.
func NewProjectHandler(projects *project.Service, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newProjectResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Create handles POST /projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, errMissingAccount())
		return
	}

	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	p, err := h.projects.Create(r.Context(), accountID, req.Name, req.Description)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "project created",
		"project_id", p.ID.String(),
		"account_id", accountID.String(),
	)
	writeJSON(w, http.StatusCreated, newProjectResponse(p))
}

// List handles GET /projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, errMissingAccount())
		return
	}

	projects, err := h.projects.List(r.Context(), accountID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	responses := make([]projectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, newProjectResponse(p))
	}
	writeJSON(w, http.StatusOK, responses)
}

// Get handles GET /projects/{projectID}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, projectID, err := h.requestIDs(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	p, err := h.projects.Get(r.Context(), accountID, projectID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectResponse(p))
}

// Update handles PUT /projects/{projectID}. Absent fields keep their
// current values.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, projectID, err := h.requestIDs(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req updateProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, "malformed request body")
		return
	}

	p, err := h.projects.Update(r.Context(), accountID, projectID, project.UpdateFields{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectResponse(p))
}

// Delete handles DELETE /projects/{projectID}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, projectID, err := h.requestIDs(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.projects.Delete(r.Context(), accountID, projectID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "project deleted",
		"project_id", projectID.String(),
		"account_id", accountID.String(),
	)
	w.WriteHeader(http.StatusNoContent)
}

// requestIDs extracts the authenticated account and the projectID path
// parameter. A malformed ID is reported as not-found, same as a missing row.
func (h *ProjectHandler) requestIDs(r *http.Request) (accountID, projectID ulid.ULID, err error) {
	accountID, ok := AccountIDFromContext(r.Context())
	if !ok {
		return ulid.ULID{}, ulid.ULID{}, errMissingAccount()
	}

	raw := chi.URLParam(r, "projectID")
	projectID, parseErr := ulid.Parse(raw)
	if parseErr != nil {
		return ulid.ULID{}, ulid.ULID{}, oops.Code(project.CodeNotFound).
			With("project_id", raw).
			Wrap(parseErr)
	}
	return accountID, projectID, nil
}

// errMissingAccount covers a guard misconfiguration: a protected handler
// reached without an authenticated account.
func errMissingAccount() error {
	return oops.Errorf("no account in request context")
}
