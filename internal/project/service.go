// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package project

import (
	"context"
	"errors"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides ownership-scoped project CRUD.
type Service struct {
	projects Repository
}

// NewService creates a new Service.
func NewService(projects Repository) (*Service, error) {
	if projects == nil {
		return nil, oops.Errorf("projects repository is required")
	}
	return &Service{projects: projects}, nil
}

// Create persists a new project owned by accountID.
func (s *Service) Create(ctx context.Context, accountID ulid.ULID, name, description string) (*Project, error) {
	p, err := New(accountID, name, description)
	if err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, p); err != nil {
		return nil, oops.Code("PROJECT_CREATE_FAILED").
			With("operation", "persist project").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return p, nil
}

// Get retrieves a single project owned by accountID.
func (s *Service) Get(ctx context.Context, accountID, projectID ulid.ULID) (*Project, error) {
	p, err := s.projects.Get(ctx, accountID, projectID)
	if err != nil {
		return nil, s.classify(err, "get project", accountID, projectID)
	}
	return p, nil
}

// List returns all projects owned by accountID, ordered by creation time
// ascending.
func (s *Service) List(ctx context.Context, accountID ulid.ULID) ([]*Project, error) {
	projects, err := s.projects.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, oops.Code("PROJECT_LIST_FAILED").
			With("operation", "list projects").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	return projects, nil
}

// Update applies the supplied fields to a project owned by accountID.
// Only non-nil fields change; updated_at advances on success.
func (s *Service) Update(ctx context.Context, accountID, projectID ulid.ULID, fields UpdateFields) (*Project, error) {
	if fields.IsEmpty() {
		return nil, oops.Code(CodeEmptyUpdate).Errorf("no fields to update")
	}
	if fields.Name != nil {
		trimmed := strings.TrimSpace(*fields.Name)
		if err := ValidateName(trimmed); err != nil {
			return nil, err
		}
		fields.Name = &trimmed
	}
	if fields.Description != nil {
		if err := ValidateDescription(*fields.Description); err != nil {
			return nil, err
		}
	}

	p, err := s.projects.Update(ctx, accountID, projectID, fields)
	if err != nil {
		return nil, s.classify(err, "update project", accountID, projectID)
	}
	return p, nil
}

// Delete removes a project owned by accountID. A second delete of the same
// id reports not-found.
func (s *Service) Delete(ctx context.Context, accountID, projectID ulid.ULID) error {
	if err := s.projects.Delete(ctx, accountID, projectID); err != nil {
		return s.classify(err, "delete project", accountID, projectID)
	}
	return nil
}

// classify maps repository sentinels onto the package error codes.
// Not-found and not-owned stay distinct here; the HTTP boundary collapses
// them into one external 404.
func (s *Service) classify(err error, operation string, accountID, projectID ulid.ULID) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return oops.Code(CodeNotFound).
			With("project_id", projectID.String()).
			Errorf("project not found")
	case errors.Is(err, ErrNotOwned):
		return oops.Code(CodeForbidden).
			With("project_id", projectID.String()).
			Errorf("project belongs to another account")
	default:
		return oops.Code("PROJECT_STORE_FAILED").
			With("operation", operation).
			With("account_id", accountID.String()).
			With("project_id", projectID.String()).
			Wrap(err)
	}
}
