// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

// Package project provides ownership-scoped project resources.
//
// Every operation takes the caller's authenticated account ID as a mandatory
// scoping parameter. The account ID is never client-supplied; the HTTP layer
// resolves it from the session before any call lands here.
package project

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Name and description constraints.
const (
	MaxNameLength        = 200
	MaxDescriptionLength = 2000
)

// Project is a resource record owned by exactly one account.
// AccountID is immutable after creation.
type Project struct {
	ID          ulid.ULID
	AccountID   ulid.ULID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpdateFields carries a partial update. Nil fields are left unchanged.
type UpdateFields struct {
	Name        *string
	Description *string
}

// IsEmpty reports whether the update changes nothing.
func (f UpdateFields) IsEmpty() bool {
	return f.Name == nil && f.Description == nil
}

// New creates a validated Project owned by accountID.
func New(accountID ulid.ULID, name, description string) (*Project, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("PROJECT_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateDescription(description); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Project{
		ID:          ulid.Make(),
		AccountID:   accountID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateName validates a project name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return oops.Code(CodeInvalidName).Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return oops.Code(CodeInvalidName).
			With("max", MaxNameLength).
			Errorf("name must be at most %d characters", MaxNameLength)
	}
	return nil
}

// ValidateDescription validates a project description.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return oops.Code(CodeInvalidDescription).
			With("max", MaxDescriptionLength).
			Errorf("description must be at most %d characters", MaxDescriptionLength)
	}
	return nil
}

// Repository manages project persistence. Update and Delete must be atomic
// with respect to the existence and ownership check: the conditional
// statement keyed on (id, account_id) is the gate, not a prior read.
type Repository interface {
	// Create stores a new project.
	Create(ctx context.Context, p *Project) error

	// Get retrieves a project scoped to the owning account. Returns an error
	// wrapping ErrNotFound if no such project exists, or ErrNotOwned if it
	// exists under a different account.
	Get(ctx context.Context, accountID, projectID ulid.ULID) (*Project, error)

	// ListByAccount returns the account's projects ordered by creation time
	// ascending.
	ListByAccount(ctx context.Context, accountID ulid.ULID) ([]*Project, error)

	// Update applies the supplied fields and advances updated_at, keyed on
	// (id, account_id). Same not-found/not-owned contract as Get.
	Update(ctx context.Context, accountID, projectID ulid.ULID, fields UpdateFields) (*Project, error)

	// Delete removes the project, keyed on (id, account_id). Same
	// not-found/not-owned contract as Get.
	Delete(ctx context.Context, accountID, projectID ulid.ULID) error
}
