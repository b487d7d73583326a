// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

// Package postgres implements the project repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/projectdesk/projectdesk/internal/project"
)

// poolIface is the subset of pgxpool.Pool the repository uses.
// pgxmock satisfies it, which keeps repository tests off a live database.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements project.Repository using PostgreSQL.
//
// Mutations are single conditional statements keyed on (id, account_id), so
// the ownership check and the write cannot be separated by a concurrent
// delete. The owner probe afterwards only classifies a miss; it is never the
// gate.
type Repository struct {
	pool poolIface
}

// NewRepository creates a new Repository.
func NewRepository(pool poolIface) *Repository {
	return &Repository{pool: pool}
}

// Create stores a new project.
func (r *Repository) Create(ctx context.Context, p *project.Project) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO projects (id, account_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		p.ID.String(),
		p.AccountID.String(),
		p.Name,
		p.Description,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return oops.Code("PROJECT_CREATE_FAILED").
			With("operation", "insert project").
			With("account_id", p.AccountID.String()).
			Wrap(err)
	}
	return nil
}

// Get retrieves a project scoped to the owning account.
func (r *Repository) Get(ctx context.Context, accountID, projectID ulid.ULID) (*project.Project, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, name, description, created_at, updated_at
		FROM projects
		WHERE id = $1 AND account_id = $2
	`, projectID.String(), accountID.String())

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyMiss(ctx, projectID)
	}
	if err != nil {
		return nil, oops.Code("PROJECT_GET_FAILED").
			With("operation", "get project").
			With("project_id", projectID.String()).
			Wrap(err)
	}
	return p, nil
}

// ListByAccount returns the account's projects ordered by creation time
// ascending, so pagination stays stable.
func (r *Repository) ListByAccount(ctx context.Context, accountID ulid.ULID) ([]*project.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, name, description, created_at, updated_at
		FROM projects
		WHERE account_id = $1
		ORDER BY created_at ASC, id ASC
	`, accountID.String())
	if err != nil {
		return nil, oops.Code("PROJECT_LIST_FAILED").
			With("operation", "list projects by account").
			With("account_id", accountID.String()).
			Wrap(err)
	}
	defer rows.Close()

	projects := []*project.Project{}
	for rows.Next() {
		p, err := scanProjectRow(rows)
		if err != nil {
			return nil, oops.Code("PROJECT_SCAN_FAILED").
				With("operation", "scan project row").
				Wrap(err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("PROJECT_ROWS_ERROR").
			With("operation", "iterate project rows").
			Wrap(err)
	}

	return projects, nil
}

// Update applies the supplied fields in one conditional statement and
// returns the updated row.
func (r *Repository) Update(ctx context.Context, accountID, projectID ulid.ULID, fields project.UpdateFields) (*project.Project, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE projects
		SET name = COALESCE($3, name),
		    description = COALESCE($4, description),
		    updated_at = $5
		WHERE id = $1 AND account_id = $2
		RETURNING id, account_id, name, description, created_at, updated_at
	`,
		projectID.String(),
		accountID.String(),
		fields.Name,
		fields.Description,
		time.Now().UTC(),
	)

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, r.classifyMiss(ctx, projectID)
	}
	if err != nil {
		return nil, oops.Code("PROJECT_UPDATE_FAILED").
			With("operation", "update project").
			With("project_id", projectID.String()).
			Wrap(err)
	}
	return p, nil
}

// Delete removes the project in one conditional statement.
func (r *Repository) Delete(ctx context.Context, accountID, projectID ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM projects WHERE id = $1 AND account_id = $2
	`, projectID.String(), accountID.String())
	if err != nil {
		return oops.Code("PROJECT_DELETE_FAILED").
			With("operation", "delete project").
			With("project_id", projectID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return r.classifyMiss(ctx, projectID)
	}
	return nil
}

// classifyMiss distinguishes a project that does not exist from one owned by
// another account after a scoped statement matched nothing.
func (r *Repository) classifyMiss(ctx context.Context, projectID ulid.ULID) error {
	var owner string
	err := r.pool.QueryRow(ctx, `
		SELECT account_id FROM projects WHERE id = $1
	`, projectID.String()).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("PROJECT_NOT_FOUND").
			With("project_id", projectID.String()).
			Wrap(project.ErrNotFound)
	}
	if err != nil {
		return oops.Code("PROJECT_OWNER_PROBE_FAILED").
			With("operation", "probe project owner").
			With("project_id", projectID.String()).
			Wrap(err)
	}
	return oops.Code("PROJECT_FORBIDDEN").
		With("project_id", projectID.String()).
		Wrap(project.ErrNotOwned)
}

// scanProject scans a single row into a Project.
// Callers are responsible for handling pgx.ErrNoRows.
func scanProject(row pgx.Row) (*project.Project, error) {
	var (
		idStr        string
		accountIDStr string
		name         string
		description  string
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(&idStr, &accountIDStr, &name, &description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("PROJECT_SCAN_FAILED").
			With("operation", "scan project").
			Wrap(err)
	}

	return buildProject(idStr, accountIDStr, name, description, createdAt, updatedAt)
}

// scanProjectRow scans a row from a rows iterator into a Project.
func scanProjectRow(rows pgx.Rows) (*project.Project, error) {
	var (
		idStr        string
		accountIDStr string
		name         string
		description  string
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := rows.Scan(&idStr, &accountIDStr, &name, &description, &createdAt, &updatedAt); err != nil {
		return nil, oops.Code("PROJECT_SCAN_FAILED").
			With("operation", "scan project row").
			Wrap(err)
	}

	return buildProject(idStr, accountIDStr, name, description, createdAt, updatedAt)
}

// buildProject constructs a Project from scanned values.
func buildProject(idStr, accountIDStr, name, description string, createdAt, updatedAt time.Time) (*project.Project, error) {
	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("PROJECT_INVALID_ID").
			With("operation", "parse project id").
			With("id", idStr).
			Wrap(err)
	}

	accountID, err := ulid.Parse(accountIDStr)
	if err != nil {
		return nil, oops.Code("PROJECT_INVALID_ACCOUNT_ID").
			With("operation", "parse account id").
			With("account_id", accountIDStr).
			Wrap(err)
	}

	return &project.Project{
		ID:          id,
		AccountID:   accountID,
		Name:        name,
		Description: description,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// Compile-time interface check.
var _ project.Repository = (*Repository)(nil)
