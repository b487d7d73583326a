// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

// Package mocks provides testify mocks for project interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/projectdesk/projectdesk/internal/project"
)

// MockRepository is a mock implementation of project.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a new MockRepository with cleanup registered.
func NewMockRepository(t *testing.T) *MockRepository {
	t.Helper()
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) Get(ctx context.Context, accountID, projectID ulid.ULID) (*project.Project, error) {
	args := m.Called(ctx, accountID, projectID)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) ListByAccount(ctx context.Context, accountID ulid.ULID) ([]*project.Project, error) {
	args := m.Called(ctx, accountID)
	if projects, ok := args.Get(0).([]*project.Project); ok {
		return projects, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, accountID, projectID ulid.ULID, fields project.UpdateFields) (*project.Project, error) {
	args := m.Called(ctx, accountID, projectID, fields)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, accountID, projectID ulid.ULID) error {
	args := m.Called(ctx, accountID, projectID)
	return args.Error(0)
}

// Compile-time interface check.
var _ project.Repository = (*MockRepository)(nil)
