// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/projectdesk/projectdesk/internal/auth"
	authmocks "github.com/projectdesk/projectdesk/internal/auth/mocks"
	"github.com/projectdesk/projectdesk/internal/project"
	projectmocks "github.com/projectdesk/projectdesk/internal/project/mocks"
)

// testDeps bundles the services and their underlying mocks for handler tests.
type testDeps struct {
	auth     *auth.Service
	projects *project.Service
	accounts *authmocks.MockAccountRepository
	sessions *authmocks.MockSessionRepository
	hasher   *authmocks.MockPasswordHasher
	repo     *projectmocks.MockRepository
	logger   *slog.Logger
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	accounts := authmocks.NewMockAccountRepository(t)
	sessions := authmocks.NewMockSessionRepository(t)
	hasher := authmocks.NewMockPasswordHasher(t)

	authService, err := auth.NewService(accounts, sessions, hasher)
	require.NoError(t, err)

	repo := projectmocks.NewMockRepository(t)
	projectService, err := project.NewService(repo)
	require.NoError(t, err)

	return &testDeps{
		auth:     authService,
		projects: projectService,
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		repo:     repo,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (d *testDeps) router() http.Handler {
	return NewRouter(RouterConfig{
		Auth:          d.auth,
		Projects:      d.projects,
		Logger:        d.logger,
		SecureCookies: false,
	})
}
