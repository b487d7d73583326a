// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

//go:build integration

package store_test

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/projectdesk/projectdesk/internal/auth"
	authpg "github.com/projectdesk/projectdesk/internal/auth/postgres"
	"github.com/projectdesk/projectdesk/internal/project"
	projectpg "github.com/projectdesk/projectdesk/internal/project/postgres"
	"github.com/projectdesk/projectdesk/internal/store"
)

// setupPostgres starts a PostgreSQL container, applies migrations, and
// returns a connected pool.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("projectdesk_test"),
		postgres.WithUsername("projectdesk"),
		postgres.WithPassword("projectdesk"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	_ = migrator.Close()

	pool, err := store.Open(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("Repositories", func() {
	var (
		pool     *pgxpool.Pool
		cleanup  func()
		accounts *authpg.AccountRepository
		sessions *authpg.SessionRepository
		projects *projectpg.Repository
	)

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())

		accounts = authpg.NewAccountRepository(pool)
		sessions = authpg.NewSessionRepository(pool)
		projects = projectpg.NewRepository(pool)
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("AccountRepository", func() {
		It("round-trips an account", func() {
			ctx := context.Background()
			account, err := auth.NewAccount("alice@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())

			Expect(accounts.Create(ctx, account)).To(Succeed())

			got, err := accounts.GetByEmail(ctx, "alice@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(account.ID))

			byID, err := accounts.GetByID(ctx, account.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Email).To(Equal("alice@example.com"))
		})

		It("rejects a duplicate email", func() {
			ctx := context.Background()
			first, err := auth.NewAccount("dup@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, first)).To(Succeed())

			second, err := auth.NewAccount("dup@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, second)).To(MatchError(auth.ErrDuplicate))
		})

		It("lets exactly one of two concurrent signups win", func() {
			ctx := context.Background()

			first, err := auth.NewAccount("race@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			second, err := auth.NewAccount("race@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())

			errs := make([]error, 2)
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				errs[0] = accounts.Create(ctx, first)
			}()
			go func() {
				defer wg.Done()
				errs[1] = accounts.Create(ctx, second)
			}()
			wg.Wait()

			winners := 0
			for _, err := range errs {
				if err == nil {
					winners++
				} else {
					Expect(err).To(MatchError(auth.ErrDuplicate))
				}
			}
			Expect(winners).To(Equal(1))

			var count int
			Expect(pool.QueryRow(ctx,
				"SELECT COUNT(*) FROM accounts WHERE email = $1", "race@example.com",
			).Scan(&count)).To(Succeed())
			Expect(count).To(Equal(1))
		})
	})

	Describe("SessionRepository", func() {
		It("creates, finds, and deletes a session", func() {
			ctx := context.Background()
			account, err := auth.NewAccount("bob@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, account)).To(Succeed())

			_, tokenHash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())

			session, err := auth.NewSession(account.ID, tokenHash, time.Now().Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Create(ctx, session)).To(Succeed())

			got, err := sessions.GetByTokenHash(ctx, tokenHash)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.AccountID).To(Equal(account.ID))

			Expect(sessions.Delete(ctx, tokenHash)).To(Succeed())
			_, err = sessions.GetByTokenHash(ctx, tokenHash)
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("sweeps only expired sessions", func() {
			ctx := context.Background()
			account, err := auth.NewAccount("carol@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, account)).To(Succeed())

			_, liveHash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())
			live, err := auth.NewSession(account.ID, liveHash, time.Now().Add(time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Create(ctx, live)).To(Succeed())

			_, deadHash, err := auth.GenerateSessionToken()
			Expect(err).NotTo(HaveOccurred())
			dead, err := auth.NewSession(account.ID, deadHash, time.Now().Add(-time.Hour))
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions.Create(ctx, dead)).To(Succeed())

			count, err := sessions.DeleteExpired(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(int64(1)))

			_, err = sessions.GetByTokenHash(ctx, liveHash)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("ProjectRepository", func() {
		var owner, stranger *auth.Account

		BeforeEach(func() {
			ctx := context.Background()
			var err error
			owner, err = auth.NewAccount("owner@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, owner)).To(Succeed())

			stranger, err = auth.NewAccount("stranger@example.com", "$argon2id$fake")
			Expect(err).NotTo(HaveOccurred())
			Expect(accounts.Create(ctx, stranger)).To(Succeed())
		})

		It("scopes reads and writes to the owning account", func() {
			ctx := context.Background()
			p, err := project.New(owner.ID, "Atlas", "mapping service")
			Expect(err).NotTo(HaveOccurred())
			Expect(projects.Create(ctx, p)).To(Succeed())

			got, err := projects.Get(ctx, owner.ID, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Atlas"))

			_, err = projects.Get(ctx, stranger.ID, p.ID)
			Expect(err).To(MatchError(project.ErrNotOwned))

			_, err = projects.ListByAccount(ctx, stranger.ID)
			Expect(err).NotTo(HaveOccurred())

			name := "Vesper"
			_, err = projects.Update(ctx, stranger.ID, p.ID, project.UpdateFields{Name: &name})
			Expect(err).To(MatchError(project.ErrNotOwned))

			Expect(projects.Delete(ctx, stranger.ID, p.ID)).To(MatchError(project.ErrNotOwned))

			unchanged, err := projects.Get(ctx, owner.ID, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(unchanged.Name).To(Equal("Atlas"))
		})

		It("advances updated_at on update", func() {
			ctx := context.Background()
			p, err := project.New(owner.ID, "Atlas", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(projects.Create(ctx, p)).To(Succeed())

			time.Sleep(10 * time.Millisecond)

			desc := "now with a description"
			updated, err := projects.Update(ctx, owner.ID, p.ID, project.UpdateFields{Description: &desc})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Description).To(Equal(desc))
			Expect(updated.Name).To(Equal("Atlas"))
			Expect(updated.UpdatedAt.After(updated.CreatedAt)).To(BeTrue())
		})

		It("converges under concurrent updates without losing a write", func() {
			ctx := context.Background()
			p, err := project.New(owner.ID, "Atlas", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(projects.Create(ctx, p)).To(Succeed())

			time.Sleep(10 * time.Millisecond)

			names := []string{"Borealis", "Cascade"}
			errs := make([]error, len(names))
			var wg sync.WaitGroup
			for i, name := range names {
				wg.Add(1)
				go func(i int, name string) {
					defer wg.Done()
					_, errs[i] = projects.Update(ctx, owner.ID, p.ID, project.UpdateFields{Name: &name})
				}(i, name)
			}
			wg.Wait()

			for _, err := range errs {
				Expect(err).NotTo(HaveOccurred())
			}

			got, err := projects.Get(ctx, owner.ID, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(ContainElement(got.Name))
			Expect(got.UpdatedAt.After(got.CreatedAt)).To(BeTrue())
		})

		It("reports not-found after delete", func() {
			ctx := context.Background()
			p, err := project.New(owner.ID, "Atlas", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(projects.Create(ctx, p)).To(Succeed())

			Expect(projects.Delete(ctx, owner.ID, p.ID)).To(Succeed())
			Expect(projects.Delete(ctx, owner.ID, p.ID)).To(MatchError(project.ErrNotFound))
		})
	})
})
