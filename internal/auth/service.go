// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides signup, login, and session lifecycle operations.
type Service struct {
	accounts AccountRepository
	sessions SessionRepository
	hasher   PasswordHasher
	ttl      time.Duration
	logger   *slog.Logger
}

// NewService creates a new Service with the default session TTL.
func NewService(accounts AccountRepository, sessions SessionRepository, hasher PasswordHasher) (*Service, error) {
	return NewServiceWithTTL(accounts, sessions, hasher, DefaultSessionTTL)
}

// NewServiceWithTTL creates a new Service with a custom session TTL.
func NewServiceWithTTL(accounts AccountRepository, sessions SessionRepository, hasher PasswordHasher, ttl time.Duration) (*Service, error) {
	if accounts == nil {
		return nil, oops.Errorf("accounts repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		ttl:      ttl,
		logger:   slog.Default(),
	}, nil
}

// SessionTTL returns the fixed TTL applied to new sessions.
func (s *Service) SessionTTL() time.Duration {
	return s.ttl
}

// dummyPasswordHash is used when an account doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Signup registers a new account. The email is normalized before any check;
// uniqueness is enforced by the storage constraint, not a pre-check, so
// concurrent signups for the same address cannot both win.
func (s *Service) Signup(ctx context.Context, email, password string) (*Account, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(email, hash)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, oops.Code(CodeEmailTaken).Errorf("email is already registered")
		}
		return nil, oops.Code("AUTH_SIGNUP_FAILED").
			With("operation", "persist account").
			Wrap(err)
	}

	return account, nil
}

// Login authenticates an account and creates a session.
// Returns the account, the session, and the plaintext token.
// Uses constant-time operations to prevent timing-based account enumeration:
// a missing account and a wrong password take the same verification path and
// produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (*Account, *Session, string, error) {
	email = NormalizeEmail(email)

	account, lookupErr := s.accounts.GetByEmail(ctx, email)

	// Determine which hash to verify against (real or dummy for timing attack prevention)
	var targetHash string
	var accountExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Use dummy hash - still perform verification to maintain constant time
			targetHash = dummyPasswordHash
			accountExists = false
		} else {
			return nil, nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		accountExists = true
	}

	// Always verify password (constant-time operation for timing attack prevention)
	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		// For dummy hash verification errors, just treat as invalid
		if !accountExists {
			return nil, nil, "", oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
		}
		return nil, nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	// If account doesn't exist OR password invalid, return same error
	if !accountExists || !valid {
		return nil, nil, "", oops.Code(CodeInvalidCredentials).Errorf("invalid email or password")
	}

	session, token, err := s.CreateSession(ctx, account.ID)
	if err != nil {
		return nil, nil, "", err
	}

	return account, session, token, nil
}

// CreateSession mints a session for an already-authenticated account.
func (s *Service) CreateSession(ctx context.Context, accountID ulid.ULID) (*Session, string, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	expiresAt := time.Now().UTC().Add(s.ttl)
	session, err := NewSession(accountID, tokenHash, expiresAt)
	if err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return session, token, nil
}

// ValidateSession validates a session token and returns the owning account ID.
// Expiry is checked lazily here; the TTL is never extended.
func (s *Service) ValidateSession(ctx context.Context, token string) (ulid.ULID, error) {
	if token == "" {
		return ulid.ULID{}, oops.Code(CodeSessionInvalid).Errorf("session token cannot be empty")
	}

	// Hash the token to look it up
	tokenHash := HashSessionToken(token)

	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ulid.ULID{}, oops.Code(CodeSessionInvalid).Errorf("invalid session token")
		}
		return ulid.ULID{}, oops.Code("SESSION_VALIDATE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		return ulid.ULID{}, oops.Code(CodeSessionExpired).Errorf("session has expired")
	}

	return session.AccountID, nil
}

// RevokeSession deletes the session record. Revoking an already-revoked or
// unknown token succeeds silently.
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := s.sessions.Delete(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("SESSION_REVOKE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// SweepExpiredSessions removes expired session rows. Intended to be run
// periodically; validation does not depend on it.
func (s *Service) SweepExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	if count > 0 {
		s.logger.Info("expired sessions removed", "count", count)
	}
	return count, nil
}
