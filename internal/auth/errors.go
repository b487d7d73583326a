// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a storage uniqueness constraint is violated.
var ErrDuplicate = errors.New("duplicate")

// Error codes surfaced by this package. The HTTP boundary maps each code to
// exactly one status; anything unlisted there is treated as an internal fault.
const (
	CodeInvalidEmail       = "ACCOUNT_INVALID_EMAIL"
	CodeInvalidPassword    = "ACCOUNT_INVALID_PASSWORD"
	CodeEmailTaken         = "ACCOUNT_EMAIL_TAKEN"
	CodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	CodeSessionInvalid     = "SESSION_INVALID"
	CodeSessionExpired     = "SESSION_EXPIRED"
)
