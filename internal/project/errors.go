// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package project

import "errors"

// ErrNotFound is returned when a requested project does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotOwned is returned when a project exists but belongs to another
// account. The HTTP boundary surfaces it as a plain not-found so resource
// existence never leaks across accounts.
var ErrNotOwned = errors.New("not owned")

// Error codes surfaced by this package.
const (
	CodeInvalidName        = "PROJECT_INVALID_NAME"
	CodeInvalidDescription = "PROJECT_INVALID_DESCRIPTION"
	CodeEmptyUpdate        = "PROJECT_EMPTY_UPDATE"
	CodeNotFound           = "PROJECT_NOT_FOUND"
	CodeForbidden          = "PROJECT_FORBIDDEN"
)
