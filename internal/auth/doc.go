// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

// Package auth provides account credentials and session lifecycle management.
//
// It hashes passwords with argon2id, enforces email uniqueness through the
// storage layer, and issues opaque session tokens whose SHA-256 hashes are
// the only form ever persisted.
package auth
