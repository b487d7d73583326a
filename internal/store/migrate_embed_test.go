// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ProjectDesk Contributors

package store

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err, "should read embedded migrations directory")

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}

	for _, expected := range []string{
		"000001_initial.up.sql",
		"000001_initial.down.sql",
	} {
		assert.True(t, fileNames[expected], "should contain %s", expected)
	}

	// Every up migration needs a matching down migration.
	pattern := regexp.MustCompile(`^\d{6}_\w+\.(up|down)\.sql$`)
	for _, entry := range entries {
		name := entry.Name()
		assert.True(t, pattern.MatchString(name),
			"file %s should match pattern NNNNNN_name.(up|down).sql", name)
	}

	upSuffix := regexp.MustCompile(`\.up\.sql$`)
	for name := range fileNames {
		if upSuffix.MatchString(name) {
			down := upSuffix.ReplaceAllString(name, ".down.sql")
			assert.True(t, fileNames[down], "up migration %s needs %s", name, down)
		}
	}
}

func TestAllMigrationVersions(t *testing.T) {
	versions, err := allMigrationVersions()
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, versions)
}
