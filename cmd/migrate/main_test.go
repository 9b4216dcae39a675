package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptionFromFilename(t *testing.T) {
	require.Equal(t, "users and profiles", descriptionFromFilename("2026-02-20-002-users-and-profiles.sql"))
	require.Equal(t, "create migrations", descriptionFromFilename("2026-02-20-001-create-migrations.sql"))
	require.Equal(t, "no prefix", descriptionFromFilename("no-prefix.sql"))
}

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"2026-03-01-001-later.sql",
		"2026-02-20-002-second.sql",
		"2026-02-20-001-first.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "2026-02-20-001-first.sql"),
		filepath.Join(dir, "2026-02-20-002-second.sql"),
		filepath.Join(dir, "2026-03-01-001-later.sql"),
	}, files)
}

func TestMigrationFiles_EmptyDir(t *testing.T) {
	_, err := migrationFiles(t.TempDir())
	require.Error(t, err)
}

// The shipped migrations must keep their dated prefix so they sort in order.
func TestShippedMigrationsAreOrdered(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "db"))
	require.NoError(t, err)
	for _, f := range files {
		require.Regexp(t, prefixRE, filepath.Base(f))
	}
	require.Equal(t, "2026-02-20-001-create-migrations.sql", filepath.Base(files[0]))
}
