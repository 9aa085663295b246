package migration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"add charges table", "add_charges_table"},
		{"Add-Balance View", "add_balance_view"},
		{"  leading and trailing  ", "leading_and_trailing"},
		{"múltiple__separators--here", "mltiple_separators_here"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	mf, err := CreateMigration(dir, "Add refunds", now)
	require.NoError(t, err)

	assert.Equal(t, "20260301093000", mf.Version)
	assert.Equal(t, filepath.Join(dir, "20260301093000_add_refunds.up.sql"), mf.UpPath)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)

	_, err = CreateMigration(dir, "???", now)
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"20260301090200_view.up.sql",
		"20260301090200_view.down.sql",
		"20260301090000_reference.up.sql",
		"20260301090000_reference.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0o755))

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"20260301090000_reference", "20260301090200_view"}, names)

	missing, err := ListMigrations(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestRepositoryMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "..", "migrations")
	names, err := ListMigrations(dir)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		assert.FileExists(t, filepath.Join(dir, name+downSuffix))
	}
}
