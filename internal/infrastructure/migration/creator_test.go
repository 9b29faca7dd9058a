package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "Add Invoice Index", "index invoices by company and status")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.Equal(t, "Add Invoice Index", mf.Name)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)

	assert.Equal(t, mf.Version+"_add_invoice_index.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, mf.Version+"_add_invoice_index.down.sql", filepath.Base(mf.DownPath))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Add Invoice Index")
	assert.Contains(t, string(up), "index invoices by company and status")
	assert.Contains(t, string(up), "UP migration")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
	assert.Contains(t, string(down), "DOWN migration")
}

func TestCreateMigrationMakesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "init schema", "")
	require.NoError(t, err)

	assert.FileExists(t, mf.UpPath)
	assert.DirExists(t, dir)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Users Table", "add_users_table"},
		{"add-payment-index", "add_payment_index"},
		{"weird!!chars##here", "weirdcharshere"},
		{"  spaced  out  ", "spaced_out"},
		{"UPPER_case_MIX", "upper_case_mix"},
		{"v2 rollout", "v2_rollout"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.in), "input %q", tt.in)
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"init schema", "add clients", "add invoices"} {
		_, err := CreateMigration(dir, name, "")
		require.NoError(t, err)
	}
	// A stray non-migration file is ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 3)
	for _, m := range migrations {
		assert.NotContains(t, m, ".sql")
	}
}

func TestListMigrationsMissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
