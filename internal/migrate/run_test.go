package migrate

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	raw, err := migrationsFS.ReadFile("migrations/0001_device_storage.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "CREATE TABLE IF NOT EXISTS device_storage"))
}

func TestRunWithLogger_RequiresDB(t *testing.T) {
	require.Error(t, RunWithLogger(context.Background(), nil, nil))
}
