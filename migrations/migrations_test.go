package migrations_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crm-voice-server/migrations"
)

// The iofs source driver refuses a migration without its counterpart, so
// every up file must ship with a down file.
func TestEmbeddedMigrationsComeInPairs(t *testing.T) {
	entries, err := migrations.Files().ReadDir(".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := make(map[string]bool, len(entries))
	for _, entry := range entries {
		names[entry.Name()] = true
	}

	for name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			assert.True(t, names[down], "missing down migration for %s", name)
		case strings.HasSuffix(name, ".down.sql"):
			up := strings.TrimSuffix(name, ".down.sql") + ".up.sql"
			assert.True(t, names[up], "missing up migration for %s", name)
		default:
			t.Errorf("unexpected file in migrations: %s", name)
		}
	}
}
