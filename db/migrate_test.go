package db

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/Dosada05/tourney/db/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoveredMigrations(t *testing.T) {
	sorted := migrations.Migrations.Sorted()
	require.NotEmpty(t, sorted)

	first := sorted[0]
	assert.Equal(t, "20251001120000", first.Name)
	assert.Equal(t, "init", first.Comment)

	for _, m := range sorted {
		assert.NotNil(t, m.Up, "migration %s has no up script", m.Name)
		assert.NotNil(t, m.Down, "migration %s has no down script", m.Name)
	}
}

func TestMigrationFilesPaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrations.FS, down)
		assert.NoError(t, err, "missing %s", down)
	}
}

func TestEmbeddedSchema(t *testing.T) {
	up, err := fs.ReadFile(migrations.FS, "20251001120000_init.up.sql")
	require.NoError(t, err)
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS tournaments")
	assert.Contains(t, string(up), "CREATE TABLE IF NOT EXISTS matches")
	assert.Contains(t, string(up), "DEFERRABLE INITIALLY DEFERRED")
	assert.NotContains(t, string(up), "DROP TABLE")

	down, err := fs.ReadFile(migrations.FS, "20251001120000_init.down.sql")
	require.NoError(t, err)
	assert.Contains(t, string(down), "DROP TABLE IF EXISTS matches")
	assert.Contains(t, string(down), "DROP TABLE IF EXISTS tournaments")
}

func TestMigratorRequiresConnection(t *testing.T) {
	_, err := NewMigrator(nil)
	assert.Error(t, err)

	_, err = Migrate(context.Background(), nil)
	assert.Error(t, err)
}
