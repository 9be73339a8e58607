package db

import (
	"path/filepath"
	"testing"

	"claims_crm_go/config"
	"claims_crm_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeAndMigrate(t *testing.T) {
	cfg := &config.Config{
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
		Environment: "production",
	}

	conn, err := Initialize(cfg)
	require.NoError(t, err)
	defer Close(conn)

	require.NoError(t, AutoMigrate(conn))

	for _, m := range models.All() {
		assert.True(t, conn.Migrator().HasTable(m))
	}
}

func TestAutoMigrateNilConnection(t *testing.T) {
	assert.Error(t, AutoMigrate(nil))
	assert.NoError(t, Close(nil))
}

func TestTursoDSN(t *testing.T) {
	assert.Equal(t, "libsql://db.turso.io", tursoDSN("libsql://db.turso.io", ""))
	assert.Equal(t, "libsql://db.turso.io?authToken=tok", tursoDSN("libsql://db.turso.io", "tok"))
	assert.Equal(t, "libsql://db.turso.io?tls=1&authToken=tok", tursoDSN("libsql://db.turso.io?tls=1", "tok"))
	assert.Equal(t, "libsql://db.turso.io?authToken=x", tursoDSN("libsql://db.turso.io?authToken=x", "tok"))
}
