package dialect

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres(PGX))
	assert.False(t, IsPostgres(SQLite3))
}

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, BoolToInt(true))
	assert.Equal(t, 0, BoolToInt(false))
}

func TestTimestampType(t *testing.T) {
	assert.Equal(t, "TIMESTAMPTZ", TimestampType(PGX))
	assert.Equal(t, "TIMESTAMP", TimestampType(SQLite3))
}

func TestEnsureColumn_SQLite(t *testing.T) {
	db, err := sqlx.Open(SQLite3, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE cards (id TEXT PRIMARY KEY)`)
	require.NoError(t, err)

	require.NoError(t, EnsureColumn(db, "cards", "priority", "TEXT NOT NULL DEFAULT ''"))
	require.NoError(t, EnsureColumn(db, "cards", "priority", "TEXT NOT NULL DEFAULT ''"))

	_, err = db.Exec(`INSERT INTO cards (id, priority) VALUES ('c1', 'high')`)
	assert.NoError(t, err)
}
