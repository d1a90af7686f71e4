// Package dialect holds the handful of SQL differences between the sqlite3 and pgx drivers.
// Queries themselves are written with ? placeholders and rebound by sqlx.
package dialect

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Driver names as registered with database/sql and passed to sqlx.
const (
	SQLite3 = "sqlite3"
	PGX     = "pgx"
)

func IsPostgres(driver string) bool {
	return driver == PGX
}

// BoolToInt encodes flags for the INTEGER columns both backends use for booleans.
func BoolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

// TimestampType is the column type for created_at and updated_at.
func TimestampType(driver string) string {
	if IsPostgres(driver) {
		return "TIMESTAMPTZ"
	}
	return "TIMESTAMP"
}

// EnsureColumn adds column to table when an older schema lacks it.
func EnsureColumn(db *sqlx.DB, table, column, definition string) error {
	if IsPostgres(db.DriverName()) {
		_, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", table, column, definition))
		return err
	}
	var names []string
	if err := db.Select(&names, fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", table)); err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	for _, name := range names {
		if name == column {
			return nil
		}
	}
	_, err := db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
