// Package sqlite provides SQL repository implementations for the board aggregate.
// Queries are written with ? placeholders and rebound, so the same code serves sqlite3 and pgx.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	"github.com/dongwonkwak/boardly-sub001/internal/db/dialect"
)

// Repository provides SQL-backed board storage operations.
type Repository struct {
	db     *sqlx.DB // writer
	ro     *sqlx.DB // reader (read-only pool)
	ownsDB bool
}

var _ repository.Repository = (*Repository)(nil)

// NewWithDB creates a new repository with existing database connections (shared ownership).
func NewWithDB(writer, reader *sqlx.DB) (*Repository, error) {
	return newRepository(writer, reader, false)
}

func newRepository(writer, reader *sqlx.DB, ownsDB bool) (*Repository, error) {
	repo := &Repository{db: writer, ro: reader, ownsDB: ownsDB}
	if err := repo.initSchema(); err != nil {
		if ownsDB {
			if closeErr := writer.Close(); closeErr != nil {
				return nil, fmt.Errorf("failed to close database after schema error: %w", closeErr)
			}
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return repo, nil
}

// Provide creates the repository using separate writer and reader pools.
func Provide(writer, reader *sqlx.DB) (*Repository, func() error, error) {
	repo, err := NewWithDB(writer, reader)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	if !r.ownsDB {
		return nil
	}
	return r.db.Close()
}

// DB returns the underlying sql.DB instance for shared access
func (r *Repository) DB() *sql.DB {
	return r.db.DB
}

// initSchema creates the database tables if they don't exist
func (r *Repository) initSchema() error {
	ts := dialect.TimestampType(r.db.DriverName())

	statements := []string{
		`CREATE TABLE IF NOT EXISTS boards (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			archived INTEGER NOT NULL DEFAULT 0,
			starred INTEGER NOT NULL DEFAULT 0,
			owner_id TEXT NOT NULL,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_boards_owner_id ON boards(owner_id)`,
		`CREATE TABLE IF NOT EXISTS board_members (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL,
			UNIQUE(board_id, user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_board_members_user_id ON board_members(user_id)`,
		`CREATE TABLE IF NOT EXISTS board_lists (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			color TEXT NOT NULL,
			position INTEGER NOT NULL,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_board_lists_board_position ON board_lists(board_id, position)`,
		`CREATE TABLE IF NOT EXISTS cards (
			id TEXT PRIMARY KEY,
			list_id TEXT NOT NULL,
			board_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			due_date ` + ts + `,
			start_date ` + ts + `,
			priority TEXT NOT NULL DEFAULT '',
			completed INTEGER NOT NULL DEFAULT 0,
			archived INTEGER NOT NULL DEFAULT 0,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_list_position ON cards(list_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_cards_board_id ON cards(board_id)`,
		`CREATE TABLE IF NOT EXISTS labels (
			id TEXT PRIMARY KEY,
			board_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL,
			UNIQUE(board_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS card_labels (
			card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			label_id TEXT NOT NULL REFERENCES labels(id) ON DELETE CASCADE,
			PRIMARY KEY (card_id, label_id)
		)`,
		`CREATE TABLE IF NOT EXISTS card_assignees (
			card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			PRIMARY KEY (card_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS card_comments (
			id TEXT PRIMARY KEY,
			card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
			board_id TEXT NOT NULL,
			author_id TEXT NOT NULL,
			content TEXT NOT NULL,
			edited INTEGER NOT NULL DEFAULT 0,
			created_at ` + ts + ` NOT NULL,
			updated_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_card_comments_card_created ON card_comments(card_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_card_comments_author_created ON card_comments(author_id, created_at)`,
	}

	for _, stmt := range statements {
		if _, err := r.db.Exec(stmt); err != nil {
			return err
		}
	}
	return r.migrateCards(ts)
}

// migrateCards adds card columns introduced after the first schema.
func (r *Repository) migrateCards(ts string) error {
	if err := dialect.EnsureColumn(r.db, "cards", "start_date", ts); err != nil {
		return err
	}
	return dialect.EnsureColumn(r.db, "cards", "priority", "TEXT NOT NULL DEFAULT ''")
}

// withTx runs fn in a writer transaction, rolling back on error.
func (r *Repository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// execExpectingRow runs a rebound statement on the writer and reports ErrNotFound when no row changed.
func (r *Repository) execExpectingRow(ctx context.Context, what, id, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
	}
	return nil
}

func notFoundOr(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, repository.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", what, err)
}
