package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dongwonkwak/boardly-sub001/internal/db/dialect"
)

type sqlStore struct {
	db *sqlx.DB // writer
	ro *sqlx.DB // reader
}

var _ Store = (*sqlStore)(nil)

// Provide creates the SQL user store using separate writer and reader pools.
func Provide(writer, reader *sqlx.DB) (Store, error) {
	s := &sqlStore{db: writer, ro: reader}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("users schema init: %w", err)
	}
	return s, nil
}

func (s *sqlStore) initSchema() error {
	ts := dialect.TimestampType(s.db.DriverName())
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL DEFAULT '',
		last_name  TEXT NOT NULL DEFAULT '',
		created_at ` + ts + ` NOT NULL,
		updated_at ` + ts + ` NOT NULL
	)`)
	return err
}

func (s *sqlStore) GetUser(ctx context.Context, id string) (*User, error) {
	u := &User{}
	err := s.ro.GetContext(ctx, u, s.ro.Rebind(`
		SELECT id, email, first_name, last_name, created_at, updated_at FROM users WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *sqlStore) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	err := s.ro.SelectContext(ctx, &users, `
		SELECT id, email, first_name, last_name, created_at, updated_at FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *sqlStore) SaveUser(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO users (id, email, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = excluded.updated_at`),
		u.ID, u.Email, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}
