package activity

import (
	"context"
	"encoding/json"
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

type activityRow struct {
	ID        string    `db:"id"`
	Type      string    `db:"type"`
	ActorID   string    `db:"actor_id"`
	Payload   string    `db:"payload"`
	BoardID   string    `db:"board_id"`
	ListID    string    `db:"list_id"`
	CardID    string    `db:"card_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *activityRow) toActivity() (*Activity, error) {
	a := &Activity{
		ID:        r.ID,
		Type:      Type(r.Type),
		ActorID:   r.ActorID,
		BoardID:   r.BoardID,
		ListID:    r.ListID,
		CardID:    r.CardID,
		CreatedAt: r.CreatedAt,
		Payload:   map[string]any{},
	}
	if r.Payload != "" {
		if err := json.Unmarshal([]byte(r.Payload), &a.Payload); err != nil {
			return nil, fmt.Errorf("decode payload of activity %s: %w", r.ID, err)
		}
	}
	return a, nil
}

// Provide creates the SQL activity store using separate writer and reader pools.
func Provide(writer, reader *sqlx.DB) (Store, error) {
	s := &sqlStore{db: writer, ro: reader}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("activity schema init: %w", err)
	}
	return s, nil
}

func (s *sqlStore) initSchema() error {
	ts := dialect.TimestampType(s.db.DriverName())
	schema := []string{
		`CREATE TABLE IF NOT EXISTS activities (
			id         TEXT PRIMARY KEY,
			type       TEXT NOT NULL,
			actor_id   TEXT NOT NULL,
			payload    TEXT NOT NULL DEFAULT '{}',
			board_id   TEXT NOT NULL,
			list_id    TEXT NOT NULL DEFAULT '',
			card_id    TEXT NOT NULL DEFAULT '',
			created_at ` + ts + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_board_created ON activities(board_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_actor_created ON activities(actor_id, created_at)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Append stores the activity. Redelivered activities are ignored.
func (s *sqlStore) Append(ctx context.Context, a *Activity) error {
	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return fmt.Errorf("encode payload of activity %s: %w", a.ID, err)
	}
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO activities (id, type, actor_id, payload, board_id, list_id, card_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`),
		a.ID, string(a.Type), a.ActorID, string(payload), a.BoardID, a.ListID, a.CardID, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (s *sqlStore) ListByBoard(ctx context.Context, boardID string, opts ListOptions) ([]*Activity, error) {
	return s.list(ctx, "board_id", boardID, opts)
}

func (s *sqlStore) ListByActor(ctx context.Context, actorID string, opts ListOptions) ([]*Activity, error) {
	return s.list(ctx, "actor_id", actorID, opts)
}

// list pages activities matching column = value, newest first. column is never user input.
func (s *sqlStore) list(ctx context.Context, column, value string, opts ListOptions) ([]*Activity, error) {
	opts = opts.Normalize()
	query := `SELECT id, type, actor_id, payload, board_id, list_id, card_id, created_at
		FROM activities WHERE ` + column + ` = ?`
	args := []interface{}{value}
	if !opts.Before.IsZero() {
		query += ` AND created_at < ?`
		args = append(args, opts.Before.UTC())
	}
	query += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, opts.Limit)

	var rows []activityRow
	if err := s.ro.SelectContext(ctx, &rows, s.ro.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	result := make([]*Activity, 0, len(rows))
	for i := range rows {
		a, err := rows[i].toActivity()
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}
