package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
)

const listColumns = `id, board_id, title, description, color, position, created_at, updated_at`

const upsertListQuery = `
	INSERT INTO board_lists (id, board_id, title, description, color, position, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		color = excluded.color,
		position = excluded.position,
		updated_at = excluded.updated_at`

func (r *Repository) GetList(ctx context.Context, id string) (*models.BoardList, error) {
	list := &models.BoardList{}
	err := r.ro.GetContext(ctx, list, r.ro.Rebind(`SELECT `+listColumns+` FROM board_lists WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOr(err, "list", id)
	}
	return list, nil
}

func (r *Repository) ListLists(ctx context.Context, boardID string) ([]*models.BoardList, error) {
	var lists []*models.BoardList
	err := r.ro.SelectContext(ctx, &lists, r.ro.Rebind(
		`SELECT `+listColumns+` FROM board_lists WHERE board_id = ? ORDER BY position`), boardID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	return lists, nil
}

func (r *Repository) CountLists(ctx context.Context, boardID string) (int, error) {
	var count int
	if err := r.ro.GetContext(ctx, &count, r.ro.Rebind(`SELECT COUNT(*) FROM board_lists WHERE board_id = ?`), boardID); err != nil {
		return 0, fmt.Errorf("count lists: %w", err)
	}
	return count, nil
}

func (r *Repository) SaveList(ctx context.Context, list *models.BoardList) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(upsertListQuery), listArgs(list)...); err != nil {
		return fmt.Errorf("save list: %w", err)
	}
	return nil
}

// SaveLists writes every list in a single transaction.
func (r *Repository) SaveLists(ctx context.Context, lists []*models.BoardList) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := tx.Rebind(upsertListQuery)
		for _, list := range lists {
			if _, err := tx.ExecContext(ctx, query, listArgs(list)...); err != nil {
				return fmt.Errorf("save list %s: %w", list.ID, err)
			}
		}
		return nil
	})
}

func (r *Repository) DeleteList(ctx context.Context, id string) error {
	return r.execExpectingRow(ctx, "list", id, `DELETE FROM board_lists WHERE id = ?`, id)
}

func (r *Repository) DeleteListsByBoard(ctx context.Context, boardID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM board_lists WHERE board_id = ?`), boardID); err != nil {
		return fmt.Errorf("delete lists: %w", err)
	}
	return nil
}

func listArgs(list *models.BoardList) []interface{} {
	return []interface{}{
		list.ID, list.BoardID, list.Title, list.Description, string(list.Color),
		list.Position, list.CreatedAt, list.UpdatedAt,
	}
}
