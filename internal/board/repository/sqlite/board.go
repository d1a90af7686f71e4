package sqlite

import (
	"context"
	"fmt"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/db/dialect"
)

const boardColumns = `id, title, description, archived, starred, owner_id, created_at, updated_at`

// GetBoard retrieves a board by ID
func (r *Repository) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	board := &models.Board{}
	err := r.ro.GetContext(ctx, board, r.ro.Rebind(`SELECT `+boardColumns+` FROM boards WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOr(err, "board", id)
	}
	return board, nil
}

// ListBoardsByOwner returns the boards owned by ownerID, newest first
func (r *Repository) ListBoardsByOwner(ctx context.Context, ownerID string) ([]*models.Board, error) {
	var boards []*models.Board
	err := r.ro.SelectContext(ctx, &boards, r.ro.Rebind(
		`SELECT `+boardColumns+` FROM boards WHERE owner_id = ? ORDER BY created_at DESC`), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list boards by owner: %w", err)
	}
	return boards, nil
}

// ListBoardsByMember returns the boards where userID is an active member, newest first
func (r *Repository) ListBoardsByMember(ctx context.Context, userID string) ([]*models.Board, error) {
	var boards []*models.Board
	err := r.ro.SelectContext(ctx, &boards, r.ro.Rebind(`
		SELECT b.id, b.title, b.description, b.archived, b.starred, b.owner_id, b.created_at, b.updated_at
		FROM boards b
		INNER JOIN board_members m ON m.board_id = b.id
		WHERE m.user_id = ? AND m.active = 1
		ORDER BY b.created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list boards by member: %w", err)
	}
	return boards, nil
}

// SaveBoard inserts or updates a board
func (r *Repository) SaveBoard(ctx context.Context, board *models.Board) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO boards (id, title, description, archived, starred, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			archived = excluded.archived,
			starred = excluded.starred,
			updated_at = excluded.updated_at`),
		board.ID, board.Title, board.Description,
		dialect.BoolToInt(board.Archived), dialect.BoolToInt(board.Starred),
		board.OwnerID, board.CreatedAt, board.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// DeleteBoard deletes a board by ID
func (r *Repository) DeleteBoard(ctx context.Context, id string) error {
	return r.execExpectingRow(ctx, "board", id, `DELETE FROM boards WHERE id = ?`, id)
}
