package sqlite

import (
	"context"
	"fmt"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/db/dialect"
)

const memberColumns = `id, board_id, user_id, role, active, created_at, updated_at`

func (r *Repository) GetMember(ctx context.Context, id string) (*models.BoardMember, error) {
	member := &models.BoardMember{}
	err := r.ro.GetContext(ctx, member, r.ro.Rebind(`SELECT `+memberColumns+` FROM board_members WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOr(err, "member", id)
	}
	return member, nil
}

func (r *Repository) GetMemberByBoardAndUser(ctx context.Context, boardID, userID string) (*models.BoardMember, error) {
	member := &models.BoardMember{}
	err := r.ro.GetContext(ctx, member, r.ro.Rebind(
		`SELECT `+memberColumns+` FROM board_members WHERE board_id = ? AND user_id = ?`), boardID, userID)
	if err != nil {
		return nil, notFoundOr(err, "member", boardID+"/"+userID)
	}
	return member, nil
}

func (r *Repository) ListMembers(ctx context.Context, boardID string) ([]*models.BoardMember, error) {
	var members []*models.BoardMember
	err := r.ro.SelectContext(ctx, &members, r.ro.Rebind(
		`SELECT `+memberColumns+` FROM board_members WHERE board_id = ? ORDER BY created_at`), boardID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

func (r *Repository) CountActiveMembers(ctx context.Context, boardID string) (int, error) {
	var count int
	err := r.ro.GetContext(ctx, &count, r.ro.Rebind(
		`SELECT COUNT(*) FROM board_members WHERE board_id = ? AND active = 1`), boardID)
	if err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return count, nil
}

func (r *Repository) SaveMember(ctx context.Context, member *models.BoardMember) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO board_members (id, board_id, user_id, role, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			role = excluded.role,
			active = excluded.active,
			updated_at = excluded.updated_at`),
		member.ID, member.BoardID, member.UserID, string(member.Role),
		dialect.BoolToInt(member.Active), member.CreatedAt, member.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save member: %w", err)
	}
	return nil
}

func (r *Repository) DeleteMember(ctx context.Context, id string) error {
	return r.execExpectingRow(ctx, "member", id, `DELETE FROM board_members WHERE id = ?`, id)
}

func (r *Repository) DeleteMembersByBoard(ctx context.Context, boardID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM board_members WHERE board_id = ?`), boardID); err != nil {
		return fmt.Errorf("delete members: %w", err)
	}
	return nil
}
