package sqlite

import (
	"context"
	"fmt"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/db/dialect"
)

const commentColumns = `id, card_id, board_id, author_id, content, edited, created_at, updated_at`

func (r *Repository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	comment := &models.Comment{}
	err := r.ro.GetContext(ctx, comment, r.ro.Rebind(`SELECT `+commentColumns+` FROM card_comments WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOr(err, "comment", id)
	}
	return comment, nil
}

func (r *Repository) ListCommentsByCard(ctx context.Context, cardID string) ([]*models.Comment, error) {
	return r.selectComments(ctx, `SELECT `+commentColumns+` FROM card_comments WHERE card_id = ? ORDER BY created_at, id`, cardID)
}

func (r *Repository) ListCommentsByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	return r.selectComments(ctx, `SELECT `+commentColumns+` FROM card_comments WHERE author_id = ? ORDER BY created_at DESC, id`, authorID)
}

func (r *Repository) selectComments(ctx context.Context, query, arg string) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if err := r.ro.SelectContext(ctx, &comments, r.ro.Rebind(query), arg); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (r *Repository) SaveComment(ctx context.Context, comment *models.Comment) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO card_comments (id, card_id, board_id, author_id, content, edited, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			edited = excluded.edited,
			updated_at = excluded.updated_at`),
		comment.ID, comment.CardID, comment.BoardID, comment.AuthorID, comment.Content,
		dialect.BoolToInt(comment.Edited), comment.CreatedAt, comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, id string) error {
	return r.execExpectingRow(ctx, "comment", id, `DELETE FROM card_comments WHERE id = ?`, id)
}
