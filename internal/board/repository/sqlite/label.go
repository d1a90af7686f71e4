package sqlite

import (
	"context"
	"fmt"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
)

const labelColumns = `id, board_id, name, color, created_at, updated_at`

func (r *Repository) GetLabel(ctx context.Context, id string) (*models.Label, error) {
	label := &models.Label{}
	err := r.ro.GetContext(ctx, label, r.ro.Rebind(`SELECT `+labelColumns+` FROM labels WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOr(err, "label", id)
	}
	return label, nil
}

func (r *Repository) GetLabelByName(ctx context.Context, boardID, name string) (*models.Label, error) {
	label := &models.Label{}
	err := r.ro.GetContext(ctx, label, r.ro.Rebind(
		`SELECT `+labelColumns+` FROM labels WHERE board_id = ? AND name = ?`), boardID, name)
	if err != nil {
		return nil, notFoundOr(err, "label", name)
	}
	return label, nil
}

func (r *Repository) ListLabels(ctx context.Context, boardID string) ([]*models.Label, error) {
	var labels []*models.Label
	err := r.ro.SelectContext(ctx, &labels, r.ro.Rebind(
		`SELECT `+labelColumns+` FROM labels WHERE board_id = ? ORDER BY created_at`), boardID)
	if err != nil {
		return nil, fmt.Errorf("list labels: %w", err)
	}
	return labels, nil
}

func (r *Repository) SaveLabel(ctx context.Context, label *models.Label) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO labels (id, board_id, name, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			updated_at = excluded.updated_at`),
		label.ID, label.BoardID, label.Name, label.Color, label.CreatedAt, label.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save label: %w", err)
	}
	return nil
}

// DeleteLabel removes the label; card links go with it through the foreign key.
func (r *Repository) DeleteLabel(ctx context.Context, id string) error {
	return r.execExpectingRow(ctx, "label", id, `DELETE FROM labels WHERE id = ?`, id)
}

func (r *Repository) DeleteLabelsByBoard(ctx context.Context, boardID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM labels WHERE board_id = ?`), boardID); err != nil {
		return fmt.Errorf("delete labels: %w", err)
	}
	return nil
}
