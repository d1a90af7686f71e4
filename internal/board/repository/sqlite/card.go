package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/db/dialect"
)

const cardColumns = `id, list_id, board_id, title, description, position, due_date, start_date, priority, completed, archived, created_at, updated_at`

func (r *Repository) GetCard(ctx context.Context, id string) (*models.Card, error) {
	card := &models.Card{}
	err := r.ro.GetContext(ctx, card, r.ro.Rebind(`SELECT `+cardColumns+` FROM cards WHERE id = ?`), id)
	if err != nil {
		return nil, notFoundOr(err, "card", id)
	}
	if err := r.attachCardRelations(ctx, []*models.Card{card}); err != nil {
		return nil, err
	}
	return card, nil
}

func (r *Repository) ListCards(ctx context.Context, listID string) ([]*models.Card, error) {
	return r.selectCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE list_id = ? ORDER BY position`, listID)
}

func (r *Repository) ListCardsByBoard(ctx context.Context, boardID string) ([]*models.Card, error) {
	return r.selectCards(ctx, `SELECT `+cardColumns+` FROM cards WHERE board_id = ? ORDER BY list_id, position`, boardID)
}

func (r *Repository) selectCards(ctx context.Context, query string, arg string) ([]*models.Card, error) {
	var cards []*models.Card
	if err := r.ro.SelectContext(ctx, &cards, r.ro.Rebind(query), arg); err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	if err := r.attachCardRelations(ctx, cards); err != nil {
		return nil, err
	}
	return cards, nil
}

type cardLink struct {
	CardID string `db:"card_id"`
	Value  string `db:"value"`
}

// attachCardRelations loads label ids and assignees for the given cards.
func (r *Repository) attachCardRelations(ctx context.Context, cards []*models.Card) error {
	if len(cards) == 0 {
		return nil
	}
	byID := make(map[string]*models.Card, len(cards))
	ids := make([]string, 0, len(cards))
	for _, card := range cards {
		card.LabelIDs = []string{}
		card.Assignees = []string{}
		byID[card.ID] = card
		ids = append(ids, card.ID)
	}

	labels, err := r.selectLinks(ctx, `SELECT card_id, label_id AS value FROM card_labels WHERE card_id IN (?) ORDER BY label_id`, ids)
	if err != nil {
		return fmt.Errorf("load card labels: %w", err)
	}
	for _, link := range labels {
		byID[link.CardID].LabelIDs = append(byID[link.CardID].LabelIDs, link.Value)
	}

	assignees, err := r.selectLinks(ctx, `SELECT card_id, user_id AS value FROM card_assignees WHERE card_id IN (?) ORDER BY user_id`, ids)
	if err != nil {
		return fmt.Errorf("load card assignees: %w", err)
	}
	for _, link := range assignees {
		byID[link.CardID].Assignees = append(byID[link.CardID].Assignees, link.Value)
	}
	return nil
}

func (r *Repository) selectLinks(ctx context.Context, query string, ids []string) ([]cardLink, error) {
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	var links []cardLink
	if err := r.ro.SelectContext(ctx, &links, r.ro.Rebind(query), args...); err != nil {
		return nil, err
	}
	return links, nil
}

func (r *Repository) CountCards(ctx context.Context, listID string) (int, error) {
	var count int
	if err := r.ro.GetContext(ctx, &count, r.ro.Rebind(`SELECT COUNT(*) FROM cards WHERE list_id = ?`), listID); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return count, nil
}

func (r *Repository) SaveCard(ctx context.Context, card *models.Card) error {
	return r.SaveCards(ctx, []*models.Card{card})
}

// SaveCards writes the cards and their label and assignee links in one transaction.
func (r *Repository) SaveCards(ctx context.Context, cards []*models.Card) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for _, card := range cards {
			if err := saveCardTx(ctx, tx, card); err != nil {
				return fmt.Errorf("save card %s: %w", card.ID, err)
			}
		}
		return nil
	})
}

func saveCardTx(ctx context.Context, tx *sqlx.Tx, card *models.Card) error {
	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO cards (id, list_id, board_id, title, description, position, due_date, start_date, priority, completed, archived, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			list_id = excluded.list_id,
			title = excluded.title,
			description = excluded.description,
			position = excluded.position,
			due_date = excluded.due_date,
			start_date = excluded.start_date,
			priority = excluded.priority,
			completed = excluded.completed,
			archived = excluded.archived,
			updated_at = excluded.updated_at`),
		card.ID, card.ListID, card.BoardID, card.Title, card.Description, card.Position, card.DueDate,
		card.StartDate, string(card.Priority), dialect.BoolToInt(card.Completed), dialect.BoolToInt(card.Archived), card.CreatedAt, card.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM card_labels WHERE card_id = ?`), card.ID); err != nil {
		return err
	}
	for _, labelID := range card.LabelIDs {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO card_labels (card_id, label_id) VALUES (?, ?)`), card.ID, labelID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM card_assignees WHERE card_id = ?`), card.ID); err != nil {
		return err
	}
	for _, userID := range card.Assignees {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO card_assignees (card_id, user_id) VALUES (?, ?)`), card.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) DeleteCard(ctx context.Context, id string) error {
	return r.execExpectingRow(ctx, "card", id, `DELETE FROM cards WHERE id = ?`, id)
}

func (r *Repository) DeleteCardsByList(ctx context.Context, listID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cards WHERE list_id = ?`), listID); err != nil {
		return fmt.Errorf("delete cards by list: %w", err)
	}
	return nil
}

func (r *Repository) DeleteCardsByBoard(ctx context.Context, boardID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cards WHERE board_id = ?`), boardID); err != nil {
		return fmt.Errorf("delete cards by board: %w", err)
	}
	return nil
}
