package service

import (
	"context"
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/position"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

// Card operations

// GetCard retrieves a card on a board the requester can read
func (s *Service) GetCard(ctx context.Context, cardID, requesterID string) (*models.Card, error) {
	card, err := s.loadCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireBoardRead(ctx, card.BoardID, requesterID); err != nil {
		return nil, err
	}
	return card, nil
}

// ListCards returns a list's cards ordered by position.
func (s *Service) ListCards(ctx context.Context, listID, requesterID string) ([]*models.Card, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireBoardRead(ctx, list.BoardID, requesterID); err != nil {
		return nil, err
	}
	cards, err := s.repo.ListCards(ctx, listID)
	if err != nil {
		return nil, apperrors.Internal("failed to list cards", err)
	}
	return cards, nil
}

// CreateCard appends a card to a list.
func (s *Service) CreateCard(ctx context.Context, listID string, req *CreateCardRequest, requesterID string) (*models.Card, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.ValidationError("title", "is required", req.Title)
	}

	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if _, err := s.writableBoard(ctx, list.BoardID, requesterID, "no permission to create cards on this board"); err != nil {
		return nil, err
	}
	if err := s.cardPolicy.CheckTitle(title); err != nil {
		return nil, err
	}
	if err := s.cardPolicy.CheckDescription(req.Description); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(list.BoardID)
	defer unlock()

	cards, err := s.repo.ListCards(ctx, listID)
	if err != nil {
		return nil, apperrors.Internal("failed to list cards", err)
	}
	if err := s.cardPolicy.CheckCanAdd(len(cards)); err != nil {
		s.logger.Warn("card limit reached", zap.String("list_id", listID), zap.Int("count", len(cards)))
		return nil, err
	}

	card := models.NewCard(list.BoardID, listID, title, req.Description, position.Next(cards))
	card.DueDate = req.DueDate
	if err := s.repo.SaveCard(ctx, card); err != nil {
		s.logger.Error("failed to save card", zap.String("list_id", listID), zap.Error(err))
		return nil, apperrors.Internal("failed to save card", err)
	}

	s.record(ctx, activity.New(activity.CardCreate, requesterID, list.BoardID, map[string]any{
		"card_title": card.Title,
		"list_name":  list.Title,
	}).WithList(listID).WithCard(card.ID))
	return card, nil
}

// UpdateCard changes a card's content. Unchanged values are not saved.
func (s *Service) UpdateCard(ctx context.Context, cardID string, req *UpdateCardRequest, requesterID string) (*models.Card, error) {
	var title string
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.ValidationError("title", "is required", *req.Title)
		}
	}
	var priority models.Priority
	if req.Priority != nil {
		parsed, err := models.ParsePriority(*req.Priority)
		if err != nil {
			return nil, apperrors.ValidationError("priority", "must be one of low, medium, high, urgent", *req.Priority)
		}
		priority = parsed
	}

	card, err := s.loadCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	board, err := s.writableBoard(ctx, card.BoardID, requesterID, "no permission to update this card")
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := s.cardPolicy.CheckTitle(title); err != nil {
			return nil, err
		}
	}
	if req.Description != nil {
		if err := s.cardPolicy.CheckDescription(*req.Description); err != nil {
			return nil, err
		}
	}
	if req.LabelIDs != nil {
		if err := s.checkCardLabels(ctx, board.ID, req.LabelIDs); err != nil {
			return nil, err
		}
	}
	if req.Assignees != nil {
		if err := s.checkAssignees(ctx, board, req.Assignees); err != nil {
			return nil, err
		}
	}

	changed := make([]string, 0, 6)
	if req.Title != nil && title != card.Title {
		card.UpdateTitle(title)
		changed = append(changed, "title")
	}
	if req.Description != nil && *req.Description != card.Description {
		card.UpdateDescription(*req.Description)
		changed = append(changed, "description")
	}
	if req.Completed != nil && *req.Completed != card.Completed {
		card.Completed = *req.Completed
		changed = append(changed, "completed")
	}
	switch {
	case req.ClearDueDate && card.DueDate != nil:
		card.DueDate = nil
		changed = append(changed, "due_date")
	case req.DueDate != nil && (card.DueDate == nil || !card.DueDate.Equal(*req.DueDate)):
		due := req.DueDate.UTC()
		card.DueDate = &due
		changed = append(changed, "due_date")
	}
	switch {
	case req.ClearStartDate && card.StartDate != nil:
		card.StartDate = nil
		changed = append(changed, "start_date")
	case req.StartDate != nil && (card.StartDate == nil || !card.StartDate.Equal(*req.StartDate)):
		start := req.StartDate.UTC()
		card.StartDate = &start
		changed = append(changed, "start_date")
	}
	if req.Priority != nil && priority != card.Priority {
		card.Priority = priority
		changed = append(changed, "priority")
	}
	if req.LabelIDs != nil && !sameSet(card.LabelIDs, req.LabelIDs) {
		card.LabelIDs = dedupe(req.LabelIDs)
		changed = append(changed, "labels")
	}
	if req.Assignees != nil && !sameSet(card.Assignees, req.Assignees) {
		card.Assignees = dedupe(req.Assignees)
		changed = append(changed, "assignees")
	}
	if len(changed) == 0 {
		return card, nil
	}

	if err := s.repo.SaveCard(ctx, card); err != nil {
		s.logger.Error("failed to save card", zap.String("card_id", cardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save card", err)
	}
	s.record(ctx, activity.New(activity.CardUpdate, requesterID, card.BoardID, map[string]any{
		"card_title": card.Title,
		"fields":     changed,
	}).WithList(card.ListID).WithCard(card.ID))
	return card, nil
}

func (s *Service) checkCardLabels(ctx context.Context, boardID string, labelIDs []string) error {
	var check inputCheck
	for _, id := range labelIDs {
		label, err := s.repo.GetLabel(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				check.add("label_ids", "unknown label", id)
				continue
			}
			return apperrors.Internal("failed to load label", err)
		}
		if label.BoardID != boardID {
			check.add("label_ids", "label belongs to another board", id)
		}
	}
	return check.err()
}

func (s *Service) checkAssignees(ctx context.Context, board *models.Board, userIDs []string) error {
	var check inputCheck
	for _, id := range userIDs {
		if board.IsOwner(id) {
			continue
		}
		member, err := s.repo.GetMemberByBoardAndUser(ctx, board.ID, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				check.add("assignees", "user is not a board member", id)
				continue
			}
			return apperrors.Internal("failed to load board member", err)
		}
		if !member.Active {
			check.add("assignees", "user is not a board member", id)
		}
	}
	return check.err()
}

// MoveCard moves a card within its list or into another list.
func (s *Service) MoveCard(ctx context.Context, cardID string, req *MoveCardRequest, requesterID string) (*models.Card, error) {
	card, err := s.loadCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.writableBoard(ctx, card.BoardID, requesterID, "no permission to move this card"); err != nil {
		return nil, err
	}

	targetListID := req.TargetListID
	if targetListID == "" || targetListID == card.ListID {
		return s.moveWithinList(ctx, card, req.Position, requesterID)
	}

	target, err := s.loadList(ctx, targetListID)
	if err != nil {
		return nil, err
	}
	if target.BoardID != card.BoardID {
		if _, err := s.writableBoard(ctx, target.BoardID, requesterID, "no permission to move cards to that board"); err != nil {
			return nil, err
		}
	}
	return s.moveAcrossLists(ctx, card, target, req.Position, requesterID)
}

func (s *Service) moveWithinList(ctx context.Context, card *models.Card, to int, requesterID string) (*models.Card, error) {
	unlock := s.locks.lock(card.BoardID)
	defer unlock()

	ordered, err := s.repo.ListCards(ctx, card.ListID)
	if err != nil {
		return nil, apperrors.Internal("failed to list cards", err)
	}
	idx := slices.IndexFunc(ordered, func(c *models.Card) bool { return c.ID == card.ID })
	if idx < 0 {
		return nil, apperrors.NotFound("card not found")
	}
	from := ordered[idx].Position

	moved, changed, err := position.Move(ordered, card.ID, to)
	if err != nil {
		if errors.Is(err, position.ErrInvalidPosition) {
			return nil, invalidPosition(to, len(ordered))
		}
		return nil, apperrors.Internal("failed to move card", err)
	}
	if !changed {
		return ordered[idx], nil
	}
	if err := s.repo.SaveCards(ctx, moved); err != nil {
		s.logger.Error("failed to save card order", zap.String("list_id", card.ListID), zap.Error(err))
		return nil, apperrors.Internal("failed to save card order", err)
	}

	s.record(ctx, activity.New(activity.CardMove, requesterID, card.BoardID, map[string]any{
		"card_title":    card.Title,
		"from_list":     card.ListID,
		"to_list":       card.ListID,
		"from_position": from,
		"to_position":   to,
	}).WithList(card.ListID).WithCard(card.ID))
	return moved[to], nil
}

func (s *Service) moveAcrossLists(ctx context.Context, card *models.Card, target *models.BoardList, to int, requesterID string) (*models.Card, error) {
	unlock := s.locks.lock(card.BoardID, target.BoardID)
	defer unlock()

	source, err := s.repo.ListCards(ctx, card.ListID)
	if err != nil {
		return nil, apperrors.Internal("failed to list cards", err)
	}
	idx := slices.IndexFunc(source, func(c *models.Card) bool { return c.ID == card.ID })
	if idx < 0 {
		return nil, apperrors.NotFound("card not found")
	}
	moving := source[idx]
	fromList, from := moving.ListID, moving.Position

	targetCards, err := s.repo.ListCards(ctx, target.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to list cards", err)
	}
	if err := s.cardPolicy.CheckCanAdd(len(targetCards)); err != nil {
		return nil, err
	}
	if to < 0 || to > len(targetCards) {
		return nil, invalidPosition(to, len(targetCards)+1)
	}

	remaining := slices.Delete(slices.Clone(source), idx, idx+1)
	compacted := position.CloseGap(remaining, from)

	moving.MoveToList(target.ID, to)
	moving.BoardID = target.BoardID
	if target.BoardID != card.BoardID {
		moving.LabelIDs = []string{}
		moving.Assignees = []string{}
	}
	opened, err := position.InsertAt(targetCards, moving, to)
	if err != nil {
		return nil, invalidPosition(to, len(targetCards)+1)
	}

	if err := s.repo.SaveCards(ctx, append(slices.Clone(opened), compacted...)); err != nil {
		s.logger.Error("failed to save moved card", zap.String("card_id", card.ID), zap.Error(err))
		return nil, apperrors.Internal("failed to save card order", err)
	}

	s.record(ctx, activity.New(activity.CardMove, requesterID, target.BoardID, map[string]any{
		"card_title":    moving.Title,
		"from_list":     fromList,
		"to_list":       target.ID,
		"from_position": from,
		"to_position":   to,
	}).WithList(target.ID).WithCard(moving.ID))
	return moving, nil
}

// CloneCard copies a card to the end of its list or of another list.
func (s *Service) CloneCard(ctx context.Context, cardID string, req *CloneCardRequest, requesterID string) (*models.Card, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.ValidationError("title", "is required", req.Title)
	}

	card, err := s.loadCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireBoardRead(ctx, card.BoardID, requesterID); err != nil {
		return nil, err
	}
	targetListID := req.TargetListID
	if targetListID == "" {
		targetListID = card.ListID
	}
	target, err := s.loadList(ctx, targetListID)
	if err != nil {
		return nil, err
	}
	if _, err := s.writableBoard(ctx, target.BoardID, requesterID, "no permission to create cards on this board"); err != nil {
		return nil, err
	}
	if err := s.cardPolicy.CheckTitle(title); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(target.BoardID)
	defer unlock()

	cards, err := s.repo.ListCards(ctx, target.ID)
	if err != nil {
		return nil, apperrors.Internal("failed to list cards", err)
	}
	if err := s.cardPolicy.CheckCanAdd(len(cards)); err != nil {
		return nil, err
	}

	clone := card.Clone(title, target.ID, position.Next(cards), target.BoardID == card.BoardID)
	clone.BoardID = target.BoardID
	if err := s.repo.SaveCard(ctx, clone); err != nil {
		s.logger.Error("failed to save cloned card", zap.String("card_id", cardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save card", err)
	}

	s.record(ctx, activity.New(activity.CardClone, requesterID, target.BoardID, map[string]any{
		"card_title":     clone.Title,
		"source_card_id": card.ID,
		"list_name":      target.Title,
	}).WithList(target.ID).WithCard(clone.ID))
	return clone, nil
}

// DeleteCard deletes a card and closes the position gap it leaves (best-effort).
func (s *Service) DeleteCard(ctx context.Context, cardID, requesterID string) error {
	card, err := s.loadCard(ctx, cardID)
	if err != nil {
		return err
	}
	if _, err := s.writableBoard(ctx, card.BoardID, requesterID, "no permission to delete this card"); err != nil {
		return err
	}

	unlock := s.locks.lock(card.BoardID)
	defer unlock()

	if card, err = s.loadCard(ctx, cardID); err != nil {
		return err
	}
	if err := s.repo.DeleteCard(ctx, cardID); err != nil {
		s.logger.Error("failed to delete card", zap.String("card_id", cardID), zap.Error(err))
		return apperrors.Internal("failed to delete card", err)
	}

	s.compactCards(ctx, card.ListID, card.Position)
	s.record(ctx, activity.New(activity.CardDelete, requesterID, card.BoardID, map[string]any{
		"card_title": card.Title,
	}).WithList(card.ListID).WithCard(card.ID))
	return nil
}

func sameSet(a, b []string) bool {
	x, y := dedupe(a), dedupe(b)
	return slices.Equal(x, y)
}

// dedupe returns the sorted distinct values of ids.
func dedupe(ids []string) []string {
	out := append([]string{}, ids...)
	slices.Sort(out)
	return slices.Compact(out)
}
