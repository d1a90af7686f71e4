package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/permission"
	"github.com/dongwonkwak/boardly-sub001/internal/board/position"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

// List operations

func invalidPosition(requested, count int) error {
	err := apperrors.Conflict("invalid position").WithReason(ReasonInvalidPosition)
	err.Context = map[string]any{"position": requested, "count": count}
	return err
}

// GetBoardLists returns a board's lists ordered by position, with the list-count grade.
func (s *Service) GetBoardLists(ctx context.Context, boardID, requesterID string) (*BoardLists, error) {
	if err := s.RequireBoardRead(ctx, boardID, requesterID); err != nil {
		return nil, err
	}
	lists, err := s.repo.ListLists(ctx, boardID)
	if err != nil {
		return nil, apperrors.Internal("failed to list board lists", err)
	}
	status := s.listPolicy.Status(len(lists))
	return &BoardLists{
		Lists:                lists,
		Status:               status,
		AvailableSlots:       s.listPolicy.AvailableSlots(len(lists)),
		RequiresNotification: status.RequiresNotification(),
	}, nil
}

// CreateBoardList appends a list to a board.
func (s *Service) CreateBoardList(ctx context.Context, boardID string, req *CreateListRequest, requesterID string) (*models.BoardList, error) {
	title := strings.TrimSpace(req.Title)
	var check inputCheck
	check.required("title", title)
	check.maxLength("description", req.Description, listDescriptionMaxLength)
	color, ok := models.ParseListColor(req.Color)
	if !ok {
		check.add("color", "is not an allowed list color", req.Color)
	}
	if err := check.err(); err != nil {
		return nil, err
	}

	board, err := s.writableBoard(ctx, boardID, requesterID, "no permission to create lists on this board")
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(boardID)
	defer unlock()

	lists, err := s.repo.ListLists(ctx, boardID)
	if err != nil {
		return nil, apperrors.Internal("failed to list board lists", err)
	}
	if err := s.listPolicy.CheckCanCreate(len(lists)); err != nil {
		s.logger.Warn("list limit reached", zap.String("board_id", boardID), zap.Int("count", len(lists)))
		return nil, err
	}
	if err := s.listPolicy.CheckTitle(title); err != nil {
		return nil, err
	}

	list := models.NewBoardList(boardID, title, req.Description, color, position.Next(lists))
	if err := s.repo.SaveList(ctx, list); err != nil {
		s.logger.Error("failed to save list", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save list", err)
	}

	s.record(ctx, activity.New(activity.ListCreate, requesterID, boardID, map[string]any{
		"list_name":  list.Title,
		"board_name": board.Title,
	}).WithList(list.ID))
	s.logger.Info("list created",
		zap.String("board_id", boardID), zap.String("list_id", list.ID), zap.Int("position", list.Position))
	return list, nil
}

// UpdateBoardList changes a list's title, description and color. Unchanged values are not saved.
func (s *Service) UpdateBoardList(ctx context.Context, listID string, req *UpdateListRequest, requesterID string) (*models.BoardList, error) {
	var (
		check inputCheck
		title string
		color models.ListColor
	)
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		check.required("title", title)
	}
	if req.Description != nil {
		check.maxLength("description", *req.Description, listDescriptionMaxLength)
	}
	if req.Color != nil {
		var ok bool
		if color, ok = models.ParseListColor(*req.Color); !ok {
			check.add("color", "is not an allowed list color", *req.Color)
		}
	}
	if err := check.err(); err != nil {
		return nil, err
	}

	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if _, err := s.writableBoard(ctx, list.BoardID, requesterID, "no permission to update this list"); err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := s.listPolicy.CheckTitle(title); err != nil {
			return nil, err
		}
	}

	renamed := req.Title != nil && title != list.Title
	described := req.Description != nil && *req.Description != list.Description
	recolored := req.Color != nil && color != list.Color
	if !renamed && !described && !recolored {
		return list, nil
	}

	oldTitle := list.Title
	if renamed {
		list.UpdateTitle(title)
	}
	if described {
		list.UpdateDescription(*req.Description)
	}
	if recolored {
		list.UpdateColor(color)
	}
	if err := s.repo.SaveList(ctx, list); err != nil {
		s.logger.Error("failed to save list", zap.String("list_id", listID), zap.Error(err))
		return nil, apperrors.Internal("failed to save list", err)
	}

	if renamed {
		s.record(ctx, activity.New(activity.ListRename, requesterID, list.BoardID, map[string]any{
			"old_name": oldTitle,
			"new_name": list.Title,
		}).WithList(list.ID))
	}
	return list, nil
}

// DeleteBoardList deletes a list and its cards, then closes the position gap it leaves.
// Closing the gap is best-effort and never fails the deletion.
func (s *Service) DeleteBoardList(ctx context.Context, listID, requesterID string) error {
	if strings.TrimSpace(listID) == "" {
		return apperrors.ValidationError("list_id", "is required", listID)
	}
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return err
	}
	board, err := s.loadBoard(ctx, list.BoardID)
	if err != nil {
		return err
	}
	ok, err := s.perms.Can(ctx, board.ID, requesterID, permission.CapWrite)
	if err != nil {
		return err
	}
	if !ok {
		s.logger.Warn("list deletion denied", zap.String("list_id", listID), zap.String("user_id", requesterID))
		return apperrors.PermissionDenied("no permission to delete this list").WithReason(ReasonListDeleteDenied)
	}
	if err := s.rejectArchived(board); err != nil {
		return err
	}

	unlock := s.locks.lock(board.ID)
	defer unlock()

	// Re-read under the lock: a concurrent deletion may have shifted this list.
	if list, err = s.loadList(ctx, listID); err != nil {
		return err
	}
	cardCount, err := s.repo.CountCards(ctx, listID)
	if err != nil {
		return apperrors.Internal("failed to count cards", err)
	}
	if err := s.repo.DeleteCardsByList(ctx, listID); err != nil {
		s.logger.Error("failed to delete list cards", zap.String("list_id", listID), zap.Error(err))
		return apperrors.Internal("failed to delete list cards", err)
	}
	if err := s.repo.DeleteList(ctx, listID); err != nil {
		s.logger.Error("failed to delete list", zap.String("list_id", listID), zap.Error(err))
		return apperrors.Internal("failed to delete list", err)
	}

	s.compactLists(ctx, board.ID, list.Position)
	s.record(ctx, activity.New(activity.ListDelete, requesterID, board.ID, map[string]any{
		"list_name":  list.Title,
		"board_name": board.Title,
		"card_count": cardCount,
	}).WithList(list.ID))
	s.logger.Info("list deleted", zap.String("board_id", board.ID), zap.String("list_id", listID))
	return nil
}

// UpdateBoardListPosition moves a list to newPosition and returns the board's lists in order.
// Moving a list to its current position writes nothing.
func (s *Service) UpdateBoardListPosition(ctx context.Context, listID string, newPosition int, requesterID string) ([]*models.BoardList, error) {
	list, err := s.loadList(ctx, listID)
	if err != nil {
		return nil, err
	}
	if _, err := s.writableBoard(ctx, list.BoardID, requesterID, "no permission to move this list"); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(list.BoardID)
	defer unlock()

	ordered, err := s.repo.ListLists(ctx, list.BoardID)
	if err != nil {
		return nil, apperrors.Internal("failed to list board lists", err)
	}
	from := list.Position
	for _, l := range ordered {
		if l.ID == listID {
			from = l.Position
		}
	}

	moved, changed, err := position.Move(ordered, listID, newPosition)
	switch {
	case errors.Is(err, position.ErrInvalidPosition):
		s.logger.Warn("invalid list position",
			zap.String("list_id", listID), zap.Int("position", newPosition), zap.Int("count", len(ordered)))
		return nil, invalidPosition(newPosition, len(ordered))
	case errors.Is(err, position.ErrNotInSequence):
		return nil, apperrors.NotFound("list not found")
	case err != nil:
		return nil, apperrors.Internal("failed to move list", err)
	}
	if !changed {
		return ordered, nil
	}

	if err := s.repo.SaveLists(ctx, moved); err != nil {
		s.logger.Error("failed to save list order", zap.String("board_id", list.BoardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save list order", err)
	}

	s.record(ctx, activity.New(activity.ListMove, requesterID, list.BoardID, map[string]any{
		"list_name":     list.Title,
		"from_position": from,
		"to_position":   newPosition,
	}).WithList(listID))
	return moved, nil
}
