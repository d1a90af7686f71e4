package service

import (
	"context"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/permission"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/tracing"
)

const tracerName = "board-service"

// Board operations

// CreateBoard creates a new board owned by the requester
func (s *Service) CreateBoard(ctx context.Context, req *CreateBoardRequest, requesterID string) (*models.Board, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	var check inputCheck
	check.required("title", title)
	check.maxLength("title", title, boardTitleMaxLength)
	check.maxLength("description", req.Description, boardDescriptionMaxLength)
	if err := check.err(); err != nil {
		return nil, err
	}

	board := models.NewBoard(title, req.Description, requesterID)
	if err := s.repo.SaveBoard(ctx, board); err != nil {
		s.logger.Error("failed to create board", zap.Error(err))
		return nil, apperrors.Internal("failed to save board", err)
	}

	s.record(ctx, activity.New(activity.BoardCreate, requesterID, board.ID, map[string]any{
		"board_name": board.Title,
	}))
	s.logger.Info("board created", zap.String("board_id", board.ID), zap.String("owner_id", requesterID))
	return board, nil
}

// GetBoard retrieves a board the requester can read
func (s *Service) GetBoard(ctx context.Context, boardID, requesterID string) (*models.Board, error) {
	if err := s.RequireBoardRead(ctx, boardID, requesterID); err != nil {
		return nil, err
	}
	return s.loadBoard(ctx, boardID)
}

// ListBoards returns the boards the requester owns or is an active member of, newest first.
func (s *Service) ListBoards(ctx context.Context, requesterID string, includeArchived bool) ([]*models.Board, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}

	owned, err := s.repo.ListBoardsByOwner(ctx, requesterID)
	if err != nil {
		return nil, apperrors.Internal("failed to list boards", err)
	}
	joined, err := s.repo.ListBoardsByMember(ctx, requesterID)
	if err != nil {
		return nil, apperrors.Internal("failed to list boards", err)
	}

	seen := make(map[string]bool, len(owned)+len(joined))
	boards := make([]*models.Board, 0, len(owned)+len(joined))
	for _, board := range append(slices.Clone(owned), joined...) {
		if seen[board.ID] || (board.Archived && !includeArchived) {
			continue
		}
		seen[board.ID] = true
		boards = append(boards, board)
	}
	slices.SortFunc(boards, func(a, b *models.Board) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return boards, nil
}

// GetBoardDetail returns the board with its ordered lists and cards, active members and labels.
func (s *Service) GetBoardDetail(ctx context.Context, boardID, requesterID string) (*BoardDetail, error) {
	if err := s.RequireBoardRead(ctx, boardID, requesterID); err != nil {
		return nil, err
	}
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}

	var (
		lists   []*models.BoardList
		cards   []*models.Card
		members []*models.BoardMember
		labels  []*models.Label
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		lists, err = s.repo.ListLists(gctx, boardID)
		return err
	})
	g.Go(func() (err error) {
		cards, err = s.repo.ListCardsByBoard(gctx, boardID)
		return err
	})
	g.Go(func() (err error) {
		members, err = s.repo.ListMembers(gctx, boardID)
		return err
	})
	g.Go(func() (err error) {
		labels, err = s.repo.ListLabels(gctx, boardID)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load board detail", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to load board detail", err)
	}

	byList := make(map[string][]*models.Card, len(lists))
	for _, card := range cards {
		byList[card.ListID] = append(byList[card.ListID], card)
	}
	detail := &BoardDetail{
		Board:   board,
		Lists:   make([]*ListDetail, 0, len(lists)),
		Members: make([]*models.BoardMember, 0, len(members)),
		Labels:  labels,
	}
	for _, list := range lists {
		listCards := byList[list.ID]
		slices.SortFunc(listCards, func(a, b *models.Card) int { return a.Position - b.Position })
		if listCards == nil {
			listCards = []*models.Card{}
		}
		detail.Lists = append(detail.Lists, &ListDetail{BoardList: list, Cards: listCards})
	}
	for _, member := range members {
		if member.Active {
			detail.Members = append(detail.Members, member)
		}
	}
	return detail, nil
}

// UpdateBoard changes a board's title and description. Unchanged values are not saved.
func (s *Service) UpdateBoard(ctx context.Context, boardID string, req *UpdateBoardRequest, requesterID string) (*models.Board, error) {
	var (
		check inputCheck
		title string
	)
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		check.required("title", title)
		check.maxLength("title", title, boardTitleMaxLength)
	}
	if req.Description != nil {
		check.maxLength("description", *req.Description, boardDescriptionMaxLength)
	}
	if err := check.err(); err != nil {
		return nil, err
	}

	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, boardID, requesterID, permission.CapWrite, "no permission to update board"); err != nil {
		return nil, err
	}
	if err := s.rejectArchived(board); err != nil {
		return nil, err
	}

	renamed := req.Title != nil && title != board.Title
	described := req.Description != nil && *req.Description != board.Description
	if !renamed && !described {
		return board, nil
	}

	oldTitle := board.Title
	if renamed {
		board.UpdateTitle(title)
	}
	if described {
		board.UpdateDescription(*req.Description)
	}
	if err := s.repo.SaveBoard(ctx, board); err != nil {
		s.logger.Error("failed to update board", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save board", err)
	}

	if renamed {
		s.names.ForgetBoard(ctx, boardID)
		s.record(ctx, activity.New(activity.BoardRename, requesterID, boardID, map[string]any{
			"old_name": oldTitle,
			"new_name": board.Title,
		}))
	}
	if described {
		s.record(ctx, activity.New(activity.BoardUpdateDescription, requesterID, boardID, map[string]any{
			"board_name": board.Title,
		}))
	}
	s.logger.Info("board updated", zap.String("board_id", boardID))
	return board, nil
}

// ArchiveBoard moves a board to the archived state. An archived board is returned unchanged.
func (s *Service) ArchiveBoard(ctx context.Context, boardID, requesterID string) (*models.Board, error) {
	return s.setArchived(ctx, boardID, requesterID, true)
}

// UnarchiveBoard moves a board back to the active state. An active board is returned unchanged.
func (s *Service) UnarchiveBoard(ctx context.Context, boardID, requesterID string) (*models.Board, error) {
	return s.setArchived(ctx, boardID, requesterID, false)
}

func (s *Service) setArchived(ctx context.Context, boardID, requesterID string, archived bool) (*models.Board, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, boardID, requesterID, permission.CapArchive, "only the board owner can archive a board"); err != nil {
		return nil, err
	}
	if board.Archived == archived {
		return board, nil
	}

	listCount, cardCount := s.boardCounts(ctx, boardID)
	verb, activityType, flip := "archive", activity.BoardArchive, board.Archive
	if !archived {
		verb, activityType, flip = "unarchive", activity.BoardUnarchive, board.Unarchive
	}
	if err := flip(); err != nil {
		s.logger.Error("failed to change archive state", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to "+verb+" board", err)
	}
	if err := s.repo.SaveBoard(ctx, board); err != nil {
		s.logger.Error("failed to save board", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save board", err)
	}

	s.record(ctx, activity.New(activityType, requesterID, boardID, map[string]any{
		"board_name": board.Title,
		"list_count": listCount,
		"card_count": cardCount,
	}))
	s.logger.Info("board "+verb+"d", zap.String("board_id", boardID))
	return board, nil
}

// StarBoard marks the board as starred. A starred board is returned unchanged.
func (s *Service) StarBoard(ctx context.Context, boardID, requesterID string) (*models.Board, error) {
	return s.setStarred(ctx, boardID, requesterID, true)
}

// UnstarBoard clears the starred flag. An unstarred board is returned unchanged.
func (s *Service) UnstarBoard(ctx context.Context, boardID, requesterID string) (*models.Board, error) {
	return s.setStarred(ctx, boardID, requesterID, false)
}

func (s *Service) setStarred(ctx context.Context, boardID, requesterID string, starred bool) (*models.Board, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, boardID, requesterID, permission.CapToggleStar, "only the board owner can star a board"); err != nil {
		return nil, err
	}
	if err := s.rejectArchived(board); err != nil {
		return nil, err
	}

	if !board.SetStarred(starred) {
		return board, nil
	}
	if err := s.repo.SaveBoard(ctx, board); err != nil {
		s.logger.WithBoardID(boardID).Error("failed to save board", zap.Error(err))
		return nil, apperrors.Internal("failed to save board", err)
	}
	s.record(ctx, activity.New(activity.BoardStar, requesterID, boardID, map[string]any{
		"board_name": board.Title,
		"starred":    board.Starred,
	}))
	return board, nil
}

// cascadeStep is one ordered step of a board deletion.
type cascadeStep struct {
	name string
	run  func(ctx context.Context, boardID string) error
}

func (s *Service) deleteBoardSteps() []cascadeStep {
	return []cascadeStep{
		{name: "cards", run: s.repo.DeleteCardsByBoard},
		{name: "lists", run: s.repo.DeleteListsByBoard},
		{name: "members", run: s.repo.DeleteMembersByBoard},
		{name: "labels", run: s.repo.DeleteLabelsByBoard},
		{name: "board", run: s.repo.DeleteBoard},
	}
}

// DeleteBoard deletes a board with its cards, lists, members and labels, in that order.
// The first failing step stops the deletion; earlier steps are not undone.
func (s *Service) DeleteBoard(ctx context.Context, boardID, requesterID string) error {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return err
	}
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return err
	}
	if err := s.perms.Require(ctx, boardID, requesterID, permission.CapDelete, "only the board owner can delete a board"); err != nil {
		return err
	}

	unlock := s.locks.lock(boardID)
	defer unlock()

	listCount, cardCount := s.boardCounts(ctx, boardID)
	for _, step := range s.deleteBoardSteps() {
		stepCtx, span := tracing.StartSpan(ctx, tracerName, "board.delete."+step.name,
			attribute.String("board_id", boardID))
		err := step.run(stepCtx, boardID)
		tracing.EndSpan(span, err)
		if err != nil {
			s.logger.Error("board deletion step failed",
				zap.String("board_id", boardID), zap.String("step", step.name), zap.Error(err))
			return apperrors.Internal("failed to delete board "+step.name, err)
		}
	}

	s.names.ForgetBoard(ctx, boardID)
	s.record(ctx, activity.New(activity.BoardDelete, requesterID, boardID, map[string]any{
		"board_name": board.Title,
		"list_count": listCount,
		"card_count": cardCount,
	}))
	s.logger.Info("board deleted", zap.String("board_id", boardID))
	return nil
}
