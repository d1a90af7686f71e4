package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

// Comment operations

func checkCommentContent(content string) error {
	var check inputCheck
	check.required("content", content)
	check.maxLength("content", strings.TrimSpace(content), commentContentMaxLength)
	return check.err()
}

// ListCardComments returns a card's comments oldest first.
func (s *Service) ListCardComments(ctx context.Context, cardID, requesterID string) ([]*models.Comment, error) {
	card, err := s.loadCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireBoardRead(ctx, card.BoardID, requesterID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListCommentsByCard(ctx, cardID)
	if err != nil {
		return nil, apperrors.Internal("failed to list comments", err)
	}
	return comments, nil
}

// GetComment retrieves a comment on a board the requester can read
func (s *Service) GetComment(ctx context.Context, commentID, requesterID string) (*models.Comment, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireBoardRead(ctx, comment.BoardID, requesterID); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListUserComments returns the requester's own comments, newest first.
func (s *Service) ListUserComments(ctx context.Context, requesterID string) ([]*models.Comment, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListCommentsByAuthor(ctx, requesterID)
	if err != nil {
		return nil, apperrors.Internal("failed to list comments", err)
	}
	return comments, nil
}

// CreateComment adds a comment to a card. Anyone who can read the board may comment.
func (s *Service) CreateComment(ctx context.Context, cardID string, req *CommentRequest, requesterID string) (*models.Comment, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	if err := checkCommentContent(req.Content); err != nil {
		return nil, err
	}

	card, err := s.loadCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	board, err := s.loadBoard(ctx, card.BoardID)
	if err != nil {
		return nil, err
	}
	if err := s.RequireBoardRead(ctx, board.ID, requesterID); err != nil {
		return nil, err
	}
	if err := s.rejectArchived(board); err != nil {
		return nil, err
	}

	comment := models.NewComment(card, requesterID, req.Content)
	if err := s.repo.SaveComment(ctx, comment); err != nil {
		s.logger.WithBoardID(board.ID).WithError(err).Error("failed to save comment", zap.String("card_id", cardID))
		return nil, apperrors.Internal("failed to save comment", err)
	}

	s.record(ctx, activity.New(activity.CardAddComment, requesterID, board.ID, map[string]any{
		"comment_id": comment.ID,
		"content":    comment.Content,
		"card_title": card.Title,
	}).WithList(card.ListID).WithCard(card.ID))
	return comment, nil
}

// authoredComment loads a comment for a change by its author on an active board.
func (s *Service) authoredComment(ctx context.Context, commentID, requesterID, verb string) (*models.Comment, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if !comment.IsAuthor(requesterID) {
		s.logger.WithUserID(requesterID).Warn("comment change by non-author",
			zap.String("comment_id", commentID), zap.String("action", verb))
		return nil, apperrors.PermissionDenied("only the author can " + verb + " a comment").
			WithReason(ReasonNotCommentAuthor)
	}
	board, err := s.loadBoard(ctx, comment.BoardID)
	if err != nil {
		return nil, err
	}
	if err := s.rejectArchived(board); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment replaces a comment's text. Only the author may edit; unchanged text is not saved.
func (s *Service) UpdateComment(ctx context.Context, commentID string, req *CommentRequest, requesterID string) (*models.Comment, error) {
	if err := checkCommentContent(req.Content); err != nil {
		return nil, err
	}
	comment, err := s.authoredComment(ctx, commentID, requesterID, "edit")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Content) == comment.Content {
		return comment, nil
	}

	comment.UpdateContent(req.Content)
	if err := s.repo.SaveComment(ctx, comment); err != nil {
		s.logger.WithBoardID(comment.BoardID).WithError(err).Error("failed to update comment", zap.String("comment_id", commentID))
		return nil, apperrors.Internal("failed to save comment", err)
	}
	return comment, nil
}

// DeleteComment removes a comment. Only the author may delete it.
func (s *Service) DeleteComment(ctx context.Context, commentID, requesterID string) error {
	comment, err := s.authoredComment(ctx, commentID, requesterID, "delete")
	if err != nil {
		return err
	}
	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		s.logger.WithBoardID(comment.BoardID).WithError(err).Error("failed to delete comment", zap.String("comment_id", commentID))
		return apperrors.Internal("failed to delete comment", err)
	}
	s.logger.WithBoardID(comment.BoardID).Info("comment deleted", zap.String("comment_id", commentID))
	return nil
}
