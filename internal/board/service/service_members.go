package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/permission"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

// Member operations

// parseAssignableRole accepts any role except OWNER, which only board ownership confers.
func parseAssignableRole(value string) (models.Role, error) {
	role, ok := models.ParseRole(value)
	if !ok {
		return "", apperrors.ValidationError("role", "must be one of ADMIN, EDITOR, MEMBER, VIEWER", value)
	}
	if role == models.RoleOwner {
		return "", apperrors.ValidationError("role", "OWNER cannot be assigned", value)
	}
	return role, nil
}

// memberBoard runs the preamble shared by member changes: requester check, board lookup,
// archived rejection and member-management permission.
func (s *Service) memberBoard(ctx context.Context, boardID, requesterID string) (*models.Board, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.rejectArchived(board); err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, boardID, requesterID, permission.CapManageMembers, "no permission to manage board members"); err != nil {
		return nil, err
	}
	return board, nil
}

// activeMember loads userID's active membership on boardID.
func (s *Service) activeMember(ctx context.Context, boardID, userID string) (*models.BoardMember, error) {
	member, err := s.repo.GetMemberByBoardAndUser(ctx, boardID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("board member not found")
		}
		return nil, apperrors.Internal("failed to load board member", err)
	}
	if !member.Active {
		return nil, apperrors.NotFound("board member not found")
	}
	return member, nil
}

func (s *Service) memberPayload(ctx context.Context, board *models.Board, member *models.BoardMember) map[string]any {
	name := s.names.UserName(ctx, member.UserID)
	return map[string]any{
		"board_name":        board.Title,
		"member_id":         member.UserID,
		"member_first_name": name.FirstName,
		"member_last_name":  name.LastName,
		"member_role":       string(member.Role),
	}
}

// ListBoardMembers returns the active members of a board the requester can read.
func (s *Service) ListBoardMembers(ctx context.Context, boardID, requesterID string) ([]*models.BoardMember, error) {
	if err := s.RequireBoardRead(ctx, boardID, requesterID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, boardID)
	if err != nil {
		return nil, apperrors.Internal("failed to list board members", err)
	}
	active := make([]*models.BoardMember, 0, len(members))
	for _, member := range members {
		if member.Active {
			active = append(active, member)
		}
	}
	return active, nil
}

// AddBoardMember adds a user to a board. An inactive membership is reactivated with the new role.
func (s *Service) AddBoardMember(ctx context.Context, boardID string, req *AddMemberRequest, requesterID string) (*models.BoardMember, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperrors.ValidationError("user_id", "is required", req.UserID)
	}
	role, err := parseAssignableRole(req.Role)
	if err != nil {
		return nil, err
	}

	board, err := s.memberBoard(ctx, boardID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if board.IsOwner(userID) {
		return nil, apperrors.Conflict("user already owns this board")
	}

	member, err := s.repo.GetMemberByBoardAndUser(ctx, boardID, userID)
	switch {
	case err == nil && member.Active:
		s.logger.Warn("user is already a board member",
			zap.String("board_id", boardID), zap.String("user_id", userID))
		return nil, apperrors.Conflict("user is already a board member")
	case err == nil:
		member.ChangeRole(role)
		member.Activate()
	case errors.Is(err, repository.ErrNotFound):
		member = models.NewBoardMember(boardID, userID, role)
	default:
		return nil, apperrors.Internal("failed to load board member", err)
	}

	if err := s.repo.SaveMember(ctx, member); err != nil {
		s.logger.Error("failed to save board member", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save board member", err)
	}

	s.record(ctx, activity.New(activity.BoardAddMember, requesterID, boardID, s.memberPayload(ctx, board, member)))
	s.logger.Info("board member added",
		zap.String("board_id", boardID), zap.String("user_id", userID), zap.String("role", string(role)))
	return member, nil
}

// RemoveBoardMember removes a user from a board. The owner, the requester and the last
// active member cannot be removed.
func (s *Service) RemoveBoardMember(ctx context.Context, boardID, targetUserID, requesterID string) error {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return err
	}
	if strings.TrimSpace(targetUserID) == "" {
		return apperrors.ValidationError("user_id", "is required", targetUserID)
	}

	board, err := s.memberBoard(ctx, boardID, requesterID)
	if err != nil {
		return err
	}
	member, err := s.activeMember(ctx, boardID, targetUserID)
	if err != nil {
		return err
	}
	if member.Role == models.RoleOwner {
		return apperrors.PermissionDenied("the board owner cannot be removed").WithReason(ReasonOwnerImmutable)
	}
	if targetUserID == requesterID {
		return apperrors.PermissionDenied("you cannot remove yourself from the board").WithReason(ReasonSelfRemoval)
	}
	count, err := s.repo.CountActiveMembers(ctx, boardID)
	if err != nil {
		return apperrors.Internal("failed to count board members", err)
	}
	if count <= 1 {
		s.logger.Warn("refused to remove last board member",
			zap.String("board_id", boardID), zap.String("user_id", targetUserID))
		return apperrors.PermissionDenied("cannot remove the last board member").WithReason(ReasonLastMember)
	}

	if err := s.repo.DeleteMember(ctx, member.ID); err != nil {
		s.logger.Error("failed to delete board member", zap.String("board_id", boardID), zap.Error(err))
		return apperrors.Internal("failed to delete board member", err)
	}

	s.record(ctx, activity.New(activity.BoardRemoveMember, requesterID, boardID, s.memberPayload(ctx, board, member)))
	s.logger.Info("board member removed", zap.String("board_id", boardID), zap.String("user_id", targetUserID))
	return nil
}

// UpdateBoardMemberRole changes a member's role. An unchanged role is still saved and logged.
func (s *Service) UpdateBoardMemberRole(ctx context.Context, boardID, targetUserID, roleName, requesterID string) (*models.BoardMember, error) {
	if err := s.requireUser(ctx, requesterID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(targetUserID) == "" {
		return nil, apperrors.ValidationError("user_id", "is required", targetUserID)
	}
	role, err := parseAssignableRole(roleName)
	if err != nil {
		return nil, err
	}

	board, err := s.memberBoard(ctx, boardID, requesterID)
	if err != nil {
		return nil, err
	}
	member, err := s.activeMember(ctx, boardID, targetUserID)
	if err != nil {
		return nil, err
	}
	if member.Role == models.RoleOwner {
		return nil, apperrors.PermissionDenied("the board owner's role cannot be changed").WithReason(ReasonOwnerImmutable)
	}

	previous := member.Role
	member.ChangeRole(role)
	if err := s.repo.SaveMember(ctx, member); err != nil {
		s.logger.Error("failed to save board member", zap.String("board_id", boardID), zap.Error(err))
		return nil, apperrors.Internal("failed to save board member", err)
	}

	payload := s.memberPayload(ctx, board, member)
	payload["previous_role"] = string(previous)
	s.record(ctx, activity.New(activity.BoardUpdateMemberRole, requesterID, boardID, payload))
	s.logger.Info("board member role updated",
		zap.String("board_id", boardID), zap.String("user_id", targetUserID), zap.String("role", string(role)))
	return member, nil
}
