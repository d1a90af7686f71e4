// Package permission resolves a requester's standing on a board and answers capability questions.
package permission

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

// Capability is an action a requester may take on a board.
type Capability string

const (
	CapRead          Capability = "read"
	CapWrite         Capability = "write"
	CapAdmin         Capability = "admin"
	CapManageMembers Capability = "manage_members"
	CapArchive       Capability = "archive"
	CapToggleStar    Capability = "toggle_star"
	CapDelete        Capability = "delete"
)

// roleCapabilities is the capability table for member roles. Archive, star and delete
// belong to the owner grant alone.
var roleCapabilities = map[models.Role]map[Capability]bool{
	models.RoleOwner: {
		CapRead: true, CapWrite: true, CapAdmin: true, CapManageMembers: true,
		CapArchive: true, CapToggleStar: true, CapDelete: true,
	},
	models.RoleAdmin:  {CapRead: true, CapWrite: true, CapAdmin: true, CapManageMembers: true},
	models.RoleEditor: {CapRead: true, CapWrite: true},
	models.RoleMember: {CapRead: true},
	models.RoleViewer: {CapRead: true},
}

// Grant is the standing a requester holds on a board. The board owner holds an owner
// grant with no role; anyone else holds the role of their active membership.
type Grant struct {
	Owner bool
	Role  models.Role
}

// OwnerGrant is the grant of a board's owner.
var OwnerGrant = Grant{Owner: true}

// Can reports whether the grant includes the capability.
func (g Grant) Can(c Capability) bool {
	if g.Owner {
		return true
	}
	return roleCapabilities[g.Role][c]
}

// BoardGetter loads boards.
type BoardGetter interface {
	GetBoard(ctx context.Context, id string) (*models.Board, error)
}

// MemberGetter loads a user's membership on a board.
type MemberGetter interface {
	GetMemberByBoardAndUser(ctx context.Context, boardID, userID string) (*models.BoardMember, error)
}

// Resolver derives grants from board ownership and membership rows.
type Resolver struct {
	boards  BoardGetter
	members MemberGetter
	logger  *logger.Logger
}

// NewResolver creates a permission resolver.
func NewResolver(boards BoardGetter, members MemberGetter, log *logger.Logger) *Resolver {
	return &Resolver{
		boards:  boards,
		members: members,
		logger:  log.WithFields(zap.String("component", "board-permission")),
	}
}

// GetUserBoardRole resolves userID's grant on boardID. It fails with NotFound when the
// board does not exist and PermissionDenied when the user has no active membership.
func (r *Resolver) GetUserBoardRole(ctx context.Context, boardID, userID string) (Grant, error) {
	board, err := r.boards.GetBoard(ctx, boardID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("board not found", zap.String("board_id", boardID))
			return Grant{}, apperrors.NotFound("board not found")
		}
		return Grant{}, apperrors.Internal("failed to load board", err)
	}

	if board.IsOwner(userID) {
		return OwnerGrant, nil
	}

	member, err := r.members.GetMemberByBoardAndUser(ctx, boardID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			r.logger.Warn("user is not a board member",
				zap.String("board_id", boardID), zap.String("user_id", userID))
			return Grant{}, apperrors.PermissionDenied("access denied")
		}
		return Grant{}, apperrors.Internal("failed to load board member", err)
	}
	if !member.Active {
		r.logger.Warn("board member is inactive",
			zap.String("board_id", boardID), zap.String("user_id", userID))
		return Grant{}, apperrors.PermissionDenied("member inactive")
	}
	return Grant{Role: member.Role}, nil
}

// Can resolves the grant afresh and checks one capability.
func (r *Resolver) Can(ctx context.Context, boardID, userID string, c Capability) (bool, error) {
	grant, err := r.GetUserBoardRole(ctx, boardID, userID)
	if err != nil {
		return false, err
	}
	return grant.Can(c), nil
}

func (r *Resolver) CanRead(ctx context.Context, boardID, userID string) (bool, error) {
	return r.Can(ctx, boardID, userID, CapRead)
}

func (r *Resolver) CanWrite(ctx context.Context, boardID, userID string) (bool, error) {
	return r.Can(ctx, boardID, userID, CapWrite)
}

func (r *Resolver) CanAdmin(ctx context.Context, boardID, userID string) (bool, error) {
	return r.Can(ctx, boardID, userID, CapAdmin)
}

func (r *Resolver) CanManageMembers(ctx context.Context, boardID, userID string) (bool, error) {
	return r.Can(ctx, boardID, userID, CapManageMembers)
}

func (r *Resolver) CanArchive(ctx context.Context, boardID, userID string) (bool, error) {
	return r.Can(ctx, boardID, userID, CapArchive)
}

func (r *Resolver) CanToggleStar(ctx context.Context, boardID, userID string) (bool, error) {
	return r.Can(ctx, boardID, userID, CapToggleStar)
}

func (r *Resolver) CanDelete(ctx context.Context, boardID, userID string) (bool, error) {
	return r.Can(ctx, boardID, userID, CapDelete)
}

// Require fails with PermissionDenied(message) unless userID holds the capability.
func (r *Resolver) Require(ctx context.Context, boardID, userID string, c Capability, message string) error {
	ok, err := r.Can(ctx, boardID, userID, c)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Warn("capability denied",
			zap.String("board_id", boardID),
			zap.String("user_id", userID),
			zap.String("capability", string(c)))
		return apperrors.PermissionDenied(message)
	}
	return nil
}
