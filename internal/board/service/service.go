package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/permission"
	"github.com/dongwonkwak/boardly-sub001/internal/board/policy"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/user"
	"github.com/dongwonkwak/boardly-sub001/internal/user/namecache"
)

// Detail codes carried in AppError.Reason by this package.
const (
	ReasonBoardArchived    = "BOARD_ARCHIVED"
	ReasonInvalidPosition  = "INVALID_POSITION"
	ReasonLastMember       = "LAST_MEMBER"
	ReasonOwnerImmutable   = "OWNER_IMMUTABLE"
	ReasonSelfRemoval      = "SELF_REMOVAL"
	ReasonListDeleteDenied = "LIST_DELETE_DENIED"
	ReasonNotCommentAuthor = "NOT_COMMENT_AUTHOR"
)

// UserDirectory resolves requesters and member targets.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// NameLookup resolves the display names written into activity payloads.
type NameLookup interface {
	UserName(ctx context.Context, userID string) namecache.UserName
	BoardTitle(ctx context.Context, boardID string) string
	ForgetBoard(ctx context.Context, boardID string)
}

// Options holds the limits applied to lists and cards.
type Options struct {
	ListPolicy policy.ListPolicy
	CardPolicy policy.CardPolicy
}

// DefaultOptions returns the stock policies.
func DefaultOptions() Options {
	return Options{ListPolicy: policy.DefaultListPolicy(), CardPolicy: policy.DefaultCardPolicy()}
}

// Service provides board, member, list, card and label business logic
type Service struct {
	repo       repository.Repository
	perms      *permission.Resolver
	users      UserDirectory
	names      NameLookup
	activity   activity.Logger
	feed       ActivityFeed
	listPolicy policy.ListPolicy
	cardPolicy policy.CardPolicy
	locks      *boardLocks
	logger     *logger.Logger
}

// NewService creates a new board service
func NewService(
	repo repository.Repository,
	users UserDirectory,
	names NameLookup,
	activityLog activity.Logger,
	log *logger.Logger,
	opts Options,
) *Service {
	return &Service{
		repo:       repo,
		perms:      permission.NewResolver(repo, repo, log),
		users:      users,
		names:      names,
		activity:   activityLog,
		listPolicy: opts.ListPolicy,
		cardPolicy: opts.CardPolicy,
		locks:      newBoardLocks(),
		logger:     log.WithFields(zap.String("component", "board-service")),
	}
}

// Permissions exposes the resolver used by this service.
func (s *Service) Permissions() *permission.Resolver {
	return s.perms
}

// RequireBoardRead fails unless userID can read boardID.
func (s *Service) RequireBoardRead(ctx context.Context, boardID, userID string) error {
	return s.perms.Require(ctx, boardID, userID, permission.CapRead, "no permission to view board")
}

func (s *Service) requireUser(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.Unauthorized("requester is required")
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.logger.WithUserID(userID).Warn("user not found")
			return apperrors.NotFound("user not found")
		}
		return apperrors.Internal("failed to load user", err)
	}
	return nil
}

// load fetches one entity and maps a repository miss to NotFound("<what> not found").
func load[T any](ctx context.Context, what, id string, get func(context.Context, string) (T, error)) (T, error) {
	entity, err := get(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, repository.ErrNotFound) {
			return zero, apperrors.NotFound(what + " not found")
		}
		return zero, apperrors.Internal("failed to load "+what, err)
	}
	return entity, nil
}

func (s *Service) loadBoard(ctx context.Context, id string) (*models.Board, error) {
	return load(ctx, "board", id, s.repo.GetBoard)
}

func (s *Service) loadList(ctx context.Context, id string) (*models.BoardList, error) {
	return load(ctx, "list", id, s.repo.GetList)
}

func (s *Service) loadCard(ctx context.Context, id string) (*models.Card, error) {
	return load(ctx, "card", id, s.repo.GetCard)
}

func (s *Service) loadComment(ctx context.Context, id string) (*models.Comment, error) {
	return load(ctx, "comment", id, s.repo.GetComment)
}

func (s *Service) loadLabel(ctx context.Context, id string) (*models.Label, error) {
	return load(ctx, "label", id, s.repo.GetLabel)
}

func (s *Service) rejectArchived(board *models.Board) error {
	if board.Archived {
		s.logger.WithBoardID(board.ID).Warn("rejected change on archived board")
		return apperrors.Conflict("board is archived").WithReason(ReasonBoardArchived)
	}
	return nil
}

// writableBoard loads the board, checks write permission and rejects archived boards.
func (s *Service) writableBoard(ctx context.Context, boardID, requesterID, deniedMessage string) (*models.Board, error) {
	board, err := s.loadBoard(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if err := s.perms.Require(ctx, boardID, requesterID, permission.CapWrite, deniedMessage); err != nil {
		return nil, err
	}
	if err := s.rejectArchived(board); err != nil {
		return nil, err
	}
	return board, nil
}

// actorNames returns the payload fields naming the acting user.
func (s *Service) actorNames(ctx context.Context, userID string) map[string]any {
	name := s.names.UserName(ctx, userID)
	return map[string]any{
		"actor_first_name": name.FirstName,
		"actor_last_name":  name.LastName,
	}
}
