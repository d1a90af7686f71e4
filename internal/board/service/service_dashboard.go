package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

const dashboardActivityLimit = 20

// ActivityFeed reads back what a user has done.
type ActivityFeed interface {
	ListByActor(ctx context.Context, actorID string, opts activity.ListOptions) ([]*activity.Activity, error)
}

// SetActivityFeed sets the feed used for the dashboard's recent activity.
// Without one the dashboard reports no recent activity.
func (s *Service) SetActivityFeed(feed ActivityFeed) {
	s.feed = feed
}

// BoardSummary is one active board as shown on the dashboard.
type BoardSummary struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	ListCount   int         `json:"list_count"`
	CardCount   int         `json:"card_count"`
	Starred     bool        `json:"starred"`
	Role        models.Role `json:"role"`
}

// DashboardStatistics totals the requester's boards.
type DashboardStatistics struct {
	TotalBoards    int `json:"total_boards"`
	TotalCards     int `json:"total_cards"`
	StarredBoards  int `json:"starred_boards"`
	ArchivedBoards int `json:"archived_boards"`
}

// Dashboard is the requester's overview.
type Dashboard struct {
	Boards         []*BoardSummary      `json:"boards"`
	RecentActivity []*activity.Activity `json:"recent_activity"`
	Statistics     DashboardStatistics  `json:"statistics"`
}

// GetDashboard summarizes the requester's active boards with totals and their latest activity.
func (s *Service) GetDashboard(ctx context.Context, requesterID string) (*Dashboard, error) {
	boards, err := s.ListBoards(ctx, requesterID, true)
	if err != nil {
		return nil, err
	}

	dash := &Dashboard{
		Boards:         make([]*BoardSummary, 0, len(boards)),
		RecentActivity: []*activity.Activity{},
	}
	for _, board := range boards {
		if board.Archived {
			dash.Statistics.ArchivedBoards++
			continue
		}
		dash.Boards = append(dash.Boards, &BoardSummary{
			ID:          board.ID,
			Title:       board.Title,
			Description: board.Description,
			CreatedAt:   board.CreatedAt,
			Starred:     board.Starred,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, summary := range dash.Boards {
		summary := summary
		owned := boardOwnedBy(boards, summary.ID, requesterID)
		g.Go(func() error {
			return s.fillSummary(gctx, summary, requesterID, owned)
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.WithUserID(requesterID).WithError(err).Error("failed to build dashboard")
		return nil, apperrors.Internal("failed to load dashboard", err)
	}

	for _, summary := range dash.Boards {
		dash.Statistics.TotalBoards++
		dash.Statistics.TotalCards += summary.CardCount
		if summary.Starred {
			dash.Statistics.StarredBoards++
		}
	}

	if s.feed != nil {
		recent, err := s.feed.ListByActor(ctx, requesterID, activity.ListOptions{Limit: dashboardActivityLimit})
		if err != nil {
			s.logger.WithUserID(requesterID).Warn("recent activity unavailable", zap.Error(err))
		} else if recent != nil {
			dash.RecentActivity = recent
		}
	}
	return dash, nil
}

func boardOwnedBy(boards []*models.Board, boardID, userID string) bool {
	for _, b := range boards {
		if b.ID == boardID {
			return b.OwnerID == userID
		}
	}
	return false
}

func (s *Service) fillSummary(ctx context.Context, summary *BoardSummary, userID string, owned bool) error {
	lists, err := s.repo.CountLists(ctx, summary.ID)
	if err != nil {
		return err
	}
	cards, err := s.repo.ListCardsByBoard(ctx, summary.ID)
	if err != nil {
		return err
	}
	summary.ListCount = lists
	summary.CardCount = len(cards)

	if owned {
		summary.Role = models.RoleOwner
		return nil
	}
	member, err := s.repo.GetMemberByBoardAndUser(ctx, summary.ID, userID)
	if err != nil {
		return err
	}
	summary.Role = member.Role
	return nil
}
