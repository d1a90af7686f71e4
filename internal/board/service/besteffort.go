package service

import (
	"context"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/position"
)

// bestEffort runs a follow-up step whose failure never fails the calling operation.
// Errors and panics are logged at warn level and dropped.
func (s *Service) bestEffort(ctx context.Context, step string, fn func(context.Context) error, fields ...zap.Field) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("best-effort step panicked",
				append(fields, zap.String("step", step), zap.String("panic", fmt.Sprint(r)))...)
		}
	}()
	if err := fn(ctx); err != nil {
		s.logger.Warn("best-effort step failed",
			append(fields, zap.String("step", step), zap.Error(err))...)
	}
}

// record logs an activity with the actor's names merged into the payload.
func (s *Service) record(ctx context.Context, a *activity.Activity) {
	s.bestEffort(ctx, "activity", func(ctx context.Context) error {
		payload := s.actorNames(ctx, a.ActorID)
		maps.Copy(payload, a.Payload)
		a.Payload = payload
		return s.activity.Log(ctx, a)
	}, zap.String("board_id", a.BoardID), zap.String("activity_type", string(a.Type)))
}

// compactLists closes the gap left by a list removed at removed.
func (s *Service) compactLists(ctx context.Context, boardID string, removed int) {
	s.bestEffort(ctx, "compact-lists", func(ctx context.Context) error {
		lists, err := s.repo.ListLists(ctx, boardID)
		if err != nil {
			return err
		}
		changed := position.CloseGap(lists, removed)
		if len(changed) == 0 {
			return nil
		}
		return s.repo.SaveLists(ctx, changed)
	}, zap.String("board_id", boardID))
}

// compactCards closes the gap left by a card removed at removed.
func (s *Service) compactCards(ctx context.Context, listID string, removed int) {
	s.bestEffort(ctx, "compact-cards", func(ctx context.Context) error {
		cards, err := s.repo.ListCards(ctx, listID)
		if err != nil {
			return err
		}
		changed := position.CloseGap(cards, removed)
		if len(changed) == 0 {
			return nil
		}
		return s.repo.SaveCards(ctx, changed)
	}, zap.String("list_id", listID))
}

// boardCounts snapshots list and card totals for activity payloads. Lookup failures count as zero.
func (s *Service) boardCounts(ctx context.Context, boardID string) (lists, cards int) {
	var (
		allLists []*models.BoardList
		allCards []*models.Card
	)
	s.bestEffort(ctx, "count-lists", func(ctx context.Context) (err error) {
		allLists, err = s.repo.ListLists(ctx, boardID)
		return err
	}, zap.String("board_id", boardID))
	s.bestEffort(ctx, "count-cards", func(ctx context.Context) (err error) {
		allCards, err = s.repo.ListCardsByBoard(ctx, boardID)
		return err
	}, zap.String("board_id", boardID))
	return len(allLists), len(allCards)
}
