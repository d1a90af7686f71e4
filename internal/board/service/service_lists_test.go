package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/policy"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

func TestCreateBoardList(t *testing.T) {
	ctx := context.Background()

	t.Run("appends at the next position", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")

		first := f.list(t, board.ID, "Todo")
		second := f.list(t, board.ID, "Doing")
		assert.Equal(t, 0, first.Position)
		assert.Equal(t, 1, second.Position)
		assert.Equal(t, models.DefaultListColor, first.Color)
		assert.Equal(t, activity.ListCreate, f.activity.last().Type)
	})

	t.Run("rejects unknown colors", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		_, err := f.svc.CreateBoardList(ctx, board.ID, &CreateListRequest{Title: "Todo", Color: "#123456"}, owner)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
	})

	t.Run("list limit", func(t *testing.T) {
		opts := DefaultOptions()
		opts.ListPolicy.MaxLists = 2
		f := newFixtureWithOptions(t, opts)
		board := f.board(t, "Roadmap")
		f.list(t, board.ID, "a")
		f.list(t, board.ID, "b")

		_, err := f.svc.CreateBoardList(ctx, board.ID, &CreateListRequest{Title: "c"}, owner)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeBusinessRule))
		assert.Equal(t, policy.ReasonListCreation, apperrors.ReasonOf(err))
	})

	t.Run("title length carries the offending length", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		_, err := f.svc.CreateBoardList(ctx, board.ID, &CreateListRequest{Title: strings.Repeat("가", 101)}, owner)
		require.True(t, apperrors.Is(err, apperrors.ErrCodeBusinessRule))

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, policy.ReasonTitleLength, appErr.Reason)
		assert.Equal(t, 101, appErr.Context["length"])
	})

	t.Run("members without write permission are denied", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		f.member(t, board.ID, alice, models.RoleMember)
		_, err := f.svc.CreateBoardList(ctx, board.ID, &CreateListRequest{Title: "Todo"}, alice)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodePermissionDenied))

		_, err = f.svc.CreateBoardList(ctx, board.ID, &CreateListRequest{Title: "Todo"}, carol)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodePermissionDenied))
	})
}

func TestGetBoardLists(t *testing.T) {
	opts := DefaultOptions()
	opts.ListPolicy = policy.ListPolicy{MaxLists: 4, RecommendedLists: 1, WarningThreshold: 3, MaxTitleLength: 100}
	f := newFixtureWithOptions(t, opts)
	board := f.board(t, "Roadmap")
	for _, title := range []string{"a", "b", "c"} {
		f.list(t, board.ID, title)
	}

	got, err := f.svc.GetBoardLists(context.Background(), board.ID, owner)
	require.NoError(t, err)
	assert.Len(t, got.Lists, 3)
	assert.Equal(t, policy.StatusWarning, got.Status)
	assert.Equal(t, 1, got.AvailableSlots)
	assert.True(t, got.RequiresNotification)
}

func TestUpdateBoardList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	board := f.board(t, "Roadmap")
	list := f.list(t, board.ID, "Todo")
	f.repo.reset()

	same := "Todo"
	got, err := f.svc.UpdateBoardList(ctx, list.ID, &UpdateListRequest{Title: &same}, owner)
	require.NoError(t, err)
	assert.Equal(t, "Todo", got.Title)
	assert.Empty(t, f.repo.writes())

	title, color := "Backlog", "#b04632"
	got, err = f.svc.UpdateBoardList(ctx, list.ID, &UpdateListRequest{Title: &title, Color: &color}, owner)
	require.NoError(t, err)
	assert.Equal(t, "Backlog", got.Title)
	assert.Equal(t, models.ColorRed, got.Color)
	assert.Equal(t, []string{"SaveList"}, f.repo.writes())
	assert.Equal(t, activity.ListRename, f.activity.last().Type)
}

func TestDeleteBoardList(t *testing.T) {
	ctx := context.Background()

	t.Run("closes the gap with one bulk save of the trailing lists", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		l1 := f.list(t, board.ID, "L1")
		l2 := f.list(t, board.ID, "L2")
		l3 := f.list(t, board.ID, "L3")
		f.card(t, l1.ID, "c1")
		f.card(t, l1.ID, "c2")
		f.repo.reset()

		require.NoError(t, f.svc.DeleteBoardList(ctx, l1.ID, owner))

		assert.Equal(t, []string{"DeleteCardsByList", "DeleteList", "SaveLists"}, f.repo.writes())
		require.Len(t, f.repo.savedList, 1)
		saved := f.repo.savedList[0]
		require.Len(t, saved, 2)
		assert.Equal(t, l2.ID, saved[0].ID)
		assert.Equal(t, 0, saved[0].Position)
		assert.Equal(t, l3.ID, saved[1].ID)
		assert.Equal(t, 1, saved[1].Position)
		assert.Equal(t, []string{"L2", "L3"}, f.listOrder(t, board.ID))

		last := f.activity.last()
		assert.Equal(t, activity.ListDelete, last.Type)
		assert.Equal(t, 2, last.Payload["card_count"])
	})

	t.Run("deleting the last list issues no bulk save", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		f.list(t, board.ID, "L1")
		last := f.list(t, board.ID, "L2")
		f.repo.reset()

		require.NoError(t, f.svc.DeleteBoardList(ctx, last.ID, owner))
		assert.NotContains(t, f.repo.writes(), "SaveLists")
	})

	t.Run("renumbering failure does not fail the deletion", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		l1 := f.list(t, board.ID, "L1")
		f.list(t, board.ID, "L2")
		f.repo.reset()
		f.repo.failOn("SaveLists", errors.New("write conflict"))

		require.NoError(t, f.svc.DeleteBoardList(ctx, l1.ID, owner))
		_, err := f.repo.GetList(ctx, l1.ID)
		assert.Error(t, err)
	})

	t.Run("write permission denial carries its own reason", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		l1 := f.list(t, board.ID, "L1")
		f.member(t, board.ID, alice, models.RoleViewer)

		err := f.svc.DeleteBoardList(ctx, l1.ID, alice)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodePermissionDenied))
		assert.Equal(t, ReasonListDeleteDenied, apperrors.ReasonOf(err))
	})

	t.Run("missing list", func(t *testing.T) {
		f := newFixture(t)
		assert.True(t, apperrors.IsNotFound(f.svc.DeleteBoardList(ctx, "nope", owner)))
		assert.True(t, apperrors.Is(f.svc.DeleteBoardList(ctx, "", owner), apperrors.ErrCodeValidation))
	})
}

func TestUpdateBoardListPosition(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture, *models.Board, []*models.BoardList) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		lists := []*models.BoardList{f.list(t, board.ID, "L0"), f.list(t, board.ID, "L1"), f.list(t, board.ID, "L2")}
		f.repo.reset()
		return f, board, lists
	}

	t.Run("move forward reassigns every list in one bulk save", func(t *testing.T) {
		f, board, lists := setup(t)

		got, err := f.svc.UpdateBoardListPosition(ctx, lists[0].ID, 2, owner)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, []string{lists[1].ID, lists[2].ID, lists[0].ID}, []string{got[0].ID, got[1].ID, got[2].ID})
		assert.Equal(t, []string{"SaveLists"}, f.repo.writes())
		assert.Len(t, f.repo.savedList[0], 3)
		assert.Equal(t, []string{"L1", "L2", "L0"}, f.listOrder(t, board.ID))
	})

	t.Run("move backward", func(t *testing.T) {
		f, board, lists := setup(t)
		_, err := f.svc.UpdateBoardListPosition(ctx, lists[2].ID, 0, owner)
		require.NoError(t, err)
		assert.Equal(t, []string{"L2", "L0", "L1"}, f.listOrder(t, board.ID))
		assert.Equal(t, activity.ListMove, f.activity.last().Type)
	})

	t.Run("same position is a no-op with zero writes", func(t *testing.T) {
		f, _, lists := setup(t)
		got, err := f.svc.UpdateBoardListPosition(ctx, lists[1].ID, 1, owner)
		require.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Empty(t, f.repo.writes())
	})

	t.Run("out of range", func(t *testing.T) {
		f, _, lists := setup(t)
		for _, p := range []int{-1, 3} {
			_, err := f.svc.UpdateBoardListPosition(ctx, lists[0].ID, p, owner)
			assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict))
			assert.Equal(t, ReasonInvalidPosition, apperrors.ReasonOf(err))
		}
		assert.Empty(t, f.repo.writes())
	})
}

func TestListPositionsStayDenseUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	board := f.board(t, "Roadmap")
	var lists []*models.BoardList
	for _, title := range []string{"a", "b", "c", "d", "e", "f"} {
		lists = append(lists, f.list(t, board.ID, title))
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list := lists[i%len(lists)]
			_, _ = f.svc.UpdateBoardListPosition(ctx, list.ID, (i*7)%len(lists), owner)
		}(i)
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = f.svc.DeleteBoardList(ctx, lists[0].ID, owner)
	}()
	go func() {
		defer wg.Done()
		_, _ = f.svc.CreateBoardList(ctx, board.ID, &CreateListRequest{Title: "g"}, owner)
	}()
	wg.Wait()

	order := f.listOrder(t, board.ID)
	assert.Len(t, order, 6)
	assert.Equal(t, 0, f.svc.locks.size())
}

func TestActivityFailuresNeverFailTheOperation(t *testing.T) {
	ctx := context.Background()

	t.Run("error", func(t *testing.T) {
		f := newFixture(t)
		f.activity.err = errors.New("bus down")
		board, err := f.svc.CreateBoard(ctx, &CreateBoardRequest{Title: "Roadmap"}, owner)
		require.NoError(t, err)
		_, err = f.svc.CreateBoardList(ctx, board.ID, &CreateListRequest{Title: "Todo"}, owner)
		require.NoError(t, err)
	})

	t.Run("panic", func(t *testing.T) {
		f := newFixture(t)
		f.activity.panics = true
		board, err := f.svc.CreateBoard(ctx, &CreateBoardRequest{Title: "Roadmap"}, owner)
		require.NoError(t, err)
		_, err = f.svc.GetBoard(ctx, board.ID, owner)
		require.NoError(t, err)
	})
}
