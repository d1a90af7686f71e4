package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/policy"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
)

func TestCreateCard(t *testing.T) {
	ctx := context.Background()

	t.Run("appends within the list", func(t *testing.T) {
		f := newFixture(t)
		board := f.board(t, "Roadmap")
		list := f.list(t, board.ID, "Todo")

		a := f.card(t, list.ID, "a")
		b := f.card(t, list.ID, "b")
		assert.Equal(t, 0, a.Position)
		assert.Equal(t, 1, b.Position)
		assert.Equal(t, board.ID, a.BoardID)
		assert.Equal(t, activity.CardCreate, f.activity.last().Type)
	})

	t.Run("card limit", func(t *testing.T) {
		opts := DefaultOptions()
		opts.CardPolicy.MaxCardsPerList = 1
		f := newFixtureWithOptions(t, opts)
		board := f.board(t, "Roadmap")
		list := f.list(t, board.ID, "Todo")
		f.card(t, list.ID, "a")

		_, err := f.svc.CreateCard(ctx, list.ID, &CreateCardRequest{Title: "b"}, owner)
		assert.Equal(t, policy.ReasonListCardLimit, apperrors.ReasonOf(err))
	})

	t.Run("validation and lookup", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.CreateCard(ctx, "nope", &CreateCardRequest{Title: " "}, owner)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
		_, err = f.svc.CreateCard(ctx, "nope", &CreateCardRequest{Title: "a"}, owner)
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUpdateCard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	board := f.board(t, "Roadmap")
	other := f.board(t, "Other")
	list := f.list(t, board.ID, "Todo")
	card := f.card(t, list.ID, "a")
	f.member(t, board.ID, alice, models.RoleEditor)
	label, err := f.svc.CreateLabel(ctx, board.ID, &CreateLabelRequest{Name: "bug", Color: "#ff0000"}, owner)
	require.NoError(t, err)
	foreign, err := f.svc.CreateLabel(ctx, other.ID, &CreateLabelRequest{Name: "bug", Color: "#ff0000"}, owner)
	require.NoError(t, err)
	f.repo.reset()

	same := "a"
	_, err = f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{Title: &same}, owner)
	require.NoError(t, err)
	assert.Empty(t, f.repo.writes())

	done := true
	got, err := f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{
		Completed: &done,
		LabelIDs:  []string{label.ID},
		Assignees: []string{alice, owner},
	}, owner)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	assert.Equal(t, []string{label.ID}, got.LabelIDs)
	assert.ElementsMatch(t, []string{alice, owner}, got.Assignees)
	assert.Equal(t, activity.CardUpdate, f.activity.last().Type)

	_, err = f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{LabelIDs: []string{foreign.ID}}, owner)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))

	_, err = f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{Assignees: []string{carol}}, owner)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
}

func TestUpdateCardPriorityAndStartDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	board := f.board(t, "Roadmap")
	list := f.list(t, board.ID, "Todo")
	card := f.card(t, list.ID, "a")
	f.repo.reset()

	high := "HIGH"
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.FixedZone("KST", 9*60*60))
	got, err := f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{Priority: &high, StartDate: &start}, owner)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityHigh, got.Priority)
	require.NotNil(t, got.StartDate)
	assert.True(t, start.Equal(*got.StartDate))
	assert.Equal(t, time.UTC, got.StartDate.Location())
	assert.Equal(t, []string{"start_date", "priority"}, f.activity.last().Payload["fields"])

	t.Run("same values are not saved", func(t *testing.T) {
		f.repo.reset()
		lower := "high"
		_, err := f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{Priority: &lower, StartDate: &start}, owner)
		require.NoError(t, err)
		assert.Empty(t, f.repo.writes())
	})

	t.Run("empty priority and clear flag reset both", func(t *testing.T) {
		none := ""
		got, err := f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{Priority: &none, ClearStartDate: true}, owner)
		require.NoError(t, err)
		assert.Equal(t, models.PriorityNone, got.Priority)
		assert.Nil(t, got.StartDate)
	})

	t.Run("unknown priority", func(t *testing.T) {
		f.repo.reset()
		bad := "critical"
		_, err := f.svc.UpdateCard(ctx, card.ID, &UpdateCardRequest{Priority: &bad}, owner)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeValidation))
		assert.Empty(t, f.repo.writes())
	})
}
