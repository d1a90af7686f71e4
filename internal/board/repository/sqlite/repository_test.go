package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	"github.com/dongwonkwak/boardly-sub001/internal/db"
)

func createTestRepo(t *testing.T) *Repository {
	t.Helper()
	pool, err := db.OpenSQLiteSingle(filepath.Join(t.TempDir(), "boardly.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	repo, cleanup, err := Provide(pool.Writer(), pool.Reader())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })
	return repo
}

func TestRepository_BoardRoundTrip(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	board := models.NewBoard("Roadmap", "Q3 plans", "owner")
	require.NoError(t, repo.SaveBoard(ctx, board))

	require.NoError(t, board.Archive())
	board.SetStarred(true)
	require.NoError(t, repo.SaveBoard(ctx, board))

	stored, err := repo.GetBoard(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q3 plans", stored.Description)
	assert.True(t, stored.Archived)
	assert.True(t, stored.Starred)
	assert.WithinDuration(t, board.CreatedAt, stored.CreatedAt, time.Second)

	owned, err := repo.ListBoardsByOwner(ctx, "owner")
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	require.NoError(t, repo.DeleteBoard(ctx, board.ID))
	_, err = repo.GetBoard(ctx, board.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
	assert.True(t, errors.Is(repo.DeleteBoard(ctx, board.ID), repository.ErrNotFound))
}

func TestRepository_Members(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	board := models.NewBoard("Roadmap", "", "owner")
	require.NoError(t, repo.SaveBoard(ctx, board))

	member := models.NewBoardMember(board.ID, "u1", models.RoleEditor)
	require.NoError(t, repo.SaveMember(ctx, member))
	require.Error(t, repo.SaveMember(ctx, models.NewBoardMember(board.ID, "u1", models.RoleViewer)))

	member.ChangeRole(models.RoleAdmin)
	require.NoError(t, repo.SaveMember(ctx, member))

	stored, err := repo.GetMemberByBoardAndUser(ctx, board.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.True(t, stored.Active)

	count, err := repo.CountActiveMembers(ctx, board.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	boards, err := repo.ListBoardsByMember(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, board.ID, boards[0].ID)

	stored.Deactivate()
	require.NoError(t, repo.SaveMember(ctx, stored))
	boards, err = repo.ListBoardsByMember(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestRepository_SaveListsInOneTransaction(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	lists := []*models.BoardList{
		models.NewBoardList("b1", "Todo", "", models.ColorGreen, 0),
		models.NewBoardList("b1", "Doing", "", "", 1),
		models.NewBoardList("b1", "Done", "", "", 2),
	}
	require.NoError(t, repo.SaveLists(ctx, lists))

	lists[0].SetPosition(2)
	lists[2].SetPosition(0)
	require.NoError(t, repo.SaveLists(ctx, lists))

	stored, err := repo.ListLists(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "Done", stored[0].Title)
	assert.Equal(t, "Doing", stored[1].Title)
	assert.Equal(t, "Todo", stored[2].Title)
	assert.Equal(t, models.ColorGreen, stored[2].Color)
}

func TestRepository_CardsWithLabelsAndAssignees(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	label := models.NewLabel("b1", "bug", "#B04632")
	require.NoError(t, repo.SaveLabel(ctx, label))

	due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	card := models.NewCard("b1", "l1", "Fix login", "", 0)
	card.DueDate = &due
	start := due.Add(-48 * time.Hour)
	card.StartDate = &start
	card.Priority = models.PriorityUrgent
	card.LabelIDs = []string{label.ID}
	card.Assignees = []string{"u1", "u2"}
	other := models.NewCard("b1", "l1", "Write docs", "", 1)
	require.NoError(t, repo.SaveCards(ctx, []*models.Card{card, other}))

	cards, err := repo.ListCards(ctx, "l1")
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, []string{label.ID}, cards[0].LabelIDs)
	assert.Equal(t, []string{"u1", "u2"}, cards[0].Assignees)
	require.NotNil(t, cards[0].DueDate)
	assert.True(t, due.Equal(*cards[0].DueDate))
	require.NotNil(t, cards[0].StartDate)
	assert.True(t, start.Equal(*cards[0].StartDate))
	assert.Equal(t, models.PriorityUrgent, cards[0].Priority)
	assert.Empty(t, cards[1].LabelIDs)
	assert.Nil(t, cards[1].DueDate)
	assert.Nil(t, cards[1].StartDate)
	assert.Equal(t, models.PriorityNone, cards[1].Priority)

	require.NoError(t, repo.DeleteLabel(ctx, label.ID))
	stored, err := repo.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.LabelIDs)

	require.NoError(t, repo.DeleteCardsByBoard(ctx, "b1"))
	count, err := repo.CountCards(ctx, "l1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_LabelUniqueNamePerBoard(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveLabel(ctx, models.NewLabel("b1", "bug", "#B04632")))
	assert.Error(t, repo.SaveLabel(ctx, models.NewLabel("b1", "bug", "#519839")))
	require.NoError(t, repo.SaveLabel(ctx, models.NewLabel("b2", "bug", "#519839")))

	found, err := repo.GetLabelByName(ctx, "b1", "bug")
	require.NoError(t, err)
	assert.Equal(t, "#B04632", found.Color)

	_, err = repo.GetLabelByName(ctx, "b1", "missing")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestRepository_Comments(t *testing.T) {
	repo := createTestRepo(t)
	ctx := context.Background()

	card := models.NewCard("b1", "l1", "Fix login", "", 0)
	require.NoError(t, repo.SaveCard(ctx, card))

	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	first := models.NewComment(card, "u1", "first")
	first.CreatedAt = base
	second := models.NewComment(card, "u2", "second")
	second.CreatedAt = base.Add(time.Minute)
	require.NoError(t, repo.SaveComment(ctx, second))
	require.NoError(t, repo.SaveComment(ctx, first))

	first.UpdateContent("first, edited")
	require.NoError(t, repo.SaveComment(ctx, first))

	comments, err := repo.ListCommentsByCard(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first, edited", comments[0].Content)
	assert.True(t, comments[0].Edited)
	assert.Equal(t, "b1", comments[0].BoardID)
	assert.Equal(t, "second", comments[1].Content)

	mine, err := repo.ListCommentsByAuthor(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, second.ID, mine[0].ID)

	require.NoError(t, repo.DeleteComment(ctx, second.ID))
	assert.True(t, errors.Is(repo.DeleteComment(ctx, second.ID), repository.ErrNotFound))

	require.NoError(t, repo.DeleteCard(ctx, card.ID))
	_, err = repo.GetComment(ctx, first.ID)
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}
