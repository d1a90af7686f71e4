package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	apperrors "github.com/dongwonkwak/boardly-sub001/internal/common/errors"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

type countingBoards struct {
	*repository.MemoryRepository
	gets int
}

func (c *countingBoards) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	c.gets++
	return c.MemoryRepository.GetBoard(ctx, id)
}

type failingMembers struct{}

func (failingMembers) GetMemberByBoardAndUser(ctx context.Context, boardID, userID string) (*models.BoardMember, error) {
	return nil, errors.New("connection reset")
}

func setup(t *testing.T) (*Resolver, *countingBoards, *models.Board) {
	t.Helper()
	repo := repository.NewMemoryRepository()
	ctx := context.Background()

	board := models.NewBoard("Roadmap", "", "owner")
	require.NoError(t, repo.SaveBoard(ctx, board))
	for user, role := range map[string]models.Role{
		"admin": models.RoleAdmin, "editor": models.RoleEditor,
		"member": models.RoleMember, "viewer": models.RoleViewer,
	} {
		require.NoError(t, repo.SaveMember(ctx, models.NewBoardMember(board.ID, user, role)))
	}
	inactive := models.NewBoardMember(board.ID, "gone", models.RoleAdmin)
	inactive.Deactivate()
	require.NoError(t, repo.SaveMember(ctx, inactive))

	boards := &countingBoards{MemoryRepository: repo}
	return NewResolver(boards, repo, logger.NewNop()), boards, board
}

func TestResolver_GetUserBoardRole(t *testing.T) {
	r, _, board := setup(t)
	ctx := context.Background()

	grant, err := r.GetUserBoardRole(ctx, board.ID, "owner")
	require.NoError(t, err)
	assert.True(t, grant.Owner)
	assert.Empty(t, grant.Role)

	grant, err = r.GetUserBoardRole(ctx, board.ID, "editor")
	require.NoError(t, err)
	assert.False(t, grant.Owner)
	assert.Equal(t, models.RoleEditor, grant.Role)

	_, err = r.GetUserBoardRole(ctx, "missing", "owner")
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "board not found")

	_, err = r.GetUserBoardRole(ctx, board.ID, "stranger")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodePermissionDenied))
	assert.Contains(t, err.Error(), "access denied")

	_, err = r.GetUserBoardRole(ctx, board.ID, "gone")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodePermissionDenied))
	assert.Contains(t, err.Error(), "member inactive")
}

func TestResolver_CapabilityTable(t *testing.T) {
	r, _, board := setup(t)
	ctx := context.Background()

	all := []Capability{CapRead, CapWrite, CapAdmin, CapManageMembers, CapArchive, CapToggleStar, CapDelete}
	expected := map[string][]Capability{
		"owner":  all,
		"admin":  {CapRead, CapWrite, CapAdmin, CapManageMembers},
		"editor": {CapRead, CapWrite},
		"member": {CapRead},
		"viewer": {CapRead},
	}

	for user, allowed := range expected {
		for _, c := range all {
			t.Run(user+"/"+string(c), func(t *testing.T) {
				ok, err := r.Can(ctx, board.ID, user, c)
				require.NoError(t, err)
				assert.Equal(t, contains(allowed, c), ok)
			})
		}
	}
}

func TestResolver_OwnerUniversalEvenWhenArchived(t *testing.T) {
	r, boards, board := setup(t)
	ctx := context.Background()

	require.NoError(t, board.Archive())
	require.NoError(t, boards.SaveBoard(ctx, board))

	predicates := []func(context.Context, string, string) (bool, error){
		r.CanRead, r.CanWrite, r.CanAdmin, r.CanManageMembers, r.CanArchive, r.CanToggleStar, r.CanDelete,
	}
	for _, p := range predicates {
		ok, err := p(ctx, board.ID, "owner")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestResolver_EveryPredicateReResolves(t *testing.T) {
	r, boards, _ := setup(t)
	ctx := context.Background()

	predicates := []func(context.Context, string, string) (bool, error){
		r.CanRead, r.CanWrite, r.CanAdmin, r.CanManageMembers, r.CanArchive, r.CanToggleStar, r.CanDelete,
	}
	for i, p := range predicates {
		_, err := p(ctx, "missing", "owner")
		assert.True(t, apperrors.IsNotFound(err))
		assert.Equal(t, i+1, boards.gets)
	}
}

func TestResolver_MemberLookupFailureIsInternal(t *testing.T) {
	repo := repository.NewMemoryRepository()
	board := models.NewBoard("Roadmap", "", "owner")
	require.NoError(t, repo.SaveBoard(context.Background(), board))

	r := NewResolver(repo, failingMembers{}, logger.NewNop())
	_, err := r.CanRead(context.Background(), board.ID, "someone")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInternalError))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestResolver_Require(t *testing.T) {
	r, _, board := setup(t)
	ctx := context.Background()

	assert.NoError(t, r.Require(ctx, board.ID, "editor", CapWrite, "no write"))

	err := r.Require(ctx, board.ID, "viewer", CapWrite, "no write")
	assert.True(t, apperrors.Is(err, apperrors.ErrCodePermissionDenied))
	assert.Contains(t, err.Error(), "no write")
}

func contains(list []Capability, c Capability) bool {
	for _, item := range list {
		if item == c {
			return true
		}
	}
	return false
}
