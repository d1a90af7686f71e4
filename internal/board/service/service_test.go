package service

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dongwonkwak/boardly-sub001/internal/activity"
	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/repository"
	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/user"
	"github.com/dongwonkwak/boardly-sub001/internal/user/namecache"
)

// faultRepo wraps the memory repository, records every write and can fail chosen writes.
type faultRepo struct {
	*repository.MemoryRepository

	mu        sync.Mutex
	calls     []string
	failures  map[string]error
	savedList [][]*models.BoardList
	savedCard [][]*models.Card
}

func newFaultRepo() *faultRepo {
	return &faultRepo{
		MemoryRepository: repository.NewMemoryRepository(),
		failures:         make(map[string]error),
	}
}

func (r *faultRepo) hit(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, op)
	return r.failures[op]
}

func (r *faultRepo) failOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[op] = err
}

func (r *faultRepo) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.savedList = nil
	r.savedCard = nil
	r.failures = make(map[string]error)
}

func (r *faultRepo) writes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

func (r *faultRepo) SaveBoard(ctx context.Context, board *models.Board) error {
	if err := r.hit("SaveBoard"); err != nil {
		return err
	}
	return r.MemoryRepository.SaveBoard(ctx, board)
}

func (r *faultRepo) DeleteBoard(ctx context.Context, id string) error {
	if err := r.hit("DeleteBoard"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteBoard(ctx, id)
}

func (r *faultRepo) SaveMember(ctx context.Context, member *models.BoardMember) error {
	if err := r.hit("SaveMember"); err != nil {
		return err
	}
	return r.MemoryRepository.SaveMember(ctx, member)
}

func (r *faultRepo) DeleteMember(ctx context.Context, id string) error {
	if err := r.hit("DeleteMember"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteMember(ctx, id)
}

func (r *faultRepo) DeleteMembersByBoard(ctx context.Context, boardID string) error {
	if err := r.hit("DeleteMembersByBoard"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteMembersByBoard(ctx, boardID)
}

func (r *faultRepo) SaveList(ctx context.Context, list *models.BoardList) error {
	if err := r.hit("SaveList"); err != nil {
		return err
	}
	return r.MemoryRepository.SaveList(ctx, list)
}

func (r *faultRepo) SaveLists(ctx context.Context, lists []*models.BoardList) error {
	if err := r.hit("SaveLists"); err != nil {
		return err
	}
	r.mu.Lock()
	snapshot := make([]*models.BoardList, 0, len(lists))
	for _, l := range lists {
		copied := *l
		snapshot = append(snapshot, &copied)
	}
	r.savedList = append(r.savedList, snapshot)
	r.mu.Unlock()
	return r.MemoryRepository.SaveLists(ctx, lists)
}

func (r *faultRepo) DeleteList(ctx context.Context, id string) error {
	if err := r.hit("DeleteList"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteList(ctx, id)
}

func (r *faultRepo) DeleteListsByBoard(ctx context.Context, boardID string) error {
	if err := r.hit("DeleteListsByBoard"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteListsByBoard(ctx, boardID)
}

func (r *faultRepo) SaveCard(ctx context.Context, card *models.Card) error {
	if err := r.hit("SaveCard"); err != nil {
		return err
	}
	return r.MemoryRepository.SaveCard(ctx, card)
}

func (r *faultRepo) SaveCards(ctx context.Context, cards []*models.Card) error {
	if err := r.hit("SaveCards"); err != nil {
		return err
	}
	r.mu.Lock()
	snapshot := make([]*models.Card, 0, len(cards))
	for _, c := range cards {
		copied := *c
		snapshot = append(snapshot, &copied)
	}
	r.savedCard = append(r.savedCard, snapshot)
	r.mu.Unlock()
	return r.MemoryRepository.SaveCards(ctx, cards)
}

func (r *faultRepo) DeleteCard(ctx context.Context, id string) error {
	if err := r.hit("DeleteCard"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteCard(ctx, id)
}

func (r *faultRepo) DeleteCardsByList(ctx context.Context, listID string) error {
	if err := r.hit("DeleteCardsByList"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteCardsByList(ctx, listID)
}

func (r *faultRepo) DeleteCardsByBoard(ctx context.Context, boardID string) error {
	if err := r.hit("DeleteCardsByBoard"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteCardsByBoard(ctx, boardID)
}

func (r *faultRepo) SaveLabel(ctx context.Context, label *models.Label) error {
	if err := r.hit("SaveLabel"); err != nil {
		return err
	}
	return r.MemoryRepository.SaveLabel(ctx, label)
}

func (r *faultRepo) DeleteLabel(ctx context.Context, id string) error {
	if err := r.hit("DeleteLabel"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteLabel(ctx, id)
}

func (r *faultRepo) DeleteLabelsByBoard(ctx context.Context, boardID string) error {
	if err := r.hit("DeleteLabelsByBoard"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteLabelsByBoard(ctx, boardID)
}

func (r *faultRepo) SaveComment(ctx context.Context, comment *models.Comment) error {
	if err := r.hit("SaveComment"); err != nil {
		return err
	}
	return r.MemoryRepository.SaveComment(ctx, comment)
}

func (r *faultRepo) DeleteComment(ctx context.Context, id string) error {
	if err := r.hit("DeleteComment"); err != nil {
		return err
	}
	return r.MemoryRepository.DeleteComment(ctx, id)
}

// recordingActivity collects logged activities. It can be told to fail or panic.
type recordingActivity struct {
	mu      sync.Mutex
	entries []*activity.Activity
	err     error
	panics  bool
}

func (r *recordingActivity) Log(ctx context.Context, a *activity.Activity) error {
	if r.panics {
		panic("activity sink exploded")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.entries = append(r.entries, a)
	return nil
}

func (r *recordingActivity) types() []activity.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]activity.Type, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordingActivity) last() *activity.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return nil
	}
	return r.entries[len(r.entries)-1]
}

type stubNames struct {
	mu        sync.Mutex
	forgotten []string
}

func (n *stubNames) UserName(ctx context.Context, userID string) namecache.UserName {
	return namecache.UserName{FirstName: "First-" + userID, LastName: "Last-" + userID}
}

func (n *stubNames) BoardTitle(ctx context.Context, boardID string) string {
	return namecache.UnknownBoardTitle
}

func (n *stubNames) ForgetBoard(ctx context.Context, boardID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.forgotten = append(n.forgotten, boardID)
}

const (
	owner = "owner"
	alice = "alice"
	bob   = "bob"
	carol = "carol"
)

type fixture struct {
	svc      *Service
	repo     *faultRepo
	activity *recordingActivity
	names    *stubNames
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithOptions(t, DefaultOptions())
}

func newFixtureWithOptions(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()
	users := user.NewMemoryStore()
	for _, id := range []string{owner, alice, bob, carol} {
		require.NoError(t, users.SaveUser(ctx, &user.User{ID: id, Email: id + "@example.com", FirstName: id, LastName: "Test"}))
	}
	f := &fixture{
		repo:     newFaultRepo(),
		activity: &recordingActivity{},
		names:    &stubNames{},
	}
	f.svc = NewService(f.repo, users, f.names, f.activity, logger.NewNop(), opts)
	return f
}

func (f *fixture) board(t *testing.T, title string) *models.Board {
	t.Helper()
	board, err := f.svc.CreateBoard(context.Background(), &CreateBoardRequest{Title: title}, owner)
	require.NoError(t, err)
	return board
}

func (f *fixture) member(t *testing.T, boardID, userID string, role models.Role) *models.BoardMember {
	t.Helper()
	m, err := f.svc.AddBoardMember(context.Background(), boardID, &AddMemberRequest{UserID: userID, Role: string(role)}, owner)
	require.NoError(t, err)
	return m
}

func (f *fixture) list(t *testing.T, boardID, title string) *models.BoardList {
	t.Helper()
	list, err := f.svc.CreateBoardList(context.Background(), boardID, &CreateListRequest{Title: title}, owner)
	require.NoError(t, err)
	return list
}

func (f *fixture) card(t *testing.T, listID, title string) *models.Card {
	t.Helper()
	card, err := f.svc.CreateCard(context.Background(), listID, &CreateCardRequest{Title: title}, owner)
	require.NoError(t, err)
	return card
}

// listOrder returns the board's list titles by position and asserts density.
func (f *fixture) listOrder(t *testing.T, boardID string) []string {
	t.Helper()
	lists, err := f.repo.ListLists(context.Background(), boardID)
	require.NoError(t, err)
	titles := make([]string, len(lists))
	for i, l := range lists {
		require.Equal(t, i, l.Position, "list positions must be dense")
		titles[i] = l.Title
	}
	return titles
}

// cardOrder returns the list's card titles by position and asserts density.
func (f *fixture) cardOrder(t *testing.T, listID string) []string {
	t.Helper()
	cards, err := f.repo.ListCards(context.Background(), listID)
	require.NoError(t, err)
	titles := make([]string, len(cards))
	for i, c := range cards {
		require.Equal(t, i, c.Position, "card positions must be dense")
		titles[i] = c.Title
	}
	return titles
}
