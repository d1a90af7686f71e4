package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
)

// MemoryRepository provides in-memory board storage. Entities are copied on the way in
// and out so callers never share state with the store.
type MemoryRepository struct {
	boards   map[string]*models.Board
	members  map[string]*models.BoardMember
	lists    map[string]*models.BoardList
	cards    map[string]*models.Card
	comments map[string]*models.Comment
	labels   map[string]*models.Label
	mu       sync.RWMutex
}

// Ensure MemoryRepository implements Repository interface
var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository creates a new in-memory board repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		boards:   make(map[string]*models.Board),
		members:  make(map[string]*models.BoardMember),
		lists:    make(map[string]*models.BoardList),
		cards:    make(map[string]*models.Card),
		comments: make(map[string]*models.Comment),
		labels:   make(map[string]*models.Label),
	}
}

// Close is a no-op for in-memory repository
func (r *MemoryRepository) Close() error {
	return nil
}

// Board operations

func (r *MemoryRepository) GetBoard(ctx context.Context, id string) (*models.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	board, ok := r.boards[id]
	if !ok {
		return nil, fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	copied := *board
	return &copied, nil
}

func (r *MemoryRepository) ListBoardsByOwner(ctx context.Context, ownerID string) ([]*models.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Board
	for _, board := range r.boards {
		if board.OwnerID == ownerID {
			copied := *board
			result = append(result, &copied)
		}
	}
	sortBoards(result)
	return result, nil
}

func (r *MemoryRepository) ListBoardsByMember(ctx context.Context, userID string) ([]*models.Board, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Board
	for _, member := range r.members {
		if member.UserID != userID || !member.Active {
			continue
		}
		if board, ok := r.boards[member.BoardID]; ok {
			copied := *board
			result = append(result, &copied)
		}
	}
	sortBoards(result)
	return result, nil
}

func (r *MemoryRepository) SaveBoard(ctx context.Context, board *models.Board) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *board
	r.boards[board.ID] = &copied
	return nil
}

func (r *MemoryRepository) DeleteBoard(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boards[id]; !ok {
		return fmt.Errorf("board %s: %w", id, ErrNotFound)
	}
	delete(r.boards, id)
	return nil
}

// Member operations

func (r *MemoryRepository) GetMember(ctx context.Context, id string) (*models.BoardMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.members[id]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", id, ErrNotFound)
	}
	copied := *member
	return &copied, nil
}

func (r *MemoryRepository) GetMemberByBoardAndUser(ctx context.Context, boardID, userID string) (*models.BoardMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, member := range r.members {
		if member.BoardID == boardID && member.UserID == userID {
			copied := *member
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("member of board %s for user %s: %w", boardID, userID, ErrNotFound)
}

func (r *MemoryRepository) ListMembers(ctx context.Context, boardID string) ([]*models.BoardMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.BoardMember
	for _, member := range r.members {
		if member.BoardID == boardID {
			copied := *member
			result = append(result, &copied)
		}
	}
	slices.SortFunc(result, func(a, b *models.BoardMember) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) CountActiveMembers(ctx context.Context, boardID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, member := range r.members {
		if member.BoardID == boardID && member.Active {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) SaveMember(ctx context.Context, member *models.BoardMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, existing := range r.members {
		if id != member.ID && existing.BoardID == member.BoardID && existing.UserID == member.UserID {
			return fmt.Errorf("member for user %s already exists on board %s", member.UserID, member.BoardID)
		}
	}
	copied := *member
	r.members[member.ID] = &copied
	return nil
}

func (r *MemoryRepository) DeleteMember(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return fmt.Errorf("member %s: %w", id, ErrNotFound)
	}
	delete(r.members, id)
	return nil
}

func (r *MemoryRepository) DeleteMembersByBoard(ctx context.Context, boardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, member := range r.members {
		if member.BoardID == boardID {
			delete(r.members, id)
		}
	}
	return nil
}

// List operations

func (r *MemoryRepository) GetList(ctx context.Context, id string) (*models.BoardList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list, ok := r.lists[id]
	if !ok {
		return nil, fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	copied := *list
	return &copied, nil
}

func (r *MemoryRepository) ListLists(ctx context.Context, boardID string) ([]*models.BoardList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.BoardList
	for _, list := range r.lists {
		if list.BoardID == boardID {
			copied := *list
			result = append(result, &copied)
		}
	}
	slices.SortFunc(result, func(a, b *models.BoardList) int {
		return a.Position - b.Position
	})
	return result, nil
}

func (r *MemoryRepository) CountLists(ctx context.Context, boardID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, list := range r.lists {
		if list.BoardID == boardID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) SaveList(ctx context.Context, list *models.BoardList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *list
	r.lists[list.ID] = &copied
	return nil
}

func (r *MemoryRepository) SaveLists(ctx context.Context, lists []*models.BoardList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, list := range lists {
		copied := *list
		r.lists[list.ID] = &copied
	}
	return nil
}

func (r *MemoryRepository) DeleteList(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lists[id]; !ok {
		return fmt.Errorf("list %s: %w", id, ErrNotFound)
	}
	delete(r.lists, id)
	return nil
}

func (r *MemoryRepository) DeleteListsByBoard(ctx context.Context, boardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, list := range r.lists {
		if list.BoardID == boardID {
			delete(r.lists, id)
		}
	}
	return nil
}

// Card operations

func (r *MemoryRepository) GetCard(ctx context.Context, id string) (*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	return copyCard(card), nil
}

func (r *MemoryRepository) ListCards(ctx context.Context, listID string) ([]*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collectCards(func(c *models.Card) bool { return c.ListID == listID }), nil
}

func (r *MemoryRepository) ListCardsByBoard(ctx context.Context, boardID string) ([]*models.Card, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collectCards(func(c *models.Card) bool { return c.BoardID == boardID }), nil
}

func (r *MemoryRepository) collectCards(match func(*models.Card) bool) []*models.Card {
	var result []*models.Card
	for _, card := range r.cards {
		if match(card) {
			result = append(result, copyCard(card))
		}
	}
	slices.SortFunc(result, func(a, b *models.Card) int {
		if a.ListID != b.ListID {
			if a.ListID < b.ListID {
				return -1
			}
			return 1
		}
		return a.Position - b.Position
	})
	return result
}

func (r *MemoryRepository) CountCards(ctx context.Context, listID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, card := range r.cards {
		if card.ListID == listID {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) SaveCard(ctx context.Context, card *models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cards[card.ID] = copyCard(card)
	return nil
}

func (r *MemoryRepository) SaveCards(ctx context.Context, cards []*models.Card) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, card := range cards {
		r.cards[card.ID] = copyCard(card)
	}
	return nil
}

func (r *MemoryRepository) DeleteCard(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.cards[id]; !ok {
		return fmt.Errorf("card %s: %w", id, ErrNotFound)
	}
	r.removeCard(id)
	return nil
}

// removeCard drops a card and its comments. Callers hold the write lock.
func (r *MemoryRepository) removeCard(id string) {
	delete(r.cards, id)
	for commentID, comment := range r.comments {
		if comment.CardID == id {
			delete(r.comments, commentID)
		}
	}
}

func (r *MemoryRepository) DeleteCardsByList(ctx context.Context, listID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, card := range r.cards {
		if card.ListID == listID {
			r.removeCard(id)
		}
	}
	return nil
}

func (r *MemoryRepository) DeleteCardsByBoard(ctx context.Context, boardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, card := range r.cards {
		if card.BoardID == boardID {
			r.removeCard(id)
		}
	}
	return nil
}

// Comment operations

func (r *MemoryRepository) GetComment(ctx context.Context, id string) (*models.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	comment, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	copied := *comment
	return &copied, nil
}

func (r *MemoryRepository) ListCommentsByCard(ctx context.Context, cardID string) ([]*models.Comment, error) {
	result := r.collectComments(func(c *models.Comment) bool { return c.CardID == cardID })
	slices.SortFunc(result, func(a, b *models.Comment) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *MemoryRepository) ListCommentsByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	result := r.collectComments(func(c *models.Comment) bool { return c.AuthorID == authorID })
	slices.SortFunc(result, func(a, b *models.Comment) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return result, nil
}

func (r *MemoryRepository) collectComments(match func(*models.Comment) bool) []*models.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Comment
	for _, comment := range r.comments {
		if match(comment) {
			copied := *comment
			result = append(result, &copied)
		}
	}
	return result
}

func (r *MemoryRepository) SaveComment(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *comment
	r.comments[comment.ID] = &copied
	return nil
}

func (r *MemoryRepository) DeleteComment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	delete(r.comments, id)
	return nil
}

// Label operations

func (r *MemoryRepository) GetLabel(ctx context.Context, id string) (*models.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	label, ok := r.labels[id]
	if !ok {
		return nil, fmt.Errorf("label %s: %w", id, ErrNotFound)
	}
	copied := *label
	return &copied, nil
}

func (r *MemoryRepository) GetLabelByName(ctx context.Context, boardID, name string) (*models.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, label := range r.labels {
		if label.BoardID == boardID && label.Name == name {
			copied := *label
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("label %q on board %s: %w", name, boardID, ErrNotFound)
}

func (r *MemoryRepository) ListLabels(ctx context.Context, boardID string) ([]*models.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Label
	for _, label := range r.labels {
		if label.BoardID == boardID {
			copied := *label
			result = append(result, &copied)
		}
	}
	slices.SortFunc(result, func(a, b *models.Label) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) SaveLabel(ctx context.Context, label *models.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *label
	r.labels[label.ID] = &copied
	return nil
}

func (r *MemoryRepository) DeleteLabel(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.labels[id]; !ok {
		return fmt.Errorf("label %s: %w", id, ErrNotFound)
	}
	delete(r.labels, id)
	for _, card := range r.cards {
		card.LabelIDs = slices.DeleteFunc(card.LabelIDs, func(labelID string) bool { return labelID == id })
	}
	return nil
}

func (r *MemoryRepository) DeleteLabelsByBoard(ctx context.Context, boardID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, label := range r.labels {
		if label.BoardID == boardID {
			delete(r.labels, id)
		}
	}
	return nil
}

func copyCard(card *models.Card) *models.Card {
	copied := *card
	copied.Assignees = append([]string{}, card.Assignees...)
	copied.LabelIDs = append([]string{}, card.LabelIDs...)
	if card.DueDate != nil {
		due := *card.DueDate
		copied.DueDate = &due
	}
	if card.StartDate != nil {
		start := *card.StartDate
		copied.StartDate = &start
	}
	return &copied
}

func sortBoards(boards []*models.Board) {
	slices.SortFunc(boards, func(a, b *models.Board) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
