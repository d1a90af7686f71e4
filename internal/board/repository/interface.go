// Package repository defines storage for the board aggregate.
package repository

import (
	"context"
	"errors"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
)

// ErrNotFound is returned (wrapped) when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// BoardRepository stores boards
type BoardRepository interface {
	GetBoard(ctx context.Context, id string) (*models.Board, error)
	ListBoardsByOwner(ctx context.Context, ownerID string) ([]*models.Board, error)
	// ListBoardsByMember returns boards where userID has an active membership.
	ListBoardsByMember(ctx context.Context, userID string) ([]*models.Board, error)
	SaveBoard(ctx context.Context, board *models.Board) error
	DeleteBoard(ctx context.Context, id string) error
}

// MemberRepository stores board memberships
type MemberRepository interface {
	GetMember(ctx context.Context, id string) (*models.BoardMember, error)
	GetMemberByBoardAndUser(ctx context.Context, boardID, userID string) (*models.BoardMember, error)
	ListMembers(ctx context.Context, boardID string) ([]*models.BoardMember, error)
	CountActiveMembers(ctx context.Context, boardID string) (int, error)
	SaveMember(ctx context.Context, member *models.BoardMember) error
	DeleteMember(ctx context.Context, id string) error
	DeleteMembersByBoard(ctx context.Context, boardID string) error
}

// ListRepository stores board lists
type ListRepository interface {
	GetList(ctx context.Context, id string) (*models.BoardList, error)
	// ListLists returns the board's lists ordered by position.
	ListLists(ctx context.Context, boardID string) ([]*models.BoardList, error)
	CountLists(ctx context.Context, boardID string) (int, error)
	SaveList(ctx context.Context, list *models.BoardList) error
	// SaveLists persists every list in one call.
	SaveLists(ctx context.Context, lists []*models.BoardList) error
	DeleteList(ctx context.Context, id string) error
	DeleteListsByBoard(ctx context.Context, boardID string) error
}

// CardRepository stores cards
type CardRepository interface {
	GetCard(ctx context.Context, id string) (*models.Card, error)
	// ListCards returns the list's cards ordered by position.
	ListCards(ctx context.Context, listID string) ([]*models.Card, error)
	ListCardsByBoard(ctx context.Context, boardID string) ([]*models.Card, error)
	CountCards(ctx context.Context, listID string) (int, error)
	SaveCard(ctx context.Context, card *models.Card) error
	SaveCards(ctx context.Context, cards []*models.Card) error
	// The card deletes also remove the cards' comments.
	DeleteCard(ctx context.Context, id string) error
	DeleteCardsByList(ctx context.Context, listID string) error
	DeleteCardsByBoard(ctx context.Context, boardID string) error
}

// CommentRepository stores card comments
type CommentRepository interface {
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	// ListCommentsByCard returns the card's comments oldest first.
	ListCommentsByCard(ctx context.Context, cardID string) ([]*models.Comment, error)
	// ListCommentsByAuthor returns the author's comments newest first.
	ListCommentsByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error)
	SaveComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

// LabelRepository stores labels
type LabelRepository interface {
	GetLabel(ctx context.Context, id string) (*models.Label, error)
	GetLabelByName(ctx context.Context, boardID, name string) (*models.Label, error)
	ListLabels(ctx context.Context, boardID string) ([]*models.Label, error)
	SaveLabel(ctx context.Context, label *models.Label) error
	// DeleteLabel also detaches the label from every card.
	DeleteLabel(ctx context.Context, id string) error
	DeleteLabelsByBoard(ctx context.Context, boardID string) error
}

// Repository combines the board aggregate stores
type Repository interface {
	BoardRepository
	MemberRepository
	ListRepository
	CardRepository
	CommentRepository
	LabelRepository
	Close() error
}
