package service

import (
	"time"

	"github.com/dongwonkwak/boardly-sub001/internal/board/models"
	"github.com/dongwonkwak/boardly-sub001/internal/board/policy"
)

// Request types

// CreateBoardRequest contains the data for creating a new board
type CreateBoardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateBoardRequest contains the data for updating a board
type UpdateBoardRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AddMemberRequest contains the data for adding a board member
type AddMemberRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// CreateListRequest contains the data for creating a new list
type CreateListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// UpdateListRequest contains the data for updating a list
type UpdateListRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// CreateCardRequest contains the data for creating a new card
type CreateCardRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateCardRequest contains the data for updating a card.
// A nil slice leaves labels or assignees unchanged; an empty one clears them.
type UpdateCardRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Completed      *bool      `json:"completed,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ClearDueDate   bool       `json:"clear_due_date,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	ClearStartDate bool       `json:"clear_start_date,omitempty"`
	// Priority is one of low, medium, high or urgent; an empty string clears it.
	Priority  *string  `json:"priority,omitempty"`
	LabelIDs  []string `json:"label_ids,omitempty"`
	Assignees []string `json:"assignees,omitempty"`
}

// MoveCardRequest contains the target of a card move. An empty TargetListID keeps the card's list.
type MoveCardRequest struct {
	TargetListID string `json:"target_list_id,omitempty"`
	Position     int    `json:"position"`
}

// CloneCardRequest contains the data for cloning a card
type CloneCardRequest struct {
	Title        string `json:"title"`
	TargetListID string `json:"target_list_id,omitempty"`
}

// CommentRequest contains the text of a new or edited comment
type CommentRequest struct {
	Content string `json:"content"`
}

// CreateLabelRequest contains the data for creating a label
type CreateLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateLabelRequest contains the data for updating a label
type UpdateLabelRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// Result types

// ListDetail is a list with its ordered cards.
type ListDetail struct {
	*models.BoardList
	Cards []*models.Card `json:"cards"`
}

// BoardDetail is a board with everything a board screen renders.
type BoardDetail struct {
	Board   *models.Board         `json:"board"`
	Lists   []*ListDetail         `json:"lists"`
	Members []*models.BoardMember `json:"members"`
	Labels  []*models.Label       `json:"labels"`
}

// BoardLists is a board's ordered lists with its list-count grade.
type BoardLists struct {
	Lists                []*models.BoardList    `json:"lists"`
	Status               policy.ListCountStatus `json:"status"`
	AvailableSlots       int                    `json:"available_slots"`
	RequiresNotification bool                   `json:"requires_notification"`
}
