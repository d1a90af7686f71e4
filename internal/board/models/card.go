package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Card is an item within a list
type Card struct {
	ID          string     `json:"id" db:"id"`
	ListID      string     `json:"list_id" db:"list_id"`
	BoardID     string     `json:"board_id" db:"board_id"`
	Title       string     `json:"title" db:"title"`
	Description string     `json:"description" db:"description"`
	Position    int        `json:"position" db:"position"`
	DueDate     *time.Time `json:"due_date,omitempty" db:"due_date"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	Priority    Priority   `json:"priority,omitempty" db:"priority"`
	Completed   bool       `json:"completed" db:"completed"`
	Archived    bool       `json:"archived" db:"archived"`
	Assignees   []string   `json:"assignees" db:"-"`
	LabelIDs    []string   `json:"label_ids" db:"-"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// NewCard creates a card at the given position.
func NewCard(boardID, listID, title, description string, position int) *Card {
	now := time.Now().UTC()
	return &Card{
		ID:          uuid.New().String(),
		ListID:      listID,
		BoardID:     boardID,
		Title:       title,
		Description: description,
		Position:    position,
		Assignees:   []string{},
		LabelIDs:    []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Card) GetID() string { return c.ID }

func (c *Card) GetPosition() int { return c.Position }

func (c *Card) SetPosition(position int) {
	c.Position = position
	c.UpdatedAt = time.Now().UTC()
}

func (c *Card) UpdateTitle(title string) {
	c.Title = title
	c.UpdatedAt = time.Now().UTC()
}

func (c *Card) UpdateDescription(description string) {
	c.Description = description
	c.UpdatedAt = time.Now().UTC()
}

// MoveToList places the card in another list at position.
func (c *Card) MoveToList(listID string, position int) {
	c.ListID = listID
	c.Position = position
	c.UpdatedAt = time.Now().UTC()
}

// Clone copies the card into listID at position. The copy is not completed and has no
// assignees; labels are kept only when keepLabels is set.
func (c *Card) Clone(title, listID string, position int, keepLabels bool) *Card {
	clone := NewCard(c.BoardID, listID, title, c.Description, position)
	clone.DueDate = copyTime(c.DueDate)
	clone.StartDate = copyTime(c.StartDate)
	clone.Priority = c.Priority
	if keepLabels {
		clone.LabelIDs = append(clone.LabelIDs, c.LabelIDs...)
	}
	return clone
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	copied := *t
	return &copied
}

// Priority ranks a card. The empty value means no priority.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority accepts a priority name in any case. An empty name clears the priority.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return p, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}

// Comment is a note left on a card by a user
type Comment struct {
	ID        string    `json:"id" db:"id"`
	CardID    string    `json:"card_id" db:"card_id"`
	BoardID   string    `json:"board_id" db:"board_id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Content   string    `json:"content" db:"content"`
	Edited    bool      `json:"edited" db:"edited"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewComment creates an unedited comment on card.
func NewComment(card *Card, authorID, content string) *Comment {
	now := time.Now().UTC()
	return &Comment{
		ID:        uuid.New().String(),
		CardID:    card.ID,
		BoardID:   card.BoardID,
		AuthorID:  authorID,
		Content:   strings.TrimSpace(content),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateContent replaces the text and marks the comment as edited.
func (c *Comment) UpdateContent(content string) {
	c.Content = strings.TrimSpace(content)
	c.Edited = true
	c.UpdatedAt = time.Now().UTC()
}

func (c *Comment) IsAuthor(userID string) bool {
	return c.AuthorID == userID
}

// Label is a board-scoped tag attached to cards
type Label struct {
	ID        string    `json:"id" db:"id"`
	BoardID   string    `json:"board_id" db:"board_id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewLabel creates a label.
func NewLabel(boardID, name, color string) *Label {
	now := time.Now().UTC()
	return &Label{
		ID:        uuid.New().String(),
		BoardID:   boardID,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (l *Label) Update(name, color string) {
	l.Name = name
	l.Color = color
	l.UpdatedAt = time.Now().UTC()
}
