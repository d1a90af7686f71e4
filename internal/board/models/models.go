// Package models defines the board aggregate: boards, members, lists, cards and labels.
package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyArchived = errors.New("board is already archived")
	ErrNotArchived     = errors.New("board is not archived")
)

// Board represents a top-level board owned by a user
type Board struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Archived    bool      `json:"archived" db:"archived"`
	Starred     bool      `json:"starred" db:"starred"`
	OwnerID     string    `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewBoard creates an active, unstarred board owned by ownerID.
func NewBoard(title, description, ownerID string) *Board {
	now := time.Now().UTC()
	return &Board{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsOwner reports whether userID owns the board.
func (b *Board) IsOwner(userID string) bool {
	return b.OwnerID == userID
}

func (b *Board) UpdateTitle(title string) {
	b.Title = title
	b.touch()
}

func (b *Board) UpdateDescription(description string) {
	b.Description = description
	b.touch()
}

// Archive moves an active board to the archived state.
func (b *Board) Archive() error {
	if b.Archived {
		return ErrAlreadyArchived
	}
	b.Archived = true
	b.touch()
	return nil
}

// Unarchive moves an archived board back to the active state.
func (b *Board) Unarchive() error {
	if !b.Archived {
		return ErrNotArchived
	}
	b.Archived = false
	b.touch()
	return nil
}

// SetStarred reports whether the flag changed.
func (b *Board) SetStarred(starred bool) bool {
	if b.Starred == starred {
		return false
	}
	b.Starred = starred
	b.touch()
	return true
}

func (b *Board) touch() {
	b.UpdatedAt = time.Now().UTC()
}

// Role is a board member's role.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

// ParseRole parses a role name case-insensitively.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToUpper(strings.TrimSpace(value)))
	switch role {
	case RoleOwner, RoleAdmin, RoleEditor, RoleMember, RoleViewer:
		return role, true
	}
	return "", false
}

// BoardMember is a user's membership on a board
type BoardMember struct {
	ID        string    `json:"id" db:"id"`
	BoardID   string    `json:"board_id" db:"board_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewBoardMember creates an active membership.
func NewBoardMember(boardID, userID string, role Role) *BoardMember {
	now := time.Now().UTC()
	return &BoardMember{
		ID:        uuid.New().String(),
		BoardID:   boardID,
		UserID:    userID,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (m *BoardMember) ChangeRole(role Role) {
	m.Role = role
	m.UpdatedAt = time.Now().UTC()
}

func (m *BoardMember) Activate() {
	m.Active = true
	m.UpdatedAt = time.Now().UTC()
}

func (m *BoardMember) Deactivate() {
	m.Active = false
	m.UpdatedAt = time.Now().UTC()
}
