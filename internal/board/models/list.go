package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ListColor is one of the fixed list header colors.
type ListColor string

const (
	ColorBlue      ListColor = "#0079BF"
	ColorOrange    ListColor = "#D29034"
	ColorGreen     ListColor = "#519839"
	ColorRed       ListColor = "#B04632"
	ColorPurple    ListColor = "#89609E"
	ColorPink      ListColor = "#CD5A91"
	ColorLightBlue ListColor = "#4BBFDA"
	ColorSky       ListColor = "#00AECC"
	ColorGrey      ListColor = "#838C91"

	DefaultListColor = ColorBlue
)

var listColors = []ListColor{
	ColorBlue, ColorOrange, ColorGreen, ColorRed, ColorPurple,
	ColorPink, ColorLightBlue, ColorSky, ColorGrey,
}

// ListColors returns the allowed list colors in display order.
func ListColors() []ListColor {
	out := make([]ListColor, len(listColors))
	copy(out, listColors)
	return out
}

// ParseListColor accepts a hex color from the allowed set. An empty value yields the default.
func ParseListColor(value string) (ListColor, bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	if value == "" {
		return DefaultListColor, true
	}
	for _, c := range listColors {
		if string(c) == value {
			return c, true
		}
	}
	return "", false
}

// BoardList is an ordered column within a board
type BoardList struct {
	ID          string    `json:"id" db:"id"`
	BoardID     string    `json:"board_id" db:"board_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Color       ListColor `json:"color" db:"color"`
	Position    int       `json:"position" db:"position"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewBoardList creates a list at the given position.
func NewBoardList(boardID, title, description string, color ListColor, position int) *BoardList {
	if color == "" {
		color = DefaultListColor
	}
	now := time.Now().UTC()
	return &BoardList{
		ID:          uuid.New().String(),
		BoardID:     boardID,
		Title:       title,
		Description: description,
		Color:       color,
		Position:    position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// GetID, GetPosition and SetPosition let lists take part in position bookkeeping.
func (l *BoardList) GetID() string { return l.ID }

func (l *BoardList) GetPosition() int { return l.Position }

func (l *BoardList) SetPosition(position int) {
	l.Position = position
	l.UpdatedAt = time.Now().UTC()
}

func (l *BoardList) UpdateTitle(title string) {
	l.Title = title
	l.UpdatedAt = time.Now().UTC()
}

func (l *BoardList) UpdateDescription(description string) {
	l.Description = description
	l.UpdatedAt = time.Now().UTC()
}

func (l *BoardList) UpdateColor(color ListColor) {
	l.Color = color
	l.UpdatedAt = time.Now().UTC()
}
