// Package activity records what happened on a board and serves it back as a feed.
package activity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dongwonkwak/boardly-sub001/internal/events"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

// Type names an activity.
type Type string

const (
	BoardCreate            Type = "BOARD_CREATE"
	BoardRename            Type = "BOARD_RENAME"
	BoardUpdateDescription Type = "BOARD_UPDATE_DESCRIPTION"
	BoardArchive           Type = "BOARD_ARCHIVE"
	BoardUnarchive         Type = "BOARD_UNARCHIVE"
	BoardDelete            Type = "BOARD_DELETE"
	BoardStar              Type = "BOARD_STAR"
	BoardAddMember         Type = "BOARD_ADD_MEMBER"
	BoardRemoveMember      Type = "BOARD_REMOVE_MEMBER"
	BoardUpdateMemberRole  Type = "BOARD_UPDATE_MEMBER_ROLE"
	ListCreate             Type = "LIST_CREATE"
	ListRename             Type = "LIST_RENAME"
	ListDelete             Type = "LIST_DELETE"
	ListMove               Type = "LIST_MOVE"
	CardCreate             Type = "CARD_CREATE"
	CardUpdate             Type = "CARD_UPDATE"
	CardMove               Type = "CARD_MOVE"
	CardClone              Type = "CARD_CLONE"
	CardDelete             Type = "CARD_DELETE"
	CardAddComment         Type = "CARD_ADD_COMMENT"
	LabelCreate            Type = "LABEL_CREATE"
	LabelDelete            Type = "LABEL_DELETE"
)

// Activity is one recorded event on a board
type Activity struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	ActorID   string         `json:"actor_id"`
	Payload   map[string]any `json:"payload"`
	BoardID   string         `json:"board_id"`
	ListID    string         `json:"list_id,omitempty"`
	CardID    string         `json:"card_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// New creates an activity for boardID with a fresh id and timestamp.
func New(t Type, actorID, boardID string, payload map[string]any) *Activity {
	if payload == nil {
		payload = map[string]any{}
	}
	return &Activity{
		ID:        uuid.New().String(),
		Type:      t,
		ActorID:   actorID,
		Payload:   payload,
		BoardID:   boardID,
		CreatedAt: time.Now().UTC(),
	}
}

// WithList sets the list the activity concerns.
func (a *Activity) WithList(listID string) *Activity {
	a.ListID = listID
	return a
}

// WithCard sets the card the activity concerns.
func (a *Activity) WithCard(cardID string) *Activity {
	a.CardID = cardID
	return a
}

// ToEvent wraps the activity for the event bus.
func (a *Activity) ToEvent() *bus.Event {
	event := bus.NewEvent(events.ActivityRecorded, "board-service", map[string]interface{}{
		"activity_id": a.ID,
		"type":        string(a.Type),
		"actor_id":    a.ActorID,
		"payload":     a.Payload,
		"board_id":    a.BoardID,
		"list_id":     a.ListID,
		"card_id":     a.CardID,
		"created_at":  a.CreatedAt.Format(time.RFC3339Nano),
	})
	return event
}

// FromEvent rebuilds an activity from a bus event. Events that crossed NATS carry
// JSON-decoded values, so every field is type-checked.
func FromEvent(event *bus.Event) (*Activity, error) {
	if event == nil || event.Type != events.ActivityRecorded {
		return nil, fmt.Errorf("not an activity event")
	}
	d := event.Data
	a := &Activity{
		ID:      stringField(d, "activity_id"),
		Type:    Type(stringField(d, "type")),
		ActorID: stringField(d, "actor_id"),
		BoardID: stringField(d, "board_id"),
		ListID:  stringField(d, "list_id"),
		CardID:  stringField(d, "card_id"),
		Payload: map[string]any{},
	}
	if a.ID == "" || a.BoardID == "" || a.Type == "" {
		return nil, fmt.Errorf("activity event %s is missing required fields", event.ID)
	}
	if payload, ok := d["payload"].(map[string]any); ok {
		a.Payload = payload
	}
	created, err := time.Parse(time.RFC3339Nano, stringField(d, "created_at"))
	if err != nil {
		created = event.Timestamp
	}
	a.CreatedAt = created
	return a, nil
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
