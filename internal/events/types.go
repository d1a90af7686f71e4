// Package events provides event types and subjects for the Boardly event system.
package events

// Event types
const (
	ActivityRecorded = "activity.recorded"
)

// ActivityWildcardSubject matches the activity subject of every board.
const ActivityWildcardSubject = "activity.*"

// ActivitySinkQueue is the queue group shared by activity persisters.
const ActivitySinkQueue = "activity-sink"

// BuildActivitySubject returns the subject activity for a board is published on.
func BuildActivitySubject(boardID string) string {
	return "activity." + boardID
}
