package activity

import (
	"context"

	"github.com/dongwonkwak/boardly-sub001/internal/events"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

// Logger records activities.
type Logger interface {
	Log(ctx context.Context, a *Activity) error
}

// Recorder publishes activities on the board's activity subject.
type Recorder struct {
	bus bus.EventBus
}

var _ Logger = (*Recorder)(nil)

func NewRecorder(eventBus bus.EventBus) *Recorder {
	return &Recorder{bus: eventBus}
}

func (r *Recorder) Log(ctx context.Context, a *Activity) error {
	return r.bus.Publish(ctx, events.BuildActivitySubject(a.BoardID), a.ToEvent())
}
