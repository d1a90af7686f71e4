package activity

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
	"github.com/dongwonkwak/boardly-sub001/internal/events"
	"github.com/dongwonkwak/boardly-sub001/internal/events/bus"
)

// Sink persists activities published on the bus. Sinks share a queue group so each
// activity is written once however many instances run.
type Sink struct {
	store  Store
	bus    bus.EventBus
	sub    bus.Subscription
	logger *logger.Logger
}

func NewSink(store Store, eventBus bus.EventBus, log *logger.Logger) *Sink {
	return &Sink{
		store:  store,
		bus:    eventBus,
		logger: log.WithFields(zap.String("component", "activity-sink")),
	}
}

// Start subscribes to every board's activity subject.
func (s *Sink) Start() error {
	sub, err := s.bus.QueueSubscribe(events.ActivityWildcardSubject, events.ActivitySinkQueue, s.handle)
	if err != nil {
		return fmt.Errorf("subscribe activity sink: %w", err)
	}
	s.sub = sub
	s.logger.Info("Activity sink started")
	return nil
}

// Stop unsubscribes the sink.
func (s *Sink) Stop() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Unsubscribe()
}

func (s *Sink) handle(ctx context.Context, event *bus.Event) error {
	a, err := FromEvent(event)
	if err != nil {
		s.logger.Warn("dropping malformed activity event", zap.String("event_id", event.ID), zap.Error(err))
		return nil
	}
	if err := s.store.Append(ctx, a); err != nil {
		return fmt.Errorf("persist activity %s: %w", a.ID, err)
	}
	s.logger.Debug("activity persisted",
		zap.String("activity_id", a.ID),
		zap.String("board_id", a.BoardID),
		zap.String("type", string(a.Type)))
	return nil
}
