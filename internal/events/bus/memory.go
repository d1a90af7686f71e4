package bus

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

// MemoryEventBus implements EventBus in process. Handlers run on their own goroutines.
type MemoryEventBus struct {
	subscriptions []*memorySubscription
	queues        map[string]*queueGroup
	mu            sync.RWMutex
	inflight      sync.WaitGroup
	logger        *logger.Logger
	closed        bool
}

type memorySubscription struct {
	bus     *MemoryEventBus
	subject string
	pattern *regexp.Regexp // nil for exact subjects
	handler EventHandler
	queue   string
	active  bool
	mu      sync.Mutex
}

// queueGroup round-robins deliveries between its members.
type queueGroup struct {
	subscribers []*memorySubscription
	next        int
}

func (s *memorySubscription) Unsubscribe() error {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()

	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscriptions {
		if sub == s {
			b.subscriptions = append(b.subscriptions[:i], b.subscriptions[i+1:]...)
			break
		}
	}
	if s.queue != "" {
		if qg, ok := b.queues[queueKey(s.queue, s.subject)]; ok {
			for i, sub := range qg.subscribers {
				if sub == s {
					qg.subscribers = append(qg.subscribers[:i], qg.subscribers[i+1:]...)
					break
				}
			}
		}
	}
	return nil
}

func (s *memorySubscription) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *memorySubscription) matches(subject string) bool {
	if s.pattern == nil {
		return s.subject == subject
	}
	return s.pattern.MatchString(subject)
}

// NewMemoryEventBus creates a new in-memory event bus
func NewMemoryEventBus(log *logger.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		queues: make(map[string]*queueGroup),
		logger: log,
	}
}

// Publish delivers the event to every matching subscription and to one member
// of every matching queue group. The handler context is detached from ctx
// cancellation so delivery outlives the publishing request.
func (b *MemoryEventBus) Publish(ctx context.Context, subject string, event *Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("event bus is closed")
	}

	handlerCtx := context.WithoutCancel(ctx)
	delivered := make(map[string]bool)

	for _, sub := range b.subscriptions {
		if !sub.IsValid() || !sub.matches(subject) {
			continue
		}
		if sub.queue != "" {
			key := queueKey(sub.queue, sub.subject)
			if delivered[key] {
				continue
			}
			delivered[key] = true
			if target := b.queues[key].pick(); target != nil {
				b.deliver(handlerCtx, target, subject, event)
			}
			continue
		}
		b.deliver(handlerCtx, sub, subject, event)
	}

	b.logger.Debug("Published event",
		zap.String("subject", subject),
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type))
	return nil
}

func (b *MemoryEventBus) deliver(ctx context.Context, sub *memorySubscription, subject string, event *Event) {
	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		if err := sub.handler(ctx, event); err != nil {
			b.logger.Error("Event handler error",
				zap.String("subject", subject),
				zap.String("event_id", event.ID),
				zap.Error(err))
		}
	}()
}

// Subscribe creates a subscription to a subject pattern.
// Supports NATS-style wildcards: * (one token) and > (the remaining tokens).
func (b *MemoryEventBus) Subscribe(subject string, handler EventHandler) (Subscription, error) {
	return b.subscribe(subject, "", handler)
}

// QueueSubscribe creates a queue subscription; only one member of a queue group
// receives each event.
func (b *MemoryEventBus) QueueSubscribe(subject, queue string, handler EventHandler) (Subscription, error) {
	return b.subscribe(subject, queue, handler)
}

func (b *MemoryEventBus) subscribe(subject, queue string, handler EventHandler) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("event bus is closed")
	}

	sub := &memorySubscription{
		bus:     b,
		subject: subject,
		pattern: compilePattern(subject),
		handler: handler,
		queue:   queue,
		active:  true,
	}
	b.subscriptions = append(b.subscriptions, sub)

	if queue != "" {
		key := queueKey(queue, subject)
		qg, ok := b.queues[key]
		if !ok {
			qg = &queueGroup{}
			b.queues[key] = qg
		}
		qg.subscribers = append(qg.subscribers, sub)
	}

	b.logger.Debug("Subscribed to subject", zap.String("subject", subject), zap.String("queue", queue))
	return sub, nil
}

// Wait blocks until every handler started so far has returned.
func (b *MemoryEventBus) Wait() {
	b.inflight.Wait()
}

// Close stops accepting events and waits for running handlers.
func (b *MemoryEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for _, sub := range b.subscriptions {
		sub.mu.Lock()
		sub.active = false
		sub.mu.Unlock()
	}
	b.subscriptions = nil
	b.queues = make(map[string]*queueGroup)
	b.mu.Unlock()

	b.inflight.Wait()
	b.logger.Info("Memory event bus closed")
}

// IsConnected returns true until Close is called.
func (b *MemoryEventBus) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return !b.closed
}

func (qg *queueGroup) pick() *memorySubscription {
	if qg == nil || len(qg.subscribers) == 0 {
		return nil
	}
	for range qg.subscribers {
		sub := qg.subscribers[qg.next%len(qg.subscribers)]
		qg.next++
		if sub.IsValid() {
			return sub
		}
	}
	return nil
}

func queueKey(queue, subject string) string {
	return queue + ":" + subject
}

// compilePattern converts a NATS-style pattern to a regex, or nil when the
// subject has no wildcards.
func compilePattern(pattern string) *regexp.Regexp {
	if !strings.Contains(pattern, "*") && !strings.Contains(pattern, ">") {
		return nil
	}
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `\*`, `[^.]+`)
	escaped = strings.ReplaceAll(escaped, `>`, `.+`)
	return regexp.MustCompile("^" + escaped + "$")
}
