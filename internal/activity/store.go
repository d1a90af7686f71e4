package activity

import (
	"context"
	"slices"
	"sync"
	"time"
)

// ListOptions pages a board's feed, newest first.
type ListOptions struct {
	Limit  int
	Before time.Time // zero means from the newest entry
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Normalize clamps the page size.
func (o ListOptions) Normalize() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	return o
}

// Store persists activities
type Store interface {
	Append(ctx context.Context, a *Activity) error
	ListByBoard(ctx context.Context, boardID string, opts ListOptions) ([]*Activity, error)
	ListByActor(ctx context.Context, actorID string, opts ListOptions) ([]*Activity, error)
}

// MemoryStore keeps activities in process
type MemoryStore struct {
	items []*Activity
	mu    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, a *Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.ID == a.ID {
			return nil
		}
	}
	copied := *a
	s.items = append(s.items, &copied)
	return nil
}

func (s *MemoryStore) ListByBoard(ctx context.Context, boardID string, opts ListOptions) ([]*Activity, error) {
	return s.list(opts, func(a *Activity) bool { return a.BoardID == boardID }), nil
}

func (s *MemoryStore) ListByActor(ctx context.Context, actorID string, opts ListOptions) ([]*Activity, error) {
	return s.list(opts, func(a *Activity) bool { return a.ActorID == actorID }), nil
}

func (s *MemoryStore) list(opts ListOptions, match func(*Activity) bool) []*Activity {
	opts = opts.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Activity
	for _, a := range s.items {
		if !match(a) {
			continue
		}
		if !opts.Before.IsZero() && !a.CreatedAt.Before(opts.Before) {
			continue
		}
		copied := *a
		result = append(result, &copied)
	}
	slices.SortFunc(result, func(a, b *Activity) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}
