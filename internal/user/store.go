package user

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Store persists users
type Store interface {
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	SaveUser(ctx context.Context, u *User) error
}

// MemoryStore keeps users in process
type MemoryStore struct {
	users map[string]*User
	mu    sync.RWMutex
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]*User)}
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	copied := *u
	return &copied, nil
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		result = append(result, &copied)
	}
	slices.SortFunc(result, func(a, b *User) int {
		switch {
		case a.Email < b.Email:
			return -1
		case a.Email > b.Email:
			return 1
		}
		return 0
	})
	return result, nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	copied := *u
	s.users[u.ID] = &copied
	return nil
}
