package service

import (
	"slices"
	"sync"
)

// boardLocks serializes position-changing work per board. Entries are reference
// counted and dropped once no caller holds or waits on them.
type boardLocks struct {
	mu    sync.Mutex
	locks map[string]*boardLock
}

type boardLock struct {
	mu   sync.Mutex
	refs int
}

func newBoardLocks() *boardLocks {
	return &boardLocks{locks: make(map[string]*boardLock)}
}

// lock acquires the locks of every given board in id order and returns the release func.
func (l *boardLocks) lock(boardIDs ...string) func() {
	ids := slices.Clone(boardIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	held := make([]*boardLock, 0, len(ids))
	for _, id := range ids {
		bl := l.acquire(id)
		bl.mu.Lock()
		held = append(held, bl)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			l.release(ids[i])
		}
	}
}

func (l *boardLocks) acquire(id string) *boardLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	bl, ok := l.locks[id]
	if !ok {
		bl = &boardLock{}
		l.locks[id] = bl
	}
	bl.refs++
	return bl
}

func (l *boardLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	bl, ok := l.locks[id]
	if !ok {
		return
	}
	bl.refs--
	if bl.refs == 0 {
		delete(l.locks, id)
	}
}

// size returns the number of tracked boards.
func (l *boardLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
