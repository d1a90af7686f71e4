package service

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoardLocksSerializePerBoard(t *testing.T) {
	locks := newBoardLocks()
	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("b1")
			defer unlock()
			n := atomic.AddInt32(&inside, 1)
			for {
				cur := atomic.LoadInt32(&maxInside)
				if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
					break
				}
			}
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, locks.size())
}

func TestBoardLocksMultipleBoardsDoNotDeadlock(t *testing.T) {
	locks := newBoardLocks()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := locks.lock("a", "b")
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := locks.lock("b", "a", "b")
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, locks.size())
}
