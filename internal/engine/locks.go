package engine

import (
	"context"
	"sync"
)

// admissionLocks serializes check-and-claim units per garage without taking a
// network dependency. Each garage maps to a one-slot channel acting as a
// mutex; acquisition is bounded by the caller's context so a contended garage
// yields Busy instead of an unbounded wait.
type admissionLocks struct {
	mu    sync.Mutex
	locks map[uint64]chan struct{}
}

func newAdmissionLocks() *admissionLocks {
	return &admissionLocks{locks: make(map[uint64]chan struct{})}
}

// acquire obtains the per-garage lock or gives up when ctx expires. On
// success it returns a release function that must be called exactly once.
func (l *admissionLocks) acquire(ctx context.Context, garageID uint64) (func(), bool) {
	l.mu.Lock()
	ch, ok := l.locks[garageID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[garageID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, true
	case <-ctx.Done():
		return nil, false
	}
}
