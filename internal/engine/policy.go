package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/theirongolddev/yeargoals/internal/model"
)

// ProgressEvent describes a committed mutation to the refresh policy.
// Positive is set when the commit moved a goal forward: a task or sub-goal
// confirmed as completed, or savings increased.
type ProgressEvent struct {
	Op       Op
	GoalID   string
	Positive bool
}

// RefreshPolicy reports whether the activity feed should be re-fetched
// after a commit.
type RefreshPolicy func(ProgressEvent) bool

// RefreshOnPositiveProgress re-fetches activity after any positive-progress
// commit. It is the default.
func RefreshOnPositiveProgress(ev ProgressEvent) bool { return ev.Positive }

// NeverRefresh leaves the activity feed alone until the next Refresh.
func NeverRefresh(ProgressEvent) bool { return false }

// IDAllocator hands out temporary IDs. Every ID must satisfy
// model.IsTemporaryID.
type IDAllocator interface {
	Next() string
}

// UUIDAllocator allocates temp_<uuid> identifiers.
type UUIDAllocator struct{}

// Next returns a fresh temporary ID.
func (UUIDAllocator) Next() string {
	return model.TempIDPrefix + uuid.NewString()
}

type entityLocks struct {
	mu    sync.Mutex
	locks map[string]*entityLock
}

type entityLock struct {
	mu   sync.Mutex
	refs int
}

func newEntityLocks() *entityLocks {
	return &entityLocks{locks: make(map[string]*entityLock)}
}

// lockEntity serializes callers on key when entity locking is enabled. The
// returned function releases the lock.
func (e *Engine) lockEntity(key string) func() {
	l := e.locks
	if l == nil {
		return func() {}
	}

	l.mu.Lock()
	el, ok := l.locks[key]
	if !ok {
		el = &entityLock{}
		l.locks[key] = el
	}
	el.refs++
	l.mu.Unlock()

	el.mu.Lock()
	return func() {
		el.mu.Unlock()
		l.mu.Lock()
		el.refs--
		if el.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
