package watcher

import (
	"sync"
	"time"
)

// Tracker remembers which paths this session has already claimed so that
// a file is processed at most once per process lifetime. Claims survive
// the file's processing; restart the process to reprocess a file.
type Tracker struct {
	mu      sync.RWMutex
	claimed map[string]time.Time
}

// NewTracker creates a new claim tracker
func NewTracker() *Tracker {
	return &Tracker{
		claimed: make(map[string]time.Time),
	}
}

// TryClaim marks the path as claimed and returns true. It returns false
// if the path was already claimed.
func (t *Tracker) TryClaim(path string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.claimed[path]; exists {
		return false
	}

	t.claimed[path] = time.Now()
	return true
}

// Forget releases a claim so the path can be picked up again. Used when
// a claimed file could not be queued.
func (t *Tracker) Forget(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.claimed, path)
}

// IsClaimed checks whether the path has been claimed
func (t *Tracker) IsClaimed(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, exists := t.claimed[path]
	return exists
}

// Len returns the number of claimed paths
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.claimed)
}
