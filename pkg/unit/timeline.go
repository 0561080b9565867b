package unit

import (
	"sync"

	"github.com/modrunio/modrun/pkg/unit/status"
)

// Timeline owns the ordered revision history of one unit: insertion
// order is chronological, oldest first, and the current revision is
// always the newest. Revisions are never removed individually; the whole
// sequence is replaced only by Reset.
//
// The backing slice is replaced wholesale on every mutation, never
// mutated in place, so a snapshot handed out by All stays valid and no
// reader can observe a partially appended state.
type Timeline struct {
	mu    sync.RWMutex
	revs  []*Revision
	stale bool
}

// Append adds a revision at the end, making it current.
func (t *Timeline) Append(r *Revision) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stale {
		return status.ErrStaleUnit
	}
	next := make([]*Revision, len(t.revs)+1)
	copy(next, t.revs)
	next[len(t.revs)] = r
	t.revs = next
	return nil
}

// Current returns the newest revision.
func (t *Timeline) Current() (*Revision, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.revs) == 0 {
		return nil, status.ErrEmptyTimeline
	}
	return t.revs[len(t.revs)-1], nil
}

// Contains is an identity membership test across all tracked revisions,
// current or not.
func (t *Timeline) Contains(r *Revision) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, rev := range t.revs {
		if rev == r {
			return true
		}
	}
	return false
}

// All returns the revisions oldest first. The returned slice is a stable
// snapshot; mutations replace the backing slice instead of editing it.
func (t *Timeline) All() []*Revision {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.revs
}

// Len is the number of tracked revisions.
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.revs)
}

// InUse reports whether any tracked revision still has external
// dependents pointing at it.
func (t *Timeline) InUse() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, rev := range t.revs {
		if rev.inUse() {
			return true
		}
	}
	return false
}

// Reset discards all revisions, replacing them with exactly the one
// supplied.
func (t *Timeline) Reset(r *Revision) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stale {
		return status.ErrStaleUnit
	}
	t.revs = []*Revision{r}
	return nil
}

// MarkStale permanently retires the timeline. One way.
func (t *Timeline) MarkStale() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stale = true
}

// Stale reports whether the timeline has been retired.
func (t *Timeline) Stale() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stale
}
