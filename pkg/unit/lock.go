package unit

import (
	"sync"

	"github.com/modrunio/modrun/pkg/unit/status"
)

// Owner identifies the holder of a unit's ownership lock. Goroutines
// carry no usable identity, so the runtime supplies an opaque token per
// logical thread of control and passes it to every lock operation.
type Owner string

// OwnerLock is the per-unit mutual exclusion primitive guarding compound
// runtime operations. It is reentrant for the holding owner, fail-fast
// for everyone else, and keeps no waiter queue: rejected callers choose
// their own retry policy.
//
// OwnerLock does not protect the unit's fields; those carry their own
// exclusion. It serializes multi-step operations spanning several handle
// calls.
type OwnerLock struct {
	mu    sync.Mutex
	owner Owner
	depth int
}

// Acquire binds the lock to owner, or increments the depth when owner
// already holds it. Returns ErrLockHeld immediately when another owner
// holds the lock.
func (l *OwnerLock) Acquire(owner Owner) error {
	if owner == "" {
		return status.ErrInvalidOwner
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.depth > 0 && l.owner != owner {
		return status.ErrLockHeld
	}
	l.owner = owner
	l.depth++
	return nil
}

// Release decrements the depth, clearing ownership at zero. Only the
// holder may release.
func (l *OwnerLock) Release(owner Owner) error {
	if owner == "" {
		return status.ErrInvalidOwner
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.depth == 0 {
		return status.ErrNotLocked
	}
	if l.owner != owner {
		return status.ErrNotOwner
	}
	l.depth--
	if l.depth == 0 {
		l.owner = ""
	}
	return nil
}

// Free reports whether owner could acquire the lock without being
// rejected: nobody holds it, or owner already does.
func (l *OwnerLock) Free(owner Owner) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.depth == 0 || l.owner == owner
}

// HeldBy returns the current holder and depth.
func (l *OwnerLock) HeldBy() (Owner, int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.owner, l.depth
}

// Transfer copies holder and depth from src, overwriting this lock's
// state. Used when the authoritative handle for a physical unit is
// swapped during an in-place update and whichever owner held exclusive
// access must keep it.
//
// The source is snapshotted under its own mutex; an acquire racing on
// src can interleave between snapshot and copy. Callers serialize swaps
// themselves.
func (l *OwnerLock) Transfer(src *OwnerLock) {
	src.mu.Lock()
	owner, depth := src.owner, src.depth
	src.mu.Unlock()

	l.mu.Lock()
	l.owner, l.depth = owner, depth
	l.mu.Unlock()
}
