// Package status exports errors produced by the unit package.
package status

import (
	"github.com/modrunio/modrun/pkg/errors"
)

var (
	// ErrStaleUnit indicates a mutating operation on a unit that has been
	// fully purged from the runtime
	ErrStaleUnit = errors.New("unit is stale and accepts no further mutation")

	// ErrEmptyTimeline indicates a read before any revision was attached
	ErrEmptyTimeline = errors.New("unit has no revisions")

	// ErrLockHeld indicates the ownership lock is held by another owner
	ErrLockHeld = errors.New("unit is locked by another owner")

	// ErrNotLocked indicates a release of an ownership lock nobody holds
	ErrNotLocked = errors.New("unit is not locked")

	// ErrNotOwner indicates a lock operation by a token that is not the holder
	ErrNotOwner = errors.New("unit lock is held by a different owner")

	// ErrInvalidOwner indicates an empty owner token
	ErrInvalidOwner = errors.New("lock owner token must not be empty")

	// ErrDuplicateIdentity indicates another live unit already declares the
	// same symbolic name and version
	ErrDuplicateIdentity = errors.New("unit symbolic name and version are not unique")

	// ErrMissingNativeLibrary indicates a declared native library is absent
	// from the revision content
	ErrMissingNativeLibrary = errors.New("declared native library missing from revision content")

	// ErrNoRuntime indicates a forwarded operation on a handle without an
	// attached runtime facade
	ErrNoRuntime = errors.New("no runtime facade attached to unit")
)
