package store

import (
	"context"
	"io"

	"github.com/modrunio/modrun/pkg/model"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	// ErrNotFound indicates a key or resource is absent from the archive.
	ErrNotFound errString = "not found"
	// ErrNotSupported indicates an operation the backing store cannot do.
	ErrNotSupported errString = "not supported"
	// ErrExists indicates an archive already occupies the target location.
	ErrExists errString = "exists already"
	// ErrCorrupt indicates the archive bookkeeping cannot be read back.
	ErrCorrupt errString = "archive state corrupt"
)

// Content exposes the loaded resources of one persisted revision.
//
// Resource returns ErrNotFound (possibly wrapped) for names the revision
// does not carry; callers on localization paths treat that as a skip, not
// a failure.
type Content interface {
	Resource(ctx context.Context, name string) (io.ReadCloser, error)
}

// Store implementations persist the archive state of a single unit:
// its immutable revision sequence plus the mutable bookkeeping around it
// (persistent lifecycle state, start level, modification token).
//
// Typically this is something file system-like. Implementations are
// assumed to be fairly simple; retries and caching live with the caller.
type Store interface {
	String() string

	// ID is the unit identifier assigned at creation, never reused.
	ID() (uint64, error)
	// Location is the artifact location the unit was installed from.
	Location() (string, error)

	// CurrentRevisionIndex is the index of the newest persisted revision.
	CurrentRevisionIndex() (int, error)
	// RawManifest reads the manifest persisted for the given revision.
	RawManifest(index int) (model.Manifest, error)
	// RevisionContent opens the resources of the given revision.
	RevisionContent(index int) (Content, error)

	// LastModified is an opaque, monotonically advancing token bumped on
	// every archive mutation. It orders cache validity, nothing else.
	LastModified() (int64, error)
	SetLastModified(t int64) error

	PersistentState() (model.State, error)
	SetPersistentState(s model.State) error

	StartLevel() (int, error)
	SetStartLevel(level int) error

	// Revise persists a new revision read from r (or re-fetched from
	// location when r is nil) and makes it the current one.
	Revise(ctx context.Context, location string, r io.Reader) error
	// RollbackRevise discards the newest revision if it is not the only
	// one, reporting whether anything was undone.
	RollbackRevise(ctx context.Context) (bool, error)

	// Purge removes the whole archive. The store is unusable afterwards.
	Purge(ctx context.Context) error
}
