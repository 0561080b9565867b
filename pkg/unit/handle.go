package unit

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/modrunio/modrun/pkg/errors"
	"github.com/modrunio/modrun/pkg/manifest"
	"github.com/modrunio/modrun/pkg/metrics"
	"github.com/modrunio/modrun/pkg/model"
	"github.com/modrunio/modrun/pkg/runtime"
	"github.com/modrunio/modrun/pkg/store"
	"github.com/modrunio/modrun/pkg/unit/status"
	"go.uber.org/zap"
)

// Handle is the in-memory representation of one managed unit. It tracks
// the unit's revision timeline, lifecycle flags, ownership lock and
// localized header cache, and forwards everything else to the runtime
// facade after access checks.
//
// Field access is serialized per concern: flags under the handle's own
// mutex, revisions inside the Timeline, lock bookkeeping inside the
// OwnerLock, cached headers inside the header cache. No cross-field
// atomicity is promised beyond what the individual operations state.
type Handle struct {
	id      uint64
	store   store.Store
	facade  runtime.Facade
	parser  manifest.Parser
	tracker DependentTracker
	l       *zap.Logger
	mtx     *metrics.Collector
	bare    bool

	mu             sync.Mutex
	state          model.State
	removalPending bool
	extension      bool

	timeline Timeline
	lock     OwnerLock
	headers  headerCache
}

// New builds a handle over the archive state in s and creates the
// initial revision from the store's current revision, leaving the unit
// INSTALLED. Validation failures surface before the handle exists.
func New(ctx context.Context, s store.Store, opts ...Option) (*Handle, error) {
	h := &Handle{
		store:  s,
		parser: manifest.New(),
		state:  model.StateInstalled,
		l:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	id, err := s.ID()
	if err != nil {
		return nil, err
	}
	h.id = id
	h.l = h.l.With(zap.Uint64("unit", id))
	if !h.bare {
		rev, err := h.buildRevision(ctx)
		if err != nil {
			return nil, err
		}
		if err := h.timeline.Append(rev); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// ID is the unit identifier, stable for the unit's lifetime.
func (h *Handle) ID() uint64 {
	return h.id
}

func (h *Handle) String() string {
	if sym := h.SymbolicName(); sym != "" {
		return fmt.Sprintf("%s [%d]", sym, h.id)
	}
	return fmt.Sprintf("[%d]", h.id)
}

//
// Snapshot reads and guarded mutators.
//

// State returns the operational state snapshot.
func (h *Handle) State() model.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// SetState moves the operational state. A stale unit only accepts the
// transition to UNINSTALLED, which teardown needs.
func (h *Handle) SetState(s model.State) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timeline.Stale() && s != model.StateUninstalled {
		return status.ErrStaleUnit
	}
	h.state = s
	return nil
}

// IsStale reports whether the unit has been fully purged.
func (h *Handle) IsStale() bool {
	return h.timeline.Stale()
}

// SetStale permanently retires the unit. One way; always permitted since
// it drives teardown.
func (h *Handle) SetStale() {
	h.timeline.MarkStale()
}

// IsRemovalPending reports whether the unit awaits a full refresh.
func (h *Handle) IsRemovalPending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.removalPending
}

// SetRemovalPending flags the unit as updated or uninstalled while still
// in use.
func (h *Handle) SetRemovalPending(pending bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timeline.Stale() {
		return status.ErrStaleUnit
	}
	h.removalPending = pending
	return nil
}

// IsExtension reports whether the unit extends the runtime itself and
// can only be retired by a full restart.
func (h *Handle) IsExtension() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.extension
}

// SetExtension marks the unit as a runtime extension.
func (h *Handle) SetExtension(extension bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timeline.Stale() {
		return status.ErrStaleUnit
	}
	h.extension = extension
	return nil
}

//
// Revision management.
//

// CurrentRevision returns the newest revision.
func (h *Handle) CurrentRevision() (*Revision, error) {
	return h.timeline.Current()
}

// Revisions returns all tracked revisions, oldest first.
func (h *Handle) Revisions() []*Revision {
	return h.timeline.All()
}

// HasRevision reports whether the given revision is still tracked by
// this unit, current or not.
func (h *Handle) HasRevision(r *Revision) bool {
	return h.timeline.Contains(r)
}

// InUse reports whether any tracked revision still has external
// dependents.
func (h *Handle) InUse() bool {
	return h.timeline.InUse()
}

// AppendRevision adds an already constructed revision to the timeline.
// Revise is the usual path; this exists for the system unit.
func (h *Handle) AppendRevision(r *Revision) error {
	if err := h.timeline.Append(r); err != nil {
		return err
	}
	h.mtx.IncRevisionAppended()
	return nil
}

// Revise persists a new revision read from content (or re-fetched from
// location) and appends it to the timeline. Parsing, uniqueness and
// native library validation complete fully before the append; on failure
// the timeline is untouched and the caller decides whether to
// RollbackRevise the archive.
func (h *Handle) Revise(ctx context.Context, location string, content io.Reader) error {
	if h.timeline.Stale() {
		return status.ErrStaleUnit
	}
	if err := h.store.Revise(ctx, location, content); err != nil {
		return err
	}
	rev, err := h.buildRevision(ctx)
	if err != nil {
		return err
	}
	return h.AppendRevision(rev)
}

// RollbackRevise undoes the newest archive revision after a failed
// update. It never touches the timeline; a revision that was appended
// stays tracked until a full refresh.
func (h *Handle) RollbackRevise(ctx context.Context) (bool, error) {
	return h.store.RollbackRevise(ctx)
}

// Reset reinitializes the unit for the reinstall-in-place recovery path:
// a single fresh revision from the archive's current state, INSTALLED,
// all transient flags and cached headers cleared. Calling it twice
// yields the same observable state as calling it once.
func (h *Handle) Reset(ctx context.Context) error {
	if h.timeline.Stale() {
		return status.ErrStaleUnit
	}
	rev, err := h.buildRevision(ctx)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.timeline.Reset(rev); err != nil {
		return err
	}
	h.state = model.StateInstalled
	h.removalPending = false
	h.headers.clear()
	return nil
}

// buildRevision constructs a revision from the archive's current state.
// All validation happens here, before anything is appended.
func (h *Handle) buildRevision(ctx context.Context) (*Revision, error) {
	idx, err := h.store.CurrentRevisionIndex()
	if err != nil {
		return nil, err
	}
	raw, err := h.store.RawManifest(idx)
	if err != nil {
		return nil, err
	}
	parsed, err := h.parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	if h.facade != nil && !parsed.Identity.IsZero() {
		ids, err := h.facade.UnitIdentities(ctx)
		if err != nil {
			return nil, err
		}
		for _, other := range ids {
			if other.ID != h.id && parsed.Identity.Equal(other.Identity) {
				return nil, status.ErrDuplicateIdentity
			}
		}
	}
	content, err := h.store.RevisionContent(idx)
	if err != nil {
		return nil, err
	}
	for _, lib := range parsed.NativeLibraries {
		rc, err := content.Resource(ctx, lib.EntryName)
		if err != nil {
			return nil, status.ErrMissingNativeLibrary.Wrap(err)
		}
		_ = rc.Close()
	}
	return &Revision{
		id:       fmt.Sprintf("%d.%d", h.id, idx),
		manifest: raw,
		parsed:   parsed,
		content:  content,
		tracker:  h.tracker,
	}, nil
}

// SymbolicName of the current revision, empty when none is declared or
// no revision exists yet.
func (h *Handle) SymbolicName() string {
	cur, err := h.timeline.Current()
	if err != nil {
		return ""
	}
	return cur.Identity().Name
}

// Version of the current revision, nil when undeclared.
func (h *Handle) Version() *semver.Version {
	cur, err := h.timeline.Current()
	if err != nil {
		return nil
	}
	return cur.Identity().Version
}

//
// Degraded archive accessors. Reads log storage failures and fall back
// to a default instead of aborting; they sit on display paths.
//

// Location the unit was installed from, empty on storage failure.
func (h *Handle) Location() string {
	loc, err := h.store.Location()
	if err != nil {
		h.l.Error("error getting location from unit archive", zap.Error(err))
		return ""
	}
	return loc
}

// LastModified is the archive modification token, zero on failure.
func (h *Handle) LastModified() int64 {
	t, err := h.store.LastModified()
	if err != nil {
		h.l.Error("error reading modification token from unit archive", zap.Error(err))
		return 0
	}
	return t
}

// SetLastModified records a new modification token.
func (h *Handle) SetLastModified(t int64) error {
	if err := h.store.SetLastModified(t); err != nil {
		h.l.Error("error writing modification token to unit archive", zap.Error(err))
		return err
	}
	return nil
}

// PersistentState is the state recorded in the archive, INSTALLED on
// failure.
func (h *Handle) PersistentState() model.State {
	s, err := h.store.PersistentState()
	if err != nil {
		h.l.Error("error reading persistent state from unit archive", zap.Error(err))
		return model.StateInstalled
	}
	return s
}

// SetPersistentState records the state to restore on the next runtime
// launch.
func (h *Handle) SetPersistentState(s model.State) error {
	if err := h.store.SetPersistentState(s); err != nil {
		h.l.Error("error writing persistent state to unit archive",
			zap.Stringer("state", s), zap.Error(err))
		return err
	}
	return nil
}

// StartLevel recorded in the archive, or defaultLevel on failure.
func (h *Handle) StartLevel(defaultLevel int) int {
	lvl, err := h.store.StartLevel()
	if err != nil {
		h.l.Error("error reading start level from unit archive", zap.Error(err))
		return defaultLevel
	}
	return lvl
}

// SetStartLevel records the unit's start level.
func (h *Handle) SetStartLevel(level int) error {
	if err := h.store.SetStartLevel(level); err != nil {
		h.l.Error("error writing start level to unit archive", zap.Error(err))
		return err
	}
	return nil
}

// Purge marks the unit stale and removes its archive. The handle keeps
// answering snapshot reads with its last-known state.
func (h *Handle) Purge(ctx context.Context) error {
	h.SetStale()
	return h.store.Purge(ctx)
}

//
// Forwarded operations. The handle checks access and delegates the
// mechanics to the runtime facade.
//

// Start the unit. persistent records the autostart wish in the archive.
func (h *Handle) Start(ctx context.Context, persistent bool) error {
	if err := h.checkAccess(runtime.ActionExecute); err != nil {
		return err
	}
	return h.facade.StartUnit(ctx, h.id, persistent)
}

// Stop the unit.
func (h *Handle) Stop(ctx context.Context, persistent bool) error {
	if err := h.checkAccess(runtime.ActionExecute); err != nil {
		return err
	}
	return h.facade.StopUnit(ctx, h.id, persistent)
}

// Update the unit from content, or from its original location when
// content is nil.
func (h *Handle) Update(ctx context.Context, content io.Reader) error {
	if err := h.checkAccess(runtime.ActionLifecycle); err != nil {
		return err
	}
	return h.facade.UpdateUnit(ctx, h.id, content)
}

// Uninstall the unit.
func (h *Handle) Uninstall(ctx context.Context) error {
	if err := h.checkAccess(runtime.ActionLifecycle); err != nil {
		return err
	}
	return h.facade.UninstallUnit(ctx, h.id)
}

// Resource loads a named resource through the runtime's loading
// machinery.
func (h *Handle) Resource(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := h.checkAccess(runtime.ActionResource); err != nil {
		return nil, err
	}
	return h.facade.ResourceFor(ctx, h.id, name)
}

// Headers returns the localized manifest for locale after a metadata
// access check. An empty locale resolves against the base resources
// only.
func (h *Handle) Headers(ctx context.Context, locale string) (model.Manifest, error) {
	if h.facade != nil {
		if err := h.facade.CheckAccess(h.id, runtime.ActionMetadata); err != nil {
			return nil, err
		}
	}
	return h.localizedHeaders(ctx, locale)
}

func (h *Handle) checkAccess(action runtime.Action) error {
	if h.facade == nil {
		return status.ErrNoRuntime
	}
	return h.facade.CheckAccess(h.id, action)
}

//
// Locking surface.
//

// Lockable reports whether owner could take the ownership lock right
// now.
func (h *Handle) Lockable(owner Owner) bool {
	return h.lock.Free(owner)
}

// Lock acquires the ownership lock for owner, counting contention.
func (h *Handle) Lock(owner Owner) error {
	err := h.lock.Acquire(owner)
	if errors.Is(err, status.ErrLockHeld) {
		h.mtx.IncLockContention()
	}
	return err
}

// Unlock releases one level of the ownership lock.
func (h *Handle) Unlock(owner Owner) error {
	return h.lock.Release(owner)
}

// TransferLockFrom copies the lock state from another handle, keeping
// whichever owner holds exclusive access across an in-place swap of the
// authoritative handle.
func (h *Handle) TransferLockFrom(src *Handle) {
	h.lock.Transfer(&src.lock)
}
