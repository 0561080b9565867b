// Package local is the in-process runtime: a registry of unit handles
// plus the lifecycle sequencing the handles forward to. It grants every
// access check; policy enforcement belongs to embedders that bring
// their own Facade.
package local

import (
	"context"
	"io"
	"sync"

	"github.com/modrunio/modrun/pkg/errors"
	"github.com/modrunio/modrun/pkg/model"
	"github.com/modrunio/modrun/pkg/runtime"
	"github.com/modrunio/modrun/pkg/unit"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

var (
	// ErrUnknownUnit indicates an operation on a unit id that is not
	// registered with this runtime.
	ErrUnknownUnit = errors.New("unit is not registered with this runtime")

	// ErrUnitInUse indicates a refresh on a unit whose superseded
	// revisions still have dependents.
	ErrUnitInUse = errors.New("unit revisions still have dependents")
)

// Runtime is an in-process Facade implementation. Compound lifecycle
// operations take the unit's ownership lock under a fresh owner token,
// so a concurrent lifecycle operation on the same unit fails fast with
// the lock contention error instead of blocking.
type Runtime struct {
	mu    sync.RWMutex
	units map[uint64]*unit.Handle

	l *zap.Logger
}

// Option is a functor to build a runtime with some options
type Option func(*Runtime)

// Logger injects a logging facility into runtime operations
func Logger(l *zap.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.l = l
		}
	}
}

// New builds an empty runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		units: make(map[uint64]*unit.Handle),
		l:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register makes a handle visible to the runtime. The handle keeps its
// id for its lifetime, so a second Register with the same id replaces
// the previous handle.
func (r *Runtime) Register(h *unit.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[h.ID()] = h
}

// Deregister drops a handle from the registry.
func (r *Runtime) Deregister(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.units, id)
}

// Unit looks up a registered handle.
func (r *Runtime) Unit(id uint64) (*unit.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.units[id]
	return h, ok
}

// Units snapshots all registered handles.
func (r *Runtime) Units() []*unit.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*unit.Handle, 0, len(r.units))
	for _, h := range r.units {
		out = append(out, h)
	}
	return out
}

// CheckAccess grants everything.
func (r *Runtime) CheckAccess(uint64, runtime.Action) error {
	return nil
}

// UnitIdentities lists the declared identity of every registered unit
// that has a current revision.
func (r *Runtime) UnitIdentities(context.Context) ([]runtime.UnitIdentity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]runtime.UnitIdentity, 0, len(r.units))
	for id, h := range r.units {
		identity := model.Identity{Name: h.SymbolicName(), Version: h.Version()}
		if identity.IsZero() {
			continue
		}
		out = append(out, runtime.UnitIdentity{ID: id, Identity: identity})
	}
	return out, nil
}

// StartUnit moves a unit to ACTIVE through STARTING. persistent records
// the autostart wish so the unit comes back up on the next launch.
func (r *Runtime) StartUnit(ctx context.Context, unitID uint64, persistent bool) error {
	h, ok := r.Unit(unitID)
	if !ok {
		return ErrUnknownUnit
	}
	owner := freshOwner()
	if err := h.Lock(owner); err != nil {
		return err
	}
	defer func() { _ = h.Unlock(owner) }()

	if persistent {
		if err := h.SetPersistentState(model.StateActive); err != nil {
			return err
		}
	}
	if h.State() == model.StateActive {
		return nil
	}
	if h.State() == model.StateInstalled {
		if err := h.SetState(model.StateResolved); err != nil {
			return err
		}
	}
	if err := h.SetState(model.StateStarting); err != nil {
		return err
	}
	r.l.Info("unit starting", zap.Uint64("unit", unitID))
	return h.SetState(model.StateActive)
}

// StopUnit moves an active unit back to RESOLVED through STOPPING.
func (r *Runtime) StopUnit(ctx context.Context, unitID uint64, persistent bool) error {
	h, ok := r.Unit(unitID)
	if !ok {
		return ErrUnknownUnit
	}
	owner := freshOwner()
	if err := h.Lock(owner); err != nil {
		return err
	}
	defer func() { _ = h.Unlock(owner) }()

	return r.stopLocked(h, persistent)
}

// stopLocked runs the stop sequence for a handle whose lock the caller
// already holds.
func (r *Runtime) stopLocked(h *unit.Handle, persistent bool) error {
	if persistent {
		if err := h.SetPersistentState(model.StateResolved); err != nil {
			return err
		}
	}
	if h.State() != model.StateActive {
		return nil
	}
	if err := h.SetState(model.StateStopping); err != nil {
		return err
	}
	r.l.Info("unit stopping", zap.Uint64("unit", h.ID()))
	return h.SetState(model.StateResolved)
}

// UpdateUnit installs a new revision from content, or re-fetches the
// unit's original location when content is nil. An active unit is
// stopped first and restarted after a successful update. When the
// superseded revision still has dependents the unit is flagged removal
// pending instead of being refreshed.
func (r *Runtime) UpdateUnit(ctx context.Context, unitID uint64, content io.Reader) error {
	h, ok := r.Unit(unitID)
	if !ok {
		return ErrUnknownUnit
	}
	owner := freshOwner()
	if err := h.Lock(owner); err != nil {
		return err
	}
	defer func() { _ = h.Unlock(owner) }()

	wasActive := h.State() == model.StateActive
	if wasActive {
		if err := r.stopLocked(h, false); err != nil {
			return err
		}
	}

	if err := h.Revise(ctx, "", content); err != nil {
		rolled, rbErr := h.RollbackRevise(ctx)
		if rbErr != nil {
			r.l.Error("error rolling back failed update",
				zap.Uint64("unit", unitID), zap.Error(rbErr))
		} else if rolled {
			r.l.Info("rolled back failed update", zap.Uint64("unit", unitID))
		}
		return err
	}

	if err := h.SetState(model.StateInstalled); err != nil {
		return err
	}
	if h.InUse() {
		if err := h.SetRemovalPending(true); err != nil {
			return err
		}
		r.l.Info("updated unit still in use, flagged removal pending",
			zap.Uint64("unit", unitID))
	}

	if wasActive {
		if err := h.SetState(model.StateResolved); err != nil {
			return err
		}
		if err := h.SetState(model.StateStarting); err != nil {
			return err
		}
		return h.SetState(model.StateActive)
	}
	return nil
}

// UninstallUnit stops and retires a unit. A unit whose revisions still
// have dependents stays registered, removal pending, until a refresh;
// otherwise its archive is purged and the handle deregistered.
func (r *Runtime) UninstallUnit(ctx context.Context, unitID uint64) error {
	h, ok := r.Unit(unitID)
	if !ok {
		return ErrUnknownUnit
	}
	owner := freshOwner()
	if err := h.Lock(owner); err != nil {
		return err
	}
	defer func() { _ = h.Unlock(owner) }()

	if err := r.stopLocked(h, false); err != nil {
		return err
	}
	if err := h.SetPersistentState(model.StateUninstalled); err != nil {
		return err
	}

	if h.InUse() {
		if err := h.SetRemovalPending(true); err != nil {
			return err
		}
		r.l.Info("uninstalled unit still in use, flagged removal pending",
			zap.Uint64("unit", unitID))
		return nil
	}

	if err := h.Purge(ctx); err != nil {
		return err
	}
	if err := h.SetState(model.StateUninstalled); err != nil {
		return err
	}
	r.Deregister(unitID)
	r.l.Info("unit uninstalled", zap.Uint64("unit", unitID))
	return nil
}

// ResourceFor loads a named resource from the unit's current revision.
func (r *Runtime) ResourceFor(ctx context.Context, unitID uint64, name string) (io.ReadCloser, error) {
	h, ok := r.Unit(unitID)
	if !ok {
		return nil, ErrUnknownUnit
	}
	cur, err := h.CurrentRevision()
	if err != nil {
		return nil, err
	}
	return cur.Content().Resource(ctx, name)
}

// Refresh retires a removal pending unit whose dependents are gone, or
// resets an updated one back to a single fresh revision.
func (r *Runtime) Refresh(ctx context.Context, unitID uint64) error {
	h, ok := r.Unit(unitID)
	if !ok {
		return ErrUnknownUnit
	}
	owner := freshOwner()
	if err := h.Lock(owner); err != nil {
		return err
	}
	defer func() { _ = h.Unlock(owner) }()

	if !h.IsRemovalPending() {
		return nil
	}
	if h.InUse() {
		return ErrUnitInUse
	}
	if h.PersistentState() == model.StateUninstalled {
		if err := h.Purge(ctx); err != nil {
			return err
		}
		if err := h.SetState(model.StateUninstalled); err != nil {
			return err
		}
		r.Deregister(unitID)
		return nil
	}
	return h.Reset(ctx)
}

func freshOwner() unit.Owner {
	return unit.Owner("runtime-" + ksuid.New().String())
}

var _ runtime.Facade = &Runtime{}
