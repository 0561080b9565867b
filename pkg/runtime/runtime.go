// Package runtime declares the boundary between the unit core and the
// enclosing runtime. The core forwards lifecycle mechanics, access
// checks, resource loading and cross-unit uniqueness queries through the
// Facade and never reimplements them.
package runtime

import (
	"context"
	"io"

	"github.com/modrunio/modrun/pkg/model"
)

// Action classifies what a caller is about to do with a unit, for access
// checks.
type Action int

const (
	// ActionMetadata covers reads of headers, location and identity.
	ActionMetadata Action = iota + 1
	// ActionResource covers loading resources from a unit's content.
	ActionResource
	// ActionExecute covers starting and stopping a unit.
	ActionExecute
	// ActionLifecycle covers updating and uninstalling a unit.
	ActionLifecycle
)

func (a Action) String() string {
	switch a {
	case ActionMetadata:
		return "metadata"
	case ActionResource:
		return "resource"
	case ActionExecute:
		return "execute"
	case ActionLifecycle:
		return "lifecycle"
	}
	return "unknown"
}

// UnitIdentity pairs a unit id with the identity its current revision
// declares.
type UnitIdentity struct {
	ID       uint64
	Identity model.Identity
}

// Facade is implemented by the enclosing runtime.
type Facade interface {
	// CheckAccess decides whether the caller may perform action on the
	// unit. A nil return grants access.
	CheckAccess(unitID uint64, action Action) error

	// UnitIdentities lists the declared identity of every live unit, for
	// the uniqueness validation performed while constructing a revision.
	UnitIdentities(ctx context.Context) ([]UnitIdentity, error)

	// Lifecycle mechanics. The core forwards, the runtime sequences.
	StartUnit(ctx context.Context, unitID uint64, persistent bool) error
	StopUnit(ctx context.Context, unitID uint64, persistent bool) error
	UpdateUnit(ctx context.Context, unitID uint64, content io.Reader) error
	UninstallUnit(ctx context.Context, unitID uint64) error

	// ResourceFor loads a named resource on behalf of the unit.
	ResourceFor(ctx context.Context, unitID uint64, name string) (io.ReadCloser, error)
}
