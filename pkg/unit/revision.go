package unit

import (
	"github.com/modrunio/modrun/pkg/manifest"
	"github.com/modrunio/modrun/pkg/model"
	"github.com/modrunio/modrun/pkg/store"
)

// DependentTracker reports external dependents of a revision. It is
// supplied by the loading collaborator; the core only aggregates its
// answers and never inspects the dependency graph itself.
type DependentTracker interface {
	// DependentsOf counts external dependents of the revision, the
	// revision itself excluded.
	DependentsOf(revisionID string) int
}

// Revision is one immutable code version of a unit. Which revision is
// current changes as new revisions are appended; the revision itself
// never does.
type Revision struct {
	id       string
	manifest model.Manifest
	parsed   *manifest.Parsed
	content  store.Content
	tracker  DependentTracker
}

// NewRevision assembles a revision from already validated parts. The
// core builds revisions itself during Revise and Reset; this constructor
// exists for the degenerate system unit and for tests.
func NewRevision(id string, m model.Manifest, parsed *manifest.Parsed, content store.Content, tracker DependentTracker) *Revision {
	if parsed == nil {
		parsed = &manifest.Parsed{}
	}
	return &Revision{
		id:       id,
		manifest: m,
		parsed:   parsed,
		content:  content,
		tracker:  tracker,
	}
}

// ID is the unit id and revision index joined as "<unit>.<index>".
func (r *Revision) ID() string {
	return r.id
}

// Manifest returns a copy of the raw manifest.
func (r *Revision) Manifest() model.Manifest {
	return r.manifest.Clone()
}

// Identity is the symbolic name and version the manifest declares.
func (r *Revision) Identity() model.Identity {
	return r.parsed.Identity
}

// Capabilities declared by this revision.
func (r *Revision) Capabilities() []manifest.Clause {
	return r.parsed.Capabilities
}

// Requirements declared by this revision.
func (r *Revision) Requirements() []manifest.Clause {
	return r.parsed.Requirements
}

// Content of this revision, possibly nil for the system unit.
func (r *Revision) Content() store.Content {
	return r.content
}

func (r *Revision) inUse() bool {
	return r.tracker != nil && r.tracker.DependentsOf(r.id) > 0
}
