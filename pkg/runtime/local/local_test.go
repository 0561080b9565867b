package local

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/modrunio/modrun/pkg/model"
	"github.com/modrunio/modrun/pkg/store/localfs"
	"github.com/modrunio/modrun/pkg/unit"
	"github.com/modrunio/modrun/pkg/unit/status"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

type countingTracker struct {
	dependents map[string]int
}

func (t *countingTracker) DependentsOf(revisionID string) int {
	return t.dependents[revisionID]
}

func payloadReader(t *testing.T, m model.Manifest, resources map[string]string) io.Reader {
	buf, err := yaml.Marshal(localfs.Payload{Manifest: m, Resources: resources})
	require.NoError(t, err)
	return bytes.NewReader(buf)
}

func manifestFor(name, version string) model.Manifest {
	return model.Manifest{
		model.SymbolicNameHeader: name,
		model.VersionHeader:      version,
	}
}

// installUnit creates a fresh archive, builds a handle wired to rt and
// registers it.
func installUnit(t *testing.T, rt *Runtime, id uint64, m model.Manifest, resources map[string]string, opts ...unit.Option) *unit.Handle {
	ctx := context.Background()
	s, err := localfs.Create(ctx, afero.NewMemMapFs(), id, "mem://unit", payloadReader(t, m, resources))
	require.NoError(t, err)
	opts = append([]unit.Option{unit.Facade(rt)}, opts...)
	h, err := unit.New(ctx, s, opts...)
	require.NoError(t, err)
	rt.Register(h)
	return h
}

func TestStartStop(t *testing.T) {
	ctx := context.Background()
	rt := New()
	h := installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil)

	require.NoError(t, rt.StartUnit(ctx, 1, true))
	assert.Equal(t, model.StateActive, h.State())
	assert.Equal(t, model.StateActive, h.PersistentState())

	// starting an active unit is a no-op
	require.NoError(t, rt.StartUnit(ctx, 1, false))
	assert.Equal(t, model.StateActive, h.State())

	require.NoError(t, rt.StopUnit(ctx, 1, true))
	assert.Equal(t, model.StateResolved, h.State())
	assert.Equal(t, model.StateResolved, h.PersistentState())

	// stopping again is a no-op too
	require.NoError(t, rt.StopUnit(ctx, 1, false))
	assert.Equal(t, model.StateResolved, h.State())
}

func TestUnknownUnit(t *testing.T) {
	ctx := context.Background()
	rt := New()

	require.ErrorIs(t, rt.StartUnit(ctx, 99, false), ErrUnknownUnit)
	require.ErrorIs(t, rt.StopUnit(ctx, 99, false), ErrUnknownUnit)
	require.ErrorIs(t, rt.UpdateUnit(ctx, 99, nil), ErrUnknownUnit)
	require.ErrorIs(t, rt.UninstallUnit(ctx, 99), ErrUnknownUnit)
	_, err := rt.ResourceFor(ctx, 99, "x")
	require.ErrorIs(t, err, ErrUnknownUnit)
}

func TestLifecycleRespectsOwnershipLock(t *testing.T) {
	ctx := context.Background()
	rt := New()
	h := installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil)

	require.NoError(t, h.Lock("external-owner"))
	require.ErrorIs(t, rt.StartUnit(ctx, 1, false), status.ErrLockHeld)
	require.NoError(t, h.Unlock("external-owner"))
	require.NoError(t, rt.StartUnit(ctx, 1, false))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	rt := New()
	h := installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil)
	require.NoError(t, rt.StartUnit(ctx, 1, false))

	content := payloadReader(t, manifestFor("com.example.a", "1.1.0"), nil)
	require.NoError(t, rt.UpdateUnit(ctx, 1, content))

	assert.Len(t, h.Revisions(), 2)
	require.NotNil(t, h.Version())
	assert.Equal(t, "1.1.0", h.Version().String())
	// the unit was active before the update and is active again
	assert.Equal(t, model.StateActive, h.State())
	assert.False(t, h.IsRemovalPending())
}

func TestUpdateRollsBackOnDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	rt := New()
	installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil)
	h := installUnit(t, rt, 2, manifestFor("com.example.b", "1.0.0"), nil)

	content := payloadReader(t, manifestFor("com.example.a", "1.0.0"), nil)
	err := rt.UpdateUnit(ctx, 2, content)
	require.ErrorIs(t, err, status.ErrDuplicateIdentity)

	// the archive revision was rolled back along with the failed update
	assert.Len(t, h.Revisions(), 1)
	assert.Equal(t, "com.example.b", h.SymbolicName())
	cur, err := h.CurrentRevision()
	require.NoError(t, err)
	assert.Equal(t, "2.0", cur.ID())
}

func TestUpdateInUseFlagsRemovalPending(t *testing.T) {
	ctx := context.Background()
	rt := New()
	tracker := &countingTracker{dependents: map[string]int{"1.0": 1}}
	h := installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil, unit.Tracker(tracker))

	content := payloadReader(t, manifestFor("com.example.a", "1.1.0"), nil)
	require.NoError(t, rt.UpdateUnit(ctx, 1, content))

	assert.True(t, h.IsRemovalPending())
	assert.Len(t, h.Revisions(), 2)
}

func TestUninstall(t *testing.T) {
	ctx := context.Background()
	rt := New()
	h := installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil)
	require.NoError(t, rt.StartUnit(ctx, 1, false))

	require.NoError(t, rt.UninstallUnit(ctx, 1))

	assert.Equal(t, model.StateUninstalled, h.State())
	assert.True(t, h.IsStale())
	_, registered := rt.Unit(1)
	assert.False(t, registered)
}

func TestUninstallInUseThenRefresh(t *testing.T) {
	ctx := context.Background()
	rt := New()
	tracker := &countingTracker{dependents: map[string]int{"1.0": 1}}
	h := installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil, unit.Tracker(tracker))

	require.NoError(t, rt.UninstallUnit(ctx, 1))
	assert.True(t, h.IsRemovalPending())
	assert.False(t, h.IsStale())
	_, registered := rt.Unit(1)
	assert.True(t, registered)

	// dependents still present, the refresh refuses
	require.ErrorIs(t, rt.Refresh(ctx, 1), ErrUnitInUse)

	delete(tracker.dependents, "1.0")
	require.NoError(t, rt.Refresh(ctx, 1))
	assert.True(t, h.IsStale())
	_, registered = rt.Unit(1)
	assert.False(t, registered)
}

func TestRefreshAfterUpdate(t *testing.T) {
	ctx := context.Background()
	rt := New()
	tracker := &countingTracker{dependents: map[string]int{"1.0": 1}}
	h := installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil, unit.Tracker(tracker))

	content := payloadReader(t, manifestFor("com.example.a", "1.1.0"), nil)
	require.NoError(t, rt.UpdateUnit(ctx, 1, content))
	require.True(t, h.IsRemovalPending())

	delete(tracker.dependents, "1.0")
	require.NoError(t, rt.Refresh(ctx, 1))

	assert.False(t, h.IsRemovalPending())
	assert.Len(t, h.Revisions(), 1)
	require.NotNil(t, h.Version())
	assert.Equal(t, "1.1.0", h.Version().String())
}

func TestUnitIdentities(t *testing.T) {
	ctx := context.Background()
	rt := New()
	installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil)
	installUnit(t, rt, 2, manifestFor("com.example.b", "2.0.0"), nil)

	ids, err := rt.UnitIdentities(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	names := map[uint64]string{}
	for _, id := range ids {
		names[id.ID] = id.Identity.Name
	}
	assert.Equal(t, "com.example.a", names[1])
	assert.Equal(t, "com.example.b", names[2])
}

func TestInstallRejectsDuplicateIdentity(t *testing.T) {
	ctx := context.Background()
	rt := New()
	installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"), nil)

	s, err := localfs.Create(ctx, afero.NewMemMapFs(), 2, "mem://dup",
		payloadReader(t, manifestFor("com.example.a", "1.0.0"), nil))
	require.NoError(t, err)
	_, err = unit.New(ctx, s, unit.Facade(rt))
	require.ErrorIs(t, err, status.ErrDuplicateIdentity)
}

func TestResourceFor(t *testing.T) {
	ctx := context.Background()
	rt := New()
	installUnit(t, rt, 1, manifestFor("com.example.a", "1.0.0"),
		map[string]string{"data/config.yaml": "answer: 42\n"})

	rc, err := rt.ResourceFor(ctx, 1, "data/config.yaml")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "answer: 42\n", string(data))
}
