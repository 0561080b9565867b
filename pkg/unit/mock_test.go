package unit

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/modrunio/modrun/pkg/model"
	"github.com/modrunio/modrun/pkg/runtime"
	"github.com/modrunio/modrun/pkg/store"
)

// fakeContent serves resources from a map and counts accesses.
type fakeContent struct {
	mu        sync.Mutex
	resources map[string]string
	calls     int
}

func (c *fakeContent) Resource(_ context.Context, name string) (io.ReadCloser, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	if data, ok := c.resources[name]; ok {
		return io.NopCloser(strings.NewReader(data)), nil
	}
	return nil, store.ErrNotFound
}

type fakeRevision struct {
	manifest  model.Manifest
	resources map[string]string
}

// fakeStore is an in-memory archive with scriptable failures.
type fakeStore struct {
	mu           sync.Mutex
	id           uint64
	location     string
	revisions    []fakeRevision
	contents     []*fakeContent
	lastModified int64
	persistent   model.State
	startLevel   int

	// next revisions handed out by Revise, in order
	pending []fakeRevision

	failReads bool
}

func newFakeStore(id uint64, m model.Manifest, resources map[string]string) *fakeStore {
	s := &fakeStore{
		id:           id,
		location:     "mem://unit",
		persistent:   model.StateInstalled,
		lastModified: 1,
	}
	s.push(fakeRevision{manifest: m, resources: resources})
	return s
}

func (s *fakeStore) push(rev fakeRevision) {
	s.revisions = append(s.revisions, rev)
	s.contents = append(s.contents, &fakeContent{resources: rev.resources})
}

func (s *fakeStore) String() string { return "fake" }

func (s *fakeStore) ID() (uint64, error) {
	if s.failReads {
		return 0, store.ErrCorrupt
	}
	return s.id, nil
}

func (s *fakeStore) Location() (string, error) {
	if s.failReads {
		return "", store.ErrCorrupt
	}
	return s.location, nil
}

func (s *fakeStore) CurrentRevisionIndex() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.revisions) - 1, nil
}

func (s *fakeStore) RawManifest(index int) (model.Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.revisions) {
		return nil, store.ErrNotFound
	}
	return s.revisions[index].manifest, nil
}

func (s *fakeStore) RevisionContent(index int) (store.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.contents) {
		return nil, store.ErrNotFound
	}
	return s.contents[index], nil
}

func (s *fakeStore) LastModified() (int64, error) {
	if s.failReads {
		return 0, store.ErrCorrupt
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastModified, nil
}

func (s *fakeStore) SetLastModified(t int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastModified = t
	return nil
}

func (s *fakeStore) PersistentState() (model.State, error) {
	if s.failReads {
		return 0, store.ErrCorrupt
	}
	return s.persistent, nil
}

func (s *fakeStore) SetPersistentState(st model.State) error {
	if s.failReads {
		return store.ErrCorrupt
	}
	s.persistent = st
	return nil
}

func (s *fakeStore) StartLevel() (int, error) {
	if s.failReads {
		return 0, store.ErrCorrupt
	}
	return s.startLevel, nil
}

func (s *fakeStore) SetStartLevel(level int) error {
	s.startLevel = level
	return nil
}

func (s *fakeStore) Revise(_ context.Context, location string, _ io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return store.ErrNotFound
	}
	next := s.pending[0]
	s.pending = s.pending[1:]
	s.push(next)
	if location != "" {
		s.location = location
	}
	s.lastModified++
	return nil
}

func (s *fakeStore) RollbackRevise(context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.revisions) <= 1 {
		return false, nil
	}
	s.revisions = s.revisions[:len(s.revisions)-1]
	s.contents = s.contents[:len(s.contents)-1]
	s.lastModified++
	return true, nil
}

func (s *fakeStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastModified++
	return nil
}

// fakeFacade records forwarded calls and serves scripted answers.
type fakeFacade struct {
	identities []runtime.UnitIdentity
	accessErr  map[runtime.Action]error
	calls      []string
}

func (f *fakeFacade) CheckAccess(_ uint64, action runtime.Action) error {
	if f.accessErr != nil {
		return f.accessErr[action]
	}
	return nil
}

func (f *fakeFacade) UnitIdentities(context.Context) ([]runtime.UnitIdentity, error) {
	return f.identities, nil
}

func (f *fakeFacade) StartUnit(_ context.Context, id uint64, _ bool) error {
	f.calls = append(f.calls, "start")
	return nil
}

func (f *fakeFacade) StopUnit(_ context.Context, id uint64, _ bool) error {
	f.calls = append(f.calls, "stop")
	return nil
}

func (f *fakeFacade) UpdateUnit(_ context.Context, id uint64, _ io.Reader) error {
	f.calls = append(f.calls, "update")
	return nil
}

func (f *fakeFacade) UninstallUnit(_ context.Context, id uint64) error {
	f.calls = append(f.calls, "uninstall")
	return nil
}

func (f *fakeFacade) ResourceFor(context.Context, uint64, string) (io.ReadCloser, error) {
	f.calls = append(f.calls, "resource")
	return io.NopCloser(strings.NewReader("resource data")), nil
}

// fakeTracker reports dependents per revision id.
type fakeTracker struct {
	dependents map[string]int
}

func (t *fakeTracker) DependentsOf(revisionID string) int {
	return t.dependents[revisionID]
}
