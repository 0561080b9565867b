package localfs

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/modrunio/modrun/pkg/model"
	"github.com/modrunio/modrun/pkg/store"
	"github.com/segmentio/ksuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"
)

// unitInfo is the bookkeeping record persisted as unit.yaml.
type unitInfo struct {
	ID           uint64 `yaml:"id"`
	Location     string `yaml:"location"`
	Current      int    `yaml:"current"`
	State        string `yaml:"state"`
	StartLevel   int    `yaml:"startLevel"`
	LastModified int64  `yaml:"lastModified"`
}

// revisionInfo is persisted per revision as revision.yaml.
type revisionInfo struct {
	Token    string `yaml:"token"`
	Location string `yaml:"location"`
}

// Payload is the self-contained unit package format consumed by Revise:
// a raw manifest plus named resources.
type Payload struct {
	Manifest  map[string]string `yaml:"manifest"`
	Resources map[string]string `yaml:"resources,omitempty"`
}

// Option tunes a local file system store.
type Option func(*localFS)

// LocationFs sets the file system used to re-fetch payloads from their
// install location when Revise is called without a reader.
func LocationFs(fs afero.Fs) Option {
	return func(l *localFS) {
		l.src = fs
	}
}

// New opens an existing local file system backed archive rooted at fs.
func New(fs afero.Fs, opts ...Option) store.Store {
	if fs == nil {
		fs = afero.NewBasePathFs(afero.NewOsFs(), filepath.Join(".modrun", "archive"))
	}
	l := &localFS{
		fs:  fs,
		src: afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Create initializes a new archive rooted at fs with the unit identifier,
// install location and first revision payload read from r (or from
// location when r is nil). Fails with ErrExists when an archive is
// already present.
func Create(ctx context.Context, fs afero.Fs, id uint64, location string, r io.Reader, opts ...Option) (store.Store, error) {
	l := New(fs, opts...).(*localFS)
	if _, err := l.fs.Stat(model.ArchivePathToUnitInfo()); err == nil {
		return nil, store.ErrExists
	}
	if err := l.writeRevision(ctx, 0, location, r); err != nil {
		return nil, err
	}
	info := unitInfo{
		ID:           id,
		Location:     location,
		Current:      0,
		State:        model.StateInstalled.String(),
		LastModified: time.Now().UnixNano(),
	}
	if err := l.writeInfo(&info); err != nil {
		return nil, err
	}
	return l, nil
}

type localFS struct {
	mu  sync.Mutex
	fs  afero.Fs
	src afero.Fs
}

func (l *localFS) String() string {
	return "localfs"
}

func (l *localFS) ID() (uint64, error) {
	info, err := l.readInfo()
	if err != nil {
		return 0, err
	}
	return info.ID, nil
}

func (l *localFS) Location() (string, error) {
	info, err := l.readInfo()
	if err != nil {
		return "", err
	}
	return info.Location, nil
}

func (l *localFS) CurrentRevisionIndex() (int, error) {
	info, err := l.readInfo()
	if err != nil {
		return 0, err
	}
	return info.Current, nil
}

func (l *localFS) RawManifest(index int) (model.Manifest, error) {
	buf, err := afero.ReadFile(l.fs, model.ArchivePathToManifest(index))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	var m model.Manifest
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (l *localFS) RevisionContent(index int) (store.Content, error) {
	if _, err := l.fs.Stat(model.ArchivePathToRevisionInfo(index)); err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &revContent{fs: l.fs, index: index}, nil
}

func (l *localFS) LastModified() (int64, error) {
	info, err := l.readInfo()
	if err != nil {
		return 0, err
	}
	return info.LastModified, nil
}

func (l *localFS) SetLastModified(t int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updateInfo(func(info *unitInfo) {
		info.LastModified = t
	})
}

func (l *localFS) PersistentState() (model.State, error) {
	info, err := l.readInfo()
	if err != nil {
		return 0, err
	}
	s := model.ParseState(info.State)
	if s == 0 {
		return 0, store.ErrCorrupt
	}
	return s, nil
}

func (l *localFS) SetPersistentState(s model.State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updateInfo(func(info *unitInfo) {
		info.State = s.String()
	})
}

func (l *localFS) StartLevel() (int, error) {
	info, err := l.readInfo()
	if err != nil {
		return 0, err
	}
	return info.StartLevel, nil
}

func (l *localFS) SetStartLevel(level int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updateInfo(func(info *unitInfo) {
		info.StartLevel = level
	})
}

func (l *localFS) Revise(ctx context.Context, location string, r io.Reader) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, err := l.readInfo()
	if err != nil {
		return err
	}
	if location == "" {
		location = info.Location
	}
	next := info.Current + 1
	if err := l.writeRevision(ctx, next, location, r); err != nil {
		return err
	}
	info.Current = next
	info.Location = location
	touch(info)
	return l.writeInfo(info)
}

func (l *localFS) RollbackRevise(ctx context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	info, err := l.readInfo()
	if err != nil {
		return false, err
	}
	if info.Current == 0 {
		return false, nil
	}
	if err := l.fs.RemoveAll(filepath.Dir(model.ArchivePathToRevisionInfo(info.Current))); err != nil {
		return false, err
	}
	info.Current--
	touch(info)
	return true, l.writeInfo(info)
}

func (l *localFS) Purge(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.fs.RemoveAll("revisions"); err != nil {
		return err
	}
	return l.fs.Remove(model.ArchivePathToUnitInfo())
}

func (l *localFS) readInfo() (*unitInfo, error) {
	buf, err := afero.ReadFile(l.fs, model.ArchivePathToUnitInfo())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	var info unitInfo
	if err := yaml.Unmarshal(buf, &info); err != nil {
		return nil, store.ErrCorrupt
	}
	return &info, nil
}

func (l *localFS) updateInfo(mutate func(*unitInfo)) error {
	info, err := l.readInfo()
	if err != nil {
		return err
	}
	mutate(info)
	return l.writeInfo(info)
}

func (l *localFS) writeInfo(info *unitInfo) error {
	buf, err := yaml.Marshal(info)
	if err != nil {
		return err
	}
	return l.writeFile(model.ArchivePathToUnitInfo(), buf)
}

func (l *localFS) writeRevision(ctx context.Context, index int, location string, r io.Reader) error {
	if r == nil {
		f, err := l.src.Open(strings.TrimPrefix(location, "file://"))
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var p Payload
	if err := yaml.Unmarshal(buf, &p); err != nil {
		return err
	}
	mbuf, err := yaml.Marshal(model.Manifest(p.Manifest))
	if err != nil {
		return err
	}
	if err := l.writeFile(model.ArchivePathToManifest(index), mbuf); err != nil {
		return err
	}
	for name, data := range p.Resources {
		if err := l.writeFile(model.ArchivePathToResource(index, name), []byte(data)); err != nil {
			return err
		}
	}
	rbuf, err := yaml.Marshal(revisionInfo{
		Token:    ksuid.New().String(),
		Location: location,
	})
	if err != nil {
		return err
	}
	return l.writeFile(model.ArchivePathToRevisionInfo(index), rbuf)
}

func (l *localFS) writeFile(key string, data []byte) error {
	if dir := filepath.Dir(key); dir != "" && dir != "." {
		if err := l.fs.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return afero.WriteReader(l.fs, key, bytes.NewReader(data))
}

// touch advances the modification token. Wall-clock nanos are convenient
// but the token only has to grow, so a stalled clock falls back to +1.
func touch(info *unitInfo) {
	now := time.Now().UnixNano()
	if now <= info.LastModified {
		now = info.LastModified + 1
	}
	info.LastModified = now
}

type revContent struct {
	fs    afero.Fs
	index int
}

func (c *revContent) Resource(ctx context.Context, name string) (io.ReadCloser, error) {
	key := model.ArchivePathToResource(c.index, name)
	fi, err := c.fs.Stat(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if fi.IsDir() {
		return nil, store.ErrNotFound
	}
	return c.fs.Open(key)
}
