package store

import (
	"context"
	"io"

	"github.com/modrunio/modrun/pkg/model"
	"go.uber.org/zap"
)

// Instrument wraps a store so every archive operation is logged at debug
// level with its key arguments. Useful when chasing lifecycle bugs across
// concurrent runtime operations.
func Instrument(logs *zap.Logger, s Store) Store {
	if logs == nil {
		logs = zap.NewNop()
	}
	return &instrumentedStore{
		store: s,
		logs:  logs.With(zap.String("store", s.String())),
	}
}

type instrumentedStore struct {
	store Store
	logs  *zap.Logger
}

func (i *instrumentedStore) String() string {
	return i.store.String()
}

func (i *instrumentedStore) ID() (uint64, error) {
	i.logs.Debug("archive id")
	return i.store.ID()
}

func (i *instrumentedStore) Location() (string, error) {
	i.logs.Debug("archive location")
	return i.store.Location()
}

func (i *instrumentedStore) CurrentRevisionIndex() (int, error) {
	i.logs.Debug("archive current revision index")
	return i.store.CurrentRevisionIndex()
}

func (i *instrumentedStore) RawManifest(index int) (model.Manifest, error) {
	i.logs.Debug("archive raw manifest", zap.Int("index", index))
	return i.store.RawManifest(index)
}

func (i *instrumentedStore) RevisionContent(index int) (Content, error) {
	i.logs.Debug("archive revision content", zap.Int("index", index))
	return i.store.RevisionContent(index)
}

func (i *instrumentedStore) LastModified() (int64, error) {
	i.logs.Debug("archive last modified")
	return i.store.LastModified()
}

func (i *instrumentedStore) SetLastModified(t int64) error {
	i.logs.Debug("archive set last modified", zap.Int64("token", t))
	return i.store.SetLastModified(t)
}

func (i *instrumentedStore) PersistentState() (model.State, error) {
	i.logs.Debug("archive persistent state")
	return i.store.PersistentState()
}

func (i *instrumentedStore) SetPersistentState(s model.State) error {
	i.logs.Debug("archive set persistent state", zap.Stringer("state", s))
	return i.store.SetPersistentState(s)
}

func (i *instrumentedStore) StartLevel() (int, error) {
	i.logs.Debug("archive start level")
	return i.store.StartLevel()
}

func (i *instrumentedStore) SetStartLevel(level int) error {
	i.logs.Debug("archive set start level", zap.Int("level", level))
	return i.store.SetStartLevel(level)
}

func (i *instrumentedStore) Revise(ctx context.Context, location string, r io.Reader) error {
	i.logs.Debug("archive revise", zap.String("location", location))
	return i.store.Revise(ctx, location, r)
}

func (i *instrumentedStore) RollbackRevise(ctx context.Context) (bool, error) {
	i.logs.Debug("archive rollback revise")
	return i.store.RollbackRevise(ctx)
}

func (i *instrumentedStore) Purge(ctx context.Context) error {
	i.logs.Debug("archive purge")
	return i.store.Purge(ctx)
}
