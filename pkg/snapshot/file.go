package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/layerview/layerview/pkg/errors"
)

// FileStore persists snapshots as JSON files in a directory, one file per
// snapshot.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

// path maps an ID to its file. IDs containing path separators are
// rejected upstream by validateID.
func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func validateID(id string) error {
	if err := errors.ValidateAlias(id); err != nil {
		return err
	}
	if strings.ContainsAny(id, `/\`) {
		return errors.New(errors.ErrCodeInvalidAlias, "snapshot id %q must not contain path separators", id)
	}
	return nil
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := validateID(snap.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(snap.ID), data, 0644)
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, id string) (*Snapshot, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(id))
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "no snapshot %q", id)
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidData, err, "corrupt snapshot %q", id)
	}
	return &snap, nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, id string) error {
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Meta, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var metas []Meta
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		snap, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		metas = append(metas, Meta{ID: snap.ID, CreatedAt: snap.CreatedAt, Layers: len(snap.Layers)})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].CreatedAt.After(metas[j].CreatedAt) })
	return metas, nil
}

// Close implements Store.
func (s *FileStore) Close(ctx context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
