package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	vterrors "github.com/vango-dev/vtree/internal/errors"
)

const fileExt = ".json"

// FileStore stores snapshots as JSON files in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore, creating dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, vterrors.New(vterrors.CodeSnapshotFailed).WithSubject(dir).Wrap(err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Save implements Store.
func (s *FileStore) Save(_ context.Context, snap *Snapshot) (string, error) {
	if snap.ID != "" && !validID(snap.ID) {
		return "", vterrors.New(vterrors.CodeSnapshotFailed).WithSubject(snap.ID)
	}
	data, err := prepare(snap)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(s.path(snap.ID), data, 0644); err != nil {
		return "", vterrors.New(vterrors.CodeSnapshotFailed).WithSubject(snap.ID).Wrap(err)
	}
	return snap.ID, nil
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, id string) (*Snapshot, error) {
	if !validID(id) {
		return nil, vterrors.New(vterrors.CodeSnapshotNotFound).WithSubject(id)
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, vterrors.New(vterrors.CodeSnapshotNotFound).WithSubject(id)
		}
		return nil, vterrors.New(vterrors.CodeSnapshotFailed).WithSubject(id).Wrap(err)
	}
	return decode(id, data)
}

// List implements Store.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, vterrors.New(vterrors.CodeSnapshotFailed).WithSubject(s.dir).Wrap(err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), fileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}
