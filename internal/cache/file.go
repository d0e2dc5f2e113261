package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/nestauk/createch/internal/records"
)

// FileStore keeps each entry as an ordered JSON object under dir.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileStore{fs: fs, dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key)+".json")
}

func (s *FileStore) Get(_ context.Context, key string) ([]records.NameRecord, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}
	path := s.path(key)
	ok, err := afero.Exists(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat cache entry: %w", err)
	}
	if !ok {
		return nil, ErrCacheMiss
	}
	return records.LoadJSON(s.fs, path)
}

func (s *FileStore) Put(_ context.Context, key string, recs []records.NameRecord) error {
	if err := validKey(key); err != nil {
		return err
	}
	return records.WriteJSON(s.fs, s.path(key), recs)
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := s.fs.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}
