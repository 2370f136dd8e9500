package storeprovider

import (
	"context"
	"inventory/models"
	"inventory/providers"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// FileStore writes one file per key under dir. Writes go to a temp file that
// is renamed over the target, so a reader never sees a half written document.
type FileStore struct {
	dir string
}

var keyReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_")

func NewFileStore(dir string) (providers.KVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create store directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, keyReplacer.Replace(key)+".json")
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, models.ErrKeyNotFound
	}
	return b, err
}

func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(key))
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (f *FileStore) Close() error {
	return nil
}
