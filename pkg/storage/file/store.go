package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"leaderkill/pkg/storage"
)

func init() {
	storage.Register("file", Open)
}

// Store keeps shared files on a filesystem visible to the leader, laid out
// as <root>/files/shared/<name>.
type Store struct {
	root      string
	sharedDir string
}

// Open resolves a file locator body to an existing store directory.
func Open(_ context.Context, loc storage.Locator, _ storage.Options) (storage.SharedStore, error) {
	root := strings.TrimPrefix(loc.Body, "//")
	return New(root)
}

// New returns the store rooted at dir. The directory must already exist; a
// kill request never creates a store.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty store path", storage.ErrNoSuchStore)
	}
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNoSuchStore, dir)
		}
		return nil, fmt.Errorf("%w: failed to stat %s: %w", storage.ErrUnavailable, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", storage.ErrNoSuchStore, dir)
	}

	return &Store{
		root:      dir,
		sharedDir: filepath.Join(dir, "files", "shared"),
	}, nil
}

// ReadSharedFile reads a shared file from disk.
func (s *Store) ReadSharedFile(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %w", storage.ErrUnavailable, name, err)
	}
	return data, nil
}

// WriteSharedFile replaces a shared file through a rename so a concurrent
// reader never sees a partial record.
func (s *Store) WriteSharedFile(_ context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.sharedDir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create shared directory: %w", storage.ErrUnavailable, err)
	}

	tmp, err := os.CreateTemp(s.sharedDir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", storage.ErrUnavailable, name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: failed to write %s: %w", storage.ErrUnavailable, name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", storage.ErrUnavailable, name, err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", storage.ErrUnavailable, name, err)
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		return fmt.Errorf("%w: failed to write %s: %w", storage.ErrUnavailable, name, err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(name string) string {
	return filepath.Join(s.sharedDir, filepath.Base(name))
}
