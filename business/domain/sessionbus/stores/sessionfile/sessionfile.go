// Package sessionfile keeps the session slot in a local directory, one file
// per key.
package sessionfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jcpaschoal/jhgestor/business/domain/sessionbus"
)

// Store manages the set of APIs for session slot access.
type Store struct {
	dir string
}

// NewStore constructs the api for data access, creating dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	return &Store{dir: dir}, nil
}

// Get returns the value in the slot.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, sessionbus.ErrNotFound
		}
		return nil, fmt.Errorf("read: key[%s]: %w", key, err)
	}

	return data, nil
}

// Set writes the value into the slot. Readers see either the old or the new
// value, never a partial write.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	f, err := os.CreateTemp(s.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: key[%s]: %w", key, err)
	}
	tmp := f.Name()

	if _, err := f.Write(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write: key[%s]: %w", key, err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync: key[%s]: %w", key, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close: key[%s]: %w", key, err)
	}

	if err := os.Rename(tmp, s.path(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename: key[%s]: %w", key, err)
	}

	return nil
}

// Delete empties the slot.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove: key[%s]: %w", key, err)
	}

	return nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key)+".json")
}
