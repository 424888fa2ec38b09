// Package blobfs stores attachment binaries on the local file system under
// opaque keys.
package blobfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/heartmarshall/matterdesk-backend/internal/domain"
)

// Store implements blob storage rooted at a directory.
type Store struct {
	root string // absolute path to the blob directory
}

// New creates a Store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("blobfs: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("blobfs: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("blobfs: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("blobfs: root is not a directory: %s", abs)
	}
	return &Store{root: abs}, nil
}

// safePath resolves a key against the root and rejects any result that
// escapes it. Keys are sharded by their first two characters.
func (s *Store) safePath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("blobfs: invalid key %q", key)
	}
	shard := key
	if len(shard) > 2 {
		shard = shard[:2]
	}
	abs := filepath.Join(s.root, shard, key)
	if !strings.HasPrefix(abs, s.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("blobfs: key escapes root: %q", key)
	}
	return abs, nil
}

// Put atomically writes r under key: tmp file, fsync, rename.
// It returns the number of bytes written.
func (s *Store) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	abs, err := s.safePath(key)
	if err != nil {
		return 0, err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("blobfs: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".blob-tmp-*")
	if err != nil {
		return 0, fmt.Errorf("blobfs: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		return 0, fmt.Errorf("blobfs: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return 0, fmt.Errorf("blobfs: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("blobfs: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return 0, fmt.Errorf("blobfs: rename: %w", err)
	}
	success = true
	return n, nil
}

// Open returns a reader for the blob under key.
// A missing blob is reported as domain.ErrNotFound.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := s.safePath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("blobfs: open %s: %w", key, err)
	}
	return f, nil
}

// Read returns the full contents of the blob under key.
func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	rc, err := s.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("blobfs: read %s: %w", key, err)
	}
	return data, nil
}

// Delete removes the blob under key. Deleting a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	abs, err := s.safePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("blobfs: delete %s: %w", key, err)
	}
	return nil
}
