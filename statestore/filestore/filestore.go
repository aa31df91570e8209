// Package filestore is the simplest asyncrpc.DatabaseClient: one file per
// node under a base directory, rewritten atomically on every accepted
// mutation batch by writing to a temp file and renaming it over the
// target, so a crash mid-write never leaves a torn blob on disk.
package filestore

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/creditmesh/corenet/asyncrpc"
)

const dirPermission = 0700
const filePermission = 0600

// Store is a filesystem-backed asyncrpc.DatabaseClient. The zero value is
// not usable; build one with Open.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a Store rooted at path, creating the directory if it
// doesn't already exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, dirPermission); err != nil {
		return nil, err
	}
	return &Store{path: path}, nil
}

func (s *Store) blobPath(nodePK [32]byte) string {
	return filepath.Join(s.path, hex.EncodeToString(nodePK[:])+".state")
}

// LoadState satisfies asyncrpc.DatabaseClient.
func (s *Store) LoadState(_ context.Context, nodePK [32]byte) ([]byte, byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.blobPath(nodePK))
	if os.IsNotExist(err) {
		return nil, 0, asyncrpc.ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}
	if len(raw) == 0 {
		return nil, 0, asyncrpc.ErrNotFound
	}

	// The leading byte is the format-version tag; the rest is the blob,
	// mirroring channeldb's own prefix-tagged bucket entries.
	return raw[1:], raw[0], nil
}

// ApplyBatch satisfies asyncrpc.DatabaseClient. The rewrite is atomic:
// the new blob is written to a sibling temp file first, then renamed
// over the target, so a reader never observes a partially written file.
func (s *Store) ApplyBatch(_ context.Context, nodePK [32]byte, newBlob []byte, version byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.blobPath(nodePK)
	tmp, err := os.CreateTemp(s.path, ".tmp-state-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(append([]byte{version}, newBlob...)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePermission); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, target)
}

// Close is a no-op: the Store holds no open file descriptors between
// calls.
func (s *Store) Close() error {
	return nil
}
