// Package store provides content-addressed storage for ingested file
// payloads. Objects are keyed by the SHA-256 of their bytes, so writing the
// same content twice is a no-op and deduplication across uploads falls out
// of the addressing scheme.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zip2job/zip2job/internal/common"
)

// ErrNotFound is returned by Get when no object exists for the hash.
var ErrNotFound = errors.New("content object not found")

// ContentStore writes immutable blobs under root/objects/<hh>/<hash>,
// sharded by the first two hex digits of the hash.
type ContentStore struct {
	root string
}

// New creates a ContentStore rooted at the given directory. The objects
// directory is created here if it does not exist.
func New(root string) (*ContentStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(abs, "objects"), 0o755); err != nil {
		return nil, fmt.Errorf("create objects root: %w", err)
	}
	return &ContentStore{root: abs}, nil
}

// Root returns the absolute root directory of the store.
func (s *ContentStore) Root() string { return s.root }

// HashBytes returns the lowercase hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *ContentStore) objectPath(hash string) string {
	return filepath.Join(s.root, "objects", hash[:2], hash)
}

// Put stores data and returns its content hash. Writing an already-present
// object is idempotent: the existing blob is kept untouched.
func (s *ContentStore) Put(data []byte) (string, error) {
	hash := HashBytes(data)
	path := s.objectPath(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create object shard: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".obj-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close object: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		// Lost the race to another writer; the content is identical.
		os.Remove(tmpName)
		return hash, nil
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("publish object: %w", err)
	}
	common.Logger().Debug("store: object written", "hash", hash, "size", len(data))
	return hash, nil
}

// Get returns the bytes for the given content hash.
func (s *ContentStore) Get(hash string) ([]byte, error) {
	if len(hash) != 64 || strings.ToLower(hash) != hash {
		return nil, fmt.Errorf("%w: malformed hash %q", ErrNotFound, hash)
	}
	data, err := os.ReadFile(s.objectPath(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
		}
		return nil, fmt.Errorf("read object %s: %w", hash, err)
	}
	return data, nil
}

// Has reports whether an object with the hash exists.
func (s *ContentStore) Has(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	_, err := os.Stat(s.objectPath(hash))
	return err == nil
}

// Materialize writes the referenced objects into dir, recreating the
// project's tree so analysers and git can walk real files. Unsafe paths are
// skipped.
func (s *ContentStore) Materialize(dir string, refs []FileRef) error {
	for _, ref := range refs {
		rel := filepath.FromSlash(strings.Trim(ref.Path, "/"))
		if rel == "" || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
			continue
		}
		data, err := s.Get(ref.Hash)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				common.Logger().Warn("store: object missing during materialize", "path", ref.Path, "hash", ref.Hash)
				continue
			}
			return err
		}
		dest := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("create tree dir: %w", err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("write tree file: %w", err)
		}
	}
	return nil
}

// FileRef is one (relative path, content hash) pair of a project's current
// file set.
type FileRef struct {
	Path string
	Hash string
}

// Fingerprint computes the stable project fingerprint over a file set: the
// refs are sorted lexicographically by path and the serialised sequence is
// hashed. Two identical {(path, hash)} multisets always produce the same
// 64-character lowercase hex digest.
func Fingerprint(refs []FileRef) string {
	sorted := make([]FileRef, len(refs))
	copy(sorted, refs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Path != sorted[j].Path {
			return sorted[i].Path < sorted[j].Path
		}
		return sorted[i].Hash < sorted[j].Hash
	})
	hasher := sha256.New()
	for _, ref := range sorted {
		hasher.Write([]byte(ref.Path))
		hasher.Write([]byte{0})
		hasher.Write([]byte(ref.Hash))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}
