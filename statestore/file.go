package statestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arkankau/coffee-chatted/internal/fsstore"
)

const (
	fileExt     = ".json"
	locksDir    = ".locks"
	lockKeyStem = "statestore."
)

// FileKV stores each key as <dir>/<key>.json, written atomically. Writers
// across processes are serialized with a per-key file lock.
type FileKV struct {
	dir  string
	opts fsstore.FileOptions
}

func NewFileKV(dir string) (*FileKV, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("file kv: empty dir")
	}
	if err := fsstore.EnsureDir(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileKV{dir: filepath.Clean(dir)}, nil
}

func (s *FileKV) Dir() string { return s.dir }

func (s *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, ok, err := fsstore.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, nil
}

func (s *FileKV) Put(ctx context.Context, key string, value []byte) error {
	return s.Update(ctx, key, func([]byte, bool) ([]byte, error) {
		return value, nil
	})
}

func (s *FileKV) Delete(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	return s.withLock(ctx, key, func() error {
		return fsstore.RemoveFile(path)
	})
}

func (s *FileKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return s.withLock(ctx, key, func() error {
		current, found, err := fsstore.ReadFile(path)
		if err != nil {
			return err
		}
		next, err := fn(current, found)
		if err != nil {
			return err
		}
		return fsstore.WriteFileAtomic(path, next, s.opts)
	})
}

func (s *FileKV) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		key := strings.TrimSuffix(e.Name(), fileExt)
		if _, err := validateKey(key); err != nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileKV) Close() error { return nil }

func (s *FileKV) path(key string) (string, error) {
	key, err := validateKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, key+fileExt), nil
}

func (s *FileKV) withLock(ctx context.Context, key string, fn func() error) error {
	lockPath, err := fsstore.BuildLockPath(filepath.Join(s.dir, locksDir), lockKeyStem+key)
	if err != nil {
		return err
	}
	return fsstore.WithLock(ctx, lockPath, fn)
}
