package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one <key>.json file per dataset under dir.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("kv: create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\.`) {
		return "", fmt.Errorf("kv: invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return b, err
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return f.SetAll(ctx, map[string][]byte{key: value})
}

func (f *FileStore) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// SetAll stages every document in a temp file first and only starts
// renaming once all of them were written.
func (f *FileStore) SetAll(_ context.Context, docs map[string][]byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	type staged struct{ tmp, dst string }
	var ready []staged
	cleanup := func() {
		for _, s := range ready {
			_ = os.Remove(s.tmp)
		}
	}

	for key, value := range docs {
		dst, err := f.path(key)
		if err != nil {
			cleanup()
			return err
		}
		tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
		if err != nil {
			cleanup()
			return err
		}
		ready = append(ready, staged{tmp: tmp.Name(), dst: dst})
		if _, err := tmp.Write(value); err != nil {
			tmp.Close()
			cleanup()
			return err
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			cleanup()
			return err
		}
		if err := tmp.Close(); err != nil {
			cleanup()
			return err
		}
	}

	for i, s := range ready {
		if err := os.Rename(s.tmp, s.dst); err != nil {
			for _, r := range ready[i:] {
				_ = os.Remove(r.tmp)
			}
			return err
		}
	}
	return nil
}
