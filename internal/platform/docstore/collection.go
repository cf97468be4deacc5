// Package docstore holds the in-memory copy of one persisted dataset.
//
// A Collection is loaded once at startup and every mutation is a
// read-modify-write of the whole document: the mutation runs on a copy,
// the copy is persisted, and only then does it replace the live slice.
// A failed write therefore leaves the in-memory state untouched.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"care-attendance/internal/platform/kv"
)

type Collection[T any] struct {
	mu    sync.RWMutex
	store kv.Store
	key   string
	items []T
}

// Load reads key from store; a missing key starts an empty collection.
func Load[T any](ctx context.Context, store kv.Store, key string) (*Collection[T], error) {
	c := &Collection[T]{store: store, key: key}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload replaces the in-memory items with what the store currently holds.
func (c *Collection[T]) Reload(ctx context.Context) error {
	items, err := Decode[T](ctx, c.store, c.key)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items = items
	c.mu.Unlock()
	return nil
}

// Exclusive runs fn with the collection locked, then reloads the items
// from the store. fn may write the key directly; no Mutate can interleave
// between that write and the reload. A failing fn skips the reload.
func (c *Collection[T]) Exclusive(ctx context.Context, fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	items, err := Decode[T](ctx, c.store, c.key)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}

// Snapshot returns a copy the caller may keep or modify freely.
func (c *Collection[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Find returns the first item matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// Mutate hands fn a copy of the items. When fn returns nil the result is
// persisted and becomes the live state; any error leaves both untouched.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	work := make([]T, len(c.items))
	copy(work, c.items)
	next, err := fn(work)
	if err != nil {
		return err
	}
	if next == nil {
		next = []T{}
	}

	body, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", c.key, err)
	}
	if err := c.store.Set(ctx, c.key, body); err != nil {
		return &PersistError{Key: c.key, Err: err}
	}
	c.items = next
	return nil
}

// PersistError marks a failed write to the backing store.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("docstore: persist %s: %v", e.Key, e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }

// Decode reads and unmarshals one dataset; a missing key is an empty list.
func Decode[T any](ctx context.Context, store kv.Store, key string) ([]T, error) {
	body, err := store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("docstore: load %s: %w", key, err)
	}
	items, err := Unmarshal[T](body)
	if err != nil {
		return nil, fmt.Errorf("docstore: decode %s: %w", key, err)
	}
	return items, nil
}

// Unmarshal parses a JSON array document; "null" and empty input give an empty list.
func Unmarshal[T any](body []byte) ([]T, error) {
	var items []T
	if len(body) == 0 {
		return []T{}, nil
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
