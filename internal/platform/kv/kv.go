// Package kv is the persistence layer: a get/set store of whole JSON
// documents keyed by dataset name.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Dataset keys.
const (
	KeyPlaces     = "places"
	KeySchedules  = "schedules"
	KeyAttendance = "attendance"
)

// AllKeys lists every dataset in export order.
var AllKeys = []string{KeyPlaces, KeySchedules, KeyAttendance}

var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	// Get returns ErrNotFound when the key was never written (or was deleted).
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// SetAll writes every entry or none of them.
	SetAll(ctx context.Context, docs map[string][]byte) error
}

type Options struct {
	Dir string
	DB  *sql.DB
}

// Open builds the Store named by driver. mysql needs Options.DB.
func Open(driver string, opts Options) (Store, error) {
	switch driver {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "mysql":
		if opts.DB == nil {
			return nil, errors.New("kv: mysql driver requires a database connection")
		}
		return NewMySQLStore(opts.DB), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("kv: unknown storage driver %q", driver)
	}
}
