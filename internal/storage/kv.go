// Package storage persists the panel layout in a local key-value store.
//
// The layout is kept as three independent JSON blobs (panel state, panel
// order and presets) behind the KV port, so the layout engine never depends
// on a particular substrate. Three backends are provided: a single JSON file
// (the default), an embedded SQLite database and an in-memory map.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by KV.Get when a key has never been written.
var ErrNotFound = errors.New("storage: key not found")

// KV is a string-valued key-value store.
type KV interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set writes value under key.
	Set(ctx context.Context, key, value string) error
	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	// Backend is one of BackendJSON, BackendSQLite or BackendMemory.
	Backend string
	// Path is the file or database path. Empty means the XDG default for
	// the backend.
	Path string
}

// Open creates the backend described by opts.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendJSON:
		path := opts.Path
		if path == "" {
			p, err := DefaultPath(BackendJSON)
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFileKV(path)
	case BackendSQLite:
		path := opts.Path
		if path == "" {
			p, err := DefaultPath(BackendSQLite)
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewSQLiteKV(ctx, path)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
