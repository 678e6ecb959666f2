package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names accepted by OpenStore.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Store persists registry records.
type Store interface {
	// Load returns all persisted records. A store that does not exist yet
	// returns no records and no error.
	Load(ctx context.Context) ([]*Record, error)

	// Save replaces the persisted records with records.
	Save(ctx context.Context, records []*Record) error

	// Close releases resources held by the store.
	Close() error

	// Backend names the store implementation.
	Backend() string

	// Location is the file path of the store.
	Location() string
}

// OpenStore opens the store for path. An empty backend is inferred from the
// file extension: .db, .sqlite and .sqlite3 select SQLite, anything else
// JSON.
func OpenStore(path, backend string) (Store, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}

	if backend == "" {
		backend = BackendFor(path)
	}

	switch strings.ToLower(backend) {
	case BackendJSON:
		return NewJSONFileStore(path), nil
	case BackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

// BackendFor infers the backend from a file extension.
func BackendFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return BackendSQLite
	default:
		return BackendJSON
	}
}
