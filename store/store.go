// Package store persists ledger backups.
//
// A store is a small key value database: the key names a ledger, the value is
// the backup returned by Ledger.OnDataSaveStorage.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been saved.
var ErrNotFound = errors.New("not found")

// Store saves and loads ledger backups by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Open opens the store described by url:
//
//	dir:<path>        one file per key in a directory
//	sqlite:<path>     an SQLite database file
//	redis://<addr>/<db>
//
// A url without scheme is a directory.
func Open(ctx context.Context, url string) (Store, error) {
	scheme, rest, ok := strings.Cut(url, ":")
	if !ok {
		return OpenDir(url)
	}
	switch scheme {
	case "dir":
		return OpenDir(rest)
	case "sqlite":
		return OpenSQLite(rest)
	case "redis", "rediss":
		return OpenRedis(ctx, url)
	default:
		return nil, fmt.Errorf("unknown store %q", url)
	}
}
