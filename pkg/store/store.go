// Package store persists the notes tree as a whole document.
//
// Every backend stores the same encoded document produced by Encode and runs
// it through Decode on the way back in, so repair-on-load behaves identically
// regardless of where the bytes live. Writes are last-write-wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

// ErrUnsupportedBackend is returned by Open for an unknown backend name.
var ErrUnsupportedBackend = errors.New("unsupported store backend")

// Store loads and saves the whole tree.
type Store interface {
	// Load returns the repaired tree. A store that has never been written
	// returns an empty tree.
	Load(ctx context.Context) ([]*models.Node, Report, error)
	Save(ctx context.Context, nodes []*models.Node) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config selects and configures a backend.
type Config struct {
	Backend     string
	DataDir     string
	RedisURL    string
	RedisKey    string
	PostgresURL string
	Owner       string
}

// DefaultKey names the document in key-value and table backends.
const DefaultKey = "notes:tree"

// Open creates the configured store.
func Open(ctx context.Context, cfg Config, logger *logrus.Entry) (Store, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	logger = logger.WithField("backend", cfg.Backend)

	switch cfg.Backend {
	case BackendFile, "":
		return NewFileStore(filepath.Join(cfg.DataDir, "notes.json")), nil
	case BackendSQLite:
		return NewSQLiteStore(filepath.Join(cfg.DataDir, "notes.db"), logger)
	case BackendRedis:
		key := cfg.RedisKey
		if key == "" {
			key = DefaultKey
		}
		return NewRedisStore(ctx, cfg.RedisURL, key)
	case BackendPostgres:
		owner := cfg.Owner
		if owner == "" {
			owner = DefaultKey
		}
		return NewPostgresStore(ctx, cfg.PostgresURL, owner, logger)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.Backend)
}

// decodeDocument decodes a stored document, treating "no document yet" as an
// empty tree.
func decodeDocument(data []byte) ([]*models.Node, Report, error) {
	if data == nil {
		return []*models.Node{}, Report{}, nil
	}
	return Decode(data)
}
