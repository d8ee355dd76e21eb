package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

const documentKey = "tree"

// SQLiteStore keeps the encoded tree in one row of a key/value table.
type SQLiteStore struct {
	db     *sql.DB
	logger *logrus.Entry
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
func NewSQLiteStore(dbPath string, logger *logrus.Entry) (*SQLiteStore, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &SQLiteStore{db: db, logger: logger}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]*models.Node, Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, "SELECT body FROM documents WHERE key = ?", documentKey).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Debug("no stored tree yet")
		return decodeDocument(nil)
	}
	if err != nil {
		return nil, Report{}, fmt.Errorf("failed to load tree: %w", err)
	}
	return decodeDocument([]byte(body))
}

func (s *SQLiteStore) Save(ctx context.Context, nodes []*models.Node) error {
	data, err := Encode(nodes)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (key, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, documentKey, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save tree: %w", err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
