package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

// PostgresStore keeps one JSONB document per owner.
type PostgresStore struct {
	pool   *pgxpool.Pool
	owner  string
	logger *logrus.Entry
}

// NewPostgresStore connects a pool to databaseURL and creates the table.
func NewPostgresStore(ctx context.Context, databaseURL, owner string, logger *logrus.Entry) (*PostgresStore, error) {
	if logger == nil {
		logger = logrus.NewEntry(logrus.New())
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	config.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool, owner: owner, logger: logger}
	if err := s.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS note_trees (
			owner TEXT PRIMARY KEY,
			tree JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]*models.Node, Report, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT tree FROM note_trees WHERE owner = $1`, s.owner).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.WithField("owner", s.owner).Debug("no stored tree yet")
		return decodeDocument(nil)
	}
	if err != nil {
		return nil, Report{}, fmt.Errorf("load tree: %w", err)
	}
	return decodeDocument(body)
}

func (s *PostgresStore) Save(ctx context.Context, nodes []*models.Node) error {
	data, err := Encode(nodes)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO note_trees (owner, tree, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (owner) DO UPDATE SET
			tree = EXCLUDED.tree,
			updated_at = EXCLUDED.updated_at
	`, s.owner, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
