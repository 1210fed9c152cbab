package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

const (
	pgSchema = `
        CREATE TABLE IF NOT EXISTS artifacts (
            name TEXT PRIMARY KEY,
            data BYTEA NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        );
    `
	pgUpsert = `
        INSERT INTO artifacts (name, data, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (name) DO UPDATE SET
            data = EXCLUDED.data,
            updated_at = EXCLUDED.updated_at;
    `
	pgSelect = `SELECT data FROM artifacts WHERE name = $1;`
	pgList   = `
        SELECT name FROM artifacts
        WHERE LEFT(name, LENGTH($1)) = $1
        ORDER BY name ASC;
    `
)

// PostgresStore provides a PostgreSQL implementation of Store.
type PostgresStore struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgresStore verifies the connection and makes sure the table exists.
func NewPostgresStore(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresStore, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("failed to create artifacts table: %w", err)
	}
	return &PostgresStore{pool: pool, log: logger.Named("postgres_store")}, nil
}

func (s *PostgresStore) Put(ctx context.Context, name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, pgUpsert, clean, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to store %s: %w", clean, err)
	}
	s.log.Debug("Stored artifact", zap.String("name", clean), zap.Int("bytes", len(data)))
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var data []byte
	err = s.pool.QueryRow(ctx, pgSelect, clean).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", clean, err)
	}
	return data, nil
}

func (s *PostgresStore) List(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Query(ctx, pgList, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan artifact row: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
