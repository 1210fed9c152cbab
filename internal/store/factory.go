package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
)

// SQLiteFile is the database file name used when store.path names a directory.
const SQLiteFile = "artifacts.db"

// New builds the backend selected by store.type.
func New(ctx context.Context, cfg config.Interface, logger *zap.Logger) (Store, error) {
	sc := cfg.Store()
	switch sc.Type {
	case "", "file":
		return NewFileStore(sc.Path, logger)
	case "sqlite":
		dbPath := sc.Path
		if ext := strings.ToLower(filepath.Ext(dbPath)); ext != ".db" && ext != ".sqlite" {
			dbPath = filepath.Join(dbPath, SQLiteFile)
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", dbPath, err)
		}
		return NewSQLiteStore(ctx, dbPath, logger)
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database().URL)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres pool: %w", err)
		}
		s, err := NewPostgresStore(ctx, pool, logger)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type %q", sc.Type)
	}
}
