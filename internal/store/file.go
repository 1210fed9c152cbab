package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// FileStore keeps each artifact as a file below a root directory.
type FileStore struct {
	root string
	log  *zap.Logger
}

// NewFileStore creates root if needed.
func NewFileStore(root string, logger *zap.Logger) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", root, err)
	}
	return &FileStore{root: root, log: logger.Named("file_store")}, nil
}

// Put writes through a temporary file so readers never see a partial artifact.
func (s *FileStore) Put(_ context.Context, name string, data []byte) error {
	clean, err := cleanName(name)
	if err != nil {
		return err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", clean, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to stage %s: %w", clean, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", clean, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", clean, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("failed to commit %s: %w", clean, err)
	}
	s.log.Debug("Stored artifact", zap.String("name", clean), zap.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) Get(_ context.Context, name string) ([]byte, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean)))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, clean)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", clean, err)
	}
	return data, nil
}

func (s *FileStore) List(_ context.Context, prefix string) ([]string, error) {
	names := []string{}
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.root, err)
	}
	sort.Strings(names)
	return names, nil
}

// Root returns the directory the store writes to.
func (s *FileStore) Root() string { return s.root }

func (s *FileStore) Close() error { return nil }
