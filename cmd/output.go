// File: cmd/output.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/seleniumshift/internal/config"
	"github.com/xkilldash9x/seleniumshift/internal/observability"
	"github.com/xkilldash9x/seleniumshift/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrCheckFailed marks a command whose result was printed but did not pass.
// The process exits non-zero without a second error message.
var ErrCheckFailed = errors.New("check failed")

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// writeOutput prints v to w, or writes it to path when path is set.
func writeOutput(w io.Writer, path string, v interface{}) error {
	if path == "" {
		return writeJSON(w, v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// storeProvider creates the artifact store for commands that persist results.
// Tests inject an in-memory one.
type storeProvider interface {
	// Create returns the store and a cleanup function releasing it.
	Create(ctx context.Context, cfg config.Interface) (store.Store, func(), error)
}

type defaultStoreProvider struct{}

// NewStoreProvider returns the provider backed by the configured store type.
func NewStoreProvider() storeProvider {
	return &defaultStoreProvider{}
}

func (p *defaultStoreProvider) Create(ctx context.Context, cfg config.Interface) (store.Store, func(), error) {
	logger := observability.GetLogger()
	st, err := store.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("Failed to close store", zap.Error(err))
		}
	}
	return st, cleanup, nil
}
