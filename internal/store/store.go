// Package store persists generated artifacts (model output, derived sources and
// execution plans) under slash-separated names.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrNotFound is returned by Get for a name that was never stored.
	ErrNotFound = errors.New("artifact not found")
	// ErrInvalidName rejects names that are empty, absolute or escape the store root.
	ErrInvalidName = errors.New("invalid artifact name")
)

// Store is the artifact repository shared by every backend.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns the stored names starting with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// cleanName normalizes an artifact name to its canonical slash form.
func cleanName(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	if name == "" || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return cleaned, nil
}
