// File: internal/mocks/mocks.go
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/seleniumshift/internal/javac"
)

// -- Compiler Mock --

// MockRunner mocks javac.Runner.
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, req javac.Request) javac.Outcome {
	args := m.Called(ctx, req)
	return args.Get(0).(javac.Outcome)
}

// -- Store Mock --

// MockStore mocks store.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockStore) List(ctx context.Context, prefix string) ([]string, error) {
	args := m.Called(ctx, prefix)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// -- In-memory Store --

// MemoryStore is a map-backed store.Store for tests that care about contents
// rather than call expectations.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string][]byte
	// PutErr, when set, is returned by every Put.
	PutErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PutErr != nil {
		return s.PutErr
	}
	s.items[name] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.items[name]
	if !ok {
		return nil, errNotFound(name)
	}
	return data, nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := []string{}
	for name := range s.items {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			names = append(names, name)
		}
	}
	sortStrings(names)
	return names, nil
}

func (s *MemoryStore) Close() error { return nil }
