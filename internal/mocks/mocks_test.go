// File: internal/mocks/mocks_test.go
package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/seleniumshift/internal/javac"
	"github.com/xkilldash9x/seleniumshift/internal/store"
)

var (
	_ javac.Runner = (*MockRunner)(nil)
	_ store.Store  = (*MockStore)(nil)
	_ store.Store  = (*MemoryStore)(nil)
)

func TestMockRunner(t *testing.T) {
	m := new(MockRunner)
	m.On("Run", mock.Anything, javac.Request{Files: []string{"A.java"}}).Return(javac.Outcome{Status: javac.StatusSuccess})

	out := m.Run(context.Background(), javac.Request{Files: []string{"A.java"}})
	assert.Equal(t, javac.StatusSuccess, out.Status)
	m.AssertExpectations(t)
}

func TestMockStore(t *testing.T) {
	m := new(MockStore)
	m.On("Get", mock.Anything, "missing").Return(nil, store.ErrNotFound)
	m.On("List", mock.Anything, "").Return([]string{"a"}, nil)

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	names, err := m.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
	m.AssertExpectations(t)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Put(ctx, "b/2", []byte("two")))
	require.NoError(t, s.Put(ctx, "a/1", []byte("one")))

	data, err := s.Get(ctx, "a/1")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	_, err = s.Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)

	names, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "b/2"}, names)

	s.PutErr = errors.New("disk full")
	assert.EqualError(t, s.Put(ctx, "c", nil), "disk full")
}
