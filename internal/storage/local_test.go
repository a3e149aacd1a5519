package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cube-dp/lease-classifier/internal/common"
)

func TestLocalPutGet(t *testing.T) {
	l := NewLocal(t.TempDir())
	ctx := context.Background()

	loc, err := l.Put(ctx, "lease.txt", []byte("the lease text"))
	require.NoError(t, err)
	assert.Contains(t, loc, "lease.txt")
	assert.NotEqual(t, "lease.txt", loc, "stored name is uniquified")

	data, err := l.Get(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, []byte("the lease text"), data)
}

func TestLocalPutSameNameTwice(t *testing.T) {
	l := NewLocal(t.TempDir())
	ctx := context.Background()

	first, err := l.Put(ctx, "lease.txt", []byte("one"))
	require.NoError(t, err)
	second, err := l.Put(ctx, "lease.txt", []byte("two"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	data, err := l.Get(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)
}

func TestLocalGetMissing(t *testing.T) {
	l := NewLocal(t.TempDir())
	_, err := l.Get(context.Background(), "nope.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestNewSelectsBackend(t *testing.T) {
	s, err := New(common.StorageConfig{Type: "local", Local: common.LocalStorageConfig{Path: t.TempDir()}})
	require.NoError(t, err)
	assert.Equal(t, "local", s.Type())

	_, err = New(common.StorageConfig{Type: "ftp"})
	assert.Error(t, err)
}
