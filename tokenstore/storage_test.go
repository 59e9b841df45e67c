// tokenstore/storage_test.go
package tokenstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, storage Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := storage.Get(ctx, AccessTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, storage.Set(ctx, AccessTokenKey, "a1"))
	require.NoError(t, storage.Set(ctx, RefreshTokenKey, "r1"))

	v, err := storage.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a1", v)

	require.NoError(t, storage.SetValues(ctx, map[string]string{AccessTokenKey: "a2", RefreshTokenKey: "r2"}))
	v, err = storage.Get(ctx, AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a2", v)
	v, err = storage.Get(ctx, RefreshTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "r2", v)

	require.NoError(t, storage.Delete(ctx, AccessTokenKey, RefreshTokenKey))
	_, err = storage.Get(ctx, RefreshTokenKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	exerciseStorage(t, NewFileStorage(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStorage_SharedBetweenInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")

	writer := New(NewFileStorage(path), nil)
	reader := New(NewFileStorage(path), nil)

	require.NoError(t, writer.SetTokens(ctx, &TokenPair{AccessToken: "a1", RefreshToken: "r1"}))
	assert.Equal(t, &TokenPair{AccessToken: "a1", RefreshToken: "r1"}, reader.GetTokens(ctx))

	require.NoError(t, writer.ClearTokens(ctx))
	assert.Nil(t, reader.GetTokens(ctx))
}

func TestFileStorage_CorruptFileIsUnavailable(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := NewFileStorage(path).Get(ctx, AccessTokenKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestRedisStorage(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	storage := NewRedisStorage(client, "")
	defer storage.Close()

	require.NoError(t, storage.Ping(context.Background()))
	exerciseStorage(t, storage)

	require.NoError(t, storage.Set(context.Background(), AccessTokenKey, "a9"))
	got, err := mr.Get(DefaultRedisPrefix + AccessTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "a9", got)
}

func TestRedisStorage_UnavailableFallsBackToMirror(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	storage, err := NewRedisStorageFromURL("redis://"+mr.Addr()+"/0", "test:")
	require.NoError(t, err)
	defer storage.Close()

	store := New(storage, nil)
	require.NoError(t, store.SetTokens(ctx, &TokenPair{AccessToken: "a1", RefreshToken: "r1"}))

	mr.Close()
	assert.Equal(t, &TokenPair{AccessToken: "a1", RefreshToken: "r1"}, store.GetTokens(ctx))
}
