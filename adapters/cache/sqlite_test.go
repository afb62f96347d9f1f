package cache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Roundtrip(t *testing.T) {
	s := openStore(t)

	_, ok, err := s.Get("KIC 8758161|Kepler|long")
	require.NoError(t, err)
	assert.False(t, ok)

	payload := []byte{0x53, 0x49, 0x4d, 0x50, 0x4c, 0x45}
	require.NoError(t, s.Put("KIC 8758161|Kepler|long", payload))

	got, ok, err := s.Get("KIC 8758161|Kepler|long")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload, got)
}

func TestSQLiteStore_PutReplaces(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Put("k", []byte("old")))
	require.NoError(t, s.Put("k", []byte("new")))

	got, ok, err := s.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestSQLiteStore_Delete(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Put("k", []byte("blob")))
	require.NoError(t, s.Delete("k"))

	_, ok, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error.
	assert.NoError(t, s.Delete("k"))
}

func TestSQLiteStore_KeysAreIndependent(t *testing.T) {
	s := openStore(t)

	require.NoError(t, s.Put("a", []byte{1}))
	require.NoError(t, s.Put("b", []byte{2}))

	got, ok, err := s.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte{1}, got)
}
