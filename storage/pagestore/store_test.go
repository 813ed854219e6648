package pagestore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relman/relman/storage/page"
	"github.com/relman/relman/types"
)

func scratchPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "scratch.db")
}

func TestOpenCreatePutGet(t *testing.T) {
	path := scratchPath(t)
	s, err := New()
	require.NoError(t, err)

	require.NoError(t, s.Open(path, FlagExclusive|FlagCreate))
	defer s.Close()

	block := make([]byte, page.BlockSize)
	copy(block, []byte("hello, page"))
	require.NoError(t, s.Put(1, block))

	got, err := s.Get(1)
	require.NoError(t, err)
	assert.Equal(t, block, got)
}

func TestOpenExclusiveFailsIfExists(t *testing.T) {
	path := scratchPath(t)
	require.NoError(t, os.WriteFile(path, []byte{}, 0644))

	s, err := New()
	require.NoError(t, err)
	assert.Error(t, s.Open(path, FlagExclusive|FlagCreate))
}

func TestStatTracksBlockCount(t *testing.T) {
	path := scratchPath(t)
	s, err := New()
	require.NoError(t, err)
	require.NoError(t, s.Open(path, FlagExclusive|FlagCreate))
	defer s.Close()

	n, err := s.Stat()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, s.Put(1, make([]byte, page.BlockSize)))
	require.NoError(t, s.Put(2, make([]byte, page.BlockSize)))

	n, err = s.Stat()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPutRejectsWrongSize(t *testing.T) {
	path := scratchPath(t)
	s, err := New()
	require.NoError(t, err)
	require.NoError(t, s.Open(path, FlagExclusive|FlagCreate))
	defer s.Close()

	assert.Error(t, s.Put(1, []byte("too short")))
}

func TestRemoveDeletesFile(t *testing.T) {
	path := scratchPath(t)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	require.NoError(t, Remove(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveToleratesMissingFile(t *testing.T) {
	assert.NoError(t, Remove(filepath.Join(t.TempDir(), "absent.db")))
}

func TestGetBeforeOpenFails(t *testing.T) {
	s, err := New()
	require.NoError(t, err)
	_, err = s.Get(types.BlockID(1))
	assert.Error(t, err)
}
