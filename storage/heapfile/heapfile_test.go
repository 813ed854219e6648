package heapfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relman/relman/types"
)

func TestCreateAllocatesFirstBlock(t *testing.T) {
	hf, err := Open(t.TempDir(), "widgets")
	require.NoError(t, err)

	assert.False(t, hf.Exists())
	require.NoError(t, hf.Create())
	defer hf.Drop()

	assert.True(t, hf.Exists())
	assert.EqualValues(t, 1, hf.Last())
	assert.Equal(t, []types.BlockID{1}, hf.BlockIDs())
}

func TestGetNewAllocatesSequentially(t *testing.T) {
	hf, err := Open(t.TempDir(), "widgets")
	require.NoError(t, err)
	require.NoError(t, hf.Create())
	defer hf.Drop()

	p2, err := hf.GetNew()
	require.NoError(t, err)
	assert.EqualValues(t, 2, p2.BlockID)
	assert.EqualValues(t, 2, hf.Last())

	p3, err := hf.GetNew()
	require.NoError(t, err)
	assert.EqualValues(t, 3, p3.BlockID)
}

func TestPutThenGetRoundTrips(t *testing.T) {
	hf, err := Open(t.TempDir(), "widgets")
	require.NoError(t, err)
	require.NoError(t, hf.Create())
	defer hf.Drop()

	p, err := hf.Get(1)
	require.NoError(t, err)
	id, err := p.Add([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, hf.Put(p))

	reread, err := hf.Get(1)
	require.NoError(t, err)
	got, err := reread.Get(id)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	hf, err := Open(dir, "widgets")
	require.NoError(t, err)
	require.NoError(t, hf.Create())
	require.NoError(t, hf.Open())
	require.NoError(t, hf.Open())
	assert.False(t, hf.Closed())
}

func TestDropRemovesFile(t *testing.T) {
	dir := t.TempDir()
	hf, err := Open(dir, "widgets")
	require.NoError(t, err)
	require.NoError(t, hf.Create())
	require.NoError(t, hf.Drop())
	assert.False(t, hf.Exists())
}

func TestReopenRecoversLast(t *testing.T) {
	dir := t.TempDir()
	hf, err := Open(dir, "widgets")
	require.NoError(t, err)
	require.NoError(t, hf.Create())
	_, err = hf.GetNew()
	require.NoError(t, err)
	require.NoError(t, hf.Close())

	reopened, err := Open(dir, "widgets")
	require.NoError(t, err)
	require.NoError(t, reopened.Open())
	assert.EqualValues(t, 2, reopened.Last())
}
