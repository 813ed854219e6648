package heaprelation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relman/relman/dberr"
	"github.com/relman/relman/types"
)

func widgetsSchema() types.Schema {
	return types.Schema{
		{Name: "id", Attribute: types.ColumnAttribute{DataType: types.INT}},
		{Name: "name", Attribute: types.ColumnAttribute{DataType: types.TEXT}},
	}
}

func newWidgets(t *testing.T) *Relation {
	rel, err := New(t.TempDir(), "widgets", widgetsSchema())
	require.NoError(t, err)
	require.NoError(t, rel.CreateIfNotExists())
	return rel
}

func row(id int32, name string) types.Row {
	return types.Row{"id": types.IntValue(id), "name": types.TextValue(name)}
}

func TestInsertProjectRoundTrips(t *testing.T) {
	rel := newWidgets(t)

	h, err := rel.Insert(row(1, "bolt"))
	require.NoError(t, err)

	got, err := rel.Project(h)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got["id"].N)
	assert.Equal(t, "bolt", got["name"].S)
}

func TestInsertMissingColumnFails(t *testing.T) {
	rel := newWidgets(t)
	_, err := rel.Insert(types.Row{"id": types.IntValue(1)})
	kind, ok := dberr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, dberr.MissingColumn, kind)
}

func TestInsertTooLongTextFails(t *testing.T) {
	rel := newWidgets(t)
	_, err := rel.Insert(row(1, strings.Repeat("x", types.MaxTextLen+1)))
	kind, ok := dberr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, dberr.TextTooLong, kind)
}

func TestSelectEnumeratesAllLiveRows(t *testing.T) {
	rel := newWidgets(t)
	_, err := rel.Insert(row(1, "bolt"))
	require.NoError(t, err)
	_, err = rel.Insert(row(2, "nut"))
	require.NoError(t, err)

	handles, err := rel.Select()
	require.NoError(t, err)
	assert.Len(t, handles, 2)
}

func TestDelRemovesRowFromSelect(t *testing.T) {
	rel := newWidgets(t)
	h1, err := rel.Insert(row(1, "bolt"))
	require.NoError(t, err)
	_, err = rel.Insert(row(2, "nut"))
	require.NoError(t, err)

	require.NoError(t, rel.Del(h1))

	handles, err := rel.Select()
	require.NoError(t, err)
	assert.Len(t, handles, 1)
}

func TestSelectWhereFiltersOnColumnEquality(t *testing.T) {
	rel := newWidgets(t)
	_, err := rel.Insert(row(1, "bolt"))
	require.NoError(t, err)
	_, err = rel.Insert(row(2, "nut"))
	require.NoError(t, err)

	handles, err := rel.SelectWhere(types.Row{"name": types.TextValue("nut")})
	require.NoError(t, err)
	require.Len(t, handles, 1)

	got, err := rel.Project(handles[0])
	require.NoError(t, err)
	assert.EqualValues(t, 2, got["id"].N)
}

func TestProjectColumnsRestrictsFields(t *testing.T) {
	rel := newWidgets(t)
	h, err := rel.Insert(row(1, "bolt"))
	require.NoError(t, err)

	got, err := rel.ProjectColumns(h, []string{"name"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, "bolt", got["name"].S)
}

func TestProjectColumnsUnknownColumnFails(t *testing.T) {
	rel := newWidgets(t)
	h, err := rel.Insert(row(1, "bolt"))
	require.NoError(t, err)

	_, err = rel.ProjectColumns(h, []string{"nonexistent"})
	kind, ok := dberr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, dberr.UnknownColumn, kind)
}

func TestInsertSpillsToNewPageOnOverflow(t *testing.T) {
	rel := newWidgets(t)
	big := strings.Repeat("y", 3000)
	var last types.Handle
	for i := 0; i < 5; i++ {
		h, err := rel.Insert(row(int32(i), big))
		require.NoError(t, err)
		last = h
	}
	assert.Greater(t, last.Block, types.BlockID(1), "enough large rows must spill past block 1")
}

func TestInsertOneThousandRowsAllSelectable(t *testing.T) {
	rel := newWidgets(t)
	const n = 1000
	handles := make([]types.Handle, 0, n)
	for i := 0; i < n; i++ {
		h, err := rel.Insert(row(int32(i), "widget"))
		require.NoError(t, err)
		handles = append(handles, h)
	}
	require.Len(t, handles, n)

	got, err := rel.Select()
	require.NoError(t, err)
	assert.Len(t, got, n)

	last, err := rel.Project(handles[n-1])
	require.NoError(t, err)
	assert.EqualValues(t, n-1, last["id"].N)
}
