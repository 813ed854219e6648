package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relman/relman/dbenv"
	"github.com/relman/relman/dberr"
	"github.com/relman/relman/types"
)

func newCatalog(t *testing.T) *Catalog {
	env, err := dbenv.Open(t.TempDir())
	require.NoError(t, err)
	cat, err := Open(env)
	require.NoError(t, err)
	return cat
}

func TestBootstrapSelfDescribesMetaRelations(t *testing.T) {
	cat := newCatalog(t)

	handles, err := cat.Tables().Select()
	require.NoError(t, err)
	assert.Len(t, handles, 3, "_tables, _columns, _indices each self-describe in _tables")

	colHandles, err := cat.Columns().SelectWhere(types.Row{"table_name": types.TextValue(IndicesName)})
	require.NoError(t, err)
	assert.Len(t, colHandles, 6, "_indices has 6 declared columns")
}

func TestGetTableReconstructsUserSchema(t *testing.T) {
	cat := newCatalog(t)
	columns := cat.Columns()

	_, err := cat.Tables().Insert(types.Row{"table_name": types.TextValue("widgets")})
	require.NoError(t, err)
	for _, c := range []struct{ name, dtype string }{
		{"id", "INT"},
		{"name", "TEXT"},
	} {
		_, err := columns.Insert(types.Row{
			"table_name":  types.TextValue("widgets"),
			"column_name": types.TextValue(c.name),
			"data_type":   types.TextValue(c.dtype),
		})
		require.NoError(t, err)
	}

	rel, err := cat.GetTable("widgets")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, rel.Schema().Names())
}

func TestGetTableUnknownNameFails(t *testing.T) {
	cat := newCatalog(t)
	_, err := cat.GetTable("nonexistent")
	kind, ok := dberr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, dberr.NotFound, kind)
}

func TestGetTableCachesRelation(t *testing.T) {
	cat := newCatalog(t)
	first, err := cat.GetTable(TablesName)
	require.NoError(t, err)
	second, err := cat.GetTable(TablesName)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestIndicesLazilyCreatesFile(t *testing.T) {
	cat := newCatalog(t)
	indices, err := cat.Indices()
	require.NoError(t, err)
	assert.True(t, indices.Exists())
}

func TestGetIndexCachesByTableAndName(t *testing.T) {
	cat := newCatalog(t)
	first := cat.GetIndex("widgets", "ix_name")
	second := cat.GetIndex("widgets", "ix_name")
	assert.Same(t, first, second)

	cat.EvictIndex("widgets", "ix_name")
	third := cat.GetIndex("widgets", "ix_name")
	assert.NotSame(t, first, third)
}

func TestEvictTableForcesRebuild(t *testing.T) {
	cat := newCatalog(t)
	first, err := cat.GetTable(TablesName)
	require.NoError(t, err)
	cat.EvictTable(TablesName)
	second, err := cat.GetTable(TablesName)
	require.NoError(t, err)
	assert.Same(t, first, second, "_tables is always rebuilt to the same singleton via metaTable")
}
