package exec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relman/relman/catalog"
	"github.com/relman/relman/dbenv"
	"github.com/relman/relman/dberr"
	"github.com/relman/relman/types"
)

func newExecutor(t *testing.T) (*Executor, *catalog.Catalog) {
	env, err := dbenv.Open(t.TempDir())
	require.NoError(t, err)
	cat, err := catalog.Open(env)
	require.NoError(t, err)
	return New(cat), cat
}

func TestCreateTableThenShowTables(t *testing.T) {
	e, _ := newExecutor(t)

	_, err := e.Execute(CreateTableStmt{
		TableName: "widgets",
		Columns: []ColumnDef{
			{Name: "id", Type: "INT"},
			{Name: "name", Type: "TEXT"},
		},
	})
	require.NoError(t, err)

	res, err := e.Execute(ShowTablesStmt{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "widgets", res.Rows[0]["table_name"].S)
}

func TestDuplicateCreateTableCompensates(t *testing.T) {
	e, cat := newExecutor(t)
	stmt := CreateTableStmt{
		TableName: "widgets",
		Columns:   []ColumnDef{{Name: "id", Type: "INT"}},
	}

	_, err := e.Execute(stmt)
	require.NoError(t, err)

	_, err = e.Execute(stmt)
	assert.Error(t, err, "second CREATE TABLE without IF NOT EXISTS must fail")

	tableHandles, err := cat.Tables().SelectWhere(types.Row{"table_name": types.TextValue("widgets")})
	require.NoError(t, err)
	assert.Len(t, tableHandles, 1, "the failed second attempt must leave exactly one _tables row")

	colHandles, err := cat.Columns().SelectWhere(types.Row{"table_name": types.TextValue("widgets")})
	require.NoError(t, err)
	assert.Len(t, colHandles, 1, "the failed second attempt must leave exactly one _columns row")
}

func TestCreateIndexThenShowIndex(t *testing.T) {
	e, _ := newExecutor(t)
	_, err := e.Execute(CreateTableStmt{
		TableName: "t",
		Columns:   []ColumnDef{{Name: "a", Type: "INT"}},
	})
	require.NoError(t, err)

	_, err = e.Execute(CreateIndexStmt{
		TableName: "t",
		IndexName: "ix",
		Columns:   []string{"a"},
	})
	require.NoError(t, err)

	res, err := e.Execute(ShowIndexStmt{TableName: "t"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	row := res.Rows[0]
	assert.Equal(t, "t", row["table_name"].S)
	assert.Equal(t, "ix", row["index_name"].S)
	assert.EqualValues(t, 1, row["seq_in_index"].N)
	assert.Equal(t, "a", row["column_name"].S)
	assert.Equal(t, "BTREE", row["index_type"].S)
	assert.EqualValues(t, 1, row["is_unique"].N)
}

func TestDropTableRejectsSchemaTables(t *testing.T) {
	e, _ := newExecutor(t)
	_, err := e.Execute(DropTableStmt{TableName: catalog.TablesName})
	kind, ok := dberr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, dberr.ExecError, kind)
	assert.ErrorIs(t, err, dberr.ErrCannotDropSchemaTable)
}

func TestDropTableCascadesIndicesAndColumns(t *testing.T) {
	e, cat := newExecutor(t)
	_, err := e.Execute(CreateTableStmt{
		TableName: "t",
		Columns:   []ColumnDef{{Name: "a", Type: "INT"}},
	})
	require.NoError(t, err)
	_, err = e.Execute(CreateIndexStmt{TableName: "t", IndexName: "ix", Columns: []string{"a"}})
	require.NoError(t, err)

	_, err = e.Execute(DropTableStmt{TableName: "t"})
	require.NoError(t, err)

	_, err = cat.GetTable("t")
	kind, ok := dberr.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, dberr.NotFound, kind)

	indices, err := cat.Indices()
	require.NoError(t, err)
	remaining, err := indices.SelectWhere(types.Row{"table_name": types.TextValue("t")})
	require.NoError(t, err)
	assert.Len(t, remaining, 0, "dropping the table must also drop its index rows")
}

func TestShowColumnsDoesNotFilterMetaRelations(t *testing.T) {
	e, _ := newExecutor(t)
	res, err := e.Execute(ShowColumnsStmt{TableName: catalog.TablesName})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "table_name", res.Rows[0]["column_name"].S)
}

func TestShowTablesSurvivesProcessRestartInCreationOrder(t *testing.T) {
	dir := t.TempDir()

	env, err := dbenv.Open(dir)
	require.NoError(t, err)
	cat, err := catalog.Open(env)
	require.NoError(t, err)
	e := New(cat)

	for _, name := range []string{"first", "second", "third"} {
		_, err := e.Execute(CreateTableStmt{
			TableName: name,
			Columns:   []ColumnDef{{Name: "a", Type: "INT"}},
		})
		require.NoError(t, err)
	}

	// Simulate a process restart: a fresh Environment, Catalog and
	// Executor against the same on-disk directory, with no shared
	// in-memory state (caches included) from the first process.
	env2, err := dbenv.Open(dir)
	require.NoError(t, err)
	cat2, err := catalog.Open(env2)
	require.NoError(t, err)
	e2 := New(cat2)

	res, err := e2.Execute(ShowTablesStmt{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	names := make([]string, len(res.Rows))
	for i, row := range res.Rows {
		names[i] = row["table_name"].S
	}
	assert.Equal(t, []string{"first", "second", "third"}, names)
}

func TestExecuteUnknownStatementNotImplemented(t *testing.T) {
	e, _ := newExecutor(t)
	res, err := e.Execute(42)
	require.NoError(t, err)
	assert.Equal(t, "not implemented", res.Message)
}
