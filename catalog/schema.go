package catalog

import "github.com/relman/relman/types"

// The three meta-relation names. None of them can be the target of DROP
// TABLE.
const (
	TablesName  = "_tables"
	ColumnsName = "_columns"
	IndicesName = "_indices"
)

// IsMetaRelation reports whether name is one of the three self-describing
// meta-relations.
func IsMetaRelation(name string) bool {
	return name == TablesName || name == ColumnsName || name == IndicesName
}

func col(name string, dt types.DataType) types.Column {
	return types.Column{Name: name, Attribute: types.ColumnAttribute{DataType: dt}}
}

// tablesSchema: one row per user or system relation.
func tablesSchema() types.Schema {
	return types.Schema{col("table_name", types.TEXT)}
}

// columnsSchema: columns in declared order for every relation.
func columnsSchema() types.Schema {
	return types.Schema{
		col("table_name", types.TEXT),
		col("column_name", types.TEXT),
		col("data_type", types.TEXT),
	}
}

// indicesSchema: one row per (index, column) pair. is_unique is stored
// on disk as INT (0/1) — the marshaller only knows INT and TEXT — and
// surfaced as BOOLEAN only in SHOW INDEX's reported result schema; see
// DESIGN.md.
func indicesSchema() types.Schema {
	return types.Schema{
		col("table_name", types.TEXT),
		col("index_name", types.TEXT),
		col("seq_in_index", types.INT),
		col("column_name", types.TEXT),
		col("index_type", types.TEXT),
		col("is_unique", types.INT),
	}
}

func metaSchema(name string) (types.Schema, bool) {
	switch name {
	case TablesName:
		return tablesSchema(), true
	case ColumnsName:
		return columnsSchema(), true
	case IndicesName:
		return indicesSchema(), true
	default:
		return nil, false
	}
}
