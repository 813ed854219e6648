// Package exec implements component E: it consumes the opaque statement
// tree spec.md §4.5 describes and drives the catalog (component D)
// through the seven supported schema-manipulation statements.
//
// Grounded on query_parser/parser/ast.go's statement-struct style (a
// marker interface plus one plain struct per statement kind,
// CreateTableStmt/ColumnDef's exact field shape) trimmed to exactly the
// discriminants spec.md §4.5 names — the lexer/parser that produces these
// trees stays out of scope per spec.md §1.
package exec

// Statement is the marker interface every statement tree node
// implements. The lexer/parser that builds these is out of scope; the
// CLI's tiny pre-parsed grammar (cmd/relman) is the only producer here.
type Statement interface{}

// ColumnDef names a column and its declared type as the statement tree
// carries it, before mapColumnType resolves the type to a
// types.ColumnAttribute.
type ColumnDef struct {
	Name string
	Type string
}

// CreateTableStmt is CREATE TABLE table_name (col type, ...) [IF NOT EXISTS].
type CreateTableStmt struct {
	TableName   string
	Columns     []ColumnDef
	IfNotExists bool
}

// CreateIndexStmt is CREATE INDEX index_name ON table_name USING type (cols...).
// IndexType, if empty, defaults to "BTREE" in ExecuteCreateIndex.
type CreateIndexStmt struct {
	TableName string
	IndexName string
	IndexType string
	Columns   []string
}

// DropTableStmt is DROP TABLE table_name.
type DropTableStmt struct {
	TableName string
}

// DropIndexStmt is DROP INDEX index_name FROM table_name.
type DropIndexStmt struct {
	TableName string
	IndexName string
}

// ShowTablesStmt is SHOW TABLES.
type ShowTablesStmt struct{}

// ShowColumnsStmt is SHOW COLUMNS FROM table_name.
type ShowColumnsStmt struct {
	TableName string
}

// ShowIndexStmt is SHOW INDEX FROM table_name.
type ShowIndexStmt struct {
	TableName string
}
