// The lexer/parser that produces a real statement tree is out of scope
// (spec.md §1); this file is the "tiny, explicitly pre-parsed statement
// grammar" SPEC_FULL §6 calls for instead — just enough string splitting
// to drive the seven statement kinds exec.Executor understands, grounded
// on query_parser/parser/ast.go's statement shapes without reimplementing
// a general parser.
package main

import (
	"fmt"
	"strings"

	"github.com/relman/relman/exec"
)

// parseLine turns one REPL input line into an exec.Statement. Supported
// forms:
//
//	CREATE TABLE name (col type, col type, ...) [IF NOT EXISTS]
//	CREATE INDEX index_name ON table_name (col, col, ...) [USING BTREE|HASH]
//	DROP TABLE name
//	DROP INDEX index_name FROM table_name
//	SHOW TABLES
//	SHOW COLUMNS FROM table_name
//	SHOW INDEX FROM table_name
func parseLine(line string) (exec.Statement, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty statement")
	}
	verb := strings.ToUpper(fields[0])

	switch verb {
	case "CREATE":
		return parseCreate(fields[1:], line)
	case "DROP":
		return parseDrop(fields[1:])
	case "SHOW":
		return parseShow(fields[1:])
	default:
		return nil, fmt.Errorf("unrecognized statement: %s", fields[0])
	}
}

func parseCreate(fields []string, line string) (exec.Statement, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("CREATE: missing TABLE or INDEX")
	}
	switch strings.ToUpper(fields[0]) {
	case "TABLE":
		return parseCreateTable(fields[1:], line)
	case "INDEX":
		return parseCreateIndex(fields[1:])
	default:
		return nil, fmt.Errorf("CREATE: expected TABLE or INDEX, got %s", fields[0])
	}
}

func parseCreateTable(fields []string, line string) (exec.Statement, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("CREATE TABLE: missing table name")
	}
	tableName := fields[0]

	open := strings.Index(line, "(")
	shut := strings.LastIndex(line, ")")
	if open < 0 || shut < 0 || shut < open {
		return nil, fmt.Errorf("CREATE TABLE %s: missing column list", tableName)
	}
	colList := line[open+1 : shut]

	var columns []exec.ColumnDef
	for _, part := range strings.Split(colList, ",") {
		def := strings.Fields(strings.TrimSpace(part))
		if len(def) != 2 {
			return nil, fmt.Errorf("CREATE TABLE %s: bad column definition %q", tableName, part)
		}
		columns = append(columns, exec.ColumnDef{Name: def[0], Type: strings.ToUpper(def[1])})
	}

	ifNotExists := strings.Contains(strings.ToUpper(line), "IF NOT EXISTS")

	return exec.CreateTableStmt{
		TableName:   tableName,
		Columns:     columns,
		IfNotExists: ifNotExists,
	}, nil
}

func parseCreateIndex(fields []string) (exec.Statement, error) {
	// index_name ON table_name (col, col, ...) [USING type]
	if len(fields) < 3 || strings.ToUpper(fields[1]) != "ON" {
		return nil, fmt.Errorf("CREATE INDEX: expected \"name ON table (cols...)\"")
	}
	indexName := fields[0]
	tableName := fields[2]

	rest := strings.Join(fields[3:], " ")
	open := strings.Index(rest, "(")
	shut := strings.LastIndex(rest, ")")
	if open < 0 || shut < 0 || shut < open {
		return nil, fmt.Errorf("CREATE INDEX %s: missing column list", indexName)
	}
	var columns []string
	for _, col := range strings.Split(rest[open+1:shut], ",") {
		columns = append(columns, strings.TrimSpace(col))
	}

	indexType := ""
	if idx := strings.Index(strings.ToUpper(rest), "USING"); idx >= 0 {
		after := strings.Fields(rest[idx+len("USING"):])
		if len(after) > 0 {
			indexType = strings.ToUpper(after[0])
		}
	}

	return exec.CreateIndexStmt{
		TableName: tableName,
		IndexName: indexName,
		IndexType: indexType,
		Columns:   columns,
	}, nil
}

func parseDrop(fields []string) (exec.Statement, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("DROP: missing TABLE or INDEX")
	}
	switch strings.ToUpper(fields[0]) {
	case "TABLE":
		if len(fields) < 2 {
			return nil, fmt.Errorf("DROP TABLE: missing table name")
		}
		return exec.DropTableStmt{TableName: fields[1]}, nil
	case "INDEX":
		// index_name FROM table_name
		if len(fields) < 4 || strings.ToUpper(fields[2]) != "FROM" {
			return nil, fmt.Errorf("DROP INDEX: expected \"name FROM table\"")
		}
		return exec.DropIndexStmt{IndexName: fields[1], TableName: fields[3]}, nil
	default:
		return nil, fmt.Errorf("DROP: expected TABLE or INDEX, got %s", fields[0])
	}
}

func parseShow(fields []string) (exec.Statement, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("SHOW: missing TABLES, COLUMNS, or INDEX")
	}
	switch strings.ToUpper(fields[0]) {
	case "TABLES":
		return exec.ShowTablesStmt{}, nil
	case "COLUMNS":
		if len(fields) < 3 || strings.ToUpper(fields[1]) != "FROM" {
			return nil, fmt.Errorf("SHOW COLUMNS: expected \"FROM table\"")
		}
		return exec.ShowColumnsStmt{TableName: fields[2]}, nil
	case "INDEX":
		if len(fields) < 3 || strings.ToUpper(fields[1]) != "FROM" {
			return nil, fmt.Errorf("SHOW INDEX: expected \"FROM table\"")
		}
		return exec.ShowIndexStmt{TableName: fields[2]}, nil
	default:
		return nil, fmt.Errorf("SHOW: expected TABLES, COLUMNS, or INDEX, got %s", fields[0])
	}
}
