// Grounded on original_source/heap_storage.cpp's test_heap_storage():
// create a scratch table, insert a couple of rows, select/project them
// back, then drop the table — exercising the full CREATE TABLE/DROP
// TABLE path end to end without a parser in front of it.
package exec

import (
	"fmt"

	"github.com/relman/relman/catalog"
	"github.com/relman/relman/dberr"
	"github.com/relman/relman/types"
)

func rowFor(id int32, name string) types.Row {
	return types.Row{
		"id":   types.IntValue(id),
		"name": types.TextValue(name),
	}
}

// SelfTest drives Executor through a scripted smoke test against a
// scratch table named foo, mirroring spec.md §8 scenario 1. It returns
// nil only if every step succeeds and the table ends up dropped again.
func SelfTest(cat *catalog.Catalog) error {
	e := New(cat)

	create := CreateTableStmt{
		TableName: "foo",
		Columns: []ColumnDef{
			{Name: "id", Type: "INT"},
			{Name: "name", Type: "TEXT"},
		},
	}
	if _, err := e.Execute(create); err != nil {
		return fmt.Errorf("selftest: create table: %w", err)
	}

	rel, err := cat.GetTable("foo")
	if err != nil {
		return fmt.Errorf("selftest: get table: %w", err)
	}

	rows := []struct {
		id   int32
		name string
	}{
		{1, "alice"},
		{2, "bob"},
	}
	for _, r := range rows {
		row := rowFor(r.id, r.name)
		if _, err := rel.Insert(row); err != nil {
			return fmt.Errorf("selftest: insert %v: %w", r, err)
		}
	}

	handles, err := rel.Select()
	if err != nil {
		return fmt.Errorf("selftest: select: %w", err)
	}
	if len(handles) != len(rows) {
		return fmt.Errorf("selftest: expected %d rows, got %d", len(rows), len(handles))
	}

	for _, h := range handles {
		if _, err := rel.Project(h); err != nil {
			return fmt.Errorf("selftest: project %v: %w", h, err)
		}
	}

	if _, err := e.Execute(DropTableStmt{TableName: "foo"}); err != nil {
		return fmt.Errorf("selftest: drop table: %w", err)
	}

	if _, err := cat.GetTable("foo"); err == nil {
		return fmt.Errorf("selftest: table foo still resolvable after drop")
	} else if kind, ok := dberr.KindOf(err); !ok || kind != dberr.NotFound {
		return fmt.Errorf("selftest: drop table: expected NotFound after drop, got %v", err)
	}

	return nil
}
