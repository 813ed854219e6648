package exec

import (
	"github.com/relman/relman/dberr"
	"github.com/relman/relman/types"
)

// mapColumnType maps a statement's declared column type string to a
// types.ColumnAttribute, failing with dberr.NotImplemented for anything
// beyond INT and TEXT.
//
// Grounded on original_source/SQLExec.cpp's column_definition, pulled out
// as its own testable function per SPEC_FULL §4.8 rather than inlined
// into ExecuteCreateTable.
func mapColumnType(declared string) (types.ColumnAttribute, error) {
	switch declared {
	case "INT":
		return types.ColumnAttribute{DataType: types.INT}, nil
	case "TEXT":
		return types.ColumnAttribute{DataType: types.TEXT}, nil
	default:
		return types.ColumnAttribute{}, dberr.New(dberr.NotImplemented, "column type %q not implemented", declared)
	}
}
