package exec

import (
	"fmt"
	"io"
	"strings"

	"github.com/relman/relman/types"
)

// QueryResult is either a bare message, or a tabular result carrying the
// column names/attributes alongside the rows and a trailing message.
//
// Grounded on original_source/SQLExec.cpp's QueryResult and its
// operator<<(ostream&, const QueryResult&): a header row of column names,
// a "+----------+"-per-column divider, one data row per result row, and
// a trailing message. Kept here as a supplemented feature (SPEC_FULL
// §4.8) rather than left as a bare struct, since the CLI needs a
// rendering and the original ships one.
type QueryResult struct {
	ColumnNames      []string
	ColumnAttributes []types.ColumnAttribute
	Rows             []types.Row
	Message          string
}

// Msg constructs a message-only QueryResult — the common case for
// CREATE/DROP statements.
func Msg(format string, args ...any) *QueryResult {
	return &QueryResult{Message: fmt.Sprintf(format, args...)}
}

// String renders the result exactly as spec.md §6 "QueryResult
// rendering" describes.
func (r *QueryResult) String() string {
	var b strings.Builder
	_, _ = r.WriteTo(&b)
	return b.String()
}

// WriteTo writes the rendered result to w, matching io.WriterTo.
func (r *QueryResult) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder

	if r.ColumnNames != nil {
		for _, name := range r.ColumnNames {
			b.WriteString(name)
			b.WriteByte(' ')
		}
		b.WriteByte('\n')

		b.WriteByte('+')
		for range r.ColumnNames {
			b.WriteString("----------+")
		}
		b.WriteByte('\n')

		for _, row := range r.Rows {
			for i, name := range r.ColumnNames {
				writeCell(&b, row[name], r.attributeAt(i))
				b.WriteByte(' ')
			}
			b.WriteByte('\n')
		}
	}
	b.WriteString(r.Message)

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (r *QueryResult) attributeAt(i int) types.ColumnAttribute {
	if i < len(r.ColumnAttributes) {
		return r.ColumnAttributes[i]
	}
	return types.ColumnAttribute{}
}

// writeCell renders v according to the column's declared attribute, not
// v's own on-disk variant — BOOLEAN columns (SHOW INDEX's is_unique) are
// stored as INT but rendered as true/false.
func writeCell(b *strings.Builder, v types.Value, attr types.ColumnAttribute) {
	switch attr.DataType {
	case types.BOOLEAN:
		if v.N != 0 {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case types.TEXT:
		b.WriteByte('"')
		b.WriteString(v.S)
		b.WriteByte('"')
	default:
		fmt.Fprintf(b, "%d", v.N)
	}
}
