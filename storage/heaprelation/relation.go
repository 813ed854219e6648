// Package heaprelation implements component C: a Relation owns a HeapFile
// and an ordered schema, and is responsible for turning typed Rows into
// the bytes a Page stores and back.
//
// Grounded on original_source/heap_storage.cpp's HeapTable (marshal/
// unmarshal's fixed field widths, validate's "look each declared column
// up, fail on the first missing one" loop, append's open-last-page/add/
// retry-once-on-NoRoom sequence) re-expressed in DaemonDB's idiom: package
// function style of storage_engine/access/heapfile_manager's row_ops
// files (insertRow's retry loop, one function per scan shape) but against
// this module's own Page/HeapFile types rather than the teacher's
// buffer-pool-pinned pages.
package heaprelation

import (
	"encoding/binary"

	"github.com/relman/relman/dberr"
	"github.com/relman/relman/storage/heapfile"
	"github.com/relman/relman/storage/page"
	"github.com/relman/relman/types"
)

// Relation is an open heap-stored table: a schema plus the HeapFile that
// persists its rows.
type Relation struct {
	name   string
	schema types.Schema
	file   *heapfile.HeapFile
}

// New constructs a Relation over name with the given schema, persisted as
// baseDir/name+".db".
func New(baseDir, name string, schema types.Schema) (*Relation, error) {
	file, err := heapfile.Open(baseDir, name)
	if err != nil {
		return nil, err
	}
	return &Relation{name: name, schema: schema, file: file}, nil
}

// Name returns the relation's name.
func (r *Relation) Name() string { return r.name }

// Schema returns the relation's declared column order and attributes.
func (r *Relation) Schema() types.Schema { return r.schema }

// Create delegates to the HeapFile.
func (r *Relation) Create() error { return r.file.Create() }

// CreateIfNotExists treats any Open failure as "does not exist" and
// creates the file instead.
func (r *Relation) CreateIfNotExists() error {
	if err := r.file.Open(); err != nil {
		return r.file.Create()
	}
	return nil
}

// Drop delegates to the HeapFile.
func (r *Relation) Drop() error { return r.file.Drop() }

// Exists reports whether the relation's backing file is already present
// on disk.
func (r *Relation) Exists() bool { return r.file.Exists() }

// Open delegates to the HeapFile.
func (r *Relation) Open() error { return r.file.Open() }

// Close delegates to the HeapFile.
func (r *Relation) Close() error { return r.file.Close() }

// validate builds a new Row containing exactly the schema's declared
// columns, looked up from input. Extra keys in input are ignored; a
// missing declared column fails with dberr.MissingColumn.
func (r *Relation) validate(input types.Row) (types.Row, error) {
	out := make(types.Row, len(r.schema))
	for _, col := range r.schema {
		v, ok := input[col.Name]
		if !ok {
			return nil, dberr.New(dberr.MissingColumn, "relation %s: missing column %q", r.name, col.Name)
		}
		out[col.Name] = v
	}
	return out, nil
}

// marshal encodes a validated row in schema order: INT as 4 little-endian
// bytes, TEXT as a 2-byte little-endian length prefix followed by that
// many ASCII bytes. Fails with dberr.TextTooLong if a TEXT value exceeds
// types.MaxTextLen, dberr.RowTooBig if the encoding would not fit in one
// block.
func (r *Relation) marshal(row types.Row) ([]byte, error) {
	buf := make([]byte, 0, page.BlockSize)
	for _, col := range r.schema {
		v := row[col.Name]
		switch col.Attribute.DataType {
		case types.INT:
			var tmp [4]byte
			binary.LittleEndian.PutUint32(tmp[:], uint32(v.N))
			buf = append(buf, tmp[:]...)
		case types.TEXT:
			if len(v.S) > types.MaxTextLen {
				return nil, dberr.New(dberr.TextTooLong, "relation %s: column %q: text of %d bytes exceeds %d", r.name, col.Name, len(v.S), types.MaxTextLen)
			}
			var tmp [2]byte
			binary.LittleEndian.PutUint16(tmp[:], uint16(len(v.S)))
			buf = append(buf, tmp[:]...)
			buf = append(buf, v.S...)
		default:
			return nil, dberr.New(dberr.NotImplemented, "relation %s: column %q: cannot marshal %s", r.name, col.Name, col.Attribute.DataType)
		}
		if len(buf) > page.BlockSize {
			return nil, dberr.New(dberr.RowTooBig, "relation %s: marshalled row exceeds block size", r.name)
		}
	}
	return buf, nil
}

// unmarshal is marshal's exact inverse. The produced Row contains exactly
// the schema's column names as keys.
func (r *Relation) unmarshal(data []byte) (types.Row, error) {
	row := make(types.Row, len(r.schema))
	offset := 0
	for _, col := range r.schema {
		switch col.Attribute.DataType {
		case types.INT:
			n := int32(binary.LittleEndian.Uint32(data[offset:]))
			row[col.Name] = types.IntValue(n)
			offset += 4
		case types.TEXT:
			size := int(binary.LittleEndian.Uint16(data[offset:]))
			offset += 2
			row[col.Name] = types.TextValue(string(data[offset : offset+size]))
			offset += size
		default:
			return nil, dberr.New(dberr.NotImplemented, "relation %s: column %q: cannot unmarshal %s", r.name, col.Name, col.Attribute.DataType)
		}
	}
	return row, nil
}

// Insert opens the file, validates and marshals row, then appends it to
// the last page — retrying once against a freshly allocated page if the
// last page has no room. Returns the Handle of the inserted record.
func (r *Relation) Insert(row types.Row) (types.Handle, error) {
	if err := r.file.Open(); err != nil {
		return types.Handle{}, err
	}
	validated, err := r.validate(row)
	if err != nil {
		return types.Handle{}, err
	}
	data, err := r.marshal(validated)
	if err != nil {
		return types.Handle{}, err
	}
	return r.append(data)
}

func (r *Relation) append(data []byte) (types.Handle, error) {
	lastID := r.file.Last()
	block, err := r.file.Get(lastID)
	if err != nil {
		return types.Handle{}, err
	}

	recID, err := block.Add(data)
	if err != nil {
		if kind, ok := dberr.KindOf(err); !ok || kind != dberr.NoRoom {
			return types.Handle{}, err
		}
		block, err = r.file.GetNew()
		if err != nil {
			return types.Handle{}, err
		}
		recID, err = block.Add(data)
		if err != nil {
			return types.Handle{}, err
		}
	}

	if err := r.file.Put(block); err != nil {
		return types.Handle{}, err
	}
	return types.Handle{Block: block.BlockID, Record: recID}, nil
}

// Del opens the file, fetches handle's page, deletes the record on it,
// and writes the page back.
func (r *Relation) Del(handle types.Handle) error {
	if err := r.file.Open(); err != nil {
		return err
	}
	block, err := r.file.Get(handle.Block)
	if err != nil {
		return err
	}
	if err := block.Del(handle.Record); err != nil {
		return err
	}
	return r.file.Put(block)
}

// Select enumerates every live (block, record) in the relation.
func (r *Relation) Select() ([]types.Handle, error) {
	if err := r.file.Open(); err != nil {
		return nil, err
	}
	var handles []types.Handle
	for _, blockID := range r.file.BlockIDs() {
		block, err := r.file.Get(blockID)
		if err != nil {
			return nil, err
		}
		for _, recID := range block.Ids() {
			handles = append(handles, types.Handle{Block: blockID, Record: recID})
		}
	}
	return handles, nil
}

// SelectWhere enumerates every live (block, record) whose projected row
// equals where on the overlap of column names.
func (r *Relation) SelectWhere(where types.Row) ([]types.Handle, error) {
	all, err := r.Select()
	if err != nil {
		return nil, err
	}
	var handles []types.Handle
	for _, h := range all {
		row, err := r.Project(h)
		if err != nil {
			return nil, err
		}
		if row.EqualOn(where) {
			handles = append(handles, h)
		}
	}
	return handles, nil
}

// Project fetches and unmarshals the full row at handle.
func (r *Relation) Project(handle types.Handle) (types.Row, error) {
	block, err := r.file.Get(handle.Block)
	if err != nil {
		return nil, err
	}
	data, err := block.Get(handle.Record)
	if err != nil {
		return nil, err
	}
	return r.unmarshal(data)
}

// ProjectColumns is Project restricted to the named subset. Fails with
// dberr.UnknownColumn if any requested name is absent from the row.
func (r *Relation) ProjectColumns(handle types.Handle, columns []string) (types.Row, error) {
	row, err := r.Project(handle)
	if err != nil {
		return nil, err
	}
	out := make(types.Row, len(columns))
	for _, name := range columns {
		v, ok := row[name]
		if !ok {
			return nil, dberr.New(dberr.UnknownColumn, "relation %s: unknown column %q", r.name, name)
		}
		out[name] = v
	}
	return out, nil
}
