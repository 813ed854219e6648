// Package catalog implements component D: the schema catalog. It owns
// the three self-describing meta-relations (_tables, _columns, _indices),
// bootstraps them on first use, and caches open Relation and Index
// objects by name so repeated lookups don't re-scan _columns.
//
// Grounded on original_source/heap_storage.cpp's HeapTable semantics for
// the meta-relations themselves, and on DaemonDB's storage_engine/catalog
// (a constructor taking a root directory, an in-memory name→schema cache
// populated lazily) generalised from its JSON-file-per-table persistence
// to this module's self-describing heap-relation bootstrap. The relation
// cache itself is backed by Ristretto per SPEC_FULL §4.7, replacing the
// teacher's bare map with the pack's admission-counted cache, evicted
// explicitly on DROP rather than left to go stale (a deliberate
// improvement over the teacher's cache, which spec.md §9 flags as an open
// question left unresolved by the original).
package catalog

import (
	"github.com/dgraph-io/ristretto/v2"

	"github.com/relman/relman/dbenv"
	"github.com/relman/relman/dberr"
	"github.com/relman/relman/logging"
	"github.com/relman/relman/storage/heaprelation"
	"github.com/relman/relman/types"
)

// Catalog is the process-wide singleton providing access to relations by
// name. Construct once at process init via Open; thread it through
// executor calls as an explicit value rather than reaching for package-
// level state.
type Catalog struct {
	env       *dbenv.Environment
	relations *ristretto.Cache[string, *heaprelation.Relation]
	indices   *ristretto.Cache[string, *Index]
	tables    *heaprelation.Relation
	columns   *heaprelation.Relation
}

// Open constructs a Catalog rooted at env and runs bootstrap: if the
// _tables/_columns files do not yet exist, it creates them and inserts
// the self-descriptions of all three meta-relations (including _indices,
// whose own file is created lazily on first access) into themselves.
func Open(env *dbenv.Environment) (*Catalog, error) {
	relCache, err := ristretto.NewCache(&ristretto.Config[string, *heaprelation.Relation]{
		NumCounters: 1e4,
		MaxCost:     1 << 16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, dberr.Wrap(dberr.RelationError, err, "catalog: construct relation cache")
	}
	idxCache, err := ristretto.NewCache(&ristretto.Config[string, *Index]{
		NumCounters: 1e4,
		MaxCost:     1 << 16,
		BufferItems: 64,
	})
	if err != nil {
		return nil, dberr.Wrap(dberr.RelationError, err, "catalog: construct index cache")
	}

	c := &Catalog{env: env, relations: relCache, indices: idxCache}
	if err := c.bootstrap(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) bootstrap() error {
	log := logging.Get()

	tables, err := heaprelation.New(c.env.Dir, TablesName, tablesSchema())
	if err != nil {
		return err
	}
	columns, err := heaprelation.New(c.env.Dir, ColumnsName, columnsSchema())
	if err != nil {
		return err
	}

	firstUse := !tables.Exists() || !columns.Exists()

	if err := tables.CreateIfNotExists(); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "catalog: bootstrap %s", TablesName)
	}
	if err := columns.CreateIfNotExists(); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "catalog: bootstrap %s", ColumnsName)
	}
	c.tables = tables
	c.columns = columns

	if firstUse {
		log.Info("bootstrapping schema catalog", "dir", c.env.Dir)
		for _, name := range []string{TablesName, ColumnsName, IndicesName} {
			if _, err := c.tables.Insert(types.Row{"table_name": types.TextValue(name)}); err != nil {
				return dberr.Wrap(dberr.RelationError, err, "catalog: self-describe %s in %s", name, TablesName)
			}
			schema, _ := metaSchema(name)
			for _, column := range schema {
				_, err := c.columns.Insert(types.Row{
					"table_name":  types.TextValue(name),
					"column_name": types.TextValue(column.Name),
					"data_type":   types.TextValue(string(column.Attribute.DataType)),
				})
				if err != nil {
					return dberr.Wrap(dberr.RelationError, err, "catalog: self-describe column %s.%s", name, column.Name)
				}
			}
		}
	}

	c.relations.Set(TablesName, c.tables, 1)
	c.relations.Set(ColumnsName, c.columns, 1)
	return nil
}

// Tables returns the _tables meta-relation.
func (c *Catalog) Tables() *heaprelation.Relation { return c.tables }

// Columns returns the _columns meta-relation.
func (c *Catalog) Columns() *heaprelation.Relation { return c.columns }

// indicesRelation returns the _indices meta-relation, creating its
// backing file on first access — the self-description rows were already
// inserted into _tables/_columns during bootstrap.
func (c *Catalog) indicesRelation() (*heaprelation.Relation, error) {
	if v, ok := c.relations.Get(IndicesName); ok {
		return v, nil
	}
	rel, err := heaprelation.New(c.env.Dir, IndicesName, indicesSchema())
	if err != nil {
		return nil, err
	}
	if err := rel.CreateIfNotExists(); err != nil {
		return nil, dberr.Wrap(dberr.RelationError, err, "catalog: open %s", IndicesName)
	}
	c.relations.Set(IndicesName, rel, 1)
	return rel, nil
}

// Indices returns the _indices meta-relation, for callers (the executor)
// that need to select/insert/del rows in it directly.
func (c *Catalog) Indices() (*heaprelation.Relation, error) { return c.indicesRelation() }

// GetTable returns the cached relation for name; on miss it reads
// name's column rows from _columns in ascending row order, reconstructs
// the schema, caches, and returns a Relation without opening its backing
// HeapFile — callers (Create/CreateIfNotExists/Insert/Select/Del) open it
// as needed. Fails with dberr.NotFound if _columns has no rows for name.
func (c *Catalog) GetTable(name string) (*heaprelation.Relation, error) {
	if v, ok := c.relations.Get(name); ok {
		return v, nil
	}

	if _, ok := metaSchema(name); ok {
		rel, err := c.metaTable(name)
		if err != nil {
			return nil, err
		}
		c.relations.Set(name, rel, 1)
		return rel, nil
	}

	schema, err := c.schemaFromColumns(name)
	if err != nil {
		return nil, err
	}

	rel, err := heaprelation.New(c.env.Dir, name, schema)
	if err != nil {
		return nil, err
	}
	c.relations.Set(name, rel, 1)
	return rel, nil
}

func (c *Catalog) metaTable(name string) (*heaprelation.Relation, error) {
	switch name {
	case TablesName:
		return c.tables, nil
	case ColumnsName:
		return c.columns, nil
	default: // IndicesName — the only other metaSchema-recognised name
		return c.indicesRelation()
	}
}

// schemaFromColumns reconstructs a declared column order for name by
// scanning _columns in ascending row order (the order rows were
// inserted — heap relations never reorder live records).
func (c *Catalog) schemaFromColumns(name string) (types.Schema, error) {
	handles, err := c.columns.SelectWhere(types.Row{"table_name": types.TextValue(name)})
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, dberr.New(dberr.NotFound, "catalog: no such table %q", name)
	}

	schema := make(types.Schema, 0, len(handles))
	for _, h := range handles {
		row, err := c.columns.Project(h)
		if err != nil {
			return nil, err
		}
		schema = append(schema, types.Column{
			Name:      row["column_name"].S,
			Attribute: types.ColumnAttribute{DataType: types.DataType(row["data_type"].S)},
		})
	}
	return schema, nil
}

// EvictTable drops name from the relation cache. Per the Open Question
// resolution in DESIGN.md, DROP TABLE/INDEX explicitly evicts rather than
// leaving a stale entry for a later lookup to return.
func (c *Catalog) EvictTable(name string) {
	c.relations.Del(name)
}

// GetIndex returns the cached Index object for (table, indexName),
// constructing and caching a fresh one on miss. The index itself is an
// opaque collaborator per spec.md §1 — the catalog only ever calls its
// Create/Drop hooks.
func (c *Catalog) GetIndex(table, indexName string) *Index {
	key := indexKey(table, indexName)
	if v, ok := c.indices.Get(key); ok {
		return v
	}
	idx := newIndex(table, indexName)
	c.indices.Set(key, idx, 1)
	c.indices.Wait()
	return idx
}

// EvictIndex drops (table, indexName) from the index cache.
func (c *Catalog) EvictIndex(table, indexName string) {
	c.indices.Del(indexKey(table, indexName))
}

func indexKey(table, indexName string) string {
	return table + "\x00" + indexName
}
