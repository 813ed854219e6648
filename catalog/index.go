package catalog

// Index is the opaque secondary-index collaborator spec.md §1 leaves out
// of scope: "the core merely records metadata and calls opaque create/
// drop hooks." No B-tree or hash structure backs it — Create and Drop
// exist only so CREATE INDEX/DROP INDEX have something to call once the
// _indices rows are written.
type Index struct {
	Table string
	Name  string
}

func newIndex(table, name string) *Index {
	return &Index{Table: table, Name: name}
}

// Create is the hook CREATE INDEX invokes after its _indices rows are
// inserted. A no-op in this core — building the physical structure is a
// Non-goal.
func (idx *Index) Create() error { return nil }

// Drop is the hook DROP INDEX invokes after its _indices rows are
// deleted. A no-op for the same reason as Create.
func (idx *Index) Drop() error { return nil }
