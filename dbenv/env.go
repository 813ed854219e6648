// Package dbenv holds the process-wide configuration a relman process
// needs: the single directory every relation's .db file lives under.
//
// Grounded on DaemonDB's storage_engine.NewStorageEngine(dbRoot) — a
// constructor that MkdirAlls its root and hands back a struct every
// other layer is built from — generalised to the spec's CLI surface,
// which takes exactly one positional directory argument and nothing
// else (no config file format is introduced; the teacher has none).
package dbenv

import (
	"os"

	"github.com/relman/relman/dberr"
)

// Environment is constructed once at process init and threaded through
// executor calls as an explicit value — never as hidden package-level
// state.
type Environment struct {
	// Dir is the directory every relation persists its <name>.db file
	// under.
	Dir string
}

// Open validates dir exists (creating it if absent) and returns an
// Environment rooted there.
func Open(dir string) (*Environment, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, dberr.Wrap(dberr.RelationError, err, "dbenv: open %s", dir)
	}
	return &Environment{Dir: dir}, nil
}
