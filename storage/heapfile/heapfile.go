// Package heapfile implements component B: a HeapFile wraps a persistent,
// record-numbered page store (package pagestore) and adds nothing but
// BlockID allocation and enumeration — raw I/O and caching stay the page
// store's problem.
//
// Grounded on DaemonDB's storage_engine/access/heapfile_manager
// (CreateHeapfile/LoadHeapFile's create-vs-open split, filepath.Join'd
// on-disk name, fmt.Errorf("...: %w", err) wrapping style) adapted from a
// buffer-pool-backed manager of many files into a single-file wrapper
// around the spec's required create/drop/open/close/get_new/get/put/
// block_ids operations.
package heapfile

import (
	"os"
	"path/filepath"

	"github.com/relman/relman/dberr"
	"github.com/relman/relman/logging"
	"github.com/relman/relman/storage/page"
	"github.com/relman/relman/storage/pagestore"
	"github.com/relman/relman/types"
)

// HeapFile is an ordered sequence of BlockSize pages, identified by name,
// persisted as name+".db" in the page store.
type HeapFile struct {
	name       string
	dbfilename string
	store      *pagestore.DiskStore
	last       types.BlockID
	closed     bool
}

// New constructs a HeapFile for name, persisted as baseDir/name+".db",
// backed by store. It is closed until Open or Create is called.
func New(baseDir, name string, store *pagestore.DiskStore) *HeapFile {
	return &HeapFile{
		name:       name,
		dbfilename: filepath.Join(baseDir, name+".db"),
		store:      store,
		closed:     true,
	}
}

// Open constructs a HeapFile for name under baseDir, backed by a freshly
// constructed DiskStore — the common case for callers that don't already
// have one.
func Open(baseDir, name string) (*HeapFile, error) {
	store, err := pagestore.New()
	if err != nil {
		return nil, err
	}
	return New(baseDir, name, store), nil
}

// Name returns the relation name this file was constructed with.
func (hf *HeapFile) Name() string { return hf.name }

// Closed reports whether the file is currently closed.
func (hf *HeapFile) Closed() bool { return hf.closed }

// Exists reports whether the backing file is already present on disk,
// letting callers distinguish first-use bootstrap from a normal reopen
// without relying on Open's error text.
func (hf *HeapFile) Exists() bool {
	_, err := os.Stat(hf.dbfilename)
	return err == nil
}

// Create opens the underlying store exclusively — failing if the file
// already exists — then allocates and writes block 1.
func (hf *HeapFile) Create() error {
	if err := hf.store.Open(hf.dbfilename, pagestore.FlagExclusive|pagestore.FlagCreate); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "heapfile %s: create", hf.name)
	}
	hf.closed = false
	hf.last = 0

	first := page.New(make([]byte, page.BlockSize), 1, true)
	if err := hf.store.Put(1, first.Data); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "heapfile %s: write initial block", hf.name)
	}
	hf.last = 1
	return nil
}

// Drop closes the file if open, then asks the store to remove the backing
// file. Any outstanding Page or Relation handle is invalid afterward.
func (hf *HeapFile) Drop() error {
	if !hf.closed {
		if err := hf.Close(); err != nil {
			return err
		}
	}
	if err := pagestore.Remove(hf.dbfilename); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "heapfile %s: drop", hf.name)
	}
	return nil
}

// Open is idempotent. On the first call it opens the store and populates
// last from the store's current record count. It fails if the backing
// file does not already exist; use Create for a file that doesn't exist
// yet.
func (hf *HeapFile) Open() error {
	if !hf.closed {
		return nil
	}
	if err := hf.store.Open(hf.dbfilename, pagestore.FlagNone); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "heapfile %s: open", hf.name)
	}
	count, err := hf.store.Stat()
	if err != nil {
		return dberr.Wrap(dberr.RelationError, err, "heapfile %s: stat", hf.name)
	}
	hf.last = types.BlockID(count)
	hf.closed = false
	return nil
}

// Close is idempotent.
func (hf *HeapFile) Close() error {
	if hf.closed {
		return nil
	}
	if err := hf.store.Close(); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "heapfile %s: close", hf.name)
	}
	hf.closed = true
	return nil
}

// GetNew allocates block last+1, writes a freshly initialised empty page
// for it, re-reads it so the returned handle owns a buffer the store
// itself produced, and returns it.
func (hf *HeapFile) GetNew() (*page.Page, error) {
	id := hf.last + 1
	blank := page.New(make([]byte, page.BlockSize), id, true)
	if err := hf.store.Put(id, blank.Data); err != nil {
		return nil, dberr.Wrap(dberr.RelationError, err, "heapfile %s: allocate block %d", hf.name, id)
	}
	hf.last = id
	logging.WithBlock(uint32(id)).Debug("allocated block", "table", hf.name)
	return hf.Get(id)
}

// Get fetches one page by BlockID. Reads for an id outside [1, last] are
// undefined — callers enumerate with BlockIDs instead of guessing.
func (hf *HeapFile) Get(id types.BlockID) (*page.Page, error) {
	data, err := hf.store.Get(id)
	if err != nil {
		return nil, dberr.Wrap(dberr.NotFound, err, "heapfile %s: get block %d", hf.name, id)
	}
	return page.New(data, id, false), nil
}

// Put writes a modified page back to its own BlockID.
func (hf *HeapFile) Put(p *page.Page) error {
	if err := hf.store.Put(p.BlockID, p.Data); err != nil {
		return dberr.Wrap(dberr.RelationError, err, "heapfile %s: put block %d", hf.name, p.BlockID)
	}
	return nil
}

// BlockIDs enumerates every allocated block in ascending order.
func (hf *HeapFile) BlockIDs() []types.BlockID {
	ids := make([]types.BlockID, 0, hf.last)
	for i := types.BlockID(1); i <= hf.last; i++ {
		ids = append(ids, i)
	}
	return ids
}

// Last returns the highest allocated BlockID, or 0 if the file is empty.
func (hf *HeapFile) Last() types.BlockID { return hf.last }
