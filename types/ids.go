package types

import "fmt"

// RecordID identifies a record slot within a page: a 1-origin 16-bit
// integer. 0 is the sentinel "deleted/unallocated" value and is never
// handed back by add. Once assigned it is stable for the page's
// lifetime — never reused after delete, never renumbered by compaction.
type RecordID uint16

// BlockID identifies a page within a file: a 1-origin 32-bit integer,
// monotonically assigned and never reused.
type BlockID uint32

// Handle is the externally visible identity of a row.
type Handle struct {
	Block  BlockID
	Record RecordID
}

func (h Handle) String() string {
	return fmt.Sprintf("(%d,%d)", h.Block, h.Record)
}
