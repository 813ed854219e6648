// Package page implements the slotted-page block format: a fixed-size
// buffer with a slot directory growing from the low address upward and
// record payloads packed against the high end, growing downward.
//
// Layout (bit-exact, all integers little-endian):
//
//	Offset     Size  Field
//	──────────────────────────────────────────────
//	0          2     NumRecords   uint16
//	2          2     EndFree      uint16
//	4i         2     slot[i].Size uint16   (i = 1..NumRecords)
//	4i+2       2     slot[i].Loc  uint16
//	──────────────────────────────────────────────
//
// A deleted slot has Size=0, Loc=0. Record payloads occupy
// [EndFree+1, BlockSize). The slot directory occupies
// [0, 4*(NumRecords+1)); the gap between is free space.
//
// Grounded on DaemonDB's storage_engine/access/heapfile_manager/heap_page.go
// (package-level functions over *page.Page, paired Get/set accessors, a
// doc-comment offset table) generalized to the exact byte layout and
// operations the spec requires — forward/backward growth direction, the
// del/slide/compaction semantics, and the strict has_room inequality are
// all specified by spec §4.1, not by the teacher.
package page

import (
	"encoding/binary"

	"github.com/relman/relman/dberr"
	"github.com/relman/relman/types"
)

// BlockSize is the fixed size of every page, in bytes.
const BlockSize = 4096

const (
	offNumRecords = 0
	offEndFree    = 2
	headerSize    = 4
	slotSize      = 4
)

// Page is a mutable view over a BlockSize byte buffer. Exactly one mutable
// view of a given buffer should exist at a time; callers fetch, mutate,
// and write a page back before fetching it again.
type Page struct {
	BlockID types.BlockID
	Data    []byte
}

// New wraps buf (which must be exactly BlockSize bytes) as a Page. If
// isNew, the header is initialised fresh (empty page); otherwise the
// header is read from buf as-is.
func New(buf []byte, blockID types.BlockID, isNew bool) *Page {
	p := &Page{BlockID: blockID, Data: buf}
	if isNew {
		p.setNumRecords(0)
		p.setEndFree(BlockSize - 1)
	}
	return p
}

func (p *Page) numRecords() uint16 { return binary.LittleEndian.Uint16(p.Data[offNumRecords:]) }
func (p *Page) setNumRecords(n uint16) {
	binary.LittleEndian.PutUint16(p.Data[offNumRecords:], n)
}
func (p *Page) endFree() uint16     { return binary.LittleEndian.Uint16(p.Data[offEndFree:]) }
func (p *Page) setEndFree(v uint16) { binary.LittleEndian.PutUint16(p.Data[offEndFree:], v) }

func slotOffset(id types.RecordID) int { return 4 * int(id) }

func (p *Page) slot(id types.RecordID) (size, loc uint16) {
	off := slotOffset(id)
	return binary.LittleEndian.Uint16(p.Data[off:]), binary.LittleEndian.Uint16(p.Data[off+2:])
}

func (p *Page) setSlot(id types.RecordID, size, loc uint16) {
	off := slotOffset(id)
	binary.LittleEndian.PutUint16(p.Data[off:], size)
	binary.LittleEndian.PutUint16(p.Data[off+2:], loc)
}

// NumRecords is the highest RecordID ever assigned in this page, live or
// deleted.
func (p *Page) NumRecords() int { return int(p.numRecords()) }

func (p *Page) haveRecord(id types.RecordID) bool {
	if id == 0 || uint16(id) > p.numRecords() {
		return false
	}
	_, loc := p.slot(id)
	return loc != 0
}

// hasRoom reports whether a record of the given size can be added without
// violating the header/data separation invariant. The check is strict —
// spec §9 specifies 4*(numRecords+1) + 4 <= endFree - size.
func (p *Page) hasRoom(size uint16) bool {
	n := uint32(p.numRecords())
	needed := 4*(n+1) + 4
	ef := uint32(p.endFree())
	if uint32(size) > ef {
		return false
	}
	return needed <= ef-uint32(size)
}

// Add appends data as a new record and returns its RecordID. Fails with
// dberr.NoRoom if there is insufficient space.
func (p *Page) Add(data []byte) (types.RecordID, error) {
	size := uint16(len(data))
	if !p.hasRoom(size) {
		return 0, dberr.New(dberr.NoRoom, "page %d: no room for %d-byte record", p.BlockID, size)
	}
	id := types.RecordID(p.numRecords() + 1)
	ef := p.endFree()
	loc := ef - size + 1
	copy(p.Data[loc:loc+size], data)
	p.setEndFree(ef - size)
	p.setNumRecords(uint16(id))
	p.setSlot(id, size, loc)
	return id, nil
}

// Get returns a read-only view into the page for the live record at id, or
// (nil, nil) if the slot is deleted. Fails with dberr.NotFound if id is
// out of range.
func (p *Page) Get(id types.RecordID) ([]byte, error) {
	if id == 0 || uint16(id) > p.numRecords() {
		return nil, dberr.New(dberr.NotFound, "page %d: record %d not found", p.BlockID, id)
	}
	size, loc := p.slot(id)
	if loc == 0 {
		return nil, nil
	}
	return p.Data[loc : loc+size], nil
}

// Put replaces the record at id with data in place, growing or shrinking
// the page's data region as needed via slide. Fails with dberr.NotFound
// (bad id) or dberr.NoRoom (growing, insufficient space).
func (p *Page) Put(id types.RecordID, data []byte) error {
	if !p.haveRecord(id) {
		return dberr.New(dberr.NotFound, "page %d: record %d not found", p.BlockID, id)
	}
	oldSize, oldLoc := p.slot(id)
	newSize := uint16(len(data))

	if newSize > oldSize {
		delta := newSize - oldSize
		if !p.hasRoom(delta) {
			return dberr.New(dberr.NoRoom, "page %d: no room to grow record %d by %d bytes", p.BlockID, id, delta)
		}
		p.slide(id+1, delta, true)
		newLoc := oldLoc - delta
		copy(p.Data[newLoc:newLoc+newSize], data)
		p.setSlot(id, newSize, newLoc)
		if p.isTail(id) {
			p.setEndFree(p.endFree() - delta)
		}
	} else if newSize < oldSize {
		delta := oldSize - newSize
		p.slide(id+1, delta, false)
		newLoc := oldLoc + delta
		copy(p.Data[newLoc:newLoc+newSize], data)
		p.setSlot(id, newSize, newLoc)
		if p.isTail(id) {
			p.setEndFree(p.endFree() + delta)
		}
	} else {
		copy(p.Data[oldLoc:oldLoc+newSize], data)
	}
	return nil
}

// Del removes the record at id by compacting its space out of the data
// region, then marking the slot deleted. The RecordID is never reused.
func (p *Page) Del(id types.RecordID) error {
	if !p.haveRecord(id) {
		return dberr.New(dberr.NotFound, "page %d: record %d not found", p.BlockID, id)
	}
	size, _ := p.slot(id)
	p.slide(id+1, size, false)
	p.setSlot(id, 0, 0)
	if p.isTail(id) {
		p.setEndFree(p.endFree() + size)
	}
	return nil
}

// isTail reports whether no live record has an id above id, i.e. whether
// id's payload is the lowest in the data region and borders free space.
func (p *Page) isTail(id types.RecordID) bool {
	for i := id + 1; uint16(i) <= p.numRecords(); i++ {
		if p.haveRecord(i) {
			return false
		}
	}
	return true
}

// Ids returns the live RecordIDs in ascending order.
func (p *Page) Ids() []types.RecordID {
	out := make([]types.RecordID, 0, p.numRecords())
	for i := types.RecordID(1); uint16(i) <= p.numRecords(); i++ {
		if p.haveRecord(i) {
			out = append(out, i)
		}
	}
	return out
}

// slide finds the smallest live id >= start and shifts the contiguous
// data block from end_free+1 up through that record's end by offset bytes
// — toward lower addresses (less free space, as when a record grows) when
// left, toward higher addresses (more free space, as when a record shrinks
// or is deleted) when !left — then re-points every live slot
// in the shifted range and adjusts end_free. A no-op if no live record
// exists at or after start. Records are iterated by id, not by physical
// offset.
func (p *Page) slide(start types.RecordID, offset uint16, left bool) {
	if offset == 0 {
		return
	}
	n := p.numRecords()
	for uint16(start) <= n && !p.haveRecord(start) {
		start++
	}
	if uint16(start) > n {
		return
	}

	beginSize, beginLoc := p.slot(start)
	ef := p.endFree()
	shiftSize := beginLoc + beginSize - 1 - ef

	tmp := make([]byte, shiftSize)
	copy(tmp, p.Data[ef+1:ef+1+shiftSize])

	var dstStart uint16
	if left {
		dstStart = ef + 1 - offset
	} else {
		dstStart = ef + 1 + offset
	}
	copy(p.Data[dstStart:dstStart+shiftSize], tmp)

	for i := start; uint16(i) <= n; i++ {
		if !p.haveRecord(i) {
			continue
		}
		size, loc := p.slot(i)
		if left {
			p.setSlot(i, size, loc-offset)
		} else {
			p.setSlot(i, size, loc+offset)
		}
	}

	if left {
		p.setEndFree(ef - offset)
	} else {
		p.setEndFree(ef + offset)
	}
}
