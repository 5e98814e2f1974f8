// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Inline block metadata and the views over it.

package tlsf

import (
	"encoding/binary"
)

// Every physical block starts with a 4 byte common header
//
//	+----------------------+-----------------+
//	| 0..1                 | 2..3            |
//	+----------------------+-----------------+
//	| usable size | F | L  | prev phys block |
//	+----------------------+-----------------+
//
// The usable size is a multiple of blockAlign so its low two bits hold the
// free flag F (bit 0) and the last-phys-block flag L (bit 1). The prev phys
// field is a compressed offset, 0 when the block has no physical
// predecessor. A free block keeps its free list links in the first payload
// word
//
//	+-----------+-----------+
//	| 4..5      | 6..7      |
//	+-----------+-----------+
//	| next free | prev free |
//	+-----------+-----------+
//
// so the smallest block is 8 bytes: the common header plus one word that is
// payload while the block is used and link storage while it is free.
const (
	freeBit     = 1 << 0
	lastPhysBit = 1 << 1
	sizeMask    = ^uint16(freeBit | lastPhysBit)
)

// Block is a non owning view of one physical block's metadata. It never
// overlaps memory returned by Malloc or Memalign.
type Block struct {
	a   *anchor
	off offset
}

func (b Block) pos() int { return b.off.pos() }

func (b Block) packed() uint16 {
	return binary.LittleEndian.Uint16(b.a.pool[b.pos():])
}

func (b Block) setPacked(v uint16) {
	binary.LittleEndian.PutUint16(b.a.pool[b.pos():], v)
}

// UsableSize returns the payload size of the block in bytes.
func (b Block) UsableSize() int { return int(b.packed() & sizeMask) }

// IsFree reports whether the block is owned by the allocator and available
// to fulfill allocation requests.
func (b Block) IsFree() bool { return b.packed()&freeBit != 0 }

// IsUsed reports whether the block is currently lent out to a caller.
func (b Block) IsUsed() bool { return !b.IsFree() }

func (b Block) totalSize() int { return b.UsableSize() + usedHeaderSize }

func (b Block) isLastPhys() bool { return b.packed()&lastPhysBit != 0 }

func (b Block) setLastPhys()   { b.setPacked(b.packed() | lastPhysBit) }
func (b Block) clearLastPhys() { b.setPacked(b.packed() &^ lastPhysBit) }

func (b Block) setFree(free bool) {
	if free {
		b.setPacked(b.packed() | freeBit)
		return
	}

	b.setPacked(b.packed() &^ freeBit)
}

func (b Block) setUsableSize(n uint16) {
	b.setPacked(n | b.packed()&^sizeMask)
}

func (b Block) prevPhys() offset {
	return offset(binary.LittleEndian.Uint16(b.a.pool[b.pos()+2:]))
}

func (b Block) setPrevPhys(o offset) {
	binary.LittleEndian.PutUint16(b.a.pool[b.pos()+2:], uint16(o))
}

// intoFree flips a used block back to free and clears the link word the
// caller's payload just stopped covering.
func (b Block) intoFree() freeBlock {
	b.setFree(true)
	f := freeBlock{b}
	f.setNextFree(nilOffset)
	f.setPrevFree(nilOffset)
	return f
}

// A freeBlock additionally interprets the first payload word as the free
// list links.
type freeBlock struct {
	Block
}

func (b freeBlock) nextFree() offset {
	return offset(binary.LittleEndian.Uint16(b.a.pool[b.pos()+4:]))
}

func (b freeBlock) setNextFree(o offset) {
	binary.LittleEndian.PutUint16(b.a.pool[b.pos()+4:], uint16(o))
}

func (b freeBlock) prevFree() offset {
	return offset(binary.LittleEndian.Uint16(b.a.pool[b.pos()+6:]))
}

func (b freeBlock) setPrevFree(o offset) {
	binary.LittleEndian.PutUint16(b.a.pool[b.pos()+6:], uint16(o))
}

func (b freeBlock) resize(n uint16) { b.setUsableSize(n) }

// intoUsed flips the block to used and returns its whole usable span. The
// link word becomes caller memory.
func (b freeBlock) intoUsed() []byte {
	b.setFree(false)
	pos := b.pos() + usedHeaderSize
	return b.a.pool[pos : pos+b.UsableSize() : pos+b.UsableSize()]
}

// split carves a new free block starting at the given distance from the
// block start. at must be a multiple of blockAlign and leave at least
// freeHeaderSize bytes on both sides. The new block is returned unlinked;
// the caller decides its free list placement.
func (b freeBlock) split(at int) freeBlock {
	total := b.totalSize()
	last := b.isLastPhys()

	b.resize(uint16(at - usedHeaderSize))

	newOff := compress(b.pos() + at)
	n := b.a.createFreeBlock(newOff, uint16(total-at-usedHeaderSize), last, b.off)

	if next, ok := b.a.nextPhys(n.Block); ok {
		next.setPrevPhys(newOff)
	} else {
		// n inherited the last phys flag; drop it from the original
		b.clearLastPhys()
	}

	return n
}

// merge absorbs next, the immediate physical successor of b. The caller
// must have unlinked both blocks and checked that the combined size still
// fits the 16 bit size field.
func (b freeBlock) merge(next freeBlock) {
	b.resize(uint16(b.UsableSize() + next.totalSize()))

	if nn, ok := b.a.nextPhys(next.Block); ok {
		nn.setPrevPhys(b.off)
	} else {
		b.setLastPhys()
	}
}
