// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*

Package tlsf implements a Two-Level Segregated Fit memory allocator managing
a single caller supplied contiguous byte pool.

TLSF serves bounded time, low fragmentation allocation for embedded and real
time contexts: every operation completes in at most two 16 bit bit scans
plus a constant number of header writes, irrespective of pool size or
allocation history.

Pool

A pool is a linear, contiguous sequence of physical blocks. The first
blockAlign (4) bytes are reserved as the anchor prefix so that no block
starts at position 0; a compressed offset of 0 can then mean "no block".
Starting at position 4 the pool is tiled by blocks with no gaps. Exactly one
block carries the last phys flag; up to 4 trailing pool bytes (fewer than a
minimum block) may stay unmanaged.

Blocks

A block is a 4 byte header followed by payload. The header packs the usable
size (a multiple of 4, at most 0xfffc), the free flag and the last phys flag
into one 16 bit word and keeps the compressed offset of the physical
predecessor in another. While a block is free its first payload word holds
the next/prev links of the doubly linked free list it is a member of, so
the minimum block is 8 bytes total. See block.go for the exact layout.

Offsets

Blocks are referred to by nonzero 16 bit offsets scaled by the block
alignment, covering byte positions 4 through 262140. This caps the managed
pool at MaxPoolSize (~256 KiB); longer backing regions are capped silently.
Offsets rather than pointers keep the whole structure position independent.

Free list table

Free blocks are registered in a matrix of doubly linked lists segregated by
size class: a first level index selects a power of two size band, a second
level index one of 16 linear subdivisions of the band. Two bitmaps mirror
which lists are non empty, which makes the good fit search a pair of
find-first-set scans. See flt.go.

Concurrency

An Allocator is not safe for concurrent use. It has exclusive access to the
pool for its lifetime; wrap it in a mutex to build a shared allocator.

*/
package tlsf

import (
	"modernc.org/mathutil"
)

// Allocator manages a byte pool handed to it by Initialize. The zero
// Allocator is not usable; obtain one from NewAllocator.
//
// Before Initialize every allocation fails and every free is a no-op.
type Allocator struct {
	anchor anchor
	flt    flt
}

// NewAllocator returns an empty Allocator with no associated memory,
// configured with fll first level lists, 1 <= fll <= MaxFLL. The choice of
// fll trades index size for the largest servable request, MaxAllocSize(fll).
func NewAllocator(fll int) (*Allocator, error) {
	if fll < 1 || fll > MaxFLL {
		return nil, &ErrINVAL{"NewAllocator: invalid first level list count", fll}
	}

	a := &Allocator{}
	a.flt.fll = fll
	return a, nil
}

// Initialize hands the allocator the memory region to manage. Only the
// first call has any effect; subsequent calls are silently ignored.
//
// The region length is capped at MaxPoolSize and truncated to a multiple of
// 4; a base address off 4 byte alignment is advanced to the next boundary
// first. The excluded bytes are never touched. If the remaining region
// cannot fit the anchor prefix and one minimum block the allocator stays
// empty.
func (al *Allocator) Initialize(memory []byte) {
	if al.anchor.isSet() {
		return
	}

	if len(memory) == 0 {
		return
	}

	if pad := int(sliceAddr(memory) & (blockAlign - 1)); pad != 0 {
		pad = blockAlign - pad
		if pad >= len(memory) {
			return
		}
		memory = memory[pad:]
	}

	total := mathutil.Min(len(memory), MaxPoolSize) &^ (blockAlign - 1)
	if total < blockAlign+freeHeaderSize {
		return
	}

	al.anchor.pool = memory[:total:total]
	a := &al.anchor

	rem := total - blockAlign
	pos := blockAlign
	prevPhys := nilOffset
	for rem >= freeHeaderSize {
		usable := mathutil.Min(rem-usedHeaderSize, maxUsableSize)
		step := usable + usedHeaderSize
		isLast := rem-step < freeHeaderSize

		b := a.createFreeBlock(compress(pos), uint16(usable), isLast, prevPhys)
		prevPhys = b.off
		pos += step
		rem -= step

		al.flt.push(a, b)
	}
}

// roundUpBlockSize rounds size up to the next multiple of the block
// alignment. The second return value is false when the result no longer
// fits the 16 bit size field.
func roundUpBlockSize(size int) (int, bool) {
	rem := size % blockAlign
	if rem != 0 {
		size += blockAlign - rem
	}
	return size, size <= 0xffff
}

// Malloc allocates a block of at least size bytes, 1 <= size <= 0xffff,
// and returns its whole usable span: a 4 byte aligned subslice of the pool
// whose length is size rounded up to a multiple of 4, possibly more.
//
// Malloc returns nil when size is out of range, exceeds
// MaxAllocSize(fll) or no sufficient free block exists. The allocator
// state is unchanged in that case.
func (al *Allocator) Malloc(size int) []byte {
	if !al.anchor.isSet() || size <= 0 {
		return nil
	}

	size, ok := roundUpBlockSize(size)
	if !ok {
		return nil
	}

	b, ok := al.flt.pop(&al.anchor, size)
	if !ok {
		return nil
	}

	b = al.adjustSize(b, size)
	return b.intoUsed()
}

// Memalign allocates a block of at least size bytes whose payload address
// is divisible by align, a power of two. For align <= 4 it is equivalent
// to Malloc.
//
// Memalign returns nil when the arguments are invalid or no free block can
// accommodate the worst case slack align+4+size. The allocator state is
// unchanged in that case.
func (al *Allocator) Memalign(size, align int) []byte {
	if !al.anchor.isSet() || size <= 0 {
		return nil
	}

	if align <= 0 || align&(align-1) != 0 || align > 0xffff {
		return nil
	}

	size, ok := roundUpBlockSize(size)
	if !ok {
		return nil
	}

	worst, ok := worstCaseSize(size, align)
	if !ok {
		return nil
	}

	b, ok := al.flt.pop(&al.anchor, worst)
	if !ok {
		return nil
	}

	b = al.adjustAlignment(b, align)
	b = al.adjustSize(b, size)
	return b.intoUsed()
}

// In the worst case the popped block is already align-byte aligned, which
// puts its payload off by the 4 header bytes; excising an aligned interior
// slot then needs align extra bytes for the alignment split plus room for
// the prefix to remain a valid free block.
func worstCaseSize(size, align int) (int, bool) {
	if align <= blockAlign {
		return size, true
	}

	worst := align + usedHeaderSize + size
	return worst, worst <= 0xffff
}

// adjustAlignment splits an aligned block out of b when its payload is not
// align-byte aligned. The unaligned prefix goes back to the free lists.
func (al *Allocator) adjustAlignment(b freeBlock, align int) freeBlock {
	rem := int(al.anchor.bodyAddr(b.Block) & uintptr(align-1))
	if rem == 0 {
		return b
	}

	at := align - rem
	if at < freeHeaderSize {
		// the prefix must stay a valid free block
		at += align
	}

	n := b.split(at)
	al.flt.push(&al.anchor, b)
	return n
}

// adjustSize splits off and re-registers the tail of b when it is large
// enough to form a block on its own.
func (al *Allocator) adjustSize(b freeBlock, size int) freeBlock {
	if b.UsableSize() >= size+freeHeaderSize {
		n := b.split(usedHeaderSize + size)
		al.flt.push(&al.anchor, n)
	}

	return b
}

// Free returns a block obtained from Malloc or Memalign of this allocator
// back to it, joining it with free physical neighbors as long as the
// combined usable size fits the 16 bit size field.
//
// The argument must be the slice the allocation returned (or a reslice
// preserving its first byte). A double free, a free of foreign memory or
// any use of the slice after Free corrupt the allocator.
func (al *Allocator) Free(b []byte) {
	if !al.anchor.isSet() || len(b) == 0 {
		return
	}

	blk := al.anchor.usedBlockAt(b)
	al.flt.coalesce(&al.anchor, blk.intoFree())
}
