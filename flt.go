// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The two level free list table.

package tlsf

import (
	"math/bits"
)

// The flt type keeps the heads of the doubly linked free block lists. Every
// (fl, sl) slot is assigned a specific range of block sizes; bit fl of
// flBitmap is set iff any slot of row fl is non empty and bit sl of
// slBitmaps[fl] is set iff slot (fl, sl) is non empty. Finding a big enough
// free block is then at most two bit scans, regardless of how many blocks
// are linked.
type flt struct {
	fll       int
	flBitmap  uint16
	slBitmaps [MaxFLL]uint16
	freeLists [MaxFLL][sll]offset
}

func (t *flt) setBits(fl, sl int) {
	t.flBitmap |= 1 << uint(fl)
	t.slBitmaps[fl] |= 1 << uint(sl)
}

func (t *flt) clearSlBit(fl, sl int) {
	t.slBitmaps[fl] &^= 1 << uint(sl)
	if t.slBitmaps[fl] == 0 {
		t.flBitmap &^= 1 << uint(fl)
	}
}

// push prepends block to the free list of its insertion class.
func (t *flt) push(a *anchor, b freeBlock) {
	fl, sl := mappingInsert(t.fll, uint16(b.UsableSize()))

	if head := t.freeLists[fl][sl]; head != nilOffset {
		h := a.freeBlockAt(head)
		h.setPrevFree(b.off)
		b.setNextFree(head)
	} else {
		b.setNextFree(nilOffset)
	}
	b.setPrevFree(nilOffset)

	t.freeLists[fl][sl] = b.off
	t.setBits(fl, sl)
}

// pop removes and returns the head of the first non empty class whose
// blocks are all >= size. The head of a list has no prev free link by
// construction.
func (t *flt) pop(a *anchor, size int) (freeBlock, bool) {
	if size > MaxAllocSize(t.fll) {
		return freeBlock{}, false
	}

	fl, sl, ok := t.findSuitable(mappingSearch(t.fll, uint16(size)))
	if !ok {
		return freeBlock{}, false
	}

	b := a.freeBlockAt(t.freeLists[fl][sl])
	t.unlink(a, b)
	return b, true
}

func (t *flt) findSuitable(fl, sl int) (int, int, bool) {
	if m := t.slBitmaps[fl] & (^uint16(0) << uint(sl)); m != 0 {
		return fl, bits.TrailingZeros16(m), true
	}

	m := t.flBitmap & (^uint16(0) << uint(fl+1))
	if m == 0 {
		return 0, 0, false
	}

	fl = bits.TrailingZeros16(m)
	return fl, bits.TrailingZeros16(t.slBitmaps[fl]), true
}

// unlink splices block out of its free list and maintains the bitmaps.
func (t *flt) unlink(a *anchor, b freeBlock) {
	fl, sl := mappingInsert(t.fll, uint16(b.UsableSize()))

	prev, next := b.prevFree(), b.nextFree()
	switch {
	case prev == nilOffset && next == nilOffset:
		// single item list
		t.freeLists[fl][sl] = nilOffset
		t.clearSlBit(fl, sl)
	case prev == nilOffset:
		// head of list, has next item(s)
		a.freeBlockAt(next).setPrevFree(nilOffset)
		t.freeLists[fl][sl] = next
	case next == nilOffset:
		// last item in list
		a.freeBlockAt(prev).setNextFree(nilOffset)
	default:
		// intermediate item in a list
		a.freeBlockAt(prev).setNextFree(next)
		a.freeBlockAt(next).setPrevFree(prev)
	}
}

// coalesce joins block with whichever physical neighbors qualify and pushes
// the result. After it returns, a free neighbor left adjacent to the pushed
// block is one whose merge would overflow the 16 bit size field.
func (t *flt) coalesce(a *anchor, b freeBlock) {
	prev, next, havePrev, haveNext := t.mergeCandidates(a, b)

	if havePrev {
		t.unlink(a, prev)
		prev.merge(b)
		b = prev
	}

	if haveNext {
		t.unlink(a, next)
		b.merge(next)
	}

	t.push(a, b)
}

// mergeCandidates picks the neighbors to join with. Merging must keep the
// combined usable size within the 16 bit size field: join both neighbors
// when the triple fits, otherwise the largest neighbor whose pair fits
// (ties to prev), otherwise nothing. A pair this pass leaves unmerged
// never fits the size field.
func (t *flt) mergeCandidates(a *anchor, b freeBlock) (prev, next freeBlock, havePrev, haveNext bool) {
	size := b.UsableSize()

	var p, n freeBlock
	var hasP, hasN bool
	if pb, ok := a.prevPhys(b.Block); ok && pb.IsFree() {
		p, hasP = freeBlock{pb}, true
	}
	if nb, ok := a.nextPhys(b.Block); ok && nb.IsFree() {
		n, hasN = freeBlock{nb}, true
	}

	switch {
	case hasP && hasN:
		pSize, nSize := p.totalSize(), n.totalSize()
		switch {
		case size+pSize+nSize <= 0xffff:
			return p, n, true, true
		case pSize >= nSize && size+pSize <= 0xffff:
			return p, n, true, false
		case size+nSize <= 0xffff:
			return p, n, false, true
		case size+pSize <= 0xffff:
			return p, n, true, false
		}
	case hasP:
		if size+p.totalSize() <= 0xffff {
			return p, n, true, false
		}
	case hasN:
		if size+n.totalSize() <= 0xffff {
			return p, n, false, true
		}
	}

	return p, n, false, false
}
