// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Structural verification of the pool and the free list table.

package tlsf

// Stats records statistics about an Allocator's pool. It is filled by
// Verify on success.
type Stats struct {
	PoolSize   int // managed bytes, anchor prefix included
	Blocks     int // blocks in the physical chain
	FreeBlocks int // blocks currently free
	UsedBlocks int // blocks currently lent out
	FreeBytes  int // sum of the usable sizes of the free blocks
	UsedBytes  int // sum of the usable sizes of the used blocks
}

var nolog = func(error) bool { return false }

// Verify attempts to find any structural errors in the pool and the free
// list table: physical chain coverage and back links, block size
// alignment, free list membership and chaining, class placement and bitmap
// coherence in both directions.
//
// Problems found are reported to log until it returns false. Passing a nil
// log works like a log function always returning false. Verify returns nil
// only if it completed without detecting any error; then, if stats is non
// nil, it is filled.
//
// An allocator that was never initialized verifies clean with zero stats.
func (al *Allocator) Verify(log func(error) bool, stats *Stats) (err error) {
	if log == nil {
		log = nolog
	}

	var st Stats
	report := func(e error) bool {
		if err == nil {
			err = e
		}
		return log(e)
	}

	if !al.anchor.isSet() {
		if stats != nil {
			*stats = st
		}
		return nil
	}

	a := &al.anchor
	st.PoolSize = len(a.pool)

	// Phase 1 - walk the physical chain, establish block boundaries and
	// collect the free blocks.
	free := map[offset]bool{}
	pos := blockAlign
	prev := nilOffset
	for {
		b := a.blockAt(compress(pos))
		usable := b.UsableSize()
		if usable%blockAlign != 0 || usable < blockAlign {
			if !report(&ErrILSEQ{Type: ErrSizeAlign, Off: pos, Arg: usable}) {
				return
			}
		}

		end := pos + b.totalSize()
		if end > len(a.pool) {
			report(&ErrILSEQ{Type: ErrSpan, Off: pos, Arg: b.totalSize()})
			return
		}

		if g, e := b.prevPhys(), prev; g != e {
			if !report(&ErrILSEQ{Type: ErrPrevPhys, Off: pos, Arg: g.pos(), Arg2: e.pos()}) {
				return
			}
		}

		// NOTE adjacent free blocks are not an error here: Initialize
		// tiles oversized pools into blocks too big to merge, and a
		// split during allocation can leave its free tail next to a
		// block that was already free. Coalescing is a free-time
		// obligation, not a global one.
		isFree := b.IsFree()

		st.Blocks++
		switch {
		case isFree:
			st.FreeBlocks++
			st.FreeBytes += usable
			free[b.off] = true
		default:
			st.UsedBlocks++
			st.UsedBytes += usable
		}

		if b.isLastPhys() {
			if slack := len(a.pool) - end; slack >= freeHeaderSize {
				if !report(&ErrILSEQ{Type: ErrTailSlack, Off: end, Arg: slack}) {
					return
				}
			}
			break
		}

		if end+freeHeaderSize > len(a.pool) {
			// no room for a successor and no last phys flag
			report(&ErrILSEQ{Type: ErrTailSlack, Off: end, Arg: len(a.pool) - end})
			return
		}

		prev = b.off
		pos = end
	}

	// Phase 2 - walk every free list, check membership, chaining, class
	// placement and the bitmaps.
	for fl := 0; fl < al.flt.fll; fl++ {
		for s := 0; s < sll; s++ {
			head := al.flt.freeLists[fl][s]
			if g, e := al.flt.slBitmaps[fl]&(1<<uint(s)) != 0, head != nilOffset; g != e {
				if !report(&ErrILSEQ{Type: ErrSLBitmap, Arg: fl, Arg2: s}) {
					return
				}
			}

			prev := nilOffset
			for cur := head; cur != nilOffset; {
				if !free[cur] {
					report(&ErrILSEQ{Type: ErrExpFree, Off: cur.pos()})
					return
				}

				delete(free, cur)
				b := a.freeBlockAt(cur)
				if gfl, gsl := mappingInsert(al.flt.fll, uint16(b.UsableSize())); gfl != fl || gsl != s {
					if !report(&ErrILSEQ{Type: ErrFreeClass, Off: cur.pos(), Arg: fl, Arg2: s}) {
						return
					}
				}

				if g, e := b.prevFree(), prev; g != e {
					if !report(&ErrILSEQ{Type: ErrFreeChaining, Off: cur.pos(), Arg: g.pos(), Arg2: e.pos()}) {
						return
					}
				}

				prev, cur = cur, b.nextFree()
			}
		}

		if g, e := al.flt.flBitmap&(1<<uint(fl)) != 0, al.flt.slBitmaps[fl] != 0; g != e {
			if !report(&ErrILSEQ{Type: ErrFLBitmap, Arg: fl}) {
				return
			}
		}
	}

	// Phase 3 - free blocks seen in the chain but absent from every free
	// list are lost. Re-walk the chain so the report order is
	// deterministic.
	if len(free) != 0 {
		for it := al.Blocks(); ; {
			b, ok := it.Next()
			if !ok {
				break
			}

			if free[b.off] {
				if !report(&ErrILSEQ{Type: ErrLostFreeBlock, Off: b.pos()}) {
					return
				}
			}
		}
	}

	if err == nil && stats != nil {
		*stats = st
	}
	return
}
