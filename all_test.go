// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlsf

import (
	"flag"
	"testing"
)

var (
	testN = flag.Int("N", 128, "rnd test allocations or frees between Verify calls")
)

func newTestAllocator(t testing.TB, fll int) *Allocator {
	a, err := NewAllocator(fll)
	if err != nil {
		t.Fatal(err)
	}

	return a
}

// pool returns a word aligned backing region of n words.
func pool(words int) []byte {
	return skewedPool(words*blockAlign, blockAlign, 0)
}

// skewedPool returns a backing region of n bytes whose base address is
// congruent to skew modulo align, for tests whose expected split layout
// depends on where the pool sits relative to an alignment boundary.
func skewedPool(n, align, skew int) []byte {
	buf := make([]byte, n+2*align)
	p := 0
	for int(sliceAddr(buf[p:]))&(align-1) != skew {
		p++
	}
	return buf[p : p+n : p+n]
}

// carver tiles a pool with free blocks without registering them, mirroring
// what Initialize does internally. Unit tests use it to stage fixtures.
type carver struct {
	a    anchor
	pos  int
	rem  int
	prev offset
	last bool
}

func newCarver(pool []byte) *carver {
	return &carver{a: anchor{pool}, pos: blockAlign, rem: len(pool) - blockAlign}
}

func (c *carver) next(t testing.TB, usable int, isLast bool) freeBlock {
	if c.last {
		t.Fatal("carver: already carved the last phys block")
	}

	b := c.a.createFreeBlock(compress(c.pos), uint16(usable), isLast, c.prev)
	step := b.totalSize()
	if step > c.rem {
		t.Fatal("carver: exhausted the pool", step, c.rem)
	}

	c.prev = b.off
	c.pos += step
	c.rem -= step
	c.last = isLast
	return b
}

// linkedFreeBlocks collects every block reachable from the free lists, in
// class order, head first.
func linkedFreeBlocks(t *flt, a *anchor) (r []freeBlock) {
	for fl := 0; fl < t.fll; fl++ {
		for sl := 0; sl < sll; sl++ {
			for cur := t.freeLists[fl][sl]; cur != nilOffset; {
				b := a.freeBlockAt(cur)
				r = append(r, b)
				cur = b.nextFree()
			}
		}
	}
	return
}

func freeSizes(al *Allocator) (r []int) {
	for it := al.FreeBlocks(); ; {
		b, ok := it.Next()
		if !ok {
			return
		}

		r = append(r, b.UsableSize())
	}
}

func freeTotals(al *Allocator) (r []int) {
	for it := al.FreeBlocks(); ; {
		b, ok := it.Next()
		if !ok {
			return
		}

		r = append(r, b.totalSize())
	}
}

func sumFree(al *Allocator) (n int) {
	for _, v := range freeTotals(al) {
		n += v
	}
	return
}

func chainLen(al *Allocator) (n int) {
	for it := al.Blocks(); ; n++ {
		if _, ok := it.Next(); !ok {
			return
		}
	}
}

func (t *flt) isFlBitSet(fl int) bool { return t.flBitmap&(1<<uint(fl)) != 0 }

func (t *flt) isSlBitSet(fl, sl int) bool { return t.slBitmaps[fl]&(1<<uint(sl)) != 0 }

// Paranoid allocator, verifies after every mutation.
type pAllocator struct {
	*Allocator
	t *testing.T
}

func newPAllocator(t *testing.T, fll int) *pAllocator {
	return &pAllocator{newTestAllocator(t, fll), t}
}

func (p *pAllocator) verify() {
	if err := p.Allocator.Verify(func(err error) bool { p.t.Fatal(err); return false }, nil); err != nil {
		p.t.Fatal(err)
	}
}

func (p *pAllocator) Initialize(memory []byte) {
	p.Allocator.Initialize(memory)
	p.verify()
}

func (p *pAllocator) Malloc(size int) []byte {
	b := p.Allocator.Malloc(size)
	p.verify()
	return b
}

func (p *pAllocator) Memalign(size, align int) []byte {
	b := p.Allocator.Memalign(size, align)
	p.verify()
	return b
}

func (p *pAllocator) Free(b []byte) {
	p.Allocator.Free(b)
	p.verify()
}
