// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlsf

// Blocks enumerates the physical chain in address order.
type Blocks struct {
	a   *anchor
	cur offset
}

// Blocks returns an iterator over all blocks managed by the allocator,
// lowest address first. The iterator borrows the allocator: allocating or
// freeing while it is in use invalidates it.
func (al *Allocator) Blocks() *Blocks {
	if !al.anchor.isSet() {
		return &Blocks{}
	}

	return &Blocks{a: &al.anchor, cur: compress(blockAlign)}
}

// Next returns the next block view, or false after the last phys block.
func (it *Blocks) Next() (Block, bool) {
	if it.cur == nilOffset {
		return Block{}, false
	}

	b := it.a.blockAt(it.cur)
	if next, ok := it.a.nextPhys(b); ok {
		it.cur = next.off
	} else {
		it.cur = nilOffset
	}
	return b, true
}

// FreeBlocks enumerates only the free blocks of the physical chain.
type FreeBlocks struct {
	Blocks
}

// FreeBlocks returns an iterator over the free blocks in address order,
// under the same borrowing rule as Blocks.
func (al *Allocator) FreeBlocks() *FreeBlocks {
	return &FreeBlocks{*al.Blocks()}
}

// Next returns the next free block view, or false when none remain.
func (it *FreeBlocks) Next() (Block, bool) {
	for {
		b, ok := it.Blocks.Next()
		if !ok {
			return Block{}, false
		}

		if b.IsFree() {
			return b, true
		}
	}
}
