// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlsf

import (
	"unsafe"
)

// An anchor is the base of the managed pool. All compressed offsets are
// relative to it and all block views resolve through it.
type anchor struct {
	pool []byte
}

func sliceAddr(b []byte) uintptr { return uintptr(unsafe.Pointer(&b[0])) }

func (a *anchor) isSet() bool { return a.pool != nil }

func (a *anchor) base() uintptr { return uintptr(unsafe.Pointer(&a.pool[0])) }

func (a *anchor) blockAt(off offset) Block { return Block{a, off} }

func (a *anchor) freeBlockAt(off offset) freeBlock {
	return freeBlock{Block{a, off}}
}

// createFreeBlock fully initializes the header at off, links included.
func (a *anchor) createFreeBlock(off offset, usableSize uint16, isLastPhys bool, prevPhys offset) freeBlock {
	b := a.freeBlockAt(off)
	packed := usableSize | freeBit
	if isLastPhys {
		packed |= lastPhysBit
	}
	b.setPacked(packed)
	b.setPrevPhys(prevPhys)
	b.setNextFree(nilOffset)
	b.setPrevFree(nilOffset)
	return b
}

func (a *anchor) nextPhys(b Block) (Block, bool) {
	if b.isLastPhys() {
		return Block{}, false
	}

	return a.blockAt(compress(b.pos() + b.totalSize())), true
}

func (a *anchor) prevPhys(b Block) (Block, bool) {
	prev := b.prevPhys()
	if prev == nilOffset {
		return Block{}, false
	}

	return a.blockAt(prev), true
}

// usedBlockAt recovers the block whose payload starts at the given caller
// slice. The used header is the 4 bytes preceding the payload.
func (a *anchor) usedBlockAt(body []byte) Block {
	pos := int(uintptr(unsafe.Pointer(&body[0]))-a.base()) - usedHeaderSize
	return a.blockAt(compress(pos))
}

// bodyAddr returns the machine address of the block's payload, used for
// alignment arithmetic in Memalign.
func (a *anchor) bodyAddr(b Block) uintptr {
	return a.base() + uintptr(b.pos()+usedHeaderSize)
}
