// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Error types the package produces.

package tlsf

import (
	"fmt"
)

// ErrINVAL reports invalid arguments passed to the API.
type ErrINVAL struct {
	Src string
	Val interface{}
}

// Error implements the built in error type.
func (e *ErrINVAL) Error() string {
	return fmt.Sprintf("%s: %v", e.Src, e.Val)
}

// ErrType is the category of an ErrILSEQ.
type ErrType int

// ErrILSEQ types.
const (
	ErrOther ErrType = iota

	ErrFreeChaining  // Free block, .Off, has invalid prev link (.Arg, expected .Arg2)
	ErrFreeClass     // Free block at .Off linked in class (.Arg, .Arg2) not matching its size
	ErrExpFree       // Expected a free block at .Off
	ErrFLBitmap      // First level bitmap bit .Arg does not match the second level bitmap state
	ErrSLBitmap      // Second level bitmap bit (.Arg, .Arg2) does not match the free list state
	ErrLostFreeBlock // Free block at .Off is not linked in any free list
	ErrPrevPhys      // Block at .Off has prev phys .Arg, expected .Arg2
	ErrSizeAlign     // Block at .Off has usable size .Arg, not a positive multiple of the block alignment
	ErrSpan          // Block at .Off spans beyond the managed pool (size .Arg)
	ErrTailSlack     // Physical chain ends at .Off leaving .Arg unmanaged bytes
)

// ErrILSEQ reports a corrupted allocator structure. It is produced only by
// Verify; the allocation paths trust their invariants.
type ErrILSEQ struct {
	Type ErrType
	Off  int
	Arg  int
	Arg2 int
	More error
}

// Error implements the built in error type.
func (e *ErrILSEQ) Error() string {
	switch e.Type {
	case ErrFreeChaining:
		return fmt.Sprintf("free block at offset %#x has prev free %#x, expected %#x", e.Off, e.Arg, e.Arg2)
	case ErrFreeClass:
		return fmt.Sprintf("free block at offset %#x linked in class (%d, %d) not matching its size", e.Off, e.Arg, e.Arg2)
	case ErrExpFree:
		return fmt.Sprintf("expected a free block at offset %#x", e.Off)
	case ErrFLBitmap:
		return fmt.Sprintf("first level bitmap bit %d does not match the second level bitmap", e.Arg)
	case ErrSLBitmap:
		return fmt.Sprintf("second level bitmap bit (%d, %d) does not match the free list head", e.Arg, e.Arg2)
	case ErrLostFreeBlock:
		return fmt.Sprintf("free block at offset %#x is in no free list", e.Off)
	case ErrPrevPhys:
		return fmt.Sprintf("block at offset %#x has prev phys %#x, expected %#x", e.Off, e.Arg, e.Arg2)
	case ErrSizeAlign:
		return fmt.Sprintf("block at offset %#x has usable size %#x, not a positive multiple of %d", e.Off, e.Arg, blockAlign)
	case ErrSpan:
		return fmt.Sprintf("block at offset %#x (size %#x) spans beyond the managed pool", e.Off, e.Arg)
	case ErrTailSlack:
		return fmt.Sprintf("physical chain ends at %#x leaving %d unmanaged bytes", e.Off, e.Arg)
	}

	more := ""
	if e.More != nil {
		more = ", " + e.More.Error()
	}
	off := ""
	if e.Off != 0 {
		off = fmt.Sprintf(", off: %#x", e.Off)
	}

	return fmt.Sprintf("error%s%s", off, more)
}
