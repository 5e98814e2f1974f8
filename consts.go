// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlsf

const (
	blockAlignLog2 = 2
	blockAlign     = 1 << blockAlignLog2

	// NOTE cannot be greater because the second level bitmaps are uint16.
	sllLog2 = 4
	sll     = 1 << sllLog2

	// Rows with sizes below this threshold would subdivide ranges like
	// 4..8 into sll buckets. Instead all of them fold into row 0.
	minFLL             = sllLog2 + blockAlignLog2
	lowerSizeThreshold = 1 << minFLL

	// MaxFLL is the highest accepted first level list count.
	MaxFLL = 11

	usedHeaderSize = 4
	freeHeaderSize = 8

	maxUsableSize = 0xfffc

	maxCompressedOffset = 1<<16 - 1

	// MaxPoolSize is the number of pool bytes an Allocator can manage:
	// the furthest addressable block start plus a minimum block plus the
	// anchor prefix. Longer backing regions are silently capped.
	MaxPoolSize = maxCompressedOffset<<blockAlignLog2 + freeHeaderSize + blockAlign
)

func realFLL(fll int) int { return fll + minFLL - 1 }

func upperSizeThreshold(fll int) int { return 1<<uint(realFLL(fll)) - blockAlign }

// MaxAllocSize returns the largest request size servable by an Allocator
// configured with fll first level lists.
func MaxAllocSize(fll int) int {
	step := 1 << uint(realFLL(fll)-sllLog2-1)
	if step < blockAlign {
		step = blockAlign
	}
	return 1<<uint(realFLL(fll)) - step
}
