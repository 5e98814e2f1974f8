// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The size to (fl, sl) class mapping.

package tlsf

import (
	"modernc.org/mathutil"
)

// mappingInsert returns the class containing size: the class a free block
// of that size is linked under. Sizes below lowerSizeThreshold fold into
// row 0 in blockAlign steps; sizes above the upper threshold clamp into the
// top class.
func mappingInsert(fll int, size uint16) (fl, sl int) {
	switch {
	case int(size) < lowerSizeThreshold:
		return 0, int(size >> blockAlignLog2)
	case int(size) > upperSizeThreshold(fll):
		return fll - 1, sll - 1
	default:
		m := mathutil.Log2Uint16(size)
		sl = int(size>>uint(m-sllLog2)) & (sll - 1)
		fl = m - (minFLL - 1)
		return fl, sl
	}
}

// mappingSearch returns the class to start an allocation search from: the
// first class whose every block is guaranteed >= size. Rounding size up by
// one bucket step before mapping pays for the blocks smaller than size that
// share its insertion class.
//
// size must not exceed MaxAllocSize(fll).
func mappingSearch(fll int, size uint16) (fl, sl int) {
	if int(size) >= lowerSizeThreshold {
		m := mathutil.Log2Uint16(size)
		size = uint16(uint32(size) + 1<<uint(m-sllLog2) - 1)
	}

	return mappingInsert(fll, size)
}
