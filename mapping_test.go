// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlsf

import (
	"testing"
)

func TestMaxAllocSize(t *testing.T) {
	e := []int{60, 124, 248, 496, 992, 1984, 3968, 7936, 15872, 31744, 63488}
	for fll := 1; fll <= MaxFLL; fll++ {
		if g, e := MaxAllocSize(fll), e[fll-1]; g != e {
			t.Fatal(fll, g, e)
		}
	}
}

func TestMappingInsert(t *testing.T) {
	tab := []struct {
		fll  int
		size uint16
		fl   int
		sl   int
	}{
		// 0, 15: 60..64; 1, 0: 64..68
		{1, 60, 0, 15},
		{1, 64, 0, 15},
		{1, 68, 0, 15},

		{3, 60, 0, 15},
		{3, 64, 1, 0},

		// 1, 15: 124..128; 2, 0: 128..136
		{3, 124, 1, 15},
		{3, 128, 2, 0},
		{3, 132, 2, 0},

		// UPPER_SIZE_THRESHOLD for fll 2 is 124
		{2, 120, 1, 14},
		{2, 124, 1, 15},
		{2, 128, 1, 15},
		{2, 256, 1, 15},
	}
	for i, test := range tab {
		gfl, gsl := mappingInsert(test.fll, test.size)
		if gfl != test.fl || gsl != test.sl {
			t.Fatal(i, test, gfl, gsl)
		}
	}
}

func TestMappingSearch(t *testing.T) {
	tab := []struct {
		fll  int
		size uint16
		fl   int
		sl   int
	}{
		{1, 60, 0, 15},
		{3, 60, 0, 15},
		{3, 64, 1, 0},

		{3, 124, 1, 15},
		{3, 128, 2, 0},
		{3, 132, 2, 1},

		{2, 120, 1, 14},
		{2, 124, 1, 15},

		// 2, 14: 240..248; 2, 15: 248..256
		{3, 244, 2, 15},
		{3, 248, 2, 15},
	}
	for i, test := range tab {
		gfl, gsl := mappingSearch(test.fll, test.size)
		if gfl != test.fl || gsl != test.sl {
			t.Fatal(i, test, gfl, gsl)
		}
	}
}

// classMin returns the smallest usable size mapping into class (fl, sl).
func classMin(fl, sl int) int {
	if fl == 0 {
		return sl << blockAlignLog2
	}

	base := 1 << uint(fl+minFLL-1)
	return base + sl*(base>>sllLog2)
}

func TestMappingProperties(t *testing.T) {
	for fll := 1; fll <= MaxFLL; fll++ {
		for size := blockAlign; size <= MaxAllocSize(fll); size += blockAlign {
			ifl, isl := mappingInsert(fll, uint16(size))
			if ifl < 0 || ifl >= fll || isl < 0 || isl >= sll {
				t.Fatal(fll, size, ifl, isl)
			}

			sfl, ssl := mappingSearch(fll, uint16(size))
			if sfl < 0 || sfl >= fll || ssl < 0 || ssl >= sll {
				t.Fatal(fll, size, sfl, ssl)
			}

			// search must never return a smaller class than insert
			if sfl < ifl || sfl == ifl && ssl < isl {
				t.Fatal(fll, size, ifl, isl, sfl, ssl)
			}

			// every block in the returned class must satisfy the request
			if g, e := classMin(sfl, ssl), size; g < e {
				t.Fatal(fll, size, sfl, ssl, g, e)
			}
		}
	}
}

// mappingInsert covers the whole valid index range.
func TestMappingInsertSurjective(t *testing.T) {
	for fll := 1; fll <= MaxFLL; fll++ {
		seen := map[[2]int]bool{}
		for size := 0; size <= 0xffff; size += blockAlign {
			fl, sl := mappingInsert(fll, uint16(size))
			seen[[2]int{fl, sl}] = true
		}
		if g, e := len(seen), fll*sll; g != e {
			t.Fatal(fll, g, e)
		}
	}
}

func TestRoundUpBlockSize(t *testing.T) {
	tab := []struct {
		in  int
		out int
		ok  bool
	}{
		{1, 4, true},
		{4, 4, true},
		{5, 8, true},
		{0xfffc, 0xfffc, true},
		{0xfffd, 0x10000, false},
		{0xffff, 0x10000, false},
	}
	for i, test := range tab {
		g, ok := roundUpBlockSize(test.in)
		if ok != test.ok || ok && g != test.out {
			t.Fatal(i, test, g, ok)
		}
	}
}
