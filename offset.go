// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlsf

// An offset is a compressed reference to a block within the pool. The byte
// position is the value scaled by blockAlign, so a 16 bit field addresses
// 1<<18 bytes. The anchor prefix guarantees no block starts at position 0,
// which leaves the zero value free to mean "no block" - the same niche the
// nil handle 0 occupies in block storages addressed by atom handles.
type offset uint16

const nilOffset offset = 0

func compress(pos int) offset { return offset(pos >> blockAlignLog2) }

func (o offset) pos() int { return int(o) << blockAlignLog2 }
