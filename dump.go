// Copyright 2017 The TLSF Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tlsf

import (
	"io"

	"modernc.org/zappy"
)

// Dump writes a zappy compressed snapshot of the managed pool to w, for
// post mortem inspection of crashed or corrupted pools. The snapshot
// includes the anchor prefix, so offsets reported by Verify apply to the
// decoded image directly.
func (al *Allocator) Dump(w io.Writer) error {
	if !al.anchor.isSet() {
		return &ErrINVAL{"Dump: allocator has no pool", 0}
	}

	b, err := zappy.Encode(nil, al.anchor.pool)
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}
