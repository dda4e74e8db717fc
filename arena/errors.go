// SPDX-License-Identifier: EPL-2.0

package arena

import "errors"

var (
	ErrCapacityExceeded = errors.New("arena capacity exceeded")
	ErrStaleKey         = errors.New("stale or unknown arena key")
	ErrSlotOccupied     = errors.New("arena slot already occupied")
)
