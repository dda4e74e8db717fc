// SPDX-License-Identifier: EPL-2.0

// Package arena provides fixed-capacity storage addressed by generational keys.
//
// An arena is split in two halves:
//   - Controller, shared by every goroutine, hands out keys with a lock-free
//     free list. Control-side callers reserve a key, put it in a command and
//     return it to the user before the resource exists.
//   - Arena, owned by the render goroutine, stores the values. It inserts
//     values under reserved keys, looks them up and removes them.
//
// A Key is an (index, generation) pair. Removing a value bumps the slot
// generation, so a Key held by a caller after removal never aliases the next
// resource stored in the same slot:
//
//	ctrl := arena.NewController(64)
//	a := arena.New[voice](ctrl)
//
//	key, err := ctrl.Reserve() // any goroutine
//	if errors.Is(err, arena.ErrCapacityExceeded) {
//	    // arena full
//	}
//	_ = a.Insert(key, voice{}) // render goroutine
//	v, ok := a.Get(key)
//
// Every operation is constant time and nothing allocates after construction.
package arena
