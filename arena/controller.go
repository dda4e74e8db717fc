// SPDX-License-Identifier: EPL-2.0

package arena

import (
	"fmt"
	"sync/atomic"
)

// Controller hands out keys for an arena. It is the only part of the arena
// that may be touched from more than one goroutine: control-side callers
// reserve keys with Reserve, the render side returns slots when it removes
// a resource. Both ends are lock-free.
type Controller struct {
	// head packs a tag (high 32 bits) and the free list top as index+1
	// (low 32 bits, 0 means empty). The tag defeats ABA on concurrent pops.
	head atomic.Uint64
	next []atomic.Uint32
	gens []atomic.Uint32
	live atomic.Int64
}

// NewController creates a controller for capacity slots. All slots start free.
func NewController(capacity int) *Controller {
	if capacity <= 0 {
		capacity = 1
	}

	c := &Controller{
		next: make([]atomic.Uint32, capacity),
		gens: make([]atomic.Uint32, capacity),
	}

	for i := range capacity {
		c.gens[i].Store(1)
		if i+1 < capacity {
			c.next[i].Store(uint32(i + 2))
		}
	}
	c.head.Store(pack(0, 1))

	return c
}

func pack(tag, top uint32) uint64 { return uint64(tag)<<32 | uint64(top) }

func unpack(h uint64) (tag, top uint32) { return uint32(h >> 32), uint32(h) }

// Capacity returns the fixed number of slots.
func (c *Controller) Capacity() int { return len(c.gens) }

// Live returns the number of keys currently reserved or in use.
func (c *Controller) Live() int { return int(c.live.Load()) }

// Reserve pops a free slot and returns a key for it, or ErrCapacityExceeded
// when every slot is taken.
func (c *Controller) Reserve() (Key, error) {
	for {
		h := c.head.Load()
		tag, top := unpack(h)
		if top == 0 {
			return Key{}, fmt.Errorf("reserve key (capacity %d): %w", c.Capacity(), ErrCapacityExceeded)
		}

		idx := top - 1
		nxt := c.next[idx].Load()
		if c.head.CompareAndSwap(h, pack(tag+1, nxt)) {
			c.live.Add(1)
			return Key{Index: idx, Generation: c.gens[idx].Load()}, nil
		}
	}
}

// Release returns a key that was reserved but never inserted, for example
// when the command carrying it could not be queued.
func (c *Controller) Release(key Key) {
	if !c.current(key) {
		return
	}
	c.free(key.Index)
}

func (c *Controller) current(key Key) bool {
	return int(key.Index) < len(c.gens) && c.gens[key.Index].Load() == key.Generation
}

// free bumps the slot generation so outstanding keys go stale, then pushes
// the slot back onto the free list.
func (c *Controller) free(idx uint32) {
	c.gens[idx].Add(1)

	for {
		h := c.head.Load()
		tag, top := unpack(h)
		c.next[idx].Store(top)
		if c.head.CompareAndSwap(h, pack(tag+1, idx+1)) {
			c.live.Add(-1)
			return
		}
	}
}
