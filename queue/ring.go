// SPDX-License-Identifier: EPL-2.0

// Package queue provides a bounded, lock-free multi-producer multi-consumer
// ring buffer. It carries commands from control goroutines into the render
// goroutine and events back out, without ever blocking either side.
package queue

import "sync/atomic"

type cell[T any] struct {
	seq atomic.Uint64
	val T
}

// Ring is a bounded MPMC queue. Each cell carries a sequence number telling
// producers and consumers whose turn it is, so a push or pop is one CAS on
// the shared cursor plus one store on the cell. For position pos the cell
// reads 2*pos while empty and 2*pos+1 once filled. TryPush and TryPop never
// wait: they report full or empty instead.
type Ring[T any] struct {
	cells []cell[T]
	size  uint64

	_   [56]byte
	enq atomic.Uint64
	_   [56]byte
	deq atomic.Uint64
	_   [56]byte
}

// New creates a ring holding up to capacity values. Any capacity >= 1 works.
func New[T any](capacity int) *Ring[T] {
	if capacity < 1 {
		capacity = 1
	}

	r := &Ring[T]{
		cells: make([]cell[T], capacity),
		size:  uint64(capacity),
	}
	for i := range r.cells {
		r.cells[i].seq.Store(2 * uint64(i))
	}

	return r
}

// Cap returns the capacity.
func (r *Ring[T]) Cap() int { return int(r.size) }

// Len returns an approximate number of queued values.
func (r *Ring[T]) Len() int {
	n := int64(r.enq.Load()) - int64(r.deq.Load())
	if n < 0 {
		return 0
	}
	if n > int64(r.size) {
		return int(r.size)
	}
	return int(n)
}

// TryPush appends v. It returns false when the ring is full.
func (r *Ring[T]) TryPush(v T) bool {
	pos := r.enq.Load()
	for {
		c := &r.cells[pos%r.size]
		seq := c.seq.Load()

		switch diff := int64(seq) - int64(2*pos); {
		case diff == 0:
			if r.enq.CompareAndSwap(pos, pos+1) {
				c.val = v
				c.seq.Store(2*pos + 1)
				return true
			}
			pos = r.enq.Load()
		case diff < 0:
			return false
		default:
			pos = r.enq.Load()
		}
	}
}

// TryPop removes the oldest published value. It returns false when nothing
// is ready. A value claimed by a producer that has not finished writing it
// is not ready yet, and neither is anything behind it.
func (r *Ring[T]) TryPop() (T, bool) {
	var zero T

	pos := r.deq.Load()
	for {
		c := &r.cells[pos%r.size]
		seq := c.seq.Load()

		switch diff := int64(seq) - int64(2*pos+1); {
		case diff == 0:
			if r.deq.CompareAndSwap(pos, pos+1) {
				v := c.val
				c.val = zero
				c.seq.Store(2 * (pos + r.size))
				return v, true
			}
			pos = r.deq.Load()
		case diff < 0:
			return zero, false
		default:
			pos = r.deq.Load()
		}
	}
}

// PushEvict appends v, discarding the oldest values until it fits. It
// reports how many values were discarded.
func (r *Ring[T]) PushEvict(v T) int {
	dropped := 0
	for !r.TryPush(v) {
		if _, ok := r.TryPop(); ok {
			dropped++
		}
	}
	return dropped
}
