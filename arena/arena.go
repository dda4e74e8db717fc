// SPDX-License-Identifier: EPL-2.0

package arena

import "fmt"

// Key identifies a slot in an arena. The generation changes every time the
// slot is freed, so a key kept after its resource was removed never matches
// whatever occupies the slot next.
type Key struct {
	Index      uint32
	Generation uint32
}

// IsZero reports whether k is the zero key. Generations start at 1, so the
// zero key never names a live resource.
func (k Key) IsZero() bool { return k.Generation == 0 }

func (k Key) String() string { return fmt.Sprintf("%d@%d", k.Index, k.Generation) }

const none = -1

type slot[T any] struct {
	value      T
	generation uint32
	occupied   bool
	prev, next int32
}

// Arena is fixed-capacity storage addressed by Keys. It is owned by a single
// goroutine (the render side); keys come from its Controller. Storage is
// allocated once in New, nothing allocates afterwards. Occupied slots are
// kept in a linked list so iteration visits resources in insertion order.
type Arena[T any] struct {
	ctrl        *Controller
	slots       []slot[T]
	first, last int32
	length      int
}

// New creates an arena backed by ctrl, with room for ctrl.Capacity() values.
func New[T any](ctrl *Controller) *Arena[T] {
	return &Arena[T]{
		ctrl:  ctrl,
		slots: make([]slot[T], ctrl.Capacity()),
		first: none,
		last:  none,
	}
}

// Controller returns the key controller shared with the control side.
func (a *Arena[T]) Controller() *Controller { return a.ctrl }

// Len returns the number of stored values.
func (a *Arena[T]) Len() int { return a.length }

// Capacity returns the fixed number of slots.
func (a *Arena[T]) Capacity() int { return len(a.slots) }

// Insert stores v under a key previously obtained from the controller.
func (a *Arena[T]) Insert(key Key, v T) error {
	if int(key.Index) >= len(a.slots) || !a.ctrl.current(key) {
		return fmt.Errorf("insert %v: %w", key, ErrStaleKey)
	}

	s := &a.slots[key.Index]
	if s.occupied {
		return fmt.Errorf("insert %v: %w", key, ErrSlotOccupied)
	}

	s.value = v
	s.generation = key.Generation
	s.occupied = true
	s.next = none
	s.prev = a.last

	idx := int32(key.Index)
	if a.last != none {
		a.slots[a.last].next = idx
	} else {
		a.first = idx
	}
	a.last = idx
	a.length++

	return nil
}

// Get returns a pointer to the value stored under key. The pointer stays
// valid until the key is removed. ok is false for stale or unknown keys.
func (a *Arena[T]) Get(key Key) (*T, bool) {
	if int(key.Index) >= len(a.slots) {
		return nil, false
	}

	s := &a.slots[key.Index]
	if !s.occupied || s.generation != key.Generation {
		return nil, false
	}

	return &s.value, true
}

// Contains reports whether key names a stored value.
func (a *Arena[T]) Contains(key Key) bool {
	_, ok := a.Get(key)
	return ok
}

// Remove deletes the value under key, frees the slot for reuse and returns
// the removed value. ok is false when the key was already stale.
func (a *Arena[T]) Remove(key Key) (T, bool) {
	var zero T

	if _, ok := a.Get(key); !ok {
		return zero, false
	}

	s := &a.slots[key.Index]
	v := s.value

	if s.prev != none {
		a.slots[s.prev].next = s.next
	} else {
		a.first = s.next
	}
	if s.next != none {
		a.slots[s.next].prev = s.prev
	} else {
		a.last = s.prev
	}

	s.value = zero
	s.occupied = false
	s.prev, s.next = none, none
	a.length--
	a.ctrl.free(key.Index)

	return v, true
}

// Each calls fn for every stored value in insertion order until fn returns
// false. fn may remove the key it is visiting, but no other key.
func (a *Arena[T]) Each(fn func(Key, *T) bool) {
	for i := a.first; i != none; {
		s := &a.slots[i]
		next := s.next
		if !fn(Key{Index: uint32(i), Generation: s.generation}, &s.value) {
			return
		}
		i = next
	}
}
