// SPDX-License-Identifier: EPL-2.0

package clock

import (
	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/tween"
)

// Set stores the render-side clocks.
type Set struct {
	clocks *arena.Arena[Clock]
}

func NewSet(ctrl *arena.Controller) *Set {
	return &Set{clocks: arena.New[Clock](ctrl)}
}

func (s *Set) Controller() *arena.Controller { return s.clocks.Controller() }

func (s *Set) Add(id arena.Key, c Clock) error { return s.clocks.Insert(id, c) }

func (s *Set) Remove(id arena.Key) bool {
	_, ok := s.clocks.Remove(id)
	return ok
}

func (s *Set) Get(id arena.Key) (*Clock, bool) { return s.clocks.Get(id) }

func (s *Set) Len() int { return s.clocks.Len() }

// Update advances every clock by dt seconds.
func (s *Set) Update(dt float64, r tween.Resolver) {
	s.clocks.Each(func(_ arena.Key, c *Clock) bool {
		c.Update(dt, r)
		return true
	})
}

// Reached reports whether clock id exists and has crossed tick.
func (s *Set) Reached(id arena.Key, tick uint64) (reached, exists bool) {
	c, ok := s.clocks.Get(id)
	if !ok {
		return false, false
	}
	return c.Reached(tick), true
}
