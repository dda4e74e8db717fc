// SPDX-License-Identifier: EPL-2.0

// Package param holds named scalars that other resources can follow through
// tween.Value. Parameters live on the render side and are stepped once per
// block, before anything that reads them.
package param

import (
	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/tween"
)

// Parameter is a tweenable scalar.
type Parameter struct {
	value tween.Tweenable
}

// New returns a parameter starting at v.
func New(v float64) Parameter {
	return Parameter{value: tween.NewTweenable(tween.Fixed(v))}
}

// Value returns the current value.
func (p *Parameter) Value() float64 { return p.value.Value() }

// Set moves the parameter to v along tw.
func (p *Parameter) Set(v float64, tw tween.Tween) {
	p.value.Set(tween.Fixed(v), tw)
}

// Set is the render-side store of parameters. It implements tween.Resolver.
type Set struct {
	params *arena.Arena[Parameter]
}

// NewSet creates a store backed by ctrl.
func NewSet(ctrl *arena.Controller) *Set {
	return &Set{params: arena.New[Parameter](ctrl)}
}

// Controller returns the key controller for parameters.
func (s *Set) Controller() *arena.Controller { return s.params.Controller() }

// Add stores a parameter under id.
func (s *Set) Add(id arena.Key, p Parameter) error { return s.params.Insert(id, p) }

// Remove deletes the parameter. Values following it freeze at their last value.
func (s *Set) Remove(id arena.Key) bool {
	_, ok := s.params.Remove(id)
	return ok
}

// Get returns the parameter stored under id.
func (s *Set) Get(id arena.Key) (*Parameter, bool) { return s.params.Get(id) }

// Len returns the number of parameters.
func (s *Set) Len() int { return s.params.Len() }

// Update advances every parameter's tween by dt seconds.
func (s *Set) Update(dt float64) {
	s.params.Each(func(_ arena.Key, p *Parameter) bool {
		p.value.Update(dt, nil)
		return true
	})
}

// ParameterValue implements tween.Resolver.
func (s *Set) ParameterValue(id arena.Key) (float64, bool) {
	p, ok := s.params.Get(id)
	if !ok {
		return 0, false
	}
	return p.Value(), true
}
