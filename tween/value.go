// SPDX-License-Identifier: EPL-2.0

package tween

import (
	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/utils"
)

// Resolver looks up the current value of a parameter. The render side's
// parameter set implements it.
type Resolver interface {
	ParameterValue(id arena.Key) (float64, bool)
}

// Mapping converts a parameter value from Input range to Output range.
type Mapping struct {
	Input       [2]float64
	Output      [2]float64
	ClampBottom bool
	ClampTop    bool
}

// Identity leaves parameter values untouched.
var Identity = Mapping{Input: [2]float64{0, 1}, Output: [2]float64{0, 1}}

// Map applies the mapping to x.
func (m Mapping) Map(x float64) float64 {
	span := m.Input[1] - m.Input[0]
	if span == 0 {
		return m.Output[0]
	}

	y := m.Output[0] + (x-m.Input[0])/span*(m.Output[1]-m.Output[0])

	lo, hi := m.Output[0], m.Output[1]
	if lo > hi {
		lo, hi = hi, lo
	}
	if m.ClampBottom && y < lo {
		y = lo
	}
	if m.ClampTop && y > hi {
		y = hi
	}
	return y
}

type valueKind uint8

const (
	kindFixed valueKind = iota
	kindParameter
)

// Value is either a fixed number or a reference to a parameter, resolved
// every block to that parameter's current value.
type Value struct {
	kind    valueKind
	fixed   float64
	param   arena.Key
	mapping Mapping
}

// Fixed returns a constant Value.
func Fixed(v float64) Value { return Value{kind: kindFixed, fixed: v} }

// Decibels returns a constant gain of db decibels. -60 dB and below is
// silence.
func Decibels(db float64) Value { return Fixed(utils.DecibelsToAmplitude(db)) }

// FromParameter returns a Value following the parameter id unchanged.
func FromParameter(id arena.Key) Value {
	return Value{kind: kindParameter, param: id, mapping: Identity}
}

// FromParameterMapped returns a Value following the parameter id through m.
func FromParameterMapped(id arena.Key, m Mapping) Value {
	return Value{kind: kindParameter, param: id, mapping: m}
}

// IsFixed reports whether v is a constant.
func (v Value) IsFixed() bool { return v.kind == kindFixed }

// Parameter returns the parameter v follows, if any.
func (v Value) Parameter() (arena.Key, bool) {
	return v.param, v.kind == kindParameter
}

// Resolve returns the value now. A parameter that no longer exists yields
// fallback, so a removed parameter freezes whatever it drove.
func (v Value) Resolve(r Resolver, fallback float64) float64 {
	if v.kind == kindFixed {
		return v.fixed
	}
	if r == nil {
		return fallback
	}
	p, ok := r.ParameterValue(v.param)
	if !ok {
		return fallback
	}
	return v.mapping.Map(p)
}
