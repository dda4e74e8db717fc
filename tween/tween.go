// SPDX-License-Identifier: EPL-2.0

package tween

import (
	"time"

	"github.com/ik5/audmix/utils"
)

// Tween describes how a value moves to a new target: over Duration along
// Easing. The zero Tween is an instant change.
type Tween struct {
	Duration time.Duration
	Easing   Easing
}

// LinearOver returns a linear tween lasting d.
func LinearOver(d time.Duration) Tween { return Tween{Duration: d} }

// Seconds returns the duration in seconds.
func (t Tween) Seconds() float64 { return t.Duration.Seconds() }

// Progress returns the eased progress at elapsed seconds, clamped to [0,1].
func (t Tween) Progress(elapsed float64) float64 {
	d := t.Seconds()
	if d <= 0 || elapsed >= d {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return t.Easing.Apply(elapsed / d)
}

// Value interpolates between start and target at elapsed seconds. At or
// past the duration it returns target exactly.
func (t Tween) Value(start, target, elapsed float64) float64 {
	if elapsed >= t.Seconds() {
		return target
	}
	return utils.Lerp(start, target, t.Progress(elapsed))
}
