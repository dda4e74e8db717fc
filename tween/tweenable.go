// SPDX-License-Identifier: EPL-2.0

package tween

// settle absorbs float drift from summing block durations, so a tween of
// exactly n blocks retires on block n.
const settle = 1e-9

// Tweenable is a scalar that follows a Value, moving to each new target
// along a Tween. It is a plain value type so resources embedding it stay
// allocation free.
type Tweenable struct {
	current float64
	from    float64
	target  Value
	tween   Tween
	elapsed float64
	active  bool
}

// NewTweenable starts at v. A parameter-driven v reads 0 until the first
// Update resolves it.
func NewTweenable(v Value) Tweenable {
	t := Tweenable{target: v}
	if v.IsFixed() {
		t.current = v.fixed
	}
	return t
}

// Value returns the current value.
func (t *Tweenable) Value() float64 { return t.current }

// Target returns the value being followed.
func (t *Tweenable) Target() Value { return t.target }

// Transitioning reports whether a tween is still running.
func (t *Tweenable) Transitioning() bool { return t.active }

// Set retargets to v along tw. The transition always starts from the
// current interpolated value, never from where a previous tween began, so
// retargeting mid-flight does not jump.
func (t *Tweenable) Set(v Value, tw Tween) {
	t.from = t.current
	t.target = v
	t.tween = tw
	t.elapsed = 0
	t.active = tw.Seconds() > 0

	if !t.active && v.IsFixed() {
		t.current = v.fixed
	}
}

// Jump sets the value immediately and cancels any running tween.
func (t *Tweenable) Jump(v float64) {
	t.target = Fixed(v)
	t.current = v
	t.active = false
}

// Update advances the running tween by dt seconds and returns the new
// value. A finished tween yields the target exactly and is retired.
func (t *Tweenable) Update(dt float64, r Resolver) float64 {
	target := t.target.Resolve(r, t.current)

	if !t.active {
		t.current = target
		return t.current
	}

	t.elapsed += dt
	if t.elapsed >= t.tween.Seconds()-settle {
		t.active = false
		t.current = target
		return t.current
	}

	t.current = t.tween.Value(t.from, target, t.elapsed)
	return t.current
}
