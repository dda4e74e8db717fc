// SPDX-License-Identifier: EPL-2.0

// Package tween implements timed scalar transitions.
//
// A Tween evaluated at elapsed time t clamps progress to [0,1], runs it
// through its Easing and interpolates linearly between the start and target
// values. At or past the duration it yields the target exactly.
//
// A Value is either fixed or bound to a parameter; bound values are
// resolved every block through a Resolver. A Tweenable follows a Value and
// starts every new transition from its current position:
//
//	vol := tween.NewTweenable(tween.Fixed(1))
//	vol.Set(tween.Fixed(0), tween.LinearOver(500*time.Millisecond))
//	for range blocks {
//	    gain := vol.Update(blockSeconds, params)
//	    // ...
//	}
package tween
