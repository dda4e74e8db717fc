// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrRouteCycle     = errors.New("route would create a cycle")
	ErrMainTrack      = errors.New("the main track cannot be routed or removed")
	ErrUnknownTrack   = errors.New("unknown track")
	ErrTooManyRoutes  = errors.New("track route capacity exceeded")
	ErrTooManyEffects = errors.New("track effect capacity exceeded")
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrMissingTrack   = errors.New("route points at a missing track")
	ErrEffectPanic    = errors.New("effect panicked")
	ErrInvalidLimits  = errors.New("mixer limits must be positive")
)
