// SPDX-License-Identifier: EPL-2.0

package tween

import "math"

// EasingKind selects the curve an Easing applies to tween progress.
type EasingKind uint8

const (
	Linear EasingKind = iota
	InPowi
	OutPowi
	InOutPowi
	InPowf
	OutPowf
	InOutPowf
)

func (k EasingKind) String() string {
	switch k {
	case Linear:
		return "linear"
	case InPowi:
		return "in-powi"
	case OutPowi:
		return "out-powi"
	case InOutPowi:
		return "in-out-powi"
	case InPowf:
		return "in-powf"
	case OutPowf:
		return "out-powf"
	case InOutPowf:
		return "in-out-powf"
	default:
		return "unknown"
	}
}

// Easing is a curve mapping progress in [0,1] onto [0,1]. The Powi kinds
// raise progress to an integer power, the Powf kinds to a real one.
type Easing struct {
	Kind  EasingKind
	Power float64
}

// Apply maps x, which must already be clamped to [0,1].
func (e Easing) Apply(x float64) float64 {
	switch e.Kind {
	case InPowi:
		return powi(x, int(e.Power))
	case OutPowi:
		return 1 - powi(1-x, int(e.Power))
	case InOutPowi:
		if x < 0.5 {
			return 0.5 * powi(2*x, int(e.Power))
		}
		return 1 - 0.5*powi(2*(1-x), int(e.Power))
	case InPowf:
		return math.Pow(x, e.Power)
	case OutPowf:
		return 1 - math.Pow(1-x, e.Power)
	case InOutPowf:
		if x < 0.5 {
			return 0.5 * math.Pow(2*x, e.Power)
		}
		return 1 - 0.5*math.Pow(2*(1-x), e.Power)
	default:
		return x
	}
}

func powi(x float64, n int) float64 {
	if n < 1 {
		return x
	}
	r := 1.0
	for range n {
		r *= x
	}
	return r
}
