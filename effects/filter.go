// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/tween"
)

var ErrFilterMode = errors.New("unknown filter mode")

type FilterMode uint8

const (
	Lowpass FilterMode = iota
	Highpass
	Bandpass
	Notch
)

func (m FilterMode) String() string {
	switch m {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Notch:
		return "notch"
	default:
		return fmt.Sprintf("FilterMode(%d)", m)
	}
}

type FilterSettings struct {
	Mode FilterMode
	// Cutoff in Hz. Bind it to a parameter to sweep the filter.
	Cutoff tween.Value
	Q      float64
}

// DefaultFilterSettings is a gentle lowpass at 1 kHz.
func DefaultFilterSettings() FilterSettings {
	return FilterSettings{Mode: Lowpass, Cutoff: tween.Fixed(1000), Q: 0.707}
}

// Filter is a stereo biquad whose cutoff follows a tweenable value.
// Coefficients are redesigned only when the cutoff actually moves.
type Filter struct {
	mode       FilterMode
	q          float64
	sampleRate float64
	cutoff     tween.Tweenable
	designed   float64

	left, right *biquad.Section
	scratch     stereo
}

func NewFilter(sampleRate, blockFrames int, s FilterSettings) (*Filter, error) {
	if sampleRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}
	if s.Mode > Notch {
		return nil, fmt.Errorf("%w: %v", ErrFilterMode, s.Mode)
	}
	scratch, err := newStereo(blockFrames)
	if err != nil {
		return nil, err
	}

	f := &Filter{
		mode:       s.Mode,
		q:          s.Q,
		sampleRate: float64(sampleRate),
		cutoff:     tween.NewTweenable(s.Cutoff),
		designed:   -1,
		left:       biquad.NewSection(biquad.Coefficients{B0: 1}),
		right:      biquad.NewSection(biquad.Coefficients{B0: 1}),
		scratch:    scratch,
	}
	if s.Cutoff.IsFixed() {
		f.redesign(f.cutoff.Value())
	}
	return f, nil
}

// Cutoff returns the cutoff in Hz the coefficients were last designed for.
func (f *Filter) Cutoff() float64 { return f.designed }

func (f *Filter) Mode() FilterMode { return f.mode }

func (f *Filter) redesign(hz float64) {
	hz = min(max(hz, 10), 0.49*f.sampleRate)
	if hz == f.designed {
		return
	}
	f.designed = hz

	var c biquad.Coefficients
	switch f.mode {
	case Highpass:
		c = design.Highpass(hz, f.q, f.sampleRate)
	case Bandpass:
		c = design.Bandpass(hz, f.q, f.sampleRate)
	case Notch:
		c = design.Notch(hz, f.q, f.sampleRate)
	default:
		c = design.Lowpass(hz, f.q, f.sampleRate)
	}
	f.left.Coefficients = c
	f.right.Coefficients = c
}

func (f *Filter) Process(block []audio.Frame, ctx mixer.EffectContext) {
	f.redesign(f.cutoff.Update(ctx.DeltaTime, ctx.Resolver))

	l, r := f.scratch.split(block)
	f.left.ProcessBlock(l)
	f.right.ProcessBlock(r)
	f.scratch.merge(block)
}
