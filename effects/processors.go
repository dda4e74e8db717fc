// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"fmt"

	dsp "github.com/cwbudde/algo-dsp/dsp/effects"
	"github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
	"github.com/cwbudde/algo-dsp/dsp/effects/reverb"

	"github.com/ik5/audmix/audio"
)

type DelaySettings struct {
	// Time in seconds, up to 2.
	Time     float64
	Feedback float64
	// Mix is the processor's own wet amount.
	Mix float64
}

func DefaultDelaySettings() DelaySettings {
	return DelaySettings{Time: 0.25, Feedback: 0.35, Mix: 0.5}
}

// Delay is a feedback echo.
type Delay struct{ pair }

func NewDelay(sampleRate, blockFrames int, s DelaySettings) (*Delay, error) {
	p, err := newPair(blockFrames, func() (*dsp.Delay, error) {
		d, err := dsp.NewDelay(float64(sampleRate))
		if err != nil {
			return nil, err
		}
		if err := d.SetTime(s.Time); err != nil {
			return nil, err
		}
		if err := d.SetFeedback(s.Feedback); err != nil {
			return nil, err
		}
		if err := d.SetMix(s.Mix); err != nil {
			return nil, err
		}
		return d, nil
	})
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	return &Delay{p}, nil
}

type ReverbSettings struct {
	RoomSize float64
	Damp     float64
	Wet      float64
	Dry      float64
}

func DefaultReverbSettings() ReverbSettings {
	return ReverbSettings{RoomSize: 0.5, Damp: 0.5, Wet: 0.3, Dry: 1}
}

// Reverb is a Freeverb style room. Its tunings assume 44.1 kHz.
type Reverb struct{ pair }

func NewReverb(blockFrames int, s ReverbSettings) (*Reverb, error) {
	p, err := newPair(blockFrames, func() (*reverb.Reverb, error) {
		r := reverb.NewReverb()
		r.SetRoomSize(s.RoomSize)
		r.SetDamp(s.Damp)
		r.SetWet(s.Wet)
		r.SetDry(s.Dry)
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reverb: %w", err)
	}
	return &Reverb{p}, nil
}

type DistortionMode uint8

const (
	SoftClip DistortionMode = iota
	HardClip
	Tanh
	Saturate
)

var distortionModes = map[DistortionMode]dsp.DistortionMode{
	SoftClip: dsp.DistortionModeSoftClip,
	HardClip: dsp.DistortionModeHardClip,
	Tanh:     dsp.DistortionModeTanh,
	Saturate: dsp.DistortionModeSaturate,
}

type DistortionSettings struct {
	Mode DistortionMode
	// Drive in [0.01, 20].
	Drive float64
	Mix   float64
}

func DefaultDistortionSettings() DistortionSettings {
	return DistortionSettings{Mode: SoftClip, Drive: 2, Mix: 1}
}

type Distortion struct{ pair }

func NewDistortion(sampleRate, blockFrames int, s DistortionSettings) (*Distortion, error) {
	mode, ok := distortionModes[s.Mode]
	if !ok {
		return nil, fmt.Errorf("distortion: unknown mode %d", s.Mode)
	}

	p, err := newPair(blockFrames, func() (*dsp.Distortion, error) {
		return dsp.NewDistortion(float64(sampleRate),
			dsp.WithDistortionMode(mode),
			dsp.WithDistortionDrive(s.Drive),
			dsp.WithDistortionMix(s.Mix),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("distortion: %w", err)
	}
	return &Distortion{p}, nil
}

type CompressorSettings struct {
	ThresholdDB float64
	Ratio       float64
	KneeDB      float64
	AttackMs    float64
	ReleaseMs   float64
	// MakeupDB is ignored when AutoMakeup is set.
	MakeupDB   float64
	AutoMakeup bool
}

func DefaultCompressorSettings() CompressorSettings {
	return CompressorSettings{
		ThresholdDB: -20,
		Ratio:       4,
		KneeDB:      6,
		AttackMs:    10,
		ReleaseMs:   100,
		AutoMakeup:  true,
	}
}

// Compressor runs an unlinked compressor on each channel.
type Compressor struct{ pair }

func NewCompressor(sampleRate, blockFrames int, s CompressorSettings) (*Compressor, error) {
	if sampleRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}

	p, err := newPair(blockFrames, func() (*dynamics.Compressor, error) {
		c, err := dynamics.NewCompressor(float64(sampleRate))
		if err != nil {
			return nil, err
		}
		for _, set := range []func() error{
			func() error { return c.SetThreshold(s.ThresholdDB) },
			func() error { return c.SetRatio(s.Ratio) },
			func() error { return c.SetKnee(s.KneeDB) },
			func() error { return c.SetAttack(s.AttackMs) },
			func() error { return c.SetRelease(s.ReleaseMs) },
			func() error { return c.SetAutoMakeup(s.AutoMakeup) },
		} {
			if err := set(); err != nil {
				return nil, err
			}
		}
		if !s.AutoMakeup {
			if err := c.SetMakeupGain(s.MakeupDB); err != nil {
				return nil, err
			}
		}
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("compressor: %w", err)
	}
	return &Compressor{p}, nil
}
