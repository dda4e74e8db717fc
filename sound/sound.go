// SPDX-License-Identifier: EPL-2.0

// Package sound holds decoded audio ready for playback. Sounds are
// immutable once built, so the render goroutine reads them without locks
// and any number of instances can share one.
package sound

import (
	"errors"
	"fmt"

	"github.com/ik5/audmix/audio"
)

var (
	ErrEmptySound     = errors.New("sound has no frames")
	ErrUnknownFormat  = errors.New("no decoder registered for format")
	ErrInvalidLoopPos = errors.New("loop start outside the sound")
)

// Sound is what an instance plays from.
type Sound interface {
	SampleRate() int
	FrameCount() int
	// Frame returns frame i, or silence when i is outside the sound.
	Frame(i int) audio.Frame
	// Duration in seconds.
	Duration() float64
	// DefaultLoopStart is the loop point used by instances that do not set
	// their own. ok is false for sounds that do not loop by default.
	DefaultLoopStart() (start float64, ok bool)
}

// Settings are defaults baked into a sound.
type Settings struct {
	// Loop makes instances loop from LoopStart seconds unless they say
	// otherwise.
	Loop      bool
	LoopStart float64
}

// Data is an in-memory stereo Sound.
type Data struct {
	sampleRate int
	frames     []audio.Frame
	settings   Settings
}

var _ Sound = (*Data)(nil)

// NewData wraps frames. The slice is retained, not copied.
func NewData(sampleRate int, frames []audio.Frame, settings Settings) (*Data, error) {
	if sampleRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}
	if len(frames) == 0 {
		return nil, ErrEmptySound
	}

	d := &Data{sampleRate: sampleRate, frames: frames, settings: settings}
	if settings.Loop && (settings.LoopStart < 0 || settings.LoopStart >= d.Duration()) {
		return nil, fmt.Errorf("%w: %.3fs of %.3fs", ErrInvalidLoopPos, settings.LoopStart, d.Duration())
	}

	return d, nil
}

func (d *Data) SampleRate() int { return d.sampleRate }
func (d *Data) FrameCount() int { return len(d.frames) }

func (d *Data) Duration() float64 {
	return float64(len(d.frames)) / float64(d.sampleRate)
}

func (d *Data) Frame(i int) audio.Frame {
	if i < 0 || i >= len(d.frames) {
		return audio.Frame{}
	}
	return d.frames[i]
}

func (d *Data) DefaultLoopStart() (float64, bool) {
	return d.settings.LoopStart, d.settings.Loop
}

// WithSettings returns a copy sharing the same frames.
func (d *Data) WithSettings(s Settings) (*Data, error) {
	return NewData(d.sampleRate, d.frames, s)
}

// Slice returns the part of the sound between start and end seconds,
// sharing frames with d.
func (d *Data) Slice(start, end float64) (*Data, error) {
	from := max(int(start*float64(d.sampleRate)), 0)
	to := min(int(end*float64(d.sampleRate)), len(d.frames))
	if from >= to {
		return nil, ErrEmptySound
	}
	return NewData(d.sampleRate, d.frames[from:to], Settings{})
}
