// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"errors"
	"fmt"

	"github.com/ik5/audmix/audio"
)

var ErrInvalidClip = errors.New("invalid clip")

// Clip places part of a sound on an arrangement's timeline.
type Clip struct {
	Data *Data
	// Start and End pick the part of Data to use, in seconds. A zero End
	// runs to the end of Data.
	Start, End float64
	// At is where the clip begins in the arrangement, in seconds.
	At float64
}

type placed struct {
	data *Data
	at   int
}

// Arrangement is a Sound stitched together from clips of other sounds.
// Clips share frames with their sources and may overlap, in which case
// they are summed.
type Arrangement struct {
	sampleRate int
	clips      []placed
	frames     int
	settings   Settings
}

var _ Sound = (*Arrangement)(nil)

// NewArrangement lays out clips. Every clip must share sampleRate.
func NewArrangement(sampleRate int, clips []Clip, settings Settings) (*Arrangement, error) {
	if sampleRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}
	if len(clips) == 0 {
		return nil, ErrEmptySound
	}

	a := &Arrangement{sampleRate: sampleRate, clips: make([]placed, 0, len(clips)), settings: settings}
	for i, c := range clips {
		if c.Data == nil || c.At < 0 {
			return nil, fmt.Errorf("%w: clip %d", ErrInvalidClip, i)
		}
		if c.Data.SampleRate() != sampleRate {
			return nil, fmt.Errorf("%w: clip %d at %d Hz in a %d Hz arrangement",
				ErrInvalidClip, i, c.Data.SampleRate(), sampleRate)
		}

		end := c.End
		if end == 0 {
			end = c.Data.Duration()
		}
		part, err := c.Data.Slice(c.Start, end)
		if err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}

		p := placed{data: part, at: int(c.At * float64(sampleRate))}
		a.clips = append(a.clips, p)
		a.frames = max(a.frames, p.at+part.FrameCount())
	}

	if settings.Loop && (settings.LoopStart < 0 || settings.LoopStart >= a.Duration()) {
		return nil, fmt.Errorf("%w: %.3fs of %.3fs", ErrInvalidLoopPos, settings.LoopStart, a.Duration())
	}

	return a, nil
}

// NewLoopWithIntro plays intro once and then loops body forever.
func NewLoopWithIntro(intro, body *Data) (*Arrangement, error) {
	if intro == nil || body == nil {
		return nil, ErrInvalidClip
	}
	return NewArrangement(intro.SampleRate(), []Clip{
		{Data: intro},
		{Data: body, At: intro.Duration()},
	}, Settings{Loop: true, LoopStart: intro.Duration()})
}

func (a *Arrangement) SampleRate() int { return a.sampleRate }
func (a *Arrangement) FrameCount() int { return a.frames }

func (a *Arrangement) Duration() float64 {
	return float64(a.frames) / float64(a.sampleRate)
}

func (a *Arrangement) Frame(i int) audio.Frame {
	var f audio.Frame
	for _, c := range a.clips {
		f = f.Add(c.data.Frame(i - c.at))
	}
	return f
}

func (a *Arrangement) DefaultLoopStart() (float64, bool) {
	return a.settings.LoopStart, a.settings.Loop
}
