// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
)

func ramp(t *testing.T, rate, n int) *Data {
	t.Helper()

	frames := make([]audio.Frame, n)
	for i := range frames {
		frames[i] = audio.FromMono(float32(i + 1))
	}
	d, err := NewData(rate, frames, Settings{})
	require.NoError(t, err)
	return d
}

func TestNewArrangement(t *testing.T) {
	t.Parallel()

	src := ramp(t, 10, 10)

	// frames 2..4 at 0, frames 0..9 from 0.2s, overlapping for one frame
	a, err := NewArrangement(10, []Clip{
		{Data: src, Start: 0.2, End: 0.5},
		{Data: src, At: 0.2},
	}, Settings{})
	require.NoError(t, err)

	assert.Equal(t, 12, a.FrameCount())
	assert.InDelta(t, 1.2, a.Duration(), 1e-9)
	assert.Equal(t, audio.FromMono(3), a.Frame(0))
	assert.Equal(t, audio.FromMono(5+1), a.Frame(2))
	assert.Equal(t, audio.FromMono(10), a.Frame(11))
	assert.Equal(t, audio.Frame{}, a.Frame(12))
	assert.Equal(t, audio.Frame{}, a.Frame(-1))

	_, loops := a.DefaultLoopStart()
	assert.False(t, loops)
}

func TestNewArrangement_Invalid(t *testing.T) {
	t.Parallel()

	src := ramp(t, 10, 10)

	tests := []struct {
		name  string
		rate  int
		clips []Clip
		s     Settings
		want  error
	}{
		{"no clips", 10, nil, Settings{}, ErrEmptySound},
		{"bad rate", 0, []Clip{{Data: src}}, Settings{}, audio.ErrInvalidSampleRate},
		{"nil data", 10, []Clip{{}}, Settings{}, ErrInvalidClip},
		{"negative at", 10, []Clip{{Data: src, At: -1}}, Settings{}, ErrInvalidClip},
		{"rate mismatch", 20, []Clip{{Data: src}}, Settings{}, ErrInvalidClip},
		{"empty range", 10, []Clip{{Data: src, Start: 0.5, End: 0.5}}, Settings{}, ErrEmptySound},
		{"loop past end", 10, []Clip{{Data: src}}, Settings{Loop: true, LoopStart: 1}, ErrInvalidLoopPos},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewArrangement(tt.rate, tt.clips, tt.s)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewLoopWithIntro(t *testing.T) {
	t.Parallel()

	intro := ramp(t, 10, 5)
	body := ramp(t, 10, 3)

	a, err := NewLoopWithIntro(intro, body)
	require.NoError(t, err)

	assert.Equal(t, 8, a.FrameCount())
	assert.Equal(t, audio.FromMono(5), a.Frame(4))
	assert.Equal(t, audio.FromMono(1), a.Frame(5))

	start, ok := a.DefaultLoopStart()
	assert.True(t, ok)
	assert.InDelta(t, 0.5, start, 1e-9)

	_, err = NewLoopWithIntro(nil, body)
	assert.ErrorIs(t, err, ErrInvalidClip)
}
