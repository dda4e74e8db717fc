// SPDX-License-Identifier: EPL-2.0

package instance

import (
	"testing"
	"time"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/tween"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantSound(t *testing.T, rate, frames int, v float32) *sound.Data {
	t.Helper()

	buf := make([]audio.Frame, frames)
	for i := range buf {
		buf[i] = audio.FromMono(v)
	}
	d, err := sound.NewData(rate, buf, sound.Settings{})
	require.NoError(t, err)
	return d
}

func rampSound(t *testing.T, rate, frames int) *sound.Data {
	t.Helper()

	buf := make([]audio.Frame, frames)
	for i := range buf {
		buf[i] = audio.FromMono(float32(i) / float32(frames))
	}
	d, err := sound.NewData(rate, buf, sound.Settings{})
	require.NoError(t, err)
	return d
}

func blockCtx(rate, frames int) Context {
	return Context{SampleRate: rate, DeltaTime: float64(frames) / float64(rate)}
}

func mean(block []audio.Frame) float64 {
	var sum float64
	for _, f := range block {
		sum += float64(f.Left)
	}
	return sum / float64(len(block))
}

var soundKey = arena.Key{Index: 3, Generation: 1}

func TestInstance_LoopWrap(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.StartPosition = 1.9
	s.Loop = LoopFrom(0.5)

	in := New(constantSound(t, 100, 200, 1), soundKey, s)
	in.Start()

	dst := make([]audio.Frame, 20)
	in.Process(dst, blockCtx(100, 20))

	assert.InDelta(t, 0.6, in.Position(), 1e-9)
	assert.Equal(t, Playing, in.State())
	assert.True(t, in.Looping())
}

func TestInstance_SoundLoopDefault(t *testing.T) {
	t.Parallel()

	base := constantSound(t, 100, 200, 1)
	looped, err := base.WithSettings(sound.Settings{Loop: true, LoopStart: 1})
	require.NoError(t, err)

	in := New(looped, soundKey, DefaultSettings())
	assert.True(t, in.Looping())

	s := DefaultSettings()
	s.Loop = Loop{Mode: NoLoop}
	in = New(looped, soundKey, s)
	assert.False(t, in.Looping())
}

func TestInstance_EndsWithoutLoop(t *testing.T) {
	t.Parallel()

	in := New(constantSound(t, 100, 10, 1), soundKey, DefaultSettings())
	in.Start()

	dst := make([]audio.Frame, 20)
	in.Process(dst, blockCtx(100, 20))

	assert.True(t, in.Finished())
	assert.InDelta(t, 1, dst[5].Left, 1e-6)
	for _, f := range dst[11:] {
		assert.Equal(t, audio.Frame{}, f, "nothing is written past the end")
	}
}

func TestInstance_FadeStop(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.StartPosition = 1
	in := New(constantSound(t, 1000, 10000, 1), soundKey, s)
	in.Start()

	ctx := blockCtx(1000, 100)
	dst := make([]audio.Frame, 100)
	in.Process(dst, ctx)
	prev := mean(dst)
	assert.InDelta(t, 1, prev, 1e-6)

	in.Stop(tween.LinearOver(400 * time.Millisecond))
	assert.Equal(t, Stopping, in.State())

	for range 4 {
		clear(dst)
		in.Process(dst, ctx)
		m := mean(dst)
		assert.Less(t, m, prev)
		prev = m
	}

	assert.InDelta(t, 0, dst[len(dst)-1].Left, 1e-6)
	assert.True(t, in.Finished())

	clear(dst)
	in.Process(dst, ctx)
	assert.Zero(t, mean(dst), "stopped instances are silent")
}

func TestInstance_PauseResume(t *testing.T) {
	t.Parallel()

	in := New(constantSound(t, 1000, 10000, 1), soundKey, DefaultSettings())
	in.Start()

	ctx := blockCtx(1000, 100)
	dst := make([]audio.Frame, 100)
	in.Process(dst, ctx)

	in.Pause(tween.LinearOver(200 * time.Millisecond))
	assert.Equal(t, Pausing, in.State())
	in.Process(dst, ctx)
	assert.Equal(t, Pausing, in.State())
	in.Process(dst, ctx)
	assert.Equal(t, Paused, in.State())

	pos := in.Position()
	clear(dst)
	in.Process(dst, ctx)
	assert.Equal(t, pos, in.Position(), "paused instances hold their position")
	assert.Zero(t, mean(dst))

	in.Resume(tween.LinearOver(100 * time.Millisecond))
	assert.Equal(t, Resuming, in.State())
	in.Process(dst, ctx)
	assert.Equal(t, Playing, in.State())
	assert.Greater(t, in.Position(), pos)

	in.Pause(tween.Tween{})
	assert.Equal(t, Paused, in.State(), "an instant pause takes effect at once")
	in.Resume(tween.Tween{})
	assert.Equal(t, Playing, in.State())
}

func TestInstance_StopWhileWaiting(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.StartTime = At(arena.Key{Index: 1, Generation: 1}, 4)
	in := New(constantSound(t, 100, 100, 1), soundKey, s)
	assert.Equal(t, WaitingToStart, in.State())
	assert.False(t, in.StartTime().Immediate())

	dst := make([]audio.Frame, 10)
	in.Process(dst, blockCtx(100, 10))
	assert.Zero(t, mean(dst))
	assert.Zero(t, in.Position())

	in.Stop(tween.LinearOver(time.Second))
	assert.True(t, in.Finished())
}

func TestInstance_PlaybackRateAndReverse(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.PlaybackRate = tween.Fixed(2)
	in := New(rampSound(t, 100, 100), soundKey, s)
	in.Start()
	in.Process(make([]audio.Frame, 10), blockCtx(100, 10))
	assert.InDelta(t, 0.2, in.Position(), 1e-9)

	s = DefaultSettings()
	s.Reverse = true
	s.StartPosition = 0.1
	in = New(rampSound(t, 100, 100), soundKey, s)
	assert.InDelta(t, 0.9, in.Position(), 1e-9, "reverse start positions count from the end")
	in.Start()

	dst := make([]audio.Frame, 10)
	in.Process(dst, blockCtx(100, 10))
	assert.InDelta(t, 0.8, in.Position(), 1e-9)
	assert.Greater(t, dst[1].Left, dst[8].Left, "reversed ramps fall")

	in = New(rampSound(t, 100, 100), soundKey, s)
	in.Start()
	in.SetPlaybackRate(tween.Fixed(1), tween.Tween{})
	for range 10 {
		in.Process(dst, blockCtx(100, 10))
	}
	assert.True(t, in.Finished(), "reversed playback ends at the start of the sound")
}

func TestInstance_Panning(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.Panning = tween.Fixed(0)
	s.StartPosition = 0.5
	in := New(constantSound(t, 100, 100, 1), soundKey, s)
	in.Start()

	dst := make([]audio.Frame, 10)
	in.Process(dst, blockCtx(100, 10))
	for _, f := range dst {
		assert.InDelta(t, 1, f.Left, 1e-6)
		assert.Zero(t, f.Right)
	}
}

func TestInstance_FadeIn(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.StartPosition = 1
	s.FadeIn = tween.LinearOver(200 * time.Millisecond)
	in := New(constantSound(t, 1000, 10000, 1), soundKey, s)
	in.Start()

	dst := make([]audio.Frame, 100)
	in.Process(dst, blockCtx(1000, 100))
	assert.InDelta(t, 0, dst[0].Left, 1e-6, "fade in starts from silence")
	assert.InDelta(t, 0.5, dst[99].Left, 1e-6)

	clear(dst)
	in.Process(dst, blockCtx(1000, 100))
	assert.InDelta(t, 1, dst[99].Left, 1e-6)
}

func TestInstance_Seek(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.Loop = LoopFrom(0.5)
	in := New(constantSound(t, 100, 200, 1), soundKey, s)

	in.SeekTo(1.2)
	assert.InDelta(t, 1.2, in.Position(), 1e-9)
	in.SeekBy(1.0)
	assert.InDelta(t, 0.7, in.Position(), 1e-9, "seeking past the end of a loop wraps")
	in.SeekTo(-3)
	assert.Zero(t, in.Position())
}

func TestInstance_VolumeTween(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.StartPosition = 1
	in := New(constantSound(t, 1000, 10000, 1), soundKey, s)
	in.Start()
	in.SetVolume(tween.Fixed(0.5), tween.LinearOver(100*time.Millisecond))

	dst := make([]audio.Frame, 100)
	in.Process(dst, blockCtx(1000, 100))
	assert.InDelta(t, 0.5, in.Volume(), 1e-9)
	assert.InDelta(t, 0.5, dst[99].Left, 1e-6)
}
