// SPDX-License-Identifier: EPL-2.0

// Package instance plays sounds. An Instance is one occurrence of a sound:
// its position, rate, volume and panning, and the fades that move it
// between states without clicks.
package instance

import (
	"fmt"
	"math"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/tween"
	"github.com/ik5/audmix/utils"
)

type State uint8

const (
	WaitingToStart State = iota
	Playing
	Pausing
	Paused
	Resuming
	Stopping
	Stopped
)

func (s State) String() string {
	switch s {
	case WaitingToStart:
		return "waiting"
	case Playing:
		return "playing"
	case Pausing:
		return "pausing"
	case Paused:
		return "paused"
	case Resuming:
		return "resuming"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Context is what an instance needs from the renderer for one block.
type Context struct {
	// SampleRate of the output.
	SampleRate int
	DeltaTime  float64
	Resolver   tween.Resolver
}

type Instance struct {
	sound    sound.Sound
	soundKey arena.Key
	owner    arena.Key
	track    arena.Key
	start    StartTime
	state    State

	// position and loopStart count source frames, so playback at the
	// sound's own rate lands on whole frames exactly.
	position  float64
	reverse   bool
	looping   bool
	loopStart float64

	volume  tween.Tweenable
	rate    tween.Tweenable
	panning tween.Tweenable
	fade    tween.Tweenable
	fadeIn  tween.Tween

	gain, pan float32
	primed    bool
}

// New prepares an instance of snd. It waits for its start time; Start
// begins playback.
func New(snd sound.Sound, soundKey arena.Key, s Settings) Instance {
	in := Instance{
		sound:    snd,
		soundKey: soundKey,
		track:    s.Track,
		start:    s.StartTime,
		state:    WaitingToStart,
		reverse:  s.Reverse,
		volume:   tween.NewTweenable(s.Volume),
		rate:     tween.NewTweenable(s.PlaybackRate),
		panning:  tween.NewTweenable(s.Panning),
		fade:     tween.NewTweenable(tween.Fixed(1)),
		fadeIn:   s.FadeIn,
	}

	switch s.Loop.Mode {
	case LoopDefault:
		in.loopStart, in.looping = snd.DefaultLoopStart()
	case LoopCustom:
		in.loopStart, in.looping = s.Loop.Start, true
	}
	if in.looping {
		in.loopStart = min(max(in.loopStart, 0), snd.Duration()) * float64(snd.SampleRate())
	}

	in.position = s.StartPosition * float64(snd.SampleRate())
	if s.Reverse {
		in.position = in.frames() - in.position
	}

	return in
}

// WithOwner tags the instance as spawned by a sequence.
func (in *Instance) WithOwner(seq arena.Key) { in.owner = seq }

func (in *Instance) Sound() arena.Key      { return in.soundKey }
func (in *Instance) Owner() arena.Key      { return in.owner }
func (in *Instance) Track() arena.Key      { return in.track }
func (in *Instance) StartTime() StartTime  { return in.start }
func (in *Instance) State() State          { return in.state }
func (in *Instance) Position() float64     { return in.position / float64(in.sound.SampleRate()) }
func (in *Instance) Volume() float64       { return in.volume.Value() }
func (in *Instance) PlaybackRate() float64 { return in.rate.Value() }
func (in *Instance) Panning() float64      { return in.panning.Value() }
func (in *Instance) Looping() bool         { return in.looping }

// Finished reports whether the instance is done and can be removed.
func (in *Instance) Finished() bool { return in.state == Stopped }

// Start leaves WaitingToStart, fading in if the settings asked for it.
func (in *Instance) Start() {
	if in.state != WaitingToStart {
		return
	}
	in.state = Playing
	if in.fadeIn.Seconds() > 0 {
		in.fade.Jump(0)
		in.fade.Set(tween.Fixed(1), in.fadeIn)
		in.gain, in.pan = 0, float32(in.panning.Value())
		in.primed = true
	}
}

func (in *Instance) SetVolume(v tween.Value, tw tween.Tween)       { in.volume.Set(v, tw) }
func (in *Instance) SetPlaybackRate(v tween.Value, tw tween.Tween) { in.rate.Set(v, tw) }
func (in *Instance) SetPanning(v tween.Value, tw tween.Tween)      { in.panning.Set(v, tw) }

// Pause fades out over tw and then holds the position.
func (in *Instance) Pause(tw tween.Tween) {
	switch in.state {
	case Playing, Resuming:
	case WaitingToStart:
		in.state = Paused
		return
	default:
		return
	}

	if tw.Seconds() <= 0 {
		in.state = Paused
		in.fade.Jump(0)
		in.gain = 0
		return
	}
	in.state = Pausing
	in.fade.Set(tween.Fixed(0), tw)
}

// Resume fades back in over tw. A paused instance that never started
// resumes as started.
func (in *Instance) Resume(tw tween.Tween) {
	if in.state != Paused && in.state != Pausing {
		return
	}

	in.fade.Set(tween.Fixed(1), tw)
	if tw.Seconds() <= 0 {
		in.state = Playing
		return
	}
	in.state = Resuming
}

// Stop fades out over tw and then finishes the instance.
func (in *Instance) Stop(tw tween.Tween) {
	switch in.state {
	case Stopped:
		return
	case WaitingToStart, Paused:
		in.state = Stopped
		return
	}

	if tw.Seconds() <= 0 {
		in.state = Stopped
		return
	}
	in.state = Stopping
	in.fade.Set(tween.Fixed(0), tw)
}

// SeekTo moves the playback position to seconds. A looping instance wraps
// positions past the end into the loop.
func (in *Instance) SeekTo(seconds float64) {
	in.position = max(seconds, 0) * float64(in.sound.SampleRate())
	if in.looping && in.position >= in.frames() {
		in.position = in.wrap(in.position)
	}
}

func (in *Instance) SeekBy(seconds float64) { in.SeekTo(in.Position() + seconds) }

func (in *Instance) frames() float64 { return float64(in.sound.FrameCount()) }

// wrap folds pos into [loopStart, duration).
func (in *Instance) wrap(pos float64) float64 {
	span := in.frames() - in.loopStart
	if span <= 0 {
		return in.loopStart
	}
	m := math.Mod(pos-in.loopStart, span)
	if m < 0 {
		m += span
	}
	return in.loopStart + m
}

// frame returns source frame i, wrapping indices past the end of a loop so
// interpolation across the loop point stays continuous.
func (in *Instance) frame(i int) audio.Frame {
	n := in.sound.FrameCount()
	if in.looping && i >= n {
		first := int(in.loopStart)
		if span := n - first; span > 0 {
			i = first + (i-first)%span
		}
	}
	return in.sound.Frame(i)
}

func (in *Instance) sample() audio.Frame {
	i := int(math.Floor(in.position))
	t := float32(in.position - float64(i))
	if t == 0 {
		return in.frame(i)
	}

	f0, f1, f2, f3 := in.frame(i-1), in.frame(i), in.frame(i+1), in.frame(i+2)
	return audio.Frame{
		Left:  utils.CubicInterpolate(f0.Left, f1.Left, f2.Left, f3.Left, t),
		Right: utils.CubicInterpolate(f0.Right, f1.Right, f2.Right, f3.Right, t),
	}
}

// playable reports whether position is still inside the sound for the
// direction of travel.
func (in *Instance) playable(step float64) bool {
	if in.looping {
		return true
	}
	d := in.frames()
	if step < 0 {
		return in.position > 0 && in.position <= d
	}
	return in.position >= 0 && in.position < d
}

// advance moves one output frame along and reports false once a
// non-looping instance runs off either end.
func (in *Instance) advance(step float64) bool {
	in.position += step
	if in.looping && (in.position >= in.frames() || in.position < in.loopStart && step < 0) {
		in.position = in.wrap(in.position)
	}
	return in.playable(step)
}

// Process renders one block and adds it into dst.
func (in *Instance) Process(dst []audio.Frame, ctx Context) {
	switch in.state {
	case WaitingToStart, Paused, Stopped:
		return
	}

	volume := in.volume.Update(ctx.DeltaTime, ctx.Resolver)
	rate := in.rate.Update(ctx.DeltaTime, ctx.Resolver)
	pan := float32(in.panning.Update(ctx.DeltaTime, ctx.Resolver))
	fade := in.fade.Update(ctx.DeltaTime, ctx.Resolver)

	gain := float32(volume * fade)
	fromGain, fromPan := in.gain, in.pan
	if !in.primed {
		fromGain, fromPan = gain, pan
		in.primed = true
	}
	in.gain, in.pan = gain, pan

	step := rate * float64(in.sound.SampleRate()) / float64(ctx.SampleRate)
	if in.reverse {
		step = -step
	}

	n := len(dst)
	var k float32
	if n > 1 {
		k = 1 / float32(n-1)
	}

	ended := !in.playable(step)
	for i := 0; i < n && !ended; i++ {
		x := float32(i) * k
		g := fromGain + (gain-fromGain)*x
		p := fromPan + (pan-fromPan)*x

		dst[i] = dst[i].Add(in.sample().Pan(p).Scale(g))
		ended = !in.advance(step)
	}

	switch {
	case ended:
		in.state = Stopped
	case in.fade.Transitioning():
	case in.state == Pausing:
		in.state = Paused
	case in.state == Stopping:
		in.state = Stopped
	case in.state == Resuming:
		in.state = Playing
	}
}
