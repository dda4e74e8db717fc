// SPDX-License-Identifier: EPL-2.0

// Package command defines the requests the control side sends to the
// render goroutine and the queue that carries them.
//
// Command is a closed set: only the types in this package implement it,
// and the renderer switches over them exhaustively. Everything a command
// needs on arrival, such as a track's buffers or a sequence's action list,
// is allocated by the sender so that applying it never allocates.
package command

import (
	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/clock"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/sequence"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/tween"
)

// Kind groups commands by the resource they target.
type Kind uint8

const (
	SoundKind Kind = iota
	InstanceKind
	MixerKind
	ClockKind
	SequenceKind
	ParameterKind
	RendererKind
)

// Command is any request for the render goroutine.
type Command interface {
	Kind() Kind
	sealed()
}

type base struct{}

func (base) sealed() {}

type soundCmd struct{ base }

func (soundCmd) Kind() Kind { return SoundKind }

type instanceCmd struct{ base }

func (instanceCmd) Kind() Kind { return InstanceKind }

type mixerCmd struct{ base }

func (mixerCmd) Kind() Kind { return MixerKind }

type clockCmd struct{ base }

func (clockCmd) Kind() Kind { return ClockKind }

type sequenceCmd struct{ base }

func (sequenceCmd) Kind() Kind { return SequenceKind }

type parameterCmd struct{ base }

func (parameterCmd) Kind() Kind { return ParameterKind }

type rendererCmd struct{ base }

func (rendererCmd) Kind() Kind { return RendererKind }

// Sounds.

type AddSound struct {
	soundCmd
	ID    arena.Key
	Sound sound.Sound
}

type RemoveSound struct {
	soundCmd
	ID arena.Key
}

// Instances.

// PlayInstance starts Sound under ID, a key reserved from the instance
// controller. If the sound is gone the key is released and the instance
// reported finished.
type PlayInstance struct {
	instanceCmd
	ID       arena.Key
	Sound    arena.Key
	Settings instance.Settings
}

type SetInstanceVolume struct {
	instanceCmd
	ID    arena.Key
	Value tween.Value
	Tween tween.Tween
}

type SetInstancePlaybackRate struct {
	instanceCmd
	ID    arena.Key
	Value tween.Value
	Tween tween.Tween
}

type SetInstancePanning struct {
	instanceCmd
	ID    arena.Key
	Value tween.Value
	Tween tween.Tween
}

type PauseInstance struct {
	instanceCmd
	ID    arena.Key
	Tween tween.Tween
}

type ResumeInstance struct {
	instanceCmd
	ID    arena.Key
	Tween tween.Tween
}

type StopInstance struct {
	instanceCmd
	ID    arena.Key
	Tween tween.Tween
}

type SeekInstanceTo struct {
	instanceCmd
	ID      arena.Key
	Seconds float64
}

type SeekInstanceBy struct {
	instanceCmd
	ID      arena.Key
	Seconds float64
}

// PauseInstancesOf pauses every instance of a sound.
type PauseInstancesOf struct {
	instanceCmd
	Sound arena.Key
	Tween tween.Tween
}

type ResumeInstancesOf struct {
	instanceCmd
	Sound arena.Key
	Tween tween.Tween
}

type StopInstancesOf struct {
	instanceCmd
	Sound arena.Key
	Tween tween.Tween
}

// PauseSequenceInstances and its siblings target every instance started
// by a sequence.
type PauseSequenceInstances struct {
	instanceCmd
	Sequence arena.Key
	Tween    tween.Tween
}

type ResumeSequenceInstances struct {
	instanceCmd
	Sequence arena.Key
	Tween    tween.Tween
}

type StopSequenceInstances struct {
	instanceCmd
	Sequence arena.Key
	Tween    tween.Tween
}

// Mixer.

type AddTrack struct {
	mixerCmd
	ID    arena.Key
	Track mixer.Track
}

type RemoveTrack struct {
	mixerCmd
	ID arena.Key
}

type SetTrackVolume struct {
	mixerCmd
	ID    arena.Key
	Value tween.Value
	Tween tween.Tween
}

// SetRoute adds a send or retargets the volume of an existing one.
type SetRoute struct {
	mixerCmd
	From, To arena.Key
	Volume   tween.Value
	Tween    tween.Tween
}

type RemoveRoute struct {
	mixerCmd
	From, To arena.Key
}

type AddEffect struct {
	mixerCmd
	ID   arena.Key
	Slot mixer.EffectSlot
}

type RemoveEffect struct {
	mixerCmd
	ID arena.Key
}

type SetEffectEnabled struct {
	mixerCmd
	ID      arena.Key
	Enabled bool
}

type SetEffectMix struct {
	mixerCmd
	ID    arena.Key
	Value tween.Value
	Tween tween.Tween
}

// Clocks.

type AddClock struct {
	clockCmd
	ID    arena.Key
	Clock clock.Clock
}

type RemoveClock struct {
	clockCmd
	ID arena.Key
}

type StartClock struct {
	clockCmd
	ID arena.Key
}

type PauseClock struct {
	clockCmd
	ID arena.Key
}

type StopClock struct {
	clockCmd
	ID arena.Key
}

type SetClockSpeed struct {
	clockCmd
	ID    arena.Key
	Value tween.Value
	Tween tween.Tween
}

// Sequences.

type StartSequence struct {
	sequenceCmd
	ID     arena.Key
	Runner sequence.Runner
}

type PauseSequence struct {
	sequenceCmd
	ID arena.Key
}

type ResumeSequence struct {
	sequenceCmd
	ID arena.Key
}

type MuteSequence struct {
	sequenceCmd
	ID arena.Key
}

type UnmuteSequence struct {
	sequenceCmd
	ID arena.Key
}

type StopSequence struct {
	sequenceCmd
	ID arena.Key
}

// Parameters.

type AddParameter struct {
	parameterCmd
	ID    arena.Key
	Value float64
}

type RemoveParameter struct {
	parameterCmd
	ID arena.Key
}

type SetParameter struct {
	parameterCmd
	ID    arena.Key
	Value float64
	Tween tween.Tween
}

// Renderer.

// PauseAll fades the whole output out and then stops advancing anything.
type PauseAll struct {
	rendererCmd
	Tween tween.Tween
}

type ResumeAll struct {
	rendererCmd
	Tween tween.Tween
}

// EmitCustomEvent queues a Custom event carrying Payload, in order with
// the commands around it.
type EmitCustomEvent struct {
	rendererCmd
	Payload any
}
