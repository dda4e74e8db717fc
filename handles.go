// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/tween"
)

// Handles are small values that can be copied and used from any
// goroutine. Every method only queues a command; a handle whose resource
// is gone is harmless, its commands are ignored by the renderer.

type InstanceHandle struct {
	id InstanceID
	m  *Manager
}

func (h InstanceHandle) ID() InstanceID { return h.id }

func (h InstanceHandle) SetVolume(v tween.Value, tw tween.Tween) error {
	return h.m.send(command.SetInstanceVolume{ID: h.id.Key(), Value: v, Tween: tw})
}

func (h InstanceHandle) SetPlaybackRate(v tween.Value, tw tween.Tween) error {
	return h.m.send(command.SetInstancePlaybackRate{ID: h.id.Key(), Value: v, Tween: tw})
}

// SetPanning takes 0 for hard left through 1 for hard right.
func (h InstanceHandle) SetPanning(v tween.Value, tw tween.Tween) error {
	return h.m.send(command.SetInstancePanning{ID: h.id.Key(), Value: v, Tween: tw})
}

func (h InstanceHandle) Pause(tw tween.Tween) error {
	return h.m.send(command.PauseInstance{ID: h.id.Key(), Tween: tw})
}

func (h InstanceHandle) Resume(tw tween.Tween) error {
	return h.m.send(command.ResumeInstance{ID: h.id.Key(), Tween: tw})
}

func (h InstanceHandle) Stop(tw tween.Tween) error {
	return h.m.send(command.StopInstance{ID: h.id.Key(), Tween: tw})
}

func (h InstanceHandle) SeekTo(seconds float64) error {
	return h.m.send(command.SeekInstanceTo{ID: h.id.Key(), Seconds: seconds})
}

func (h InstanceHandle) SeekBy(seconds float64) error {
	return h.m.send(command.SeekInstanceBy{ID: h.id.Key(), Seconds: seconds})
}

type TrackHandle struct {
	id TrackID
	m  *Manager
}

func (h TrackHandle) ID() TrackID { return h.id }

// Key is what instance.Settings.Track and route targets take.
func (h TrackHandle) Key() arena.Key { return h.id.Key() }

func (h TrackHandle) SetVolume(v tween.Value, tw tween.Tween) error {
	return h.m.send(command.SetTrackVolume{ID: h.id.Key(), Value: v, Tween: tw})
}

// SetRoute sends this track into to at volume v, or changes the volume of
// an existing route. Routes that would close a loop are refused with
// mixer.ErrRouteCycle.
func (h TrackHandle) SetRoute(to TrackHandle, v tween.Value, tw tween.Tween) error {
	if h.m.isClosed() {
		return ErrClosed
	}

	err := h.m.topology.SetRoute(h.Key(), to.Key(), func() error {
		return h.m.commands.Send(command.SetRoute{From: h.Key(), To: to.Key(), Volume: v, Tween: tw})
	})
	if err != nil {
		return fmt.Errorf("route %s to %s: %w", h.id, to.id, err)
	}
	return nil
}

func (h TrackHandle) RemoveRoute(to TrackHandle) error {
	if h.m.isClosed() {
		return ErrClosed
	}

	return h.m.topology.RemoveRoute(h.Key(), to.Key(), func() error {
		return h.m.commands.Send(command.RemoveRoute{From: h.Key(), To: to.Key()})
	})
}

// AddEffect appends e to the end of the track's chain with dry/wet mix.
func (h TrackHandle) AddEffect(e mixer.Effect, mix tween.Value) (EffectHandle, error) {
	if h.m.isClosed() {
		return EffectHandle{}, ErrClosed
	}

	key, err := h.m.ctrl.Effects.Reserve()
	if err != nil {
		return EffectHandle{}, err
	}
	slot := mixer.NewEffectSlot(e, h.Key(), h.m.limits.BlockFrames, mix)

	err = h.m.topology.AddEffect(h.Key(), key, func() error {
		return h.m.commands.Send(command.AddEffect{ID: key, Slot: slot})
	})
	if err != nil {
		h.m.ctrl.Effects.Release(key)
		return EffectHandle{}, fmt.Errorf("add effect to %s: %w", h.id, err)
	}

	return EffectHandle{id: EffectID(key), track: h.id, m: h.m}, nil
}

// Remove deletes the track with its effects. Routes into it are dropped
// and instances still playing into it are stopped.
func (h TrackHandle) Remove() error {
	if h.m.isClosed() {
		return ErrClosed
	}

	return h.m.topology.RemoveTrack(h.Key(), func() error {
		return h.m.commands.Send(command.RemoveTrack{ID: h.Key()})
	})
}

type EffectHandle struct {
	id    EffectID
	track TrackID
	m     *Manager
}

func (h EffectHandle) ID() EffectID { return h.id }

// SetEnabled bypasses the effect when false.
func (h EffectHandle) SetEnabled(enabled bool) error {
	return h.m.send(command.SetEffectEnabled{ID: h.id.Key(), Enabled: enabled})
}

func (h EffectHandle) SetMix(v tween.Value, tw tween.Tween) error {
	return h.m.send(command.SetEffectMix{ID: h.id.Key(), Value: v, Tween: tw})
}

func (h EffectHandle) Remove() error {
	if h.m.isClosed() {
		return ErrClosed
	}

	return h.m.topology.RemoveEffect(h.track.Key(), h.id.Key(), func() error {
		return h.m.commands.Send(command.RemoveEffect{ID: h.id.Key()})
	})
}

type ClockHandle struct {
	id ClockID
	m  *Manager
}

func (h ClockHandle) ID() ClockID    { return h.id }
func (h ClockHandle) Key() arena.Key { return h.id.Key() }

func (h ClockHandle) Start() error { return h.m.send(command.StartClock{ID: h.id.Key()}) }
func (h ClockHandle) Pause() error { return h.m.send(command.PauseClock{ID: h.id.Key()}) }

// Stop halts the clock and rewinds it to tick zero.
func (h ClockHandle) Stop() error { return h.m.send(command.StopClock{ID: h.id.Key()}) }

// SetSpeed changes the rate in ticks per second.
func (h ClockHandle) SetSpeed(v tween.Value, tw tween.Tween) error {
	return h.m.send(command.SetClockSpeed{ID: h.id.Key(), Value: v, Tween: tw})
}

func (h ClockHandle) Remove() error { return h.m.send(command.RemoveClock{ID: h.id.Key()}) }

type ParameterHandle struct {
	id ParameterID
	m  *Manager
}

func (h ParameterHandle) ID() ParameterID { return h.id }

// Value returns a tween.Value that follows this parameter.
func (h ParameterHandle) Value() tween.Value { return tween.FromParameter(h.id.Key()) }

// Mapped is Value passed through m.
func (h ParameterHandle) Mapped(m tween.Mapping) tween.Value {
	return tween.FromParameterMapped(h.id.Key(), m)
}

func (h ParameterHandle) Set(v float64, tw tween.Tween) error {
	return h.m.send(command.SetParameter{ID: h.id.Key(), Value: v, Tween: tw})
}

func (h ParameterHandle) Remove() error {
	return h.m.send(command.RemoveParameter{ID: h.id.Key()})
}

type SequenceHandle struct {
	id SequenceID
	m  *Manager
}

func (h SequenceHandle) ID() SequenceID { return h.id }

func (h SequenceHandle) Pause() error  { return h.m.send(command.PauseSequence{ID: h.id.Key()}) }
func (h SequenceHandle) Resume() error { return h.m.send(command.ResumeSequence{ID: h.id.Key()}) }

// Mute keeps the sequence running but stops it starting new sounds.
func (h SequenceHandle) Mute() error   { return h.m.send(command.MuteSequence{ID: h.id.Key()}) }
func (h SequenceHandle) Unmute() error { return h.m.send(command.UnmuteSequence{ID: h.id.Key()}) }

// Stop ends the sequence. Instances it started keep playing; use
// StopInstances for those.
func (h SequenceHandle) Stop() error { return h.m.send(command.StopSequence{ID: h.id.Key()}) }

func (h SequenceHandle) PauseInstances(tw tween.Tween) error {
	return h.m.send(command.PauseSequenceInstances{Sequence: h.id.Key(), Tween: tw})
}

func (h SequenceHandle) ResumeInstances(tw tween.Tween) error {
	return h.m.send(command.ResumeSequenceInstances{Sequence: h.id.Key(), Tween: tw})
}

func (h SequenceHandle) StopInstances(tw tween.Tween) error {
	return h.m.send(command.StopSequenceInstances{Sequence: h.id.Key(), Tween: tw})
}
