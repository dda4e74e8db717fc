// SPDX-License-Identifier: EPL-2.0

package renderer

import (
	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/param"
	"github.com/ik5/audmix/sequence"
	"github.com/ik5/audmix/tween"
)

// applyCommand applies one drained command. Commands aimed at resources
// that no longer exist are ignored.
func (r *Renderer) applyCommand(c command.Command) {
	switch c.Kind() {
	case command.SoundKind:
		r.applySound(c)
	case command.InstanceKind:
		r.applyInstance(c)
	case command.MixerKind:
		r.applyMixer(c)
	case command.ClockKind:
		r.applyClock(c)
	case command.SequenceKind:
		r.applySequence(c)
	case command.ParameterKind:
		r.applyParameter(c)
	case command.RendererKind:
		r.applyRenderer(c)
	}
}

func (r *Renderer) applySound(c command.Command) {
	switch c := c.(type) {
	case command.AddSound:
		if err := r.sounds.Insert(c.ID, c.Sound); err != nil {
			r.rejected(r.ctrl.Sounds, c.ID, err)
		}
	case command.RemoveSound:
		// instances already playing hold their own reference
		r.sounds.Remove(c.ID)
	}
}

func (r *Renderer) applyInstance(c command.Command) {
	switch c := c.(type) {
	case command.PlayInstance:
		r.play(c.ID, c.Sound, c.Settings, Key{})
	case command.SetInstanceVolume:
		r.withInstance(c.ID, func(in *instance.Instance) { in.SetVolume(c.Value, c.Tween) })
	case command.SetInstancePlaybackRate:
		r.withInstance(c.ID, func(in *instance.Instance) { in.SetPlaybackRate(c.Value, c.Tween) })
	case command.SetInstancePanning:
		r.withInstance(c.ID, func(in *instance.Instance) { in.SetPanning(c.Value, c.Tween) })
	case command.PauseInstance:
		r.withInstance(c.ID, func(in *instance.Instance) { in.Pause(c.Tween) })
	case command.ResumeInstance:
		r.withInstance(c.ID, func(in *instance.Instance) { in.Resume(c.Tween) })
	case command.StopInstance:
		r.withInstance(c.ID, func(in *instance.Instance) { in.Stop(c.Tween) })
	case command.SeekInstanceTo:
		r.withInstance(c.ID, func(in *instance.Instance) { in.SeekTo(c.Seconds) })
	case command.SeekInstanceBy:
		r.withInstance(c.ID, func(in *instance.Instance) { in.SeekBy(c.Seconds) })
	case command.PauseInstancesOf:
		r.eachOf(c.Sound, func(in *instance.Instance) { in.Pause(c.Tween) })
	case command.ResumeInstancesOf:
		r.eachOf(c.Sound, func(in *instance.Instance) { in.Resume(c.Tween) })
	case command.StopInstancesOf:
		r.eachOf(c.Sound, func(in *instance.Instance) { in.Stop(c.Tween) })
	case command.PauseSequenceInstances:
		r.eachOwned(c.Sequence, func(in *instance.Instance) { in.Pause(c.Tween) })
	case command.ResumeSequenceInstances:
		r.eachOwned(c.Sequence, func(in *instance.Instance) { in.Resume(c.Tween) })
	case command.StopSequenceInstances:
		r.eachOwned(c.Sequence, func(in *instance.Instance) { in.Stop(c.Tween) })
	}
}

func (r *Renderer) withInstance(id Key, fn func(*instance.Instance)) {
	if in, ok := r.instances.Get(id); ok {
		fn(in)
	}
}

func (r *Renderer) applyMixer(c command.Command) {
	var err error

	switch c := c.(type) {
	case command.AddTrack:
		if err := r.graph.AddTrack(c.ID, c.Track); err != nil {
			r.rejected(r.ctrl.Tracks, c.ID, err)
		}
		return
	case command.RemoveTrack:
		if err = r.graph.RemoveTrack(c.ID); err == nil {
			r.instances.Each(func(_ Key, in *instance.Instance) bool {
				if in.Track() == c.ID {
					in.Stop(tween.Tween{})
				}
				return true
			})
		}
	case command.SetTrackVolume:
		err = r.graph.SetTrackVolume(c.ID, c.Value, c.Tween)
	case command.SetRoute:
		err = r.graph.SetRoute(c.From, c.To, c.Volume, c.Tween)
	case command.RemoveRoute:
		err = r.graph.RemoveRoute(c.From, c.To)
	case command.AddEffect:
		if err := r.graph.AddEffect(c.ID, c.Slot); err != nil {
			r.rejected(r.ctrl.Effects, c.ID, err)
		}
		return
	case command.RemoveEffect:
		r.graph.RemoveEffect(c.ID)
	case command.SetEffectEnabled:
		r.graph.SetEffectEnabled(c.ID, c.Enabled)
	case command.SetEffectMix:
		r.graph.SetEffectMix(c.ID, c.Value, c.Tween)
	}

	// The control side validates mixer changes before sending them, so
	// anything but a vanished target is an inconsistency worth reporting.
	if err != nil && !stale(err) {
		r.mixerFault(err, commandTarget(c))
	}
}

func commandTarget(c command.Command) Key {
	switch c := c.(type) {
	case command.RemoveTrack:
		return c.ID
	case command.SetTrackVolume:
		return c.ID
	case command.SetRoute:
		return c.From
	case command.RemoveRoute:
		return c.From
	}
	return Key{}
}

func (r *Renderer) applyClock(c command.Command) {
	switch c := c.(type) {
	case command.AddClock:
		if err := r.clocks.Add(c.ID, c.Clock); err != nil {
			r.rejected(r.ctrl.Clocks, c.ID, err)
		}
	case command.RemoveClock:
		r.clocks.Remove(c.ID)
	case command.StartClock:
		if clk, ok := r.clocks.Get(c.ID); ok {
			clk.Start()
		}
	case command.PauseClock:
		if clk, ok := r.clocks.Get(c.ID); ok {
			clk.Pause()
		}
	case command.StopClock:
		if clk, ok := r.clocks.Get(c.ID); ok {
			clk.Stop()
		}
	case command.SetClockSpeed:
		if clk, ok := r.clocks.Get(c.ID); ok {
			clk.SetSpeed(c.Value, c.Tween)
		}
	}
}

// clockNow is the tick a sequence on clk is measured against. A clock
// that has not reported tick zero yet counts as zero.
func (r *Renderer) clockNow(clk Key) uint64 {
	if c, ok := r.clocks.Get(clk); ok && c.Reached(0) {
		return c.Ticks()
	}
	return 0
}

func (r *Renderer) applySequence(c command.Command) {
	switch c := c.(type) {
	case command.StartSequence:
		run := c.Runner
		run.Begin(r.clockNow(run.Clock()))
		if err := r.sequences.Insert(c.ID, run); err != nil {
			r.rejected(r.ctrl.Sequences, c.ID, err)
		}
	case command.PauseSequence:
		r.withSequence(c.ID, func(run *sequence.Runner) { run.Pause(r.clockNow(run.Clock())) })
	case command.ResumeSequence:
		r.withSequence(c.ID, func(run *sequence.Runner) { run.Resume(r.clockNow(run.Clock())) })
	case command.MuteSequence:
		r.withSequence(c.ID, (*sequence.Runner).Mute)
	case command.UnmuteSequence:
		r.withSequence(c.ID, (*sequence.Runner).Unmute)
	case command.StopSequence:
		r.withSequence(c.ID, (*sequence.Runner).Stop)
	}
}

func (r *Renderer) withSequence(id Key, fn func(*sequence.Runner)) {
	if run, ok := r.sequences.Get(id); ok {
		fn(run)
	}
}

func (r *Renderer) applyParameter(c command.Command) {
	switch c := c.(type) {
	case command.AddParameter:
		if err := r.params.Add(c.ID, param.New(c.Value)); err != nil {
			r.rejected(r.ctrl.Parameters, c.ID, err)
		}
	case command.RemoveParameter:
		r.params.Remove(c.ID)
	case command.SetParameter:
		if p, ok := r.params.Get(c.ID); ok {
			p.Set(c.Value, c.Tween)
		}
	}
}

func (r *Renderer) applyRenderer(c command.Command) {
	switch c := c.(type) {
	case command.PauseAll:
		if r.paused {
			return
		}
		r.pausing = true
		r.fade.Set(tween.Fixed(0), c.Tween)
	case command.ResumeAll:
		r.pausing = false
		r.paused = false
		r.fade.Set(tween.Fixed(1), c.Tween)
	case command.EmitCustomEvent:
		r.emit(Event{Kind: Custom, Payload: c.Payload})
	}
}
