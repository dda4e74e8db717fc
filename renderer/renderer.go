// SPDX-License-Identifier: EPL-2.0

// Package renderer runs the per-block pass that turns the engine's state
// into audio. It is the only code that touches the render-side resources;
// the control side talks to it through the command queue and hears back
// through the event ring.
package renderer

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/clock"
	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/param"
	"github.com/ik5/audmix/queue"
	"github.com/ik5/audmix/sequence"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/tween"
)

var ErrInvalidConfig = errors.New("invalid renderer config")

type Key = arena.Key

type Config struct {
	SampleRate         int
	BlockFrames        int
	MaxRoutesPerTrack  int
	MaxEffectsPerTrack int
	EventOverflow      Overflow
}

func (c Config) validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.BlockFrames <= 0:
		return fmt.Errorf("%w: block frames %d", ErrInvalidConfig, c.BlockFrames)
	case c.MaxRoutesPerTrack <= 0 || c.MaxEffectsPerTrack <= 0:
		return fmt.Errorf("%w: per-track limits must be positive", ErrInvalidConfig)
	}
	return nil
}

// Capacities fix how many resources of each kind can be live at once.
type Capacities struct {
	Sounds     int
	Instances  int
	Tracks     int
	Effects    int
	Clocks     int
	Sequences  int
	Parameters int
}

// Controllers hand out keys on the control side for resources the
// renderer stores.
type Controllers struct {
	Sounds     *arena.Controller
	Instances  *arena.Controller
	Tracks     *arena.Controller
	Effects    *arena.Controller
	Clocks     *arena.Controller
	Sequences  *arena.Controller
	Parameters *arena.Controller
}

// NewControllers sizes one controller per kind. The track controller gets
// an extra slot for the main track.
func NewControllers(c Capacities) Controllers {
	return Controllers{
		Sounds:     arena.NewController(c.Sounds),
		Instances:  arena.NewController(c.Instances),
		Tracks:     arena.NewController(c.Tracks + 1),
		Effects:    arena.NewController(c.Effects),
		Clocks:     arena.NewController(c.Clocks),
		Sequences:  arena.NewController(c.Sequences),
		Parameters: arena.NewController(c.Parameters),
	}
}

type Renderer struct {
	cfg      Config
	ctrl     Controllers
	commands *command.Queue
	events   *queue.Ring[Event]

	sounds    *arena.Arena[sound.Sound]
	instances *arena.Arena[instance.Instance]
	sequences *arena.Arena[sequence.Runner]
	clocks    *clock.Set
	params    *param.Set
	graph     *mixer.Graph
	resolver  tween.Resolver

	fade    tween.Tweenable
	gain    float32
	pausing bool
	paused  bool
	silence []audio.Frame

	apply   func(command.Command)
	faults  atomic.Uint64
	dropped atomic.Uint64
}

// New builds a renderer reading commands from q and writing events to
// events. Every buffer the render pass uses is allocated here.
func New(cfg Config, q *command.Queue, ctrl Controllers, events *queue.Ring[Event]) (*Renderer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	graph, err := mixer.NewGraph(ctrl.Tracks, ctrl.Effects, mixer.Limits{
		BlockFrames: cfg.BlockFrames,
		MaxRoutes:   cfg.MaxRoutesPerTrack,
		MaxEffects:  cfg.MaxEffectsPerTrack,
	}, mixer.DefaultTrackSettings())
	if err != nil {
		return nil, fmt.Errorf("build mixer: %w", err)
	}

	r := &Renderer{
		cfg:       cfg,
		ctrl:      ctrl,
		commands:  q,
		events:    events,
		sounds:    arena.New[sound.Sound](ctrl.Sounds),
		instances: arena.New[instance.Instance](ctrl.Instances),
		sequences: arena.New[sequence.Runner](ctrl.Sequences),
		clocks:    clock.NewSet(ctrl.Clocks),
		params:    param.NewSet(ctrl.Parameters),
		graph:     graph,
		fade:      tween.NewTweenable(tween.Fixed(1)),
		gain:      1,
		silence:   make([]audio.Frame, cfg.BlockFrames),
	}
	r.resolver = r.params
	r.apply = r.applyCommand
	graph.SetFaultHandler(r.mixerFault)

	return r, nil
}

func (r *Renderer) MainTrack() Key   { return r.graph.Main() }
func (r *Renderer) SampleRate() int  { return r.cfg.SampleRate }
func (r *Renderer) BlockFrames() int { return r.cfg.BlockFrames }

// Faults counts every fault raised since New, whether or not its event
// made it through the event ring.
func (r *Renderer) Faults() uint64 { return r.faults.Load() }

// DroppedEvents counts events lost to overflow.
func (r *Renderer) DroppedEvents() uint64 { return r.dropped.Load() }

// Paused reports whether PauseAll has fully silenced the output.
func (r *Renderer) Paused() bool { return r.paused }

// Render fills out with interleaved stereo samples. Any length works: the
// request is cut into blocks of at most BlockFrames frames. A trailing odd
// sample is zeroed.
func (r *Renderer) Render(out []float32) {
	frames := len(out) / 2
	for done := 0; done < frames; {
		n := min(frames-done, r.cfg.BlockFrames)
		block := r.Process(n)
		audio.Interleave(out[2*done:], block)
		done += n
	}
	if len(out)%2 == 1 {
		out[len(out)-1] = 0
	}
}

// Process renders one block of n frames, n <= BlockFrames, and returns
// it. The slice stays valid until the next call.
func (r *Renderer) Process(n int) []audio.Frame {
	n = min(n, r.cfg.BlockFrames)
	dt := float64(n) / float64(r.cfg.SampleRate)

	r.commands.Drain(r.apply)

	if r.paused {
		clear(r.silence[:n])
		return r.silence[:n]
	}

	r.params.Update(dt)
	r.clocks.Update(dt, r.resolver)
	r.advanceSequences()

	r.graph.Begin(n)
	r.advanceInstances(instance.Context{
		SampleRate: r.cfg.SampleRate,
		DeltaTime:  dt,
		Resolver:   r.resolver,
	})
	out := r.graph.Process(mixer.EffectContext{
		SampleRate: r.cfg.SampleRate,
		DeltaTime:  dt,
		Resolver:   r.resolver,
	})

	from := r.gain
	r.gain = float32(r.fade.Update(dt, nil))
	if from != 1 || r.gain != 1 {
		audio.ScaleRamp(out, from, r.gain)
	}
	if r.pausing && !r.fade.Transitioning() {
		r.pausing = false
		r.paused = true
	}

	return out
}

func (r *Renderer) advanceSequences() {
	r.sequences.Each(func(key Key, run *sequence.Runner) bool {
		clk, ok := r.clocks.Get(run.Clock())
		switch {
		case !ok:
			run.Stop()
		case clk.Reached(0):
			actions := run.Advance(clk.Ticks())
			for i := range actions {
				r.act(key, &actions[i])
			}
			if run.Dropped() > 0 {
				r.fault(CapacityExceeded, key)
			}
		}

		if run.State() == sequence.Finished {
			r.sequences.Remove(key)
			r.emit(Event{Kind: SequenceFinished, ID: key})
		}
		return true
	})
}

// act applies one fired sequence step.
func (r *Renderer) act(seq Key, a *sequence.Action) {
	switch a.Kind {
	case sequence.PlaySound:
		id, err := r.instances.Controller().Reserve()
		if err != nil {
			r.fault(CapacityExceeded, seq)
			return
		}
		if !r.sounds.Contains(a.Sound) {
			r.instances.Controller().Release(id)
			r.fault(InvalidStep, seq)
			return
		}
		r.play(id, a.Sound, a.Settings, seq)
	case sequence.PauseInstances:
		r.eachOwned(seq, func(in *instance.Instance) { in.Pause(a.Fade) })
	case sequence.ResumeInstances:
		r.eachOwned(seq, func(in *instance.Instance) { in.Resume(a.Fade) })
	case sequence.StopInstances:
		r.eachOwned(seq, func(in *instance.Instance) { in.Stop(a.Fade) })
	case sequence.EmitEvent:
		r.emit(Event{Kind: Custom, ID: seq, Payload: a.Payload})
	default:
		r.fault(InvalidStep, seq)
	}
}

func (r *Renderer) eachOwned(seq Key, fn func(*instance.Instance)) {
	r.instances.Each(func(_ Key, in *instance.Instance) bool {
		if in.Owner() == seq {
			fn(in)
		}
		return true
	})
}

func (r *Renderer) eachOf(snd Key, fn func(*instance.Instance)) {
	r.instances.Each(func(_ Key, in *instance.Instance) bool {
		if in.Sound() == snd {
			fn(in)
		}
		return true
	})
}

// play inserts a new instance of sound snd under id. When the sound is
// gone the key is given back and the instance reported finished.
func (r *Renderer) play(id, snd Key, s instance.Settings, owner Key) {
	src, ok := r.sounds.Get(snd)
	if !ok {
		r.instances.Controller().Release(id)
		r.emit(Event{Kind: InstanceFinished, ID: id})
		return
	}

	in := instance.New(*src, snd, s)
	in.WithOwner(owner)
	if err := r.instances.Insert(id, in); err != nil {
		r.rejected(r.ctrl.Instances, id, err)
	}
}

func (r *Renderer) advanceInstances(ctx instance.Context) {
	r.instances.Each(func(key Key, in *instance.Instance) bool {
		if in.State() == instance.WaitingToStart {
			r.checkStart(in)
		}

		track := in.Track()
		if track.IsZero() {
			track = r.graph.Main()
		}

		if dst, ok := r.graph.Input(track); ok {
			in.Process(dst, ctx)
		} else if !in.Finished() {
			r.fault(MissingTrack, key)
			in.Stop(tween.Tween{})
		}

		if in.Finished() {
			r.instances.Remove(key)
			r.emit(Event{Kind: InstanceFinished, ID: key})
		}
		return true
	})
}

// checkStart starts a waiting instance once its clock reaches the start
// tick. An instance whose clock is gone can never start and is stopped.
func (r *Renderer) checkStart(in *instance.Instance) {
	start := in.StartTime()
	if start.Immediate() {
		in.Start()
		return
	}

	reached, exists := r.clocks.Reached(start.Clock, start.Tick)
	switch {
	case !exists:
		in.Stop(tween.Tween{})
	case reached:
		in.Start()
	}
}

func (r *Renderer) mixerFault(err error, key Key) {
	switch {
	case errors.Is(err, mixer.ErrRouteCycle):
		r.fault(RouteCycle, key)
	case errors.Is(err, mixer.ErrMissingTrack):
		r.fault(MissingTrack, key)
	case errors.Is(err, mixer.ErrEffectPanic):
		r.fault(EffectFault, key)
	case errors.Is(err, mixer.ErrTooManyRoutes), errors.Is(err, mixer.ErrTooManyEffects):
		r.fault(CapacityExceeded, key)
	default:
		r.fault(InvalidCommand, key)
	}
}

// stale reports errors meaning the command's target no longer exists.
// Such commands are ignored.
func stale(err error) bool {
	return errors.Is(err, mixer.ErrUnknownTrack) || errors.Is(err, arena.ErrStaleKey)
}

// rejected handles a resource that could not be stored under its reserved
// key. The key goes back to ctrl unless another resource holds the slot.
// A target that vanished is not a fault.
func (r *Renderer) rejected(ctrl *arena.Controller, key Key, err error) {
	if !errors.Is(err, arena.ErrSlotOccupied) {
		ctrl.Release(key)
	}
	if !stale(err) {
		r.fault(CapacityExceeded, key)
	}
}

func (r *Renderer) fault(kind FaultKind, key Key) {
	r.faults.Add(1)
	r.emit(Event{Kind: Fault, ID: key, Fault: kind})
}

func (r *Renderer) emit(e Event) {
	switch r.cfg.EventOverflow {
	case DropNewest:
		if !r.events.TryPush(e) {
			r.dropped.Add(1)
		}
	default:
		if n := r.events.PushEvict(e); n > 0 {
			r.dropped.Add(uint64(n))
		}
	}
}
