// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/backend/oto"
	"github.com/ik5/audmix/clock"
	"github.com/ik5/audmix/command"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/logging"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/queue"
	"github.com/ik5/audmix/renderer"
	"github.com/ik5/audmix/sequence"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/tween"
)

var (
	ErrCapacityExceeded = arena.ErrCapacityExceeded
	ErrQueueFull        = command.ErrQueueFull
	ErrUnknownTrack     = mixer.ErrUnknownTrack
	ErrClosed           = errors.New("manager closed")
)

// Event is a notification from the render goroutine.
type Event = renderer.Event

type options struct {
	device   backend.Device
	logger   logging.Logger
	registry *audio.Registry
}

type Option func(*options)

// WithDevice renders into d instead of the system sound card. The manager
// owns d from then on and closes it on Close.
func WithDevice(d backend.Device) Option {
	return func(o *options) { o.device = d }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRegistry sets the decoders LoadSound uses.
func WithRegistry(r *audio.Registry) Option {
	return func(o *options) { o.registry = r }
}

// Manager is the control side of the engine. All methods are safe for
// concurrent use; none of them wait on the render goroutine.
type Manager struct {
	settings Settings
	log      logging.Logger
	registry *audio.Registry

	device   backend.Device
	renderer *renderer.Renderer
	commands command.Producer
	events   *queue.Ring[renderer.Event]
	ctrl     renderer.Controllers
	topology *mixer.Topology
	limits   mixer.Limits

	closeOnce sync.Once
	closeErr  error
	closed    chan struct{}
}

// NewManager sets up the device, builds the renderer at the device's
// sample rate and starts the stream.
func NewManager(s Settings, opts ...Option) (*Manager, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = s.logger()
	}
	if o.registry == nil {
		o.registry = formats.NewRegistry()
	}
	if o.device == nil {
		d, err := oto.Setup(oto.Config{SampleRate: s.SampleRate})
		if err != nil {
			return nil, fmt.Errorf("setup device: %w", err)
		}
		o.device = d
	}

	overflow, _ := renderer.ParseOverflow(s.EventOverflow)
	q := command.NewQueue(s.CommandCapacity)
	events := queue.New[renderer.Event](s.EventCapacity)
	ctrl := renderer.NewControllers(s.capacities())

	r, err := renderer.New(renderer.Config{
		SampleRate:         o.device.SampleRate(),
		BlockFrames:        s.BlockFrames,
		MaxRoutesPerTrack:  s.MaxRoutesPerTrack,
		MaxEffectsPerTrack: s.MaxEffectsPerTrack,
		EventOverflow:      overflow,
	}, q, ctrl, events)
	if err != nil {
		_ = o.device.Close()
		return nil, fmt.Errorf("build renderer: %w", err)
	}

	limits := mixer.Limits{
		BlockFrames: s.BlockFrames,
		MaxRoutes:   s.MaxRoutesPerTrack,
		MaxEffects:  s.MaxEffectsPerTrack,
	}
	m := &Manager{
		settings: s,
		log:      o.logger,
		registry: o.registry,
		device:   o.device,
		renderer: r,
		commands: q.Producer(),
		events:   events,
		ctrl:     ctrl,
		topology: mixer.NewTopology(r.MainTrack(), limits),
		limits:   limits,
		closed:   make(chan struct{}),
	}

	if err := o.device.Start(r); err != nil {
		_ = o.device.Close()
		return nil, fmt.Errorf("start device: %w", err)
	}

	m.log.Info("audio manager started",
		"sample_rate", r.SampleRate(),
		"block_frames", s.BlockFrames,
		"event_overflow", overflow.String())

	return m, nil
}

func (m *Manager) Settings() Settings { return m.settings }

// SampleRate is the rate the device runs at, which may differ from the
// one requested in Settings.
func (m *Manager) SampleRate() int { return m.renderer.SampleRate() }

func (m *Manager) BlockFrames() int { return m.settings.BlockFrames }

// Producer returns a command handle for code that talks to the renderer
// directly.
func (m *Manager) Producer() command.Producer { return m.commands }

// Faults counts render faults since start, including those whose events
// were dropped.
func (m *Manager) Faults() uint64 { return m.renderer.Faults() }

func (m *Manager) DroppedEvents() uint64 { return m.renderer.DroppedEvents() }

// PollEvent returns the next event, if any. Fault events are also logged.
func (m *Manager) PollEvent() (Event, bool) {
	e, ok := m.events.TryPop()
	if ok && e.Kind == renderer.Fault {
		m.log.Warn("render fault", "fault", e.Fault.String(), "id", e.ID.String())
	}
	return e, ok
}

// Close stops the device. Handles stay valid values but every command
// sent afterwards is ignored.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		close(m.closed)
		if err := m.device.Close(); err != nil {
			m.closeErr = fmt.Errorf("close device: %w", err)
			m.log.Error("close audio device", "error", err)
			return
		}
		m.log.Info("audio manager closed", "faults", m.Faults())
	})
	return m.closeErr
}

func (m *Manager) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// add reserves a key from ctrl and sends the command built for it. The
// key goes back to the controller if the command cannot be queued.
func (m *Manager) add(ctrl *arena.Controller, build func(arena.Key) command.Command) (arena.Key, error) {
	if m.isClosed() {
		return arena.Key{}, ErrClosed
	}

	key, err := ctrl.Reserve()
	if err != nil {
		return arena.Key{}, err
	}
	if err := m.commands.Send(build(key)); err != nil {
		ctrl.Release(key)
		return arena.Key{}, err
	}
	return key, nil
}

func (m *Manager) send(c command.Command) error {
	if m.isClosed() {
		return ErrClosed
	}
	return m.commands.Send(c)
}

// AddSound hands s to the renderer. Sounds at any sample rate play at
// their natural speed.
func (m *Manager) AddSound(s sound.Sound) (SoundID, error) {
	key, err := m.add(m.ctrl.Sounds, func(k arena.Key) command.Command {
		return command.AddSound{ID: k, Sound: s}
	})
	return SoundID(key), err
}

// LoadSound decodes path, resampled to the device rate, and adds it.
func (m *Manager) LoadSound(path string, opts ...sound.LoadOption) (SoundID, error) {
	data, err := sound.LoadFile(path, m.registry, m.SampleRate(), opts...)
	if err != nil {
		return SoundID{}, err
	}
	m.log.Debug("sound loaded", "path", path, "seconds", data.Duration())

	return m.AddSound(data)
}

// RemoveSound forgets the sound. Instances already playing it finish
// normally.
func (m *Manager) RemoveSound(id SoundID) error {
	return m.send(command.RemoveSound{ID: id.Key()})
}

// AddArrangement hands a to the renderer. Arrangements share the sound
// capacity.
func (m *Manager) AddArrangement(a *sound.Arrangement) (ArrangementID, error) {
	key, err := m.add(m.ctrl.Sounds, func(k arena.Key) command.Command {
		return command.AddSound{ID: k, Sound: a}
	})
	return ArrangementID(key), err
}

func (m *Manager) RemoveArrangement(id ArrangementID) error {
	return m.send(command.RemoveSound{ID: id.Key()})
}

// Play starts a new instance of snd. A zero Track in s plays into the
// main track.
func (m *Manager) Play(snd Playable, s instance.Settings) (InstanceHandle, error) {
	if !s.Track.IsZero() && !m.topology.Has(s.Track) {
		return InstanceHandle{}, fmt.Errorf("play %s: %w", snd, ErrUnknownTrack)
	}

	key, err := m.add(m.ctrl.Instances, func(k arena.Key) command.Command {
		return command.PlayInstance{ID: k, Sound: snd.Key(), Settings: s}
	})
	if err != nil {
		return InstanceHandle{}, err
	}
	return InstanceHandle{id: InstanceID(key), m: m}, nil
}

func (m *Manager) PauseInstancesOf(snd Playable, tw tween.Tween) error {
	return m.send(command.PauseInstancesOf{Sound: snd.Key(), Tween: tw})
}

func (m *Manager) ResumeInstancesOf(snd Playable, tw tween.Tween) error {
	return m.send(command.ResumeInstancesOf{Sound: snd.Key(), Tween: tw})
}

func (m *Manager) StopInstancesOf(snd Playable, tw tween.Tween) error {
	return m.send(command.StopInstancesOf{Sound: snd.Key(), Tween: tw})
}

// MainTrack returns the handle of the track everything ends up in.
func (m *Manager) MainTrack() TrackHandle {
	return TrackHandle{id: TrackID(m.topology.Main()), m: m}
}

// AddTrack creates a sub-track. With no routes in s it feeds the main
// track at unity volume.
func (m *Manager) AddTrack(s mixer.TrackSettings) (TrackHandle, error) {
	if len(s.Routes) == 0 {
		s.Routes = []mixer.RouteSettings{{To: m.topology.Main(), Volume: tween.Fixed(1)}}
	}

	t, err := mixer.NewTrack(s, m.limits)
	if err != nil {
		return TrackHandle{}, fmt.Errorf("add track: %w", err)
	}
	routes := make([]arena.Key, len(s.Routes))
	for i, r := range s.Routes {
		routes[i] = r.To
	}

	if m.isClosed() {
		return TrackHandle{}, ErrClosed
	}
	key, err := m.ctrl.Tracks.Reserve()
	if err != nil {
		return TrackHandle{}, err
	}
	err = m.topology.AddTrack(key, routes, func() error {
		return m.commands.Send(command.AddTrack{ID: key, Track: t})
	})
	if err != nil {
		m.ctrl.Tracks.Release(key)
		return TrackHandle{}, fmt.Errorf("add track: %w", err)
	}

	return TrackHandle{id: TrackID(key), m: m}, nil
}

// AddClock adds a stopped clock.
func (m *Manager) AddClock(s clock.Settings) (ClockHandle, error) {
	key, err := m.add(m.ctrl.Clocks, func(k arena.Key) command.Command {
		return command.AddClock{ID: k, Clock: clock.New(s)}
	})
	if err != nil {
		return ClockHandle{}, err
	}
	return ClockHandle{id: ClockID(key), m: m}, nil
}

// AddParameter adds a parameter starting at v.
func (m *Manager) AddParameter(v float64) (ParameterHandle, error) {
	key, err := m.add(m.ctrl.Parameters, func(k arena.Key) command.Command {
		return command.AddParameter{ID: k, Value: v}
	})
	if err != nil {
		return ParameterHandle{}, err
	}
	return ParameterHandle{id: ParameterID(key), m: m}, nil
}

// StartSequence validates seq and starts it on its clock.
func (m *Manager) StartSequence(seq sequence.Sequence, s sequence.Settings) (SequenceHandle, error) {
	run, err := sequence.NewRunner(seq, s, m.settings.MaxStepsPerBlock)
	if err != nil {
		return SequenceHandle{}, fmt.Errorf("start sequence: %w", err)
	}

	key, err := m.add(m.ctrl.Sequences, func(k arena.Key) command.Command {
		return command.StartSequence{ID: k, Runner: run}
	})
	if err != nil {
		return SequenceHandle{}, err
	}
	return SequenceHandle{id: SequenceID(key), m: m}, nil
}

// PauseAll fades the whole output out over tw and then freezes the
// engine: clocks, sequences and instances stop advancing.
func (m *Manager) PauseAll(tw tween.Tween) error {
	return m.send(command.PauseAll{Tween: tw})
}

func (m *Manager) ResumeAll(tw tween.Tween) error {
	return m.send(command.ResumeAll{Tween: tw})
}

// EmitCustomEvent queues payload as a Custom event, raised when the
// renderer reaches the command.
func (m *Manager) EmitCustomEvent(payload any) error {
	return m.send(command.EmitCustomEvent{Payload: payload})
}
