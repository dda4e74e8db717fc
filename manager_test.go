// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/backend/offline"
	"github.com/ik5/audmix/clock"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/logging"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/renderer"
	"github.com/ik5/audmix/sequence"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/tween"
)

const (
	testRate  = 8000
	testBlock = 64
)

type recordingLogger struct {
	logging.NoOpLogger

	mu    sync.Mutex
	warns []string
}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg+" "+fmt.Sprint(args...))
}

func testSettings() Settings {
	s := DefaultSettings()
	s.SampleRate = testRate
	s.BlockFrames = testBlock
	s.Capacities = Capacities{
		Sounds: 4, Instances: 4, Tracks: 4, Effects: 4,
		Clocks: 2, Sequences: 2, Parameters: 2,
	}
	return s
}

func newTestManager(t *testing.T, s Settings, opts ...Option) (*Manager, *offline.Device) {
	t.Helper()

	dev, err := offline.New(testRate)
	require.NoError(t, err)

	opts = append([]Option{WithDevice(dev), WithLogger(logging.NoOpLogger{})}, opts...)
	m, err := NewManager(s, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m, dev
}

func constantSound(t *testing.T, v float32, frames int) *sound.Data {
	t.Helper()

	buf := make([]audio.Frame, frames)
	for i := range buf {
		buf[i] = audio.FromMono(v)
	}
	d, err := sound.NewData(testRate, buf, sound.Settings{})
	require.NoError(t, err)
	return d
}

func step(t *testing.T, dev *offline.Device) []float32 {
	t.Helper()

	out, err := dev.Step(testBlock)
	require.NoError(t, err)
	return out
}

func assertLevel(t *testing.T, want float32, out []float32) {
	t.Helper()
	for i, v := range out {
		require.InDelta(t, want, v, 1e-5, "sample %d", i)
	}
}

func TestNewManager_InvalidSettings(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.BlockFrames = 0
	_, err := NewManager(s, WithDevice(nil))
	assert.ErrorIs(t, err, ErrInvalidSettings)
}

func TestManager_PlaySound(t *testing.T) {
	t.Parallel()

	m, dev := newTestManager(t, testSettings())
	assert.Equal(t, testRate, m.SampleRate())

	snd, err := m.AddSound(constantSound(t, 0.5, 10*testBlock))
	require.NoError(t, err)
	inst, err := m.Play(snd, instance.DefaultSettings())
	require.NoError(t, err)

	assertLevel(t, 0.5, step(t, dev))

	require.NoError(t, inst.Stop(tween.Tween{}))
	assertLevel(t, 0, step(t, dev))

	e, ok := m.PollEvent()
	require.True(t, ok)
	assert.Equal(t, renderer.InstanceFinished, e.Kind)
	assert.Equal(t, inst.ID().Key(), e.ID)
}

func TestManager_CapacityExceeded(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.Capacities.Instances = 1
	m, _ := newTestManager(t, s)

	snd, err := m.AddSound(constantSound(t, 0.5, testBlock))
	require.NoError(t, err)
	_, err = m.Play(snd, instance.DefaultSettings())
	require.NoError(t, err)
	_, err = m.Play(snd, instance.DefaultSettings())
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestManager_QueueFullReleasesKey(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.CommandCapacity = 2
	m, _ := newTestManager(t, s)

	for range 2 {
		_, err := m.AddSound(constantSound(t, 0.5, testBlock))
		require.NoError(t, err)
	}
	_, err := m.AddSound(constantSound(t, 0.5, testBlock))
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.Equal(t, 2, m.ctrl.Sounds.Live())
}

func TestManager_TrackRouting(t *testing.T) {
	t.Parallel()

	m, dev := newTestManager(t, testSettings())

	bus, err := m.AddTrack(mixer.TrackSettings{Volume: tween.Fixed(1)})
	require.NoError(t, err)
	sub, err := m.AddTrack(mixer.TrackSettings{
		Volume: tween.Fixed(1),
		Routes: []mixer.RouteSettings{{To: bus.Key(), Volume: tween.Fixed(0.5)}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, bus.SetRoute(sub, tween.Fixed(1), tween.Tween{}), mixer.ErrRouteCycle)
	assert.ErrorIs(t, sub.SetRoute(sub, tween.Fixed(1), tween.Tween{}), mixer.ErrRouteCycle)
	assert.ErrorIs(t, m.MainTrack().Remove(), mixer.ErrMainTrack)

	snd, err := m.AddSound(constantSound(t, 0.5, 10*testBlock))
	require.NoError(t, err)
	s := instance.DefaultSettings()
	s.Track = sub.Key()
	_, err = m.Play(snd, s)
	require.NoError(t, err)

	assertLevel(t, 0.25, step(t, dev))

	s.Track = arena.Key{Index: 99, Generation: 1}
	_, err = m.Play(snd, s)
	assert.ErrorIs(t, err, ErrUnknownTrack)
}

func TestManager_Effects(t *testing.T) {
	t.Parallel()

	s := testSettings()
	s.MaxEffectsPerTrack = 1
	m, dev := newTestManager(t, s)

	half := mixer.EffectFunc(func(block []audio.Frame, _ mixer.EffectContext) {
		for i := range block {
			block[i] = block[i].Scale(0.5)
		}
	})

	fx, err := m.MainTrack().AddEffect(half, tween.Fixed(1))
	require.NoError(t, err)
	_, err = m.MainTrack().AddEffect(half, tween.Fixed(1))
	assert.ErrorIs(t, err, mixer.ErrTooManyEffects)

	snd, err := m.AddSound(constantSound(t, 0.5, 10*testBlock))
	require.NoError(t, err)
	_, err = m.Play(snd, instance.DefaultSettings())
	require.NoError(t, err)
	assertLevel(t, 0.25, step(t, dev))

	require.NoError(t, fx.SetEnabled(false))
	assertLevel(t, 0.5, step(t, dev))

	require.NoError(t, fx.Remove())
	require.NoError(t, fx.Remove())
	_, err = m.MainTrack().AddEffect(half, tween.Fixed(1))
	require.NoError(t, err)
	_, err = m.MainTrack().AddEffect(half, tween.Fixed(1))
	assert.ErrorIs(t, err, mixer.ErrTooManyEffects, "removing twice frees one slot only")

	step(t, dev)
	assert.Zero(t, m.Faults())
}

func TestManager_FaultsAreLogged(t *testing.T) {
	t.Parallel()

	log := &recordingLogger{}
	m, dev := newTestManager(t, testSettings(), WithLogger(log))

	_, err := m.MainTrack().AddEffect(mixer.EffectFunc(func([]audio.Frame, mixer.EffectContext) {
		panic("broken effect")
	}), tween.Fixed(1))
	require.NoError(t, err)

	step(t, dev)
	step(t, dev)

	e, ok := m.PollEvent()
	require.True(t, ok)
	assert.Equal(t, renderer.Fault, e.Kind)
	assert.Equal(t, renderer.EffectFault, e.Fault)
	_, ok = m.PollEvent()
	assert.False(t, ok)

	assert.EqualValues(t, 1, m.Faults())
	require.Len(t, log.warns, 1)
	assert.Contains(t, log.warns[0], "render fault")
}

func TestManager_ParameterAndSequence(t *testing.T) {
	t.Parallel()

	m, dev := newTestManager(t, testSettings())

	p, err := m.AddParameter(0.5)
	require.NoError(t, err)
	snd, err := m.AddSound(constantSound(t, 0.5, 100*testBlock))
	require.NoError(t, err)

	// 1.25 ticks per block
	clk, err := m.AddClock(clock.Settings{Speed: tween.Fixed(1.25 * testRate / testBlock)})
	require.NoError(t, err)
	require.NoError(t, clk.Start())

	play := instance.DefaultSettings()
	play.Volume = p.Value()

	var seq sequence.Sequence
	seq.Add(2, sequence.Play(snd, play)).Add(3, sequence.Emit("bar"))
	seq.Length = 4
	run, err := m.StartSequence(seq, sequence.Settings{Clock: clk.Key()})
	require.NoError(t, err)

	assertLevel(t, 0, step(t, dev))
	assertLevel(t, 0.25, step(t, dev))
	assertLevel(t, 0.25, step(t, dev))

	e, ok := m.PollEvent()
	require.True(t, ok)
	assert.Equal(t, renderer.Event{Kind: renderer.Custom, ID: run.ID().Key(), Payload: "bar"}, e)

	require.NoError(t, p.Set(1, tween.Tween{}))
	out := step(t, dev)
	assert.InDelta(t, 0.5, out[len(out)-1], 1e-5)

	require.NoError(t, run.StopInstances(tween.Tween{}))
	assertLevel(t, 0, step(t, dev))
}

func TestManager_Close(t *testing.T) {
	t.Parallel()

	m, dev := newTestManager(t, testSettings())
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := m.AddSound(constantSound(t, 0.5, testBlock))
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.PauseAll(tween.Tween{}), ErrClosed)

	_, err = dev.Step(testBlock)
	assert.ErrorIs(t, err, backend.ErrClosed)
}

func TestManager_Arrangement(t *testing.T) {
	t.Parallel()

	m, dev := newTestManager(t, testSettings())

	arr, err := sound.NewLoopWithIntro(constantSound(t, 0.25, testBlock), constantSound(t, 0.5, testBlock))
	require.NoError(t, err)
	id, err := m.AddArrangement(arr)
	require.NoError(t, err)
	assert.Equal(t, "arrangement "+id.Key().String(), id.String())

	inst, err := m.Play(id, instance.DefaultSettings())
	require.NoError(t, err)

	assertLevel(t, 0.25, step(t, dev))
	assertLevel(t, 0.5, step(t, dev))
	assertLevel(t, 0.5, step(t, dev))

	require.NoError(t, m.StopInstancesOf(id, tween.Tween{}))
	assertLevel(t, 0, step(t, dev))

	e, ok := m.PollEvent()
	require.True(t, ok)
	assert.Equal(t, renderer.InstanceFinished, e.Kind)
	assert.Equal(t, inst.ID().Key(), e.ID)

	require.NoError(t, m.RemoveArrangement(id))
	step(t, dev)
	_, err = m.Play(id, instance.DefaultSettings())
	require.NoError(t, err)
	assertLevel(t, 0, step(t, dev))
	assert.Zero(t, m.Faults())
}

func TestManager_EmitCustomEvent(t *testing.T) {
	t.Parallel()

	m, dev := newTestManager(t, testSettings())

	require.NoError(t, m.EmitCustomEvent("marker"))
	_, ok := m.PollEvent()
	assert.False(t, ok, "nothing is raised before the renderer runs")

	step(t, dev)
	e, ok := m.PollEvent()
	require.True(t, ok)
	assert.Equal(t, renderer.Event{Kind: renderer.Custom, Payload: "marker"}, e)

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.EmitCustomEvent("late"), ErrClosed)
}
