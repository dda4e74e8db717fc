// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"

	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/tween"
)

// FaultFunc receives problems found while processing. It is called on the
// render goroutine and must not block.
type FaultFunc func(err error, key arena.Key)

// Graph owns every track and effect slot and processes them once per block.
type Graph struct {
	tracks  *arena.Arena[Track]
	effects *arena.Arena[EffectSlot]
	main    arena.Key
	limits  Limits
	frames  int

	dirty    bool
	order    []arena.Key
	indegree []int32
	mark     []uint8
	pending  []arena.Key

	onFault FaultFunc
}

// NewGraph builds a graph over the given key controllers. The main track is
// created immediately with mainSettings; its routes are ignored.
func NewGraph(tracks, effects *arena.Controller, l Limits, mainSettings TrackSettings) (*Graph, error) {
	mainSettings.Routes = nil
	mainTrack, err := NewTrack(mainSettings, l)
	if err != nil {
		return nil, err
	}

	g := &Graph{
		tracks:   arena.New[Track](tracks),
		effects:  arena.New[EffectSlot](effects),
		limits:   l,
		frames:   l.BlockFrames,
		order:    make([]arena.Key, 0, tracks.Capacity()),
		indegree: make([]int32, tracks.Capacity()),
		mark:     make([]uint8, tracks.Capacity()),
		pending:  make([]arena.Key, 0, tracks.Capacity()),
		onFault:  func(error, arena.Key) {},
	}

	g.main, err = tracks.Reserve()
	if err != nil {
		return nil, fmt.Errorf("reserve main track: %w", err)
	}
	if err := g.tracks.Insert(g.main, mainTrack); err != nil {
		return nil, err
	}
	g.dirty = true

	return g, nil
}

// Main returns the key of the main track.
func (g *Graph) Main() arena.Key { return g.main }

// Limits returns the sizes tracks for this graph must be built with.
func (g *Graph) Limits() Limits { return g.limits }

// SetFaultHandler installs f. A nil f discards faults.
func (g *Graph) SetFaultHandler(f FaultFunc) {
	if f == nil {
		f = func(error, arena.Key) {}
	}
	g.onFault = f
}

func (g *Graph) Track(key arena.Key) (*Track, bool) { return g.tracks.Get(key) }

func (g *Graph) Effect(key arena.Key) (*EffectSlot, bool) { return g.effects.Get(key) }

// TrackCount includes the main track.
func (g *Graph) TrackCount() int { return g.tracks.Len() }

// AddTrack inserts a track built with NewTrack under a reserved key.
func (g *Graph) AddTrack(key arena.Key, t Track) error {
	if err := g.tracks.Insert(key, t); err != nil {
		return err
	}
	g.dirty = true
	return nil
}

// RemoveTrack deletes a sub-track, its effects and every route pointing at
// it. The main track cannot be removed.
func (g *Graph) RemoveTrack(key arena.Key) error {
	if key == g.main {
		return ErrMainTrack
	}
	t, ok := g.tracks.Remove(key)
	if !ok {
		return ErrUnknownTrack
	}

	for _, fx := range t.effects {
		g.effects.Remove(fx)
	}
	g.tracks.Each(func(_ arena.Key, other *Track) bool {
		other.removeRoute(key)
		return true
	})
	g.dirty = true

	return nil
}

func (g *Graph) SetTrackVolume(key arena.Key, v tween.Value, tw tween.Tween) error {
	t, ok := g.tracks.Get(key)
	if !ok {
		return ErrUnknownTrack
	}
	t.volume.Set(v, tw)
	return nil
}

// SetRoute adds a send from one track to another, or retargets the volume
// of an existing one.
func (g *Graph) SetRoute(from, to arena.Key, v tween.Value, tw tween.Tween) error {
	if from == g.main {
		return ErrMainTrack
	}
	if from == to {
		return ErrRouteCycle
	}
	src, ok := g.tracks.Get(from)
	if !ok || !g.tracks.Contains(to) {
		return ErrUnknownTrack
	}

	if i := src.findRoute(to); i >= 0 {
		src.routes[i].volume.Set(v, tw)
		return nil
	}
	if len(src.routes) == cap(src.routes) {
		return ErrTooManyRoutes
	}

	src.routes = append(src.routes, route{to: to, volume: tween.NewTweenable(v)})
	g.dirty = true

	return nil
}

func (g *Graph) RemoveRoute(from, to arena.Key) error {
	src, ok := g.tracks.Get(from)
	if !ok {
		return ErrUnknownTrack
	}
	if src.removeRoute(to) {
		g.dirty = true
	}
	return nil
}

// AddEffect appends slot to the chain of the track it was built for.
func (g *Graph) AddEffect(key arena.Key, slot EffectSlot) error {
	t, ok := g.tracks.Get(slot.track)
	if !ok {
		return ErrUnknownTrack
	}
	if len(t.effects) == cap(t.effects) {
		return ErrTooManyEffects
	}
	if err := g.effects.Insert(key, slot); err != nil {
		return err
	}
	t.effects = append(t.effects, key)
	return nil
}

// RemoveEffect takes an effect out of its chain. The others keep their
// relative order.
func (g *Graph) RemoveEffect(key arena.Key) bool {
	slot, ok := g.effects.Remove(key)
	if !ok {
		return false
	}
	if t, ok := g.tracks.Get(slot.track); ok {
		t.removeEffect(key)
	}
	return true
}

func (g *Graph) SetEffectEnabled(key arena.Key, enabled bool) bool {
	s, ok := g.effects.Get(key)
	if !ok {
		return false
	}
	s.enabled = enabled
	return true
}

func (g *Graph) SetEffectMix(key arena.Key, v tween.Value, tw tween.Tween) bool {
	s, ok := g.effects.Get(key)
	if !ok {
		return false
	}
	s.mix.Set(v, tw)
	return true
}

// Order returns the current processing order. The slice is reused.
func (g *Graph) Order() []arena.Key {
	if g.dirty {
		g.sort()
	}
	return g.order
}

const (
	unvisited uint8 = iota
	sorted
	peeled
)

// sort recomputes the processing order with Kahn's algorithm. When routes
// form a cycle, sinks are peeled off the stalled remainder so the tracks
// downstream of it, main included, are still processed. What is left after
// peeling sits on a cycle: it is reported and skipped.
func (g *Graph) sort() {
	g.dirty = false
	g.order = g.order[:0]
	g.pending = g.pending[:0]

	g.tracks.Each(func(k arena.Key, _ *Track) bool {
		g.indegree[k.Index] = 0
		g.mark[k.Index] = unvisited
		return true
	})
	g.tracks.Each(func(_ arena.Key, t *Track) bool {
		for _, r := range t.routes {
			if g.tracks.Contains(r.to) {
				g.indegree[r.to.Index]++
			}
		}
		return true
	})
	g.tracks.Each(func(k arena.Key, _ *Track) bool {
		if g.indegree[k.Index] == 0 {
			g.pending = append(g.pending, k)
		}
		return true
	})
	g.drain()

	if len(g.order) == g.tracks.Len() {
		return
	}

	// indegree now counts outgoing routes inside the remainder
	g.pending = g.pending[:0]
	g.tracks.Each(func(k arena.Key, t *Track) bool {
		if g.mark[k.Index] != unvisited {
			return true
		}
		g.indegree[k.Index] = 0
		for _, r := range t.routes {
			if g.tracks.Contains(r.to) && g.mark[r.to.Index] == unvisited {
				g.indegree[k.Index]++
			}
		}
		if g.indegree[k.Index] == 0 {
			g.pending = append(g.pending, k)
		}
		return true
	})
	for head := 0; head < len(g.pending); head++ {
		sink := g.pending[head]
		g.mark[sink.Index] = peeled
		g.tracks.Each(func(k arena.Key, t *Track) bool {
			if g.mark[k.Index] != unvisited || g.indegree[k.Index] == 0 {
				return true
			}
			for _, r := range t.routes {
				if r.to == sink {
					g.indegree[k.Index]--
				}
			}
			if g.indegree[k.Index] == 0 {
				g.pending = append(g.pending, k)
			}
			return true
		})
	}

	g.pending = g.pending[:0]
	g.tracks.Each(func(k arena.Key, _ *Track) bool {
		switch g.mark[k.Index] {
		case unvisited:
			g.onFault(ErrRouteCycle, k)
		case peeled:
			g.indegree[k.Index] = 0
		}
		return true
	})
	g.tracks.Each(func(k arena.Key, t *Track) bool {
		if g.mark[k.Index] != peeled {
			return true
		}
		for _, r := range t.routes {
			if g.tracks.Contains(r.to) {
				g.indegree[r.to.Index]++
			}
		}
		return true
	})
	g.tracks.Each(func(k arena.Key, _ *Track) bool {
		if g.mark[k.Index] == peeled && g.indegree[k.Index] == 0 {
			g.pending = append(g.pending, k)
		}
		return true
	})
	g.drain()
}

// drain appends pending tracks to the order, releasing their destinations
// as their indegree reaches zero.
func (g *Graph) drain() {
	for head := 0; head < len(g.pending); head++ {
		k := g.pending[head]
		g.order = append(g.order, k)
		g.mark[k.Index] = sorted

		t, _ := g.tracks.Get(k)
		for _, r := range t.routes {
			if !g.tracks.Contains(r.to) {
				continue
			}
			g.indegree[r.to.Index]--
			if g.indegree[r.to.Index] == 0 {
				g.pending = append(g.pending, r.to)
			}
		}
	}
}

// Begin starts a block of frames frames and clears every track input.
func (g *Graph) Begin(frames int) {
	g.frames = min(frames, g.limits.BlockFrames)
	g.tracks.Each(func(_ arena.Key, t *Track) bool {
		audio.Clear(t.input[:g.frames])
		return true
	})
}

// Input returns the buffer of track key for the current block. Instances
// add their output into it.
func (g *Graph) Input(key arena.Key) ([]audio.Frame, bool) {
	t, ok := g.tracks.Get(key)
	if !ok {
		return nil, false
	}
	return t.input[:g.frames], true
}

// Process runs every track in order and returns the main track's output
// for the block. The slice is valid until the next Begin.
func (g *Graph) Process(ctx EffectContext) []audio.Frame {
	if g.dirty {
		g.sort()
	}

	// tracks on a cycle are not in the order and stay silent
	for _, k := range g.order {
		t, ok := g.tracks.Get(k)
		if !ok {
			continue
		}
		g.processTrack(k, t, ctx)
	}

	mainTrack, _ := g.tracks.Get(g.main)
	return mainTrack.input[:g.frames]
}

func (g *Graph) processTrack(key arena.Key, t *Track, ctx EffectContext) {
	block := t.input[:g.frames]

	silenced := false
	for _, fx := range t.effects {
		slot, ok := g.effects.Get(fx)
		if !ok {
			continue
		}
		wasFailed := slot.failed
		if err := slot.process(block, ctx); err != nil {
			if !wasFailed {
				g.onFault(err, fx)
			}
			silenced = true
		}
	}
	if silenced {
		audio.Clear(block)
	}

	from, to := t.step(ctx.DeltaTime, ctx.Resolver)
	audio.ScaleRamp(block, from, to)

	for i := range t.routes {
		r := &t.routes[i]
		prev, gain := r.gain.next(float32(r.volume.Update(ctx.DeltaTime, ctx.Resolver)))

		dst, ok := g.tracks.Get(r.to)
		if !ok {
			g.onFault(ErrMissingTrack, key)
			continue
		}
		audio.AccumulateRamp(dst.input[:g.frames], block, prev, gain)
	}
}
