// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/tween"
)

// Limits size the preallocated parts of a track.
type Limits struct {
	BlockFrames int
	MaxRoutes   int
	MaxEffects  int
}

// RouteSettings describes one outgoing send.
type RouteSettings struct {
	To     arena.Key
	Volume tween.Value
}

// TrackSettings describe a new track.
type TrackSettings struct {
	Volume tween.Value
	Routes []RouteSettings
}

// DefaultTrackSettings is unity volume with no routes.
func DefaultTrackSettings() TrackSettings {
	return TrackSettings{Volume: tween.Fixed(1)}
}

type route struct {
	to     arena.Key
	volume tween.Tweenable
	gain   ramp
}

// ramp remembers the gain applied at the end of the previous block so the
// next block can slide from it. The first block starts flat.
type ramp struct {
	last   float32
	primed bool
}

func (r *ramp) next(to float32) (float32, float32) {
	from := r.last
	if !r.primed {
		from = to
		r.primed = true
	}
	r.last = to
	return from, to
}

// Track is a mixing bus.
type Track struct {
	volume  tween.Tweenable
	gain    ramp
	routes  []route
	effects []arena.Key
	input   []audio.Frame
}

// NewTrack allocates a track sized by l. Routes beyond l.MaxRoutes are
// rejected with ErrTooManyRoutes.
func NewTrack(s TrackSettings, l Limits) (Track, error) {
	if l.BlockFrames <= 0 || l.MaxRoutes <= 0 || l.MaxEffects <= 0 {
		return Track{}, ErrInvalidLimits
	}
	if len(s.Routes) > l.MaxRoutes {
		return Track{}, ErrTooManyRoutes
	}

	t := Track{
		volume:  tween.NewTweenable(s.Volume),
		routes:  make([]route, 0, l.MaxRoutes),
		effects: make([]arena.Key, 0, l.MaxEffects),
		input:   make([]audio.Frame, l.BlockFrames),
	}
	for _, r := range s.Routes {
		t.routes = append(t.routes, route{to: r.To, volume: tween.NewTweenable(r.Volume)})
	}

	return t, nil
}

func (t *Track) Volume() float64 { return t.volume.Value() }

// Routes returns the destinations in insertion order.
func (t *Track) Routes(dst []arena.Key) []arena.Key {
	for _, r := range t.routes {
		dst = append(dst, r.to)
	}
	return dst
}

func (t *Track) Effects() []arena.Key { return t.effects }

func (t *Track) findRoute(to arena.Key) int {
	for i := range t.routes {
		if t.routes[i].to == to {
			return i
		}
	}
	return -1
}

func (t *Track) removeRoute(to arena.Key) bool {
	i := t.findRoute(to)
	if i < 0 {
		return false
	}
	copy(t.routes[i:], t.routes[i+1:])
	t.routes[len(t.routes)-1] = route{}
	t.routes = t.routes[:len(t.routes)-1]
	return true
}

func (t *Track) removeEffect(key arena.Key) bool {
	for i, k := range t.effects {
		if k == key {
			copy(t.effects[i:], t.effects[i+1:])
			t.effects = t.effects[:len(t.effects)-1]
			return true
		}
	}
	return false
}

// step advances the volume tweens by one block and returns the gain at the
// start and end of the block.
func (t *Track) step(dt float64, r tween.Resolver) (from, to float32) {
	return t.gain.next(float32(t.volume.Update(dt, r)))
}
