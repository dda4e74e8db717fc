// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"slices"
	"sync"

	"github.com/ik5/audmix/arena"
)

// Topology mirrors the routing relation on the control side so routes that
// would close a cycle are refused before a command is ever sent. Each
// mutation validates, runs the caller's send function and records the
// change only if the send succeeded, all under one lock.
type Topology struct {
	mu         sync.Mutex
	main       arena.Key
	maxRoutes  int
	maxEffects int
	edges      map[arena.Key][]arena.Key
	effects    map[arena.Key][]arena.Key
}

// NewTopology starts with only the main track. BlockFrames in l is unused.
func NewTopology(main arena.Key, l Limits) *Topology {
	return &Topology{
		main:       main,
		maxRoutes:  l.MaxRoutes,
		maxEffects: l.MaxEffects,
		edges:      map[arena.Key][]arena.Key{main: nil},
		effects:    make(map[arena.Key][]arena.Key),
	}
}

func (t *Topology) Main() arena.Key { return t.main }

// Has reports whether key is a known track.
func (t *Topology) Has(key arena.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.edges[key]
	return ok
}

// Routes returns a copy of the destinations of key.
func (t *Topology) Routes(key arena.Key) []arena.Key {
	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]arena.Key(nil), t.edges[key]...)
}

// AddTrack registers a new track with routes to existing tracks. A new
// track has no inbound routes, so it cannot close a cycle.
func (t *Topology) AddTrack(key arena.Key, routes []arena.Key, send func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(routes) > t.maxRoutes {
		return ErrTooManyRoutes
	}
	for i, to := range routes {
		if _, ok := t.edges[to]; !ok {
			return ErrUnknownTrack
		}
		for _, seen := range routes[:i] {
			if seen == to {
				return ErrDuplicateRoute
			}
		}
	}

	if err := send(); err != nil {
		return err
	}
	t.edges[key] = append(make([]arena.Key, 0, len(routes)), routes...)

	return nil
}

// RemoveTrack forgets key and every route into it.
func (t *Topology) RemoveTrack(key arena.Key, send func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if key == t.main {
		return ErrMainTrack
	}
	if _, ok := t.edges[key]; !ok {
		return ErrUnknownTrack
	}

	if err := send(); err != nil {
		return err
	}
	delete(t.edges, key)
	delete(t.effects, key)
	for from, dsts := range t.edges {
		t.edges[from] = removeKey(dsts, key)
	}

	return nil
}

// CheckRoute reports whether from -> to may be added.
func (t *Topology) CheckRoute(from, to arena.Key) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.checkRoute(from, to)
}

func (t *Topology) checkRoute(from, to arena.Key) error {
	if from == t.main {
		return ErrMainTrack
	}
	if _, ok := t.edges[from]; !ok {
		return ErrUnknownTrack
	}
	if _, ok := t.edges[to]; !ok {
		return ErrUnknownTrack
	}
	if from == to || t.reaches(to, from) {
		return ErrRouteCycle
	}
	if !slices.Contains(t.edges[from], to) && len(t.edges[from]) >= t.maxRoutes {
		return ErrTooManyRoutes
	}
	return nil
}

// reaches does a depth first search along routes from start.
func (t *Topology) reaches(start, target arena.Key) bool {
	seen := map[arena.Key]bool{start: true}
	stack := []arena.Key{start}

	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if k == target {
			return true
		}
		for _, next := range t.edges[k] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// SetRoute validates from -> to, sends and records it. Setting an existing
// route only changes its volume and always passes the cycle check.
func (t *Topology) SetRoute(from, to arena.Key, send func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.checkRoute(from, to); err != nil {
		return err
	}
	if err := send(); err != nil {
		return err
	}
	if !slices.Contains(t.edges[from], to) {
		t.edges[from] = append(t.edges[from], to)
	}

	return nil
}

func (t *Topology) RemoveRoute(from, to arena.Key, send func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.edges[from]; !ok {
		return ErrUnknownTrack
	}
	if err := send(); err != nil {
		return err
	}
	t.edges[from] = removeKey(t.edges[from], to)

	return nil
}

func removeKey(keys []arena.Key, k arena.Key) []arena.Key {
	return slices.DeleteFunc(keys, func(x arena.Key) bool { return x == k })
}

// AddEffect records effect on track, refusing it when the chain is full.
func (t *Topology) AddEffect(track, effect arena.Key, send func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.edges[track]; !ok {
		return ErrUnknownTrack
	}
	if len(t.effects[track]) >= t.maxEffects {
		return ErrTooManyEffects
	}
	if err := send(); err != nil {
		return err
	}
	t.effects[track] = append(t.effects[track], effect)

	return nil
}

// RemoveEffect forgets effect. An effect that is not recorded on track,
// because it was already removed or its track is gone, is left alone and
// nothing is sent.
func (t *Topology) RemoveEffect(track, effect arena.Key, send func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !slices.Contains(t.effects[track], effect) {
		return nil
	}
	if err := send(); err != nil {
		return err
	}
	t.effects[track] = removeKey(t.effects[track], effect)

	return nil
}

// Effects returns how many effects track has.
func (t *Topology) Effects(track arena.Key) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.effects[track])
}
