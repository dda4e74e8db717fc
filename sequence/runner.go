// SPDX-License-Identifier: EPL-2.0

package sequence

import (
	"fmt"
	"sort"

	"github.com/ik5/audmix/arena"
)

type State uint8

const (
	Playing State = iota
	Paused
	Muted
	Finished
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Muted:
		return "muted"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Settings bind a sequence to its clock. Tick 0 of the sequence falls
// Delay ticks after the clock position when the sequence is applied.
type Settings struct {
	Clock arena.Key
	Delay uint64
}

// Runner is the render-side state of a playing sequence. Everything it
// needs is allocated by NewRunner.
type Runner struct {
	steps     []Step
	clock     arena.Key
	delay     uint64
	base      uint64
	cursor    int
	loop      bool
	loopStart uint64
	length    uint64
	loopFirst int

	paused   bool
	muted    bool
	finished bool
	pausedAt uint64

	due     []Action
	dropped int
}

// NewRunner prepares seq. At most maxActions actions fire per block; the
// rest are dropped and counted.
func NewRunner(seq Sequence, s Settings, maxActions int) (Runner, error) {
	if err := seq.Validate(); err != nil {
		return Runner{}, err
	}
	if maxActions <= 0 {
		return Runner{}, ErrInvalidActions
	}

	steps := seq.sorted()
	r := Runner{
		steps:     steps,
		clock:     s.Clock,
		delay:     s.Delay,
		loop:      seq.Loop,
		loopStart: seq.LoopStart,
		length:    seq.Length,
		due:       make([]Action, 0, maxActions),
	}
	r.loopFirst = sort.Search(len(steps), func(i int) bool { return steps[i].At >= seq.LoopStart })

	return r, nil
}

func (r *Runner) Clock() arena.Key { return r.clock }

func (r *Runner) State() State {
	switch {
	case r.finished:
		return Finished
	case r.paused:
		return Paused
	case r.muted:
		return Muted
	default:
		return Playing
	}
}

// Begin anchors the sequence at clock tick now.
func (r *Runner) Begin(now uint64) { r.base = now + r.delay }

// Pause freezes the cursor at clock tick now.
func (r *Runner) Pause(now uint64) {
	if r.finished || r.paused {
		return
	}
	r.paused = true
	r.pausedAt = now
}

// Resume continues from where Pause left off, shifting the schedule by the
// ticks spent paused.
func (r *Runner) Resume(now uint64) {
	if !r.paused {
		return
	}
	r.paused = false
	if now > r.pausedAt {
		r.base += now - r.pausedAt
	}
}

// Mute keeps the cursor moving but suppresses PlaySound actions.
func (r *Runner) Mute()   { r.muted = true }
func (r *Runner) Unmute() { r.muted = false }
func (r *Runner) Stop()   { r.finished = true }

// Dropped returns how many actions did not fit in a block since the last
// call, and resets the count.
func (r *Runner) Dropped() int {
	n := r.dropped
	r.dropped = 0
	return n
}

// Advance fires every step due by clock tick now and returns the actions.
// The slice is reused by the next call. A loop wraps at most once per
// call.
func (r *Runner) Advance(now uint64) []Action {
	r.due = r.due[:0]
	if r.finished || r.paused || now < r.base {
		return r.due
	}

	r.fire(now - r.base)

	if r.loop && now-r.base >= r.length {
		r.base += r.length - r.loopStart
		r.cursor = r.loopFirst
		r.fire(now - r.base)
		return r.due
	}

	if !r.loop && r.cursor == len(r.steps) && now-r.base >= r.length {
		r.finished = true
	}
	return r.due
}

func (r *Runner) fire(rel uint64) {
	for r.cursor < len(r.steps) && r.steps[r.cursor].At <= rel {
		a := r.steps[r.cursor].Action
		r.cursor++

		if r.muted && a.Kind == PlaySound {
			continue
		}
		if len(r.due) == cap(r.due) {
			r.dropped++
			continue
		}
		r.due = append(r.due, a)
	}
}
