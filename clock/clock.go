// SPDX-License-Identifier: EPL-2.0

// Package clock provides the virtual timelines that schedule instance
// starts and sequence steps. A clock counts ticks at a tweenable speed and
// reports, per block, which tick boundaries it crossed.
package clock

import (
	"fmt"
	"math"

	"github.com/ik5/audmix/tween"
)

type State uint8

const (
	Stopped State = iota
	Started
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Started:
		return "started"
	case Paused:
		return "paused"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Settings configure a new clock. Speed is in ticks per second.
type Settings struct {
	Speed tween.Value
}

// TicksPerMinute returns a fixed speed of bpm ticks per minute.
func TicksPerMinute(bpm float64) tween.Value { return tween.Fixed(bpm / 60) }

// Span is a run of ticks crossed during one block, both ends included.
type Span struct {
	First, Last uint64
}

// Contains reports whether tick lies in the span.
func (s Span) Contains(tick uint64) bool { return tick >= s.First && tick <= s.Last }

// Clock is a render-side timeline.
type Clock struct {
	state    State
	speed    tween.Tweenable
	ticks    uint64
	fraction float64
	// pending means the clock was started from Stopped and has not yet
	// reported tick 0.
	pending bool

	crossed Span
	fired   bool
}

func New(s Settings) Clock {
	return Clock{speed: tween.NewTweenable(s.Speed)}
}

func (c *Clock) State() State      { return c.state }
func (c *Clock) Ticks() uint64     { return c.ticks }
func (c *Clock) Fraction() float64 { return c.fraction }
func (c *Clock) Speed() float64    { return c.speed.Value() }

// Time returns the position in ticks, fraction included.
func (c *Clock) Time() float64 { return float64(c.ticks) + c.fraction }

// Start begins counting, or resumes a paused clock. Starting a stopped
// clock reports tick 0 on the next update.
func (c *Clock) Start() {
	if c.state == Stopped {
		c.pending = true
	}
	c.state = Started
}

func (c *Clock) Pause() {
	if c.state == Started {
		c.state = Paused
	}
}

// Stop halts the clock and rewinds it to zero.
func (c *Clock) Stop() {
	c.state = Stopped
	c.ticks = 0
	c.fraction = 0
	c.pending = false
	c.fired = false
}

func (c *Clock) SetSpeed(v tween.Value, tw tween.Tween) { c.speed.Set(v, tw) }

// Update advances the clock by dt seconds and reports the ticks crossed.
// Negative speeds count as zero: a clock never runs backwards.
func (c *Clock) Update(dt float64, r tween.Resolver) (Span, bool) {
	speed := max(c.speed.Update(dt, r), 0)
	c.fired = false

	if c.state != Started {
		return Span{}, false
	}

	if c.pending {
		c.pending = false
		c.crossed = Span{First: 0, Last: 0}
		c.fired = true
	}

	c.fraction += speed * dt
	if c.fraction >= 1 {
		whole := math.Floor(c.fraction)
		c.fraction -= whole
		if !c.fired {
			c.crossed.First = c.ticks + 1
		}
		c.ticks += uint64(whole)
		c.crossed.Last = c.ticks
		c.fired = true
	}

	return c.crossed, c.fired
}

// Crossed returns what the last Update reported.
func (c *Clock) Crossed() (Span, bool) { return c.crossed, c.fired }

// Reached reports whether tick has been crossed since the clock started.
func (c *Clock) Reached(tick uint64) bool {
	return c.state != Stopped && !c.pending && c.ticks >= tick
}
