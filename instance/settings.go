// SPDX-License-Identifier: EPL-2.0

package instance

import (
	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/tween"
)

// StartTime says when an instance begins. The zero value starts it at the
// next block; otherwise it waits until Clock crosses Tick.
type StartTime struct {
	Clock arena.Key
	Tick  uint64
}

// Immediate starts on the block the play command is applied.
func Immediate() StartTime { return StartTime{} }

// At waits for tick on clock.
func At(clock arena.Key, tick uint64) StartTime { return StartTime{Clock: clock, Tick: tick} }

func (s StartTime) Immediate() bool { return s.Clock.IsZero() }

type LoopMode uint8

const (
	// LoopDefault follows the sound's own loop setting.
	LoopDefault LoopMode = iota
	// LoopCustom loops from Loop.Start.
	LoopCustom
	NoLoop
)

type Loop struct {
	Mode LoopMode
	// Start in seconds, used by LoopCustom.
	Start float64
}

// LoopFrom loops back to start seconds.
func LoopFrom(start float64) Loop { return Loop{Mode: LoopCustom, Start: start} }

type Settings struct {
	StartTime StartTime
	// StartPosition in seconds. Reversed instances count it from the end.
	StartPosition float64
	Volume        tween.Value
	PlaybackRate  tween.Value
	// Panning is 0 for hard left, 0.5 centred and 1 hard right.
	Panning tween.Value
	Reverse bool
	Loop    Loop
	// Track receives the output. The zero key means the main track.
	Track  arena.Key
	FadeIn tween.Tween
}

// DefaultSettings plays once, centred, at unity volume and normal speed.
func DefaultSettings() Settings {
	return Settings{
		Volume:       tween.Fixed(1),
		PlaybackRate: tween.Fixed(1),
		Panning:      tween.Fixed(0.5),
	}
}
