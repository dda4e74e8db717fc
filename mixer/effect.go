// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"github.com/ik5/audmix/arena"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/tween"
)

// EffectContext is what an effect sees besides the block.
type EffectContext struct {
	SampleRate int
	// DeltaTime is the block duration in seconds.
	DeltaTime float64
	// Resolver resolves parameter-bound values.
	Resolver tween.Resolver
}

// Effect transforms one block in place and keeps whatever state it needs
// across blocks. Process runs on the render goroutine and must not block
// or allocate.
type Effect interface {
	Process(block []audio.Frame, ctx EffectContext)
}

// EffectFunc adapts a plain function to Effect.
type EffectFunc func(block []audio.Frame, ctx EffectContext)

func (f EffectFunc) Process(block []audio.Frame, ctx EffectContext) { f(block, ctx) }

// EffectSlot is an effect installed on a track, with its bypass switch
// and wet/dry mix.
type EffectSlot struct {
	effect  Effect
	track   arena.Key
	enabled bool
	mix     tween.Tweenable
	dry     []audio.Frame
	failed  bool
}

// NewEffectSlot prepares e for track. mix is the wet amount, 1 being fully
// processed. The dry buffer is sized for blocks of blockFrames.
func NewEffectSlot(e Effect, track arena.Key, blockFrames int, mix tween.Value) EffectSlot {
	return EffectSlot{
		effect:  e,
		track:   track,
		enabled: true,
		mix:     tween.NewTweenable(mix),
		dry:     make([]audio.Frame, blockFrames),
	}
}

func (s *EffectSlot) Track() arena.Key { return s.track }
func (s *EffectSlot) Enabled() bool    { return s.enabled }
func (s *EffectSlot) Failed() bool     { return s.failed }
func (s *EffectSlot) Mix() float64     { return s.mix.Value() }

// process runs the effect over block. A panicking effect is marked failed
// and reports ErrEffectPanic on this and every later block.
func (s *EffectSlot) process(block []audio.Frame, ctx EffectContext) (err error) {
	mix := float32(s.mix.Update(ctx.DeltaTime, ctx.Resolver))

	if s.failed {
		return ErrEffectPanic
	}
	if !s.enabled || s.effect == nil || mix <= 0 {
		return nil
	}

	wetOnly := mix >= 1 || len(block) > len(s.dry)
	if !wetOnly {
		copy(s.dry, block)
	}

	defer func() {
		if r := recover(); r != nil {
			s.failed = true
			err = ErrEffectPanic
		}
	}()

	s.effect.Process(block, ctx)

	if !wetOnly {
		for i := range block {
			block[i] = s.dry[i].Scale(1 - mix).Add(block[i].Scale(mix))
		}
	}
	return nil
}
