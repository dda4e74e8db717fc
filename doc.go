// SPDX-License-Identifier: EPL-2.0

// Package audmix is a real-time audio mixing engine.
//
// A Manager owns an output device and a renderer running on the device's
// audio goroutine. Everything the caller does goes through the Manager or
// one of its handles, which turn each request into a command on a
// lock-free queue. The renderer drains that queue at the start of every
// block, so the audio goroutine never takes a lock and never allocates.
//
// # Resources
//
// Sounds are decoded audio held in memory. Playing a sound creates an
// instance with its own volume, playback rate, panning, loop and fades.
// An arrangement stitches clips of sounds into one sound that plays the
// same way.
// Instances play into tracks; tracks run an effect chain and route into
// other tracks, ending in the main track. Clocks tick at a tweenable
// speed and drive sequences, which start sounds and emit events at given
// ticks. Parameters are named values that any of the above can follow.
//
// Each resource is identified by a generational key, so an id kept after
// its resource is gone can never address a newer one.
//
// # Quick start
//
//	m, err := audmix.NewManager(audmix.DefaultSettings())
//	if err != nil {
//		return err
//	}
//	defer m.Close()
//
//	snd, err := m.LoadSound("drums.ogg")
//	if err != nil {
//		return err
//	}
//	inst, err := m.Play(snd, instance.DefaultSettings())
//	...
//	inst.Stop(tween.LinearOver(500 * time.Millisecond))
//
// # Events
//
// The renderer reports finished instances and sequences, custom events
// from sequences or EmitCustomEvent, and render faults on a bounded channel read with PollEvent. When
// it is full, EventOverflow in Settings decides whether the oldest or the
// newest event is lost.
//
// # Devices
//
// By default the Manager plays through the system sound card with
// backend/oto. backend/offline renders on demand instead, for tests and
// for bouncing a mix to a WAV file.
package audmix
