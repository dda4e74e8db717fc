// SPDX-License-Identifier: EPL-2.0

// Package audio provides the sample-level building blocks shared by the
// decoders and the engine.
//
// # Sources
//
// Decoders produce a Source: a pull stream of interleaved float32 samples
// in [-1,1]. Sources chain, so a decoded file can be resampled and mixed
// down before it is loaded into memory:
//
//	src, _ := wav.Decoder{}.Decode(f)
//	resampled := audio.NewResampler(src, 48000)
//	samples, err := audio.ReadAll(resampled, 4096)
//
// The Resampler uses Catmull-Rom interpolation over a four frame window and
// keeps the channel layout. MonoMixer averages all channels into one.
//
// # Frames
//
// The engine itself works on stereo Frame blocks. Accumulate, Clear and
// Interleave are the hot-path helpers used by the mixer and renderer; none
// of them allocate.
//
// # Registry
//
// A Registry maps format keys to decoders and is safe for concurrent use:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	dec, ok := registry.ForPath("kick.WAV")
package audio
