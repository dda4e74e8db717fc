// SPDX-License-Identifier: EPL-2.0

// Package effects provides ready-made mixer effects backed by the algo-dsp
// processors: a biquad filter with a tweenable cutoff, feedback delay,
// reverb, distortion and compression.
//
// The processors are mono and work on float64, so every effect runs one
// instance per channel over scratch buffers allocated at construction.
// Construct effects on the control side and hand them to the mixer.
package effects
