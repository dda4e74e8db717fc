// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files through github.com/go-audio/aiff.
//
// Integer PCM at 8, 16, 24 and 32 bits is supported. AIFF stores samples
// big-endian and signed at every depth; go-audio handles both, so the
// resulting audio.Source looks the same as a WAV one.
package aiff
