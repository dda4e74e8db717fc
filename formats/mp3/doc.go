// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 Layer 3 audio through
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always produces 16-bit stereo, so the Source is two channels at
// the stream's sample rate regardless of how the file was encoded.
package mp3
