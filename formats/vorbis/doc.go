// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis. Samples come out interleaved,
// [L0, R0, L1, R1, ...] for stereo files.
package vorbis
