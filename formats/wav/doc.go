// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes WAV files through github.com/go-audio/wav.
//
// The Decoder accepts integer PCM at 8, 16, 24 or 32 bits and any channel
// count, producing an audio.Source of float32 samples in [-1,1]:
//
//	f, _ := os.Open("hit.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// The Writer takes stereo audio.Frame blocks, which is what the offline
// backend renders, and encodes them as 16 or 24-bit PCM:
//
//	w, _ := wav.NewWriter(f, 48000, 16)
//	_ = w.WriteFrames(block)
//	_ = w.Close()
package wav
