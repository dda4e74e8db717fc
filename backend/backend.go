// SPDX-License-Identifier: EPL-2.0

// Package backend defines the boundary between the engine and whatever
// consumes its audio: a sound card, a file, a test.
//
// A device is set up by its constructor, which discovers the sample rate
// the engine must render at. Start hands it the render entry point, which
// the device then calls from its own goroutine. Close stops the stream
// before releasing it, so Render is never called after Close returns.
package backend

import "errors"

var (
	ErrDeviceUnavailable = errors.New("audio device unavailable")
	ErrDeviceConfig      = errors.New("audio device configuration rejected")
	ErrNotStarted        = errors.New("device not started")
	ErrAlreadyStarted    = errors.New("device already started")
	ErrClosed            = errors.New("device closed")
)

// Renderer fills out with interleaved stereo float32 samples. It is
// called from a single goroutine at a time.
type Renderer interface {
	Render(out []float32)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(out []float32)

func (f RenderFunc) Render(out []float32) { f(out) }

type Device interface {
	// SampleRate is fixed once the device is set up.
	SampleRate() int
	Start(r Renderer) error
	Close() error
}
