// SPDX-License-Identifier: EPL-2.0

// Package offline is a device that renders only when asked. It drives the
// engine synchronously, which makes it the device of choice for tests and
// for bouncing a mix to a WAV file faster than real time.
package offline

import (
	"fmt"
	"io"
	"sync"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend"
	"github.com/ik5/audmix/formats/wav"
)

// chunkFrames is how much Bounce renders per step.
const chunkFrames = 1024

var _ backend.Device = (*Device)(nil)

type Device struct {
	rate int

	mu      sync.Mutex
	r       backend.Renderer
	closed  bool
	buf     []float32
	frames  []audio.Frame
	elapsed int
}

func New(sampleRate int) (*Device, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", backend.ErrDeviceConfig, sampleRate)
	}
	return &Device{rate: sampleRate}, nil
}

func (d *Device) SampleRate() int { return d.rate }

func (d *Device) Start(r backend.Renderer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.closed:
		return backend.ErrClosed
	case d.r != nil:
		return backend.ErrAlreadyStarted
	}
	d.r = r
	return nil
}

func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.r = nil
	return nil
}

// Frames returns how many frames have been rendered so far.
func (d *Device) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.elapsed
}

// Step renders frames frames and returns them interleaved. The slice is
// reused by the next call.
func (d *Device) Step(frames int) ([]float32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.step(frames)
}

func (d *Device) step(frames int) ([]float32, error) {
	switch {
	case d.closed:
		return nil, backend.ErrClosed
	case d.r == nil:
		return nil, backend.ErrNotStarted
	}

	n := 2 * max(frames, 0)
	if cap(d.buf) < n {
		d.buf = make([]float32, n)
	}
	d.buf = d.buf[:n]
	d.r.Render(d.buf)
	d.elapsed += frames

	return d.buf, nil
}

// Bounce renders seconds of audio into w as a 16-bit stereo WAV. The WAV
// header is finalized even when rendering or writing fails part way.
func (d *Device) Bounce(w io.WriteSeeker, seconds float64) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out, err := wav.NewWriter(w, d.rate, 16)
	if err != nil {
		return fmt.Errorf("bounce: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("bounce: %w", cerr)
		}
	}()

	if cap(d.frames) < chunkFrames {
		d.frames = make([]audio.Frame, chunkFrames)
	}

	for left := int(seconds * float64(d.rate)); left > 0; {
		n := min(left, chunkFrames)

		buf, err := d.step(n)
		if err != nil {
			return fmt.Errorf("bounce: %w", err)
		}

		frames := d.frames[:n]
		for i := range frames {
			frames[i] = audio.Frame{Left: buf[2*i], Right: buf[2*i+1]}
		}
		if err := out.WriteFrames(frames); err != nil {
			return fmt.Errorf("bounce: %w", err)
		}
		left -= n
	}

	return nil
}
