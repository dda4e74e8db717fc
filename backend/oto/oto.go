// SPDX-License-Identifier: EPL-2.0

// Package oto plays the engine through the system sound card using
// github.com/ebitengine/oto/v3.
//
// oto allows one context per process, so only one Device can be set up
// at a time. A second Setup fails with backend.ErrDeviceUnavailable.
package oto

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/audmix/backend"
)

const (
	channels       = 2
	bytesPerSample = 4
	frameBytes     = channels * bytesPerSample
)

type Config struct {
	SampleRate int
	// BufferSize is a latency hint. Zero lets oto decide.
	BufferSize time.Duration
}

// DefaultConfig asks for 48 kHz with oto's default buffering.
func DefaultConfig() Config {
	return Config{SampleRate: 48000}
}

var _ backend.Device = (*Device)(nil)

type Device struct {
	ctx  *oto.Context
	rate int

	mu      sync.Mutex
	player  *oto.Player
	started bool
	closed  bool

	stream *stream
}

// Setup opens the output device and waits until it is ready.
func Setup(cfg Config) (*Device, error) {
	if cfg.SampleRate <= 0 || cfg.BufferSize < 0 {
		return nil, fmt.Errorf("%w: sample rate %d, buffer %s", backend.ErrDeviceConfig, cfg.SampleRate, cfg.BufferSize)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", backend.ErrDeviceUnavailable, err)
	}
	<-ready

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", backend.ErrDeviceUnavailable, err)
	}

	return &Device{ctx: ctx, rate: cfg.SampleRate}, nil
}

func (d *Device) SampleRate() int { return d.rate }

// Start begins pulling audio from r on oto's playback goroutine.
func (d *Device) Start(r backend.Renderer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case d.closed:
		return backend.ErrClosed
	case d.started:
		return backend.ErrAlreadyStarted
	}

	d.stream = newStream(r)
	d.player = d.ctx.NewPlayer(d.stream)
	d.player.Play()
	if err := d.player.Err(); err != nil {
		d.player = nil
		return fmt.Errorf("%w: %w", backend.ErrDeviceUnavailable, err)
	}
	d.started = true

	return nil
}

// Err reports an asynchronous playback failure, if any.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player == nil {
		return nil
	}
	return d.player.Err()
}

// Close stops the stream, detaches the renderer and suspends the context.
// The context itself cannot be released while the process runs.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if d.player != nil {
		d.player.Pause()
		d.stream.detach()
		if err := d.player.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close player: %w", err))
		}
		d.player = nil
	}
	if err := d.ctx.Suspend(); err != nil {
		errs = append(errs, fmt.Errorf("suspend context: %w", err))
	}

	return errors.Join(errs...)
}

// stream is the io.Reader oto pulls from. It renders straight into a
// reused float buffer and encodes that into oto's byte slice. mu is held
// for the whole render, so detach waits for a Read in flight.
type stream struct {
	mu  sync.Mutex
	r   backend.Renderer
	buf []float32
}

func newStream(r backend.Renderer) *stream {
	return &stream{r: r, buf: make([]float32, 4096)}
}

// detach returns once no Read is rendering; later Reads produce silence.
func (s *stream) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.r = nil
}

func (s *stream) Read(p []byte) (int, error) {
	n := len(p) - len(p)%frameBytes
	samples := n / bytesPerSample

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.r == nil {
		clear(p[:n])
		return n, nil
	}

	// oto asks for roughly the same amount every time; growing happens once
	if cap(s.buf) < samples {
		s.buf = make([]float32, samples)
	}
	buf := s.buf[:samples]
	s.r.Render(buf)

	encode(p, buf)
	return n, nil
}

func encode(dst []byte, src []float32) {
	for i, v := range src {
		binary.LittleEndian.PutUint32(dst[i*bytesPerSample:], math.Float32bits(v))
	}
}
