// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ik5/audmix/audio"
)

type loadConfig struct {
	mono       bool
	bufferSize int
	settings   Settings
}

// LoadOption tweaks how a source is turned into a Sound.
type LoadOption func(*loadConfig)

// WithMono downmixes to mono before spreading the result on both sides.
func WithMono() LoadOption {
	return func(c *loadConfig) { c.mono = true }
}

// WithLoop makes the sound loop from start seconds by default.
func WithLoop(start float64) LoadOption {
	return func(c *loadConfig) {
		c.settings.Loop = true
		c.settings.LoopStart = start
	}
}

// WithBufferSize sets the read chunk, in samples.
func WithBufferSize(n int) LoadOption {
	return func(c *loadConfig) { c.bufferSize = n }
}

// FromSource drains src into memory at targetRate. Mono input lands on
// both channels; for more than two channels the first two are kept. src is
// closed on return.
func FromSource(src audio.Source, targetRate int, opts ...LoadOption) (*Data, error) {
	defer src.Close()

	cfg := loadConfig{bufferSize: 4096}
	for _, opt := range opts {
		opt(&cfg)
	}

	if targetRate <= 0 {
		return nil, audio.ErrInvalidSampleRate
	}

	var stream audio.Source = src
	if cfg.mono && src.Channels() > 1 {
		stream = audio.NewMonoMixer(stream)
	}
	if stream.SampleRate() != targetRate {
		stream = audio.NewResampler(stream, targetRate)
	}

	samples, err := audio.ReadAll(stream, cfg.bufferSize)
	if err != nil {
		return nil, fmt.Errorf("load sound: %w", err)
	}

	channels := stream.Channels()
	frames := make([]audio.Frame, len(samples)/channels)
	for i := range frames {
		s := samples[i*channels:]
		if channels == 1 {
			frames[i] = audio.FromMono(s[0])
			continue
		}
		frames[i] = audio.Frame{Left: s[0], Right: s[1]}
	}

	return NewData(targetRate, frames, cfg.settings)
}

// Load decodes r with the decoder registered for format.
func Load(r io.Reader, format string, reg *audio.Registry, targetRate int, opts ...LoadOption) (*Data, error) {
	dec, ok := reg.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	src, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	return FromSource(src, targetRate, opts...)
}

// LoadFile opens path and picks the decoder from its extension.
func LoadFile(path string, reg *audio.Registry, targetRate int, opts ...LoadOption) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	defer f.Close()

	return Load(f, filepath.Ext(path), reg, targetRate, opts...)
}
