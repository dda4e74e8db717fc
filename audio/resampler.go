// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// Resampler streams src at another sample rate using Catmull-Rom cubic
// interpolation. It works on interleaved samples and keeps the channel
// count. Sounds are resampled once, at load time, to the device rate.
type Resampler struct {
	src      Source
	channels int
	dstRate  int
	step     float64 // source frames consumed per output frame

	// window holds the four source frames around the read position:
	// t-1, t, t+1, t+2. real marks frames that came from src rather than
	// being repeated at the edges.
	window [4][]float32
	real   [4]bool
	frac   float64
	primed bool

	in      []float32
	inPos   int
	inLen   int
	drained bool
	err     error
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)

	r := &Resampler{
		src:      src,
		channels: channels,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		in:       make([]float32, 4096-4096%channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampler source: %w", err)
	}
	return nil
}

// pull copies the next source frame into frame. It returns false once the
// source is exhausted.
func (r *Resampler) pull(frame []float32) bool {
	for r.inPos >= r.inLen {
		if r.drained {
			return false
		}

		n, err := r.src.ReadSamples(r.in)
		r.inPos, r.inLen = 0, n-n%r.channels

		switch {
		case err == io.EOF:
			r.drained = true
		case err != nil:
			r.err = err
			r.drained = true
		case n == 0:
			// a source returning nothing without an error is treated as finished
			r.drained = true
		}
	}

	copy(frame, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels
	return true
}

func (r *Resampler) prime() {
	r.primed = true

	r.real[1] = r.pull(r.window[1])
	copy(r.window[0], r.window[1])
	for i := 2; i < 4; i++ {
		r.real[i] = r.pull(r.window[i])
		if !r.real[i] {
			copy(r.window[i], r.window[i-1])
		}
	}
}

func (r *Resampler) advance() {
	first := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.real[:3], r.real[1:])
	r.window[3] = first

	r.real[3] = r.pull(r.window[3])
	if !r.real[3] {
		copy(r.window[3], r.window[2])
	}
}

// ReadSamples produces interleaved samples at the destination rate. dst
// length must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		r.prime()
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		if !r.real[1] {
			break
		}

		x := float32(r.frac)
		w := r.window
		for c := range r.channels {
			dst[written*r.channels+c] = utils.CubicInterpolate(w[0][c], w[1][c], w[2][c], w[3][c], x)
		}
		written++

		r.frac += r.step
		for r.frac >= 1 {
			r.frac--
			r.advance()
		}
	}

	if written < frames {
		if r.err != nil {
			return written * r.channels, fmt.Errorf("resample: %w", r.err)
		}
		return written * r.channels, io.EOF
	}

	return written * r.channels, nil
}
