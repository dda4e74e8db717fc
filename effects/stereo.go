// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"errors"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/mixer"
)

var ErrBlockFrames = errors.New("effect block size must be positive")

// stereo holds one float64 scratch buffer per channel.
type stereo struct {
	left, right []float64
}

func newStereo(blockFrames int) (stereo, error) {
	if blockFrames <= 0 {
		return stereo{}, ErrBlockFrames
	}
	return stereo{
		left:  make([]float64, blockFrames),
		right: make([]float64, blockFrames),
	}, nil
}

// split deinterleaves block into the scratch buffers and returns them
// trimmed to the block length.
func (s *stereo) split(block []audio.Frame) ([]float64, []float64) {
	n := min(len(block), len(s.left))
	l, r := s.left[:n], s.right[:n]
	for i := range n {
		l[i] = float64(block[i].Left)
		r[i] = float64(block[i].Right)
	}
	return l, r
}

func (s *stereo) merge(block []audio.Frame) {
	n := min(len(block), len(s.left))
	for i := range n {
		block[i] = audio.Frame{Left: float32(s.left[i]), Right: float32(s.right[i])}
	}
}

// inPlace is the block entry point shared by the algo-dsp processors.
type inPlace interface {
	ProcessInPlace(buf []float64)
}

// pair runs one mono processor per channel.
type pair struct {
	left, right inPlace
	scratch     stereo
}

func (p *pair) Process(block []audio.Frame, _ mixer.EffectContext) {
	l, r := p.scratch.split(block)
	p.left.ProcessInPlace(l)
	p.right.ProcessInPlace(r)
	p.scratch.merge(block)
}

func newPair[P inPlace](blockFrames int, build func() (P, error)) (pair, error) {
	scratch, err := newStereo(blockFrames)
	if err != nil {
		return pair{}, err
	}
	l, err := build()
	if err != nil {
		return pair{}, err
	}
	r, err := build()
	if err != nil {
		return pair{}, err
	}
	return pair{left: l, right: r, scratch: scratch}, nil
}
