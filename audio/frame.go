// SPDX-License-Identifier: EPL-2.0

package audio

// Frame is one stereo sample pair. The mixer works on blocks of Frames.
type Frame struct {
	Left  float32
	Right float32
}

// FromMono returns a frame with v on both channels.
func FromMono(v float32) Frame { return Frame{Left: v, Right: v} }

func (f Frame) Add(o Frame) Frame { return Frame{Left: f.Left + o.Left, Right: f.Right + o.Right} }

func (f Frame) Scale(g float32) Frame { return Frame{Left: f.Left * g, Right: f.Right * g} }

// Pan applies a balance law: 0 is hard left, 0.5 leaves the frame
// untouched and 1 is hard right. Neither side is ever boosted.
func (f Frame) Pan(p float32) Frame {
	l := 2 * (1 - p)
	r := 2 * p
	if l > 1 {
		l = 1
	}
	if r > 1 {
		r = 1
	}
	if l < 0 {
		l = 0
	}
	if r < 0 {
		r = 0
	}
	return Frame{Left: f.Left * l, Right: f.Right * r}
}

// Clear zeroes every frame of block.
func Clear(block []Frame) {
	clear(block)
}

// Accumulate adds src scaled by gain into dst, frame by frame.
func Accumulate(dst, src []Frame, gain float32) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i].Left += src[i].Left * gain
		dst[i].Right += src[i].Right * gain
	}
}

// Interleave writes block into dst as L,R,L,R... and returns the number of
// float32 values written.
func Interleave(dst []float32, block []Frame) int {
	n := min(len(dst)/2, len(block))
	for i := range n {
		dst[2*i] = block[i].Left
		dst[2*i+1] = block[i].Right
	}
	return n * 2
}

// AccumulateRamp adds src into dst with a gain moving linearly from `from`
// at the first frame to `to` at the last one. It keeps gain changes
// between blocks free of steps.
func AccumulateRamp(dst, src []Frame, from, to float32) {
	n := min(len(dst), len(src))
	if from == to {
		Accumulate(dst[:n], src[:n], to)
		return
	}
	step := rampStep(from, to, n)
	for i := range n {
		g := from + step*float32(i)
		dst[i].Left += src[i].Left * g
		dst[i].Right += src[i].Right * g
	}
}

// ScaleRamp multiplies block in place by a gain ramp, as AccumulateRamp.
func ScaleRamp(block []Frame, from, to float32) {
	n := len(block)
	step := rampStep(from, to, n)
	for i := range n {
		g := from + step*float32(i)
		block[i].Left *= g
		block[i].Right *= g
	}
}

func rampStep(from, to float32, n int) float32 {
	if n <= 1 {
		return 0
	}
	return (to - from) / float32(n-1)
}
