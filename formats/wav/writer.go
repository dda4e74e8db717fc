// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// Writer encodes stereo frames to a PCM WAV stream. Close must be called
// to patch the RIFF sizes; it does not close the underlying writer.
type Writer struct {
	enc      *gowav.Encoder
	bitDepth int
	buf      *goaudio.IntBuffer
	frames   int
}

func NewWriter(w io.WriteSeeker, sampleRate, bitDepth int) (*Writer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wav: %w", audio.ErrInvalidSampleRate)
	}
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("%w: %d", ErrBitDepth, bitDepth)
	}

	format := &goaudio.Format{NumChannels: 2, SampleRate: sampleRate}

	return &Writer{
		enc:      gowav.NewEncoder(w, sampleRate, bitDepth, 2, wavFormatPCM),
		bitDepth: bitDepth,
		buf:      &goaudio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}, nil
}

// WriteFrames appends frames, clipping anything outside [-1,1].
func (w *Writer) WriteFrames(frames []audio.Frame) error {
	if len(frames) == 0 {
		return nil
	}

	need := len(frames) * 2
	if cap(w.buf.Data) < need {
		w.buf.Data = make([]int, need)
	}
	w.buf.Data = w.buf.Data[:need]

	for i, f := range frames {
		w.buf.Data[2*i] = utils.FloatToPCM(f.Left, w.bitDepth)
		w.buf.Data[2*i+1] = utils.FloatToPCM(f.Right, w.bitDepth)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: write frames: %w", err)
	}
	w.frames += len(frames)
	return nil
}

// Frames returns how many frames were written so far.
func (w *Writer) Frames() int { return w.frames }

func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: finalize: %w", err)
	}
	return nil
}
