// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// ReadAll drains src and returns every interleaved sample it produced.
// bufferSize is the read chunk in samples and is rounded down to a whole
// number of frames.
func ReadAll(src Source, bufferSize int) ([]float32, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}

	bufferSize = max(bufferSize, channels)
	bufferSize -= bufferSize % channels

	// start with roughly a second of audio and let append grow from there
	out := make([]float32, 0, max(src.SampleRate(), 1)*channels)
	buf := make([]float32, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, fmt.Errorf("read samples: %w", err)
		}
		if n == 0 {
			return out, nil
		}
	}
}
