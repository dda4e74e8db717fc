// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestDecoder_RejectsGarbage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input io.Reader
	}{
		{"empty", bytes.NewReader(nil)},
		{"text", bytes.NewReader([]byte("This is not AIFF data"))},
		{"wav header", bytes.NewReader([]byte("RIFF\x24\x00\x00\x00WAVEfmt "))},
		{"non seeking reader", io.LimitReader(bytes.NewReader([]byte("FORM....AIFF")), 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(tt.input); !errors.Is(err, ErrNotAiffFile) {
				t.Errorf("Decode() error = %v, want ErrNotAiffFile", err)
			}
		})
	}
}
