// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/ik5/audmix/internal/audiotest"
)

type stubDecoder struct{ name string }

func (d *stubDecoder) Decode(io.Reader) (Source, error) {
	return audiotest.NewSilentSource(44100, 2, 100), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	wav := &stubDecoder{name: "wav"}
	registry.Register("wav", wav)

	tests := []struct {
		key    string
		wantOK bool
	}{
		{"wav", true},
		{"WAV", true},
		{".wav", true},
		{"mp3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := registry.Get(tt.key)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.key, ok, tt.wantOK)
			}
			if ok && got != wav {
				t.Errorf("Get(%q) returned a different decoder", tt.key)
			}
		})
	}
}

func TestRegistry_ForPathAndFormats(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register("ogg", &stubDecoder{name: "ogg"})
	registry.Register("mp3", &stubDecoder{name: "mp3"})

	if _, ok := registry.ForPath("/sfx/Explosion.OGG"); !ok {
		t.Error("ForPath() did not match an upper-case extension")
	}
	if _, ok := registry.ForPath("/sfx/readme"); ok {
		t.Error("ForPath() matched a path without extension")
	}

	got := registry.Formats()
	if len(got) != 2 || got[0] != "mp3" || got[1] != "ogg" {
		t.Errorf("Formats() = %v, want [mp3 ogg]", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &stubDecoder{name: "test"}

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			registry.Register("format", decoder)
		}()
		go func() {
			defer wg.Done()
			_, _ = registry.Get("format")
		}()
	}
	wg.Wait()

	if got, ok := registry.Get("format"); !ok || got != decoder {
		t.Error("Registry lost the decoder after concurrent access")
	}
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 2, 1000, 0.25)

	samples, err := ReadAll(src, 333)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(samples) != 2000 {
		t.Fatalf("ReadAll() returned %d samples, want 2000", len(samples))
	}
	for i, s := range samples {
		if s != 0.25 {
			t.Fatalf("samples[%d] = %v, want 0.25", i, s)
		}
	}
}

type failingSource struct{ *audiotest.MockSource }

func (failingSource) ReadSamples([]float32) (int, error) { return 0, errors.New("disk on fire") }

func TestReadAll_PropagatesErrors(t *testing.T) {
	t.Parallel()

	src := failingSource{audiotest.NewSilentSource(8000, 1, 10)}
	if _, err := ReadAll(src, 64); err == nil {
		t.Fatal("ReadAll() error = nil, want the source error")
	}
}

func TestFrame_Pan(t *testing.T) {
	t.Parallel()

	f := Frame{Left: 1, Right: 1}

	tests := []struct {
		pan  float32
		want Frame
	}{
		{0, Frame{Left: 1, Right: 0}},
		{0.25, Frame{Left: 1, Right: 0.5}},
		{0.5, Frame{Left: 1, Right: 1}},
		{1, Frame{Left: 0, Right: 1}},
	}

	for _, tt := range tests {
		if got := f.Pan(tt.pan); got != tt.want {
			t.Errorf("Pan(%v) = %+v, want %+v", tt.pan, got, tt.want)
		}
	}
}

func TestAccumulateAndInterleave(t *testing.T) {
	t.Parallel()

	dst := []Frame{{Left: 1, Right: 1}, {}}
	Accumulate(dst, []Frame{{Left: 1, Right: -1}, {Left: 0.5, Right: 0.5}}, 0.5)

	out := make([]float32, 4)
	if n := Interleave(out, dst); n != 4 {
		t.Fatalf("Interleave() = %d, want 4", n)
	}
	want := []float32{1.5, 0.5, 0.25, 0.25}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestRamps(t *testing.T) {
	t.Parallel()

	block := []Frame{FromMono(1), FromMono(1), FromMono(1)}
	ScaleRamp(block, 1, 0)
	want := []float32{1, 0.5, 0}
	for i, w := range want {
		if block[i].Left != w || block[i].Right != w {
			t.Errorf("ScaleRamp frame %d = %+v, want %v", i, block[i], w)
		}
	}

	dst := make([]Frame, 3)
	AccumulateRamp(dst, []Frame{FromMono(2), FromMono(2), FromMono(2)}, 0, 1)
	want = []float32{0, 1, 2}
	for i, w := range want {
		if dst[i].Left != w {
			t.Errorf("AccumulateRamp frame %d = %+v, want %v", i, dst[i], w)
		}
	}
}
