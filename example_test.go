// SPDX-License-Identifier: EPL-2.0

package audmix_test

import (
	"fmt"
	"strings"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/backend/offline"
	"github.com/ik5/audmix/instance"
	"github.com/ik5/audmix/logging"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/sound"
	"github.com/ik5/audmix/tween"
)

// Example_offline renders a sound through a sub-track without a sound
// card.
func Example_offline() {
	dev, err := offline.New(8000)
	if err != nil {
		fmt.Println(err)
		return
	}

	s := audmix.DefaultSettings()
	s.BlockFrames = 64
	m, err := audmix.NewManager(s, audmix.WithDevice(dev), audmix.WithLogger(logging.NoOpLogger{}))
	if err != nil {
		fmt.Println(err)
		return
	}
	defer m.Close()

	frames := make([]audio.Frame, 8000)
	for i := range frames {
		frames[i] = audio.FromMono(0.5)
	}
	data, _ := sound.NewData(8000, frames, sound.Settings{})
	snd, _ := m.AddSound(data)

	quiet, _ := m.AddTrack(mixer.TrackSettings{Volume: tween.Fixed(0.5)})

	play := instance.DefaultSettings()
	play.Track = quiet.Key()
	play.Panning = tween.Fixed(0)
	if _, err := m.Play(snd, play); err != nil {
		fmt.Println(err)
		return
	}

	out, _ := dev.Step(64)
	fmt.Printf("left %.2f right %.2f\n", out[0], out[1])
	// Output: left 0.25 right 0.00
}

// Example_settings loads settings from YAML.
func Example_settings() {
	s, err := audmix.LoadSettings(strings.NewReader("block_frames: 256\nevent_overflow: drop-newest\n"))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(s.BlockFrames, s.EventOverflow, s.SampleRate)
	// Output: 256 drop-newest 48000
}
