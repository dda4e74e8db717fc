// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ik5/audmix/logging"
	"github.com/ik5/audmix/renderer"
)

var ErrInvalidSettings = errors.New("invalid settings")

// Capacities bound how many resources of each kind can exist at once.
// The main track does not count against Tracks.
type Capacities struct {
	Sounds     int `yaml:"sounds"`
	Instances  int `yaml:"instances"`
	Tracks     int `yaml:"tracks"`
	Effects    int `yaml:"effects"`
	Clocks     int `yaml:"clocks"`
	Sequences  int `yaml:"sequences"`
	Parameters int `yaml:"parameters"`
}

type LogSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Settings struct {
	Capacities      Capacities `yaml:"capacities"`
	CommandCapacity int        `yaml:"command_capacity"`
	EventCapacity   int        `yaml:"event_capacity"`
	// EventOverflow is "drop-oldest" or "drop-newest".
	EventOverflow string `yaml:"event_overflow"`

	// SampleRate is what the default device is asked for. The device has
	// the last word; see Manager.SampleRate.
	SampleRate         int `yaml:"sample_rate"`
	BlockFrames        int `yaml:"block_frames"`
	MaxRoutesPerTrack  int `yaml:"max_routes_per_track"`
	MaxEffectsPerTrack int `yaml:"max_effects_per_track"`
	MaxStepsPerBlock   int `yaml:"max_steps_per_block"`

	Log LogSettings `yaml:"log"`
}

func DefaultSettings() Settings {
	return Settings{
		Capacities: Capacities{
			Sounds:     100,
			Instances:  100,
			Tracks:     50,
			Effects:    50,
			Clocks:     10,
			Sequences:  25,
			Parameters: 100,
		},
		CommandCapacity:    256,
		EventCapacity:      128,
		EventOverflow:      renderer.DropOldest.String(),
		SampleRate:         48000,
		BlockFrames:        512,
		MaxRoutesPerTrack:  4,
		MaxEffectsPerTrack: 8,
		MaxStepsPerBlock:   16,
		Log:                LogSettings{Level: "info", Format: "text"},
	}
}

func (s Settings) Validate() error {
	var errs []error
	positive := func(name string, v int) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %d", name, v))
		}
	}

	c := s.Capacities
	positive("capacities.sounds", c.Sounds)
	positive("capacities.instances", c.Instances)
	positive("capacities.tracks", c.Tracks)
	positive("capacities.effects", c.Effects)
	positive("capacities.clocks", c.Clocks)
	positive("capacities.sequences", c.Sequences)
	positive("capacities.parameters", c.Parameters)
	positive("command_capacity", s.CommandCapacity)
	positive("event_capacity", s.EventCapacity)
	positive("sample_rate", s.SampleRate)
	positive("block_frames", s.BlockFrames)
	positive("max_routes_per_track", s.MaxRoutesPerTrack)
	positive("max_effects_per_track", s.MaxEffectsPerTrack)
	positive("max_steps_per_block", s.MaxStepsPerBlock)

	if _, err := renderer.ParseOverflow(s.EventOverflow); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if s.Log.Format != "" && s.Log.Format != "text" && s.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", s.Log.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	return nil
}

// LoadSettings reads YAML from r over DefaultSettings and validates the
// result. Unknown keys are an error.
func LoadSettings(r io.Reader) (Settings, error) {
	s := DefaultSettings()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("open settings: %w", err)
	}
	defer f.Close()

	return LoadSettings(f)
}

// logger builds the logger described by the settings. Validate has
// already checked them.
func (s Settings) logger() logging.Logger {
	level, _ := logging.ParseLevel(s.Log.Level)

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Component = "audmix"
	if s.Log.Format != "" {
		cfg.Format = s.Log.Format
	}
	return logging.NewLogger(cfg)
}

func (s Settings) capacities() renderer.Capacities {
	return renderer.Capacities(s.Capacities)
}
