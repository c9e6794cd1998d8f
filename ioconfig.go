package main

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/lozord/duosynth/filter"
	"github.com/lozord/duosynth/synth"
)

// IOConfig describes what to render.
type IOConfig struct {
	SampleRate float64     `toml:"sample_rate"`
	FilterMode filter.Mode `toml:"filter_mode"`
	NoiseSeed  uint64      `toml:"noise_seed"`
	// Synth holds synth options by name, e.g. oscillator_1 = "Square". Keys
	// that are absent keep their defaults.
	Synth map[string]any `toml:"synth"`
	Notes []*NoteConfig  `toml:"notes"`
}

// NoteConfig is one note to render.
type NoteConfig struct {
	Frequency float64 `toml:"frequency"`
	Duration  float64 `toml:"duration"`
}

func ParseFromFile(file string) (*IOConfig, error) {
	bs, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file at %q: %w", file, err)
	}

	var cfg IOConfig
	if err := toml.Unmarshal(bs, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse IOConfig from TOML file %q: %w", file, err)
	}

	return &cfg, nil
}

// ParseFromReader parses an IOConfig from TOML read from r.
func ParseFromReader(r io.Reader) (*IOConfig, error) {
	var cfg IOConfig
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse IOConfig from TOML: %w", err)
	}
	return &cfg, nil
}

// NewSynth builds a Synth from the config and applies its options.
func (c *IOConfig) NewSynth() (*synth.Synth, error) {
	s, err := synth.New(synth.Config{
		SampleRate: c.SampleRate,
		FilterMode: c.FilterMode,
		NoiseSeed:  c.NoiseSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid synth config: %w", err)
	}

	opts, err := synth.ParseOptions(c.Synth)
	if err != nil {
		return nil, fmt.Errorf("invalid [synth] table: %w", err)
	}
	if err := s.SetParameters(opts...); err != nil {
		return nil, fmt.Errorf("invalid [synth] table: %w", err)
	}
	return s, nil
}
