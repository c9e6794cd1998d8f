package synth

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lozord/duosynth/dsp"
	"github.com/lozord/duosynth/osc"
)

func TestParseOptions(t *testing.T) {
	opts, err := ParseOptions(map[string]any{
		"oscillator_1": "Semicircle",
		"oscillator_2": "WhiteNoise",
		"amplitude_1":  int64(1),
		"amplitude_2":  3,
		"phase_1":      0.25,
		"cutoff":       float32(4000),
	})
	if err != nil {
		t.Fatal(err)
	}

	s := newSynth(t, Config{})
	if err := s.SetParameters(opts...); err != nil {
		t.Fatal(err)
	}
	want := Parameters{
		Oscillator1: osc.Semicircle,
		Oscillator2: osc.WhiteNoise,
		Amplitude1:  0.25,
		Amplitude2:  0.75,
		Phase1:      0.25,
		Cutoff:      4000,
	}
	if diff := cmp.Diff(want, s.GetParameters()); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []map[string]any{
		{"osc_1": "Sine"},
		{"oscillator_1": 3},
		{"cutoff": "high"},
	}
	for _, m := range tests {
		if _, err := ParseOptions(m); !errors.Is(err, dsp.ErrConfig) {
			t.Errorf("ParseOptions(%v) error = %v, want ErrConfig", m, err)
		}
	}
}

func TestParametersMap(t *testing.T) {
	got := DefaultParameters().Map()
	want := map[string]any{
		"oscillator_1": "Sine",
		"oscillator_2": "Sine",
		"amplitude_1":  0.5,
		"amplitude_2":  0.5,
		"phase_1":      0.0,
		"cutoff":       10000.0,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Map() mismatch (-want +got):\n%s", diff)
	}
}
