package synth

import (
	"fmt"
	"math"

	"github.com/lozord/duosynth/dsp"
	"github.com/lozord/duosynth/osc"
)

// Option names accepted by ParseOptions and reported by Parameters.Map.
const (
	KeyOscillator1 = "oscillator_1"
	KeyOscillator2 = "oscillator_2"
	KeyAmplitude1  = "amplitude_1"
	KeyAmplitude2  = "amplitude_2"
	KeyPhase1      = "phase_1"
	KeyCutoff      = "cutoff"
)

const (
	DefaultAmplitude = 0.5
	DefaultCutoff    = 10000
)

// Parameters is a snapshot of a Synth's voice and filter settings. Amplitude1
// and Amplitude2 always sum to 1.
type Parameters struct {
	Oscillator1 osc.Kind `json:"oscillator_1" toml:"oscillator_1"`
	Oscillator2 osc.Kind `json:"oscillator_2" toml:"oscillator_2"`
	Amplitude1  float64  `json:"amplitude_1" toml:"amplitude_1"`
	Amplitude2  float64  `json:"amplitude_2" toml:"amplitude_2"`
	// Phase1 is the starting phase of voice 1 as a fraction of a cycle. Voice 2
	// always starts at 0.
	Phase1 float64 `json:"phase_1" toml:"phase_1"`
	// Cutoff of the low-pass in Hz.
	Cutoff float64 `json:"cutoff" toml:"cutoff"`
}

// DefaultParameters returns two equal sine voices through a 10 kHz low-pass.
func DefaultParameters() Parameters {
	return Parameters{
		Oscillator1: osc.Sine,
		Oscillator2: osc.Sine,
		Amplitude1:  DefaultAmplitude,
		Amplitude2:  DefaultAmplitude,
		Cutoff:      DefaultCutoff,
	}
}

// Map returns p keyed by option name, with kinds as their names. It is the
// form handed to experiment logs.
func (p Parameters) Map() map[string]any {
	return map[string]any{
		KeyOscillator1: p.Oscillator1.String(),
		KeyOscillator2: p.Oscillator2.String(),
		KeyAmplitude1:  p.Amplitude1,
		KeyAmplitude2:  p.Amplitude2,
		KeyPhase1:      p.Phase1,
		KeyCutoff:      p.Cutoff,
	}
}

// normalize rescales the amplitudes so they sum to 1.
func (p *Parameters) normalize() error {
	sum := p.Amplitude1 + p.Amplitude2
	if sum == 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return fmt.Errorf("%w: amplitudes %v and %v cannot be normalized", dsp.ErrConfig, p.Amplitude1, p.Amplitude2)
	}
	p.Amplitude1 /= sum
	p.Amplitude2 = 1 - p.Amplitude1
	return nil
}

func (p Parameters) validate() error {
	if !p.Oscillator1.Voice1() {
		return fmt.Errorf("%w: %v is not available on oscillator 1", dsp.ErrConfig, p.Oscillator1)
	}
	if !p.Oscillator2.Valid() {
		return fmt.Errorf("%w: invalid oscillator 2 kind %d", dsp.ErrConfig, int(p.Oscillator2))
	}
	if math.IsNaN(p.Phase1) || math.IsInf(p.Phase1, 0) {
		return fmt.Errorf("%w: phase must be finite, got %v", dsp.ErrConfig, p.Phase1)
	}
	return nil
}

// Option updates one setting.
type Option func(*Parameters) error

// WithOscillator1 selects the waveform of voice 1 by name.
func WithOscillator1(name string) Option {
	return func(p *Parameters) error {
		k, err := osc.ParseKind(name)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyOscillator1, err)
		}
		p.Oscillator1 = k
		return nil
	}
}

// WithOscillator2 selects the waveform of voice 2 by name.
func WithOscillator2(name string) Option {
	return func(p *Parameters) error {
		k, err := osc.ParseKind(name)
		if err != nil {
			return fmt.Errorf("%s: %w", KeyOscillator2, err)
		}
		p.Oscillator2 = k
		return nil
	}
}

// WithAmplitude1 sets the relative weight of voice 1.
func WithAmplitude1(a float64) Option {
	return func(p *Parameters) error {
		p.Amplitude1 = a
		return nil
	}
}

// WithAmplitude2 sets the relative weight of voice 2.
func WithAmplitude2(a float64) Option {
	return func(p *Parameters) error {
		p.Amplitude2 = a
		return nil
	}
}

// WithPhase1 sets the starting phase of voice 1, in cycles.
func WithPhase1(phase float64) Option {
	return func(p *Parameters) error {
		p.Phase1 = phase
		return nil
	}
}

// WithCutoff sets the low-pass cutoff in Hz.
func WithCutoff(hz float64) Option {
	return func(p *Parameters) error {
		p.Cutoff = hz
		return nil
	}
}

// WithParameters replaces every setting at once.
func WithParameters(all Parameters) Option {
	return func(p *Parameters) error {
		*p = all
		return nil
	}
}

// ParseOptions turns a mapping of option names to values into Options.
// Kinds are given by name; numbers may be any Go integer or float type.
func ParseOptions(m map[string]any) ([]Option, error) {
	var opts []Option
	for key, v := range m {
		switch key {
		case KeyOscillator1, KeyOscillator2:
			name, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a waveform name, got %T", dsp.ErrConfig, key, v)
			}
			if key == KeyOscillator1 {
				opts = append(opts, WithOscillator1(name))
			} else {
				opts = append(opts, WithOscillator2(name))
			}
		case KeyAmplitude1, KeyAmplitude2, KeyPhase1, KeyCutoff:
			f, ok := toFloat(v)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a number, got %T", dsp.ErrConfig, key, v)
			}
			switch key {
			case KeyAmplitude1:
				opts = append(opts, WithAmplitude1(f))
			case KeyAmplitude2:
				opts = append(opts, WithAmplitude2(f))
			case KeyPhase1:
				opts = append(opts, WithPhase1(f))
			default:
				opts = append(opts, WithCutoff(f))
			}
		default:
			return nil, fmt.Errorf("%w: unknown option %q", dsp.ErrConfig, key)
		}
	}
	return opts, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}
