// Package synth renders notes from two mixed oscillators through a low-pass filter.
package synth

import (
	"fmt"
	"math"
	"sync"

	log "github.com/golang/glog"
	"github.com/lozord/duosynth/dsp"
	"github.com/lozord/duosynth/filter"
	"github.com/lozord/duosynth/osc"
)

// DefaultSampleRate is a good sample rate since it is at least twice as much as 20kHz,
// the upper bound for human hearing.
const DefaultSampleRate = 44100

// MaxSamples bounds the length of one render.
const MaxSamples = 1 << 28

// Config holds the settings fixed for the lifetime of a Synth.
type Config struct {
	// SampleRate in Hz. Zero selects DefaultSampleRate.
	SampleRate float64
	// FilterMode selects per-block zero-phase filtering (the default) or the
	// continuous streaming filter.
	FilterMode filter.Mode
	// NoiseSeed fixes the WhiteNoise sequence so renders are reproducible.
	// Zero draws a fresh seed for every render.
	NoiseSeed uint64
}

// Synth turns Parameters into sound. Each render builds its own chain, so a
// Synth may render from several goroutines at once.
type Synth struct {
	cfg Config

	// mu protects params.
	mu     sync.RWMutex
	params Parameters
}

// New returns a Synth with DefaultParameters.
func New(cfg Config) (*Synth, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if !(cfg.SampleRate > 0) || math.IsInf(cfg.SampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive and finite, got %v", dsp.ErrConfig, cfg.SampleRate)
	}
	if _, err := cfg.FilterMode.MarshalText(); err != nil {
		return nil, err
	}
	return &Synth{cfg: cfg, params: DefaultParameters()}, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Synth) SampleRate() float64 { return s.cfg.SampleRate }

// SetParameters replaces the parameters with DefaultParameters updated by opts,
// then normalizes the amplitudes. Settings not named revert to their defaults,
// so repeating a call gives the same result. If any option is invalid nothing
// changes.
func (s *Synth) SetParameters(opts ...Option) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := DefaultParameters()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&next); err != nil {
			return err
		}
	}
	if err := next.normalize(); err != nil {
		return err
	}
	if err := next.validate(); err != nil {
		return err
	}
	if err := filter.CheckCutoff(next.Cutoff, s.cfg.SampleRate); err != nil {
		return err
	}

	s.params = next
	return nil
}

// GetParameters returns a snapshot of the current parameters.
func (s *Synth) GetParameters() Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// GetSoundArray renders note (Hz) for duration seconds. The result holds
// floor(sampleRate*duration/dsp.BlockSize) whole blocks; a chain that ends
// early gives a shorter result rather than an error.
func (s *Synth) GetSoundArray(note, duration float64) ([]float64, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return nil, fmt.Errorf("%w: duration must be positive and finite, got %v", dsp.ErrConfig, duration)
	}
	blocks := math.Floor(s.cfg.SampleRate * duration / dsp.BlockSize)
	if blocks*dsp.BlockSize > MaxSamples {
		return nil, fmt.Errorf("%w: %vs at %v Hz exceeds %d samples", dsp.ErrConfig, duration, s.cfg.SampleRate, MaxSamples)
	}
	numBlocks := int(blocks)

	p := s.GetParameters()
	chain, err := s.hookup(p, note)
	if err != nil {
		return nil, err
	}

	out, err := dsp.Take(chain, numBlocks)
	if err != nil {
		return nil, fmt.Errorf("failed to render %v Hz for %vs: %w", note, duration, err)
	}
	if want := numBlocks * dsp.BlockSize; len(out) < want {
		log.Warningf("chain ended early: rendered %d of %d samples", len(out), want)
	}
	return out, nil
}

// hookup builds a fresh oscillator pair, mixer and filter for one render.
func (s *Synth) hookup(p Parameters, note float64) (dsp.Source, error) {
	sr := s.cfg.SampleRate
	osc1, err := osc.New(p.Oscillator1, osc.Params{
		Frequency:  note,
		Amplitude:  p.Amplitude1,
		Phase:      p.Phase1,
		SampleRate: sr,
		Seed:       s.cfg.NoiseSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build oscillator 1: %w", err)
	}
	osc2, err := osc.New(p.Oscillator2, osc.Params{
		Frequency:  note,
		Amplitude:  p.Amplitude2,
		SampleRate: sr,
		Seed:       s.cfg.NoiseSeed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build oscillator 2: %w", err)
	}

	mix := dsp.NewMixer(osc1, osc2)
	lp, err := filter.NewLowPass(mix, p.Cutoff, sr, s.cfg.FilterMode)
	if err != nil {
		return nil, fmt.Errorf("failed to build low-pass: %w", err)
	}
	log.V(1).Infof("chain for %v Hz: %v(%.3f, phase %v) + %v(%.3f) -> low-pass %v Hz",
		note, p.Oscillator1, p.Amplitude1, p.Phase1, p.Oscillator2, p.Amplitude2, p.Cutoff)
	return lp, nil
}
