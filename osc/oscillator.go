// Package osc provides the periodic and noise oscillators that feed the synth chain.
package osc

import (
	"fmt"
	"math"

	"github.com/lozord/duosynth/dsp"
)

// Params describes one oscillator voice.
type Params struct {
	// Frequency of the note in Hz.
	Frequency float64
	// Amplitude scales every sample.
	Amplitude float64
	// Phase is the starting position within the cycle, as a fraction of a cycle.
	Phase float64
	// SampleRate in Hz.
	SampleRate float64

	// PulseWidth is the high fraction of a Pulse cycle. Zero selects DefaultPulseWidth.
	PulseWidth float64
	// Seed fixes the WhiteNoise sequence. Zero picks a random seed.
	Seed uint64
}

// Oscillator produces an endless stream of blocks of one waveform.
type Oscillator struct {
	wave      Waveform
	amplitude float64

	// phase is in cycles, kept within [0, 1).
	phase float64
	delta float64
}

// New returns an Oscillator of the given kind.
func New(kind Kind, p Params) (*Oscillator, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: invalid oscillator kind %d", dsp.ErrConfig, int(kind))
	}
	if !(p.SampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", dsp.ErrConfig, p.SampleRate)
	}
	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return nil, fmt.Errorf("%w: frequency must be positive and finite, got %v", dsp.ErrConfig, p.Frequency)
	}
	return &Oscillator{
		wave:      newWaveform(kind, p),
		amplitude: p.Amplitude,
		phase:     p.Phase - math.Floor(p.Phase),
		delta:     p.Frequency / p.SampleRate,
	}, nil
}

// Fill populates buf with the next samples of the waveform, applying the amplitude.
func (o *Oscillator) Fill(buf []float64) {
	for i := range buf {
		buf[i] = o.amplitude * o.wave.Sample(o.phase)
		o.advance()
	}
}

// Next returns a fresh block. An Oscillator never ends.
func (o *Oscillator) Next() (dsp.Block, error) {
	b := make(dsp.Block, dsp.BlockSize)
	o.Fill(b)
	return b, nil
}

func (o *Oscillator) advance() {
	o.phase += o.delta
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
	}
}

var _ dsp.Source = (*Oscillator)(nil)
