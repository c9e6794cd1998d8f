package dsp

import "fmt"

// Mixer adds two sources sample by sample. Amplitude weighting belongs to the
// sources, so the sum is unweighted.
type Mixer struct {
	a, b Source
}

// NewMixer returns a Mixer pulling a and b in lockstep.
func NewMixer(a, b Source) *Mixer {
	return &Mixer{a: a, b: b}
}

// Next returns the sum of the next block from each source. The stream ends as
// soon as either source ends.
func (m *Mixer) Next() (Block, error) {
	x, err := m.a.Next()
	if err != nil {
		return nil, err
	}
	y, err := m.b.Next()
	if err != nil {
		return nil, err
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: mixer inputs yielded blocks of %d and %d samples", ErrShape, len(x), len(y))
	}

	out := make(Block, len(x))
	for i := range out {
		out[i] = x[i] + y[i]
	}
	return out, nil
}

var _ Source = (*Mixer)(nil)
