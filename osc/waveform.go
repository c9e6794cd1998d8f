package osc

import (
	"math"
	"math/rand/v2"
)

// Waveform maps a phase, in cycles within [0, 1), to a sample in roughly [-1, 1].
type Waveform interface {
	Sample(phase float64) float64
}

// WaveformFunc adapts a stateless function to a Waveform.
type WaveformFunc func(phase float64) float64

// Sample calls f.
func (f WaveformFunc) Sample(phase float64) float64 { return f(phase) }

// DefaultPulseWidth is the fraction of a cycle a Pulse stays high.
const DefaultPulseWidth = 0.1

// maxHarmonics bounds the odd harmonics summed by SquareH.
const maxHarmonics = 16

func sine(phase float64) float64 {
	return math.Sin(2 * math.Pi * phase)
}

func triangle(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

func square(phase float64) float64 {
	if phase < 0.5 {
		return 1
	}
	return -1
}

func sawtooth(phase float64) float64 {
	return 2*phase - 1
}

func semicircle(phase float64) float64 {
	if phase < 0.5 {
		x := 4*phase - 1
		return math.Sqrt(math.Max(0, 1-x*x))
	}
	x := 4*phase - 3
	return -math.Sqrt(math.Max(0, 1-x*x))
}

type pulse struct {
	width float64
}

func (p pulse) Sample(phase float64) float64 {
	if phase < p.width {
		return 1
	}
	return -1
}

// harmonicSquare sums odd harmonics 1, 3, 5, ... that stay below Nyquist.
type harmonicSquare struct {
	harmonics []float64
}

func newHarmonicSquare(frequency, sampleRate float64) harmonicSquare {
	var hs []float64
	for k := 1; len(hs) < maxHarmonics; k += 2 {
		if float64(k)*frequency >= sampleRate/2 {
			break
		}
		hs = append(hs, float64(k))
	}
	if len(hs) == 0 {
		hs = []float64{1}
	}
	return harmonicSquare{harmonics: hs}
}

func (h harmonicSquare) Sample(phase float64) float64 {
	var sum float64
	for _, k := range h.harmonics {
		sum += math.Sin(2*math.Pi*k*phase) / k
	}
	return 4 / math.Pi * sum
}

// noise draws a new value every time the phase wraps and holds it for the
// rest of the cycle.
type noise struct {
	rand  *rand.Rand
	value float64
	last  float64
	drawn bool
}

func newNoise(seed uint64) *noise {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &noise{rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (n *noise) Sample(phase float64) float64 {
	if !n.drawn || phase < n.last {
		n.value = 2*n.rand.Float64() - 1
		n.drawn = true
	}
	n.last = phase
	return n.value
}

func newWaveform(kind Kind, p Params) Waveform {
	switch kind {
	case Triangle:
		return WaveformFunc(triangle)
	case Square:
		return WaveformFunc(square)
	case SquareH:
		return newHarmonicSquare(p.Frequency, p.SampleRate)
	case Sawtooth:
		return WaveformFunc(sawtooth)
	case Pulse:
		w := p.PulseWidth
		if w <= 0 || w >= 1 {
			w = DefaultPulseWidth
		}
		return pulse{width: w}
	case WhiteNoise:
		return newNoise(p.Seed)
	case Semicircle:
		return WaveformFunc(semicircle)
	default:
		return WaveformFunc(sine)
	}
}
