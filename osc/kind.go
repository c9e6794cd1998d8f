package osc

import (
	"fmt"

	"github.com/lozord/duosynth/dsp"
)

// Kind names a waveform.
type Kind int

const (
	Sine Kind = iota
	Triangle
	Square
	// SquareH is a square wave built from odd sine harmonics.
	SquareH
	Sawtooth
	Pulse
	// WhiteNoise holds a uniform random value for one cycle of the note.
	WhiteNoise
	Semicircle

	numKinds
)

var kindNames = [numKinds]string{
	Sine:       "Sine",
	Triangle:   "Triangle",
	Square:     "Square",
	SquareH:    "SquareH",
	Sawtooth:   "Sawtooth",
	Pulse:      "Pulse",
	WhiteNoise: "WhiteNoise",
	Semicircle: "Semicircle",
}

// Kinds returns every waveform kind in declaration order.
func Kinds() []Kind {
	ks := make([]Kind, numKinds)
	for i := range ks {
		ks[i] = Kind(i)
	}
	return ks
}

// ParseKind returns the Kind with the given name. Names are case sensitive.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown oscillator kind %q", dsp.ErrConfig, name)
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

// Voice1 reports whether k may drive the first voice. Noise is only offered on
// the second voice.
func (k Kind) Voice1() bool {
	return k.Valid() && k != WhiteNoise
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: invalid oscillator kind %d", dsp.ErrConfig, int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, so kinds can be read
// straight from TOML or JSON.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
