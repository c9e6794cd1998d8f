package filter

import (
	"fmt"

	log "github.com/golang/glog"
	"github.com/lozord/duosynth/dsp"
)

// BlockFilter filters one block at a time. Implementations may or may not carry
// state from one block to the next; a stateful one is used for a single source.
type BlockFilter interface {
	Filter(b dsp.Block) (dsp.Block, error)
}

// Mode selects a BlockFilter variant.
type Mode int

const (
	// ZeroPhaseMode filters every block on its own, forward then backward.
	// Each block shows edge effects at its boundaries.
	ZeroPhaseMode Mode = iota
	// StreamingMode runs a causal biquad cascade whose state carries across
	// blocks, so block boundaries are seamless at the cost of phase delay.
	StreamingMode
)

var modeNames = map[Mode]string{
	ZeroPhaseMode: "zero_phase",
	StreamingMode: "streaming",
}

func (m Mode) String() string {
	if n, ok := modeNames[m]; ok {
		return n
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode with the given name.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown filter mode %q", dsp.ErrConfig, name)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	n, ok := modeNames[m]
	if !ok {
		return nil, fmt.Errorf("%w: invalid filter mode %d", dsp.ErrConfig, int(m))
	}
	return []byte(n), nil
}

// ZeroPhase is the per-block forward-backward filter.
type ZeroPhase struct {
	tf TransferFunction
}

// NewZeroPhase returns a ZeroPhase filter for z.
func NewZeroPhase(z ZPK) *ZeroPhase {
	return &ZeroPhase{tf: z.TransferFunction()}
}

// Filter returns a filtered copy of b.
func (f *ZeroPhase) Filter(b dsp.Block) (dsp.Block, error) {
	out, err := FiltFilt(f.tf, b)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Streaming is a causal cascade of biquads.
type Streaming struct {
	stages []*biquad
}

// NewStreaming returns a Streaming filter for z, starting from rest.
func NewStreaming(z ZPK) *Streaming {
	s := &Streaming{}
	for _, sec := range z.Sections() {
		s.stages = append(s.stages, newBiquad(sec))
	}
	return s
}

// Filter returns a filtered copy of b and advances the filter state.
func (f *Streaming) Filter(b dsp.Block) (dsp.Block, error) {
	out := make(dsp.Block, len(b))
	copy(out, b)
	for _, q := range f.stages {
		q.Process(out)
	}
	return out, nil
}

// LowPass is the filter stage of the chain. It is the only reader of its source.
type LowPass struct {
	src    dsp.Source
	filter BlockFilter
}

// NewLowPass designs the filter once and wires it to src. An invalid cutoff or
// sample rate is reported here, before any block is pulled.
func NewLowPass(src dsp.Source, cutoff, sampleRate float64, mode Mode) (*LowPass, error) {
	z, err := DesignLowPass(cutoff, sampleRate)
	if err != nil {
		return nil, err
	}

	var f BlockFilter
	switch mode {
	case ZeroPhaseMode:
		f = NewZeroPhase(z)
	case StreamingMode:
		f = NewStreaming(z)
	default:
		return nil, fmt.Errorf("%w: invalid filter mode %d", dsp.ErrConfig, int(mode))
	}
	log.V(1).Infof("low-pass stage: cutoff %v Hz, sample rate %v Hz, mode %v", cutoff, sampleRate, mode)

	return &LowPass{
		src:    src,
		filter: f,
	}, nil
}

// Next pulls one block from the source and returns it filtered. It returns
// io.EOF when the source does.
func (l *LowPass) Next() (dsp.Block, error) {
	b, err := l.src.Next()
	if err != nil {
		return nil, err
	}
	return l.filter.Filter(b)
}

var _ dsp.Source = (*LowPass)(nil)
