// Package dsp holds the block contract shared by every stage of the synth chain.
package dsp

import (
	"errors"
	"fmt"
	"io"
)

// BlockSize is the number of samples in every block passed between stages.
const BlockSize = 1000

var (
	// ErrConfig marks a configuration error: an unknown waveform, a cutoff outside
	// (0, samplerate/2), a non-positive samplerate or duration.
	ErrConfig = errors.New("configuration error")
	// ErrShape marks a stream-shape defect such as two mixer inputs yielding blocks
	// of different lengths.
	ErrShape = errors.New("stream shape error")
)

// Block is an ordered run of consecutive samples.
type Block []float64

// Source produces blocks on demand. Next returns io.EOF once the stream has
// ended; a Source is not restartable.
type Source interface {
	Next() (Block, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func() (Block, error)

// Next calls f.
func (f SourceFunc) Next() (Block, error) { return f() }

// maxPrealloc caps the blocks Take reserves up front.
const maxPrealloc = 1 << 12

// Take pulls at most n blocks from src and concatenates them. If src ends early
// the result is simply shorter; any other error is returned as is.
func Take(src Source, n int) ([]float64, error) {
	if n <= 0 {
		return []float64{}, nil
	}
	out := make([]float64, 0, min(n, maxPrealloc)*BlockSize)
	for i := 0; i < n; i++ {
		b, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to pull block %d of %d: %w", i, n, err)
		}
		out = append(out, b...)
	}
	return out, nil
}
