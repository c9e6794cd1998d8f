package filter

import (
	"fmt"

	"github.com/lozord/duosynth/dsp"
)

// PadLen is the number of samples of odd extension added to each end of the
// input by FiltFilt.
func (tf TransferFunction) PadLen() int {
	return 3 * max(len(tf.A), len(tf.B))
}

// FiltFilt runs tf forward then backward over x so the result has no phase
// delay. The edges are extended by odd reflection and both passes start from
// the step-response steady state scaled to the edge sample. x is left intact.
func FiltFilt(tf TransferFunction, x []float64) ([]float64, error) {
	pad := tf.PadLen()
	if len(x) <= pad {
		return nil, fmt.Errorf("%w: zero-phase filtering needs more than %d samples, got %d", dsp.ErrShape, pad, len(x))
	}

	ext := oddExtend(x, pad)
	zi := tf.initialState()
	state := make([]float64, len(zi))

	scaled(state, zi, ext[0])
	tf.lfilter(ext, state)

	reverse(ext)
	scaled(state, zi, ext[0])
	tf.lfilter(ext, state)
	reverse(ext)

	out := make([]float64, len(x))
	copy(out, ext[pad:pad+len(x)])
	return out, nil
}

// lfilter filters buf in place with the transposed direct form II structure,
// updating state as it goes.
func (tf TransferFunction) lfilter(buf, state []float64) {
	n := max(len(tf.A), len(tf.B))
	b := padded(tf.B, n)
	a := padded(tf.A, n)
	if n < 2 {
		for i := range buf {
			buf[i] *= b[0]
		}
		return
	}
	for i, x := range buf {
		y := b[0]*x + state[0]
		for k := 0; k < n-2; k++ {
			state[k] = b[k+1]*x + state[k+1] - a[k+1]*y
		}
		state[n-2] = b[n-1]*x - a[n-1]*y
		buf[i] = y
	}
}

// initialState returns the filter delays that hold a unit step input at steady state.
func (tf TransferFunction) initialState() []float64 {
	n := max(len(tf.A), len(tf.B))
	b := padded(tf.B, n)
	a := padded(tf.A, n)
	zi := make([]float64, n-1)
	var acc float64
	for j := n - 1; j >= 1; j-- {
		acc += b[j] - a[j]*tf.DC
		zi[j-1] = acc
	}
	return zi
}

func oddExtend(x []float64, pad int) []float64 {
	n := len(x)
	ext := make([]float64, n+2*pad)
	for i := 0; i < pad; i++ {
		ext[i] = 2*x[0] - x[pad-i]
		ext[pad+n+i] = 2*x[n-1] - x[n-2-i]
	}
	copy(ext[pad:], x)
	return ext
}

func padded(c []float64, n int) []float64 {
	if len(c) == n {
		return c
	}
	out := make([]float64, n)
	copy(out, c)
	return out
}

func scaled(dst, src []float64, k float64) {
	for i := range src {
		dst[i] = src[i] * k
	}
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
