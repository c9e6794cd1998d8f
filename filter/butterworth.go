// Package filter designs and applies the synth's Butterworth low-pass stage.
package filter

import (
	"fmt"
	"math"
	"math/cmplx"

	log "github.com/golang/glog"
	"github.com/lozord/duosynth/dsp"
)

// Order of the low-pass used by the synth.
const Order = 4

// ZPK is a digital filter in zero-pole-gain form.
type ZPK struct {
	Zeros []complex128
	Poles []complex128
	Gain  float64

	// dc is the gain at 0 Hz, computed on the analog side where it does not
	// suffer from cancellation near z = 1.
	dc float64
}

// TransferFunction holds polynomial coefficients in descending powers of z^-1
// with A[0] == 1.
type TransferFunction struct {
	B, A []float64
	// DC is the steady-state gain for a constant input.
	DC float64
}

// Butterworth designs a low-pass filter of the given order. wn is the cutoff
// normalized to the Nyquist frequency and must lie in (0, 1).
func Butterworth(order int, wn float64) (ZPK, error) {
	if order < 1 {
		return ZPK{}, fmt.Errorf("%w: filter order must be at least 1, got %d", dsp.ErrConfig, order)
	}
	if !(wn > 0 && wn < 1) {
		return ZPK{}, fmt.Errorf("%w: normalized cutoff must be in (0, 1), got %v", dsp.ErrConfig, wn)
	}

	// Analog prototype poles on the left half of the unit circle.
	poles := make([]complex128, order)
	for i := range poles {
		m := float64(-order + 1 + 2*i)
		poles[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*order)))
	}

	// Prewarp for a bilinear transform with fs = 2, then scale the prototype.
	const fs2 = 4.0
	warped := fs2 * math.Tan(math.Pi*wn/2)
	for i := range poles {
		poles[i] *= complex(warped, 0)
	}
	gain := math.Pow(warped, float64(order))

	z := ZPK{
		Zeros: make([]complex128, order),
		Poles: make([]complex128, order),
	}
	denom := complex(1, 0)
	dc := complex(1, 0)
	for i, p := range poles {
		z.Zeros[i] = -1
		z.Poles[i] = (fs2 + p) / (fs2 - p)
		denom *= fs2 - p
		// 1 - pz == -2p / (fs2 - p)
		dc *= (fs2 - p) / (-2 * p)
	}
	z.Gain = gain * real(1/denom)
	z.dc = z.Gain * math.Pow(2, float64(order)) * real(dc)

	if !finite(z.Gain) {
		return ZPK{}, fmt.Errorf("%w: filter gain is not finite for cutoff %v", dsp.ErrConfig, wn)
	}
	return z, nil
}

// DesignLowPass designs the 4th-order low-pass for a cutoff in Hz. The cutoff
// must satisfy 0 < cutoff < sampleRate/2.
func DesignLowPass(cutoff, sampleRate float64) (ZPK, error) {
	if err := CheckCutoff(cutoff, sampleRate); err != nil {
		return ZPK{}, err
	}
	z, err := Butterworth(Order, cutoff/(sampleRate/2))
	if err != nil {
		return ZPK{}, err
	}
	log.V(2).Infof("designed order %d low-pass at %v Hz (fs %v Hz), gain %g", Order, cutoff, sampleRate, z.Gain)
	return z, nil
}

// CheckCutoff reports a configuration error unless 0 < cutoff < sampleRate/2.
func CheckCutoff(cutoff, sampleRate float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite, got %v", dsp.ErrConfig, sampleRate)
	}
	if !(cutoff > 0 && cutoff < sampleRate/2) {
		return fmt.Errorf("%w: cutoff %v Hz outside (0, %v)", dsp.ErrConfig, cutoff, sampleRate/2)
	}
	return nil
}

// TransferFunction expands z into polynomial form.
func (z ZPK) TransferFunction() TransferFunction {
	b := realPoly(z.Zeros)
	for i := range b {
		b[i] *= z.Gain
	}
	tf := TransferFunction{B: b, A: realPoly(z.Poles), DC: z.dc}
	if tf.DC == 0 || !finite(tf.DC) {
		tf.DC = tf.steadyState()
	}
	return tf
}

// Sections groups z into second-order sections, pairing each pole with its
// conjugate. The overall gain is folded into the first section.
func (z ZPK) Sections() []Section {
	n := len(z.Poles)
	var out []Section
	for i := 0; i < n/2; i++ {
		p := z.Poles[i]
		q := z.Poles[n-1-i]
		zr := z.Zeros[i]
		zs := z.Zeros[n-1-i]
		out = append(out, Section{
			B: [3]float64{1, -real(zr + zs), real(zr * zs)},
			A: [3]float64{1, -real(p + q), real(p * q)},
		})
	}
	if n%2 == 1 {
		p := z.Poles[n/2]
		zr := z.Zeros[n/2]
		out = append(out, Section{
			B: [3]float64{1, -real(zr), 0},
			A: [3]float64{1, -real(p), 0},
		})
	}
	if len(out) > 0 {
		for i := range out[0].B {
			out[0].B[i] *= z.Gain
		}
	}
	return out
}

// steadyState returns sum(B)/sum(A), or 0 when A sums to zero.
func (tf TransferFunction) steadyState() float64 {
	var sb, sa float64
	for _, v := range tf.B {
		sb += v
	}
	for _, v := range tf.A {
		sa += v
	}
	if sa == 0 {
		return 0
	}
	return sb / sa
}

// realPoly returns the coefficients of prod(x - r), keeping the real parts.
func realPoly(roots []complex128) []float64 {
	c := make([]complex128, len(roots)+1)
	c[0] = 1
	for i, r := range roots {
		for j := i + 1; j > 0; j-- {
			c[j] -= r * c[j-1]
		}
	}
	out := make([]float64, len(c))
	for i, v := range c {
		out[i] = real(v)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
