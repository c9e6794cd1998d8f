package filter

// Section is one second-order stage, coefficients in descending powers of
// z^-1 with A[0] == 1.
type Section struct {
	B, A [3]float64
}

// biquad runs a Section in Direct Form I and keeps its delay line between calls.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64 // input delay line
	y1, y2 float64 // output delay line
}

func newBiquad(s Section) *biquad {
	return &biquad{
		b0: s.B[0], b1: s.B[1], b2: s.B[2],
		a1: s.A[1], a2: s.A[2],
	}
}

// Process filters buf in place - no allocations.
func (q *biquad) Process(buf []float64) {
	x1, x2, y1, y2 := q.x1, q.x2, q.y1, q.y2
	for i, x0 := range buf {
		y0 := q.b0*x0 + q.b1*x1 + q.b2*x2 - q.a1*y1 - q.a2*y2
		x2, x1 = x1, x0
		y2, y1 = y1, y0
		buf[i] = y0
	}
	q.x1, q.x2, q.y1, q.y2 = x1, x2, y1, y2
}
