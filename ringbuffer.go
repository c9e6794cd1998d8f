package main

import (
	"fmt"
	"math"
)

// RingBuffer is a circular FIFO of samples, used to hand rendered blocks to
// the audio device in whatever frame size it asks for.
type RingBuffer struct {
	data  []float32
	head  int
	count int
	size  int
}

// NewRingBuffer returns a new RingBuffer.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]float32, size),
		head: 0,
		size: size,
	}
}

// Len returns the number of buffered samples.
func (b *RingBuffer) Len() int { return b.count }

// Free returns the number of samples that can be inserted before the buffer is full.
func (b *RingBuffer) Free() int { return b.size - b.count }

// Insert appends val after the newest sample. It fails when the buffer is full.
func (b *RingBuffer) Insert(val float32) error {
	if b.count == b.size {
		return fmt.Errorf("ring buffer full at %d samples", b.size)
	}
	b.data[(b.head+b.count)%b.size] = val
	b.count++
	return nil
}

// Pop removes and returns the oldest sample.
func (b *RingBuffer) Pop() (float32, bool) {
	if b.count == 0 {
		return 0, false
	}
	v := b.data[b.head]
	b.head = (b.head + 1) % b.size
	b.count--
	return v, true
}

// Get returns the value at index relative to the oldest sample.
func (b *RingBuffer) Get(index int) float32 {
	i := (index + b.head) % b.size
	return b.data[i]
}

// Average returns the mean absolute level of the buffered samples.
func (b *RingBuffer) Average() (float64, error) {
	if b.size < 1 {
		return 0, fmt.Errorf("buffer has bad size < 1: %d", b.size)
	}
	if b.count == 0 {
		return 0, fmt.Errorf("buffer is empty")
	}

	var sum float64
	for i := range b.count {
		sum += math.Abs(float64(b.Get(i)))
	}

	return sum / float64(b.count), nil
}
