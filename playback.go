package main

import (
	"context"
	"fmt"
	"io"

	log "github.com/golang/glog"
	"github.com/gordonklaus/portaudio"
	"github.com/lozord/duosynth/dsp"
)

// framesPerBuffer is the device buffer size requested from portaudio.
const framesPerBuffer = 512

// sliceSource hands out a rendered sound array one block at a time.
type sliceSource struct {
	samples []float64
}

func (s *sliceSource) Next() (dsp.Block, error) {
	if len(s.samples) == 0 {
		return nil, io.EOF
	}
	n := min(dsp.BlockSize, len(s.samples))
	b := dsp.Block(s.samples[:n])
	s.samples = s.samples[n:]
	return b, nil
}

// feeder moves blocks from a source into device-sized buffers through a ring buffer.
type feeder struct {
	src  dsp.Source
	ring *RingBuffer
	done bool
}

func newFeeder(src dsp.Source) *feeder {
	return &feeder{src: src, ring: NewRingBuffer(2 * dsp.BlockSize)}
}

// fill writes the next len(out) samples into out, padding with silence once
// the source has ended. It reports false when nothing was left to play.
func (f *feeder) fill(out []float32) (bool, error) {
	for !f.done && f.ring.Len() < len(out) {
		b, err := f.src.Next()
		if err == io.EOF {
			f.done = true
			break
		}
		if err != nil {
			return false, err
		}
		if len(b) > f.ring.Free() {
			return false, fmt.Errorf("block of %d samples does not fit in %d free slots", len(b), f.ring.Free())
		}
		for _, v := range b {
			if err := f.ring.Insert(float32(v)); err != nil {
				return false, err
			}
		}
	}
	if f.ring.Len() == 0 {
		return false, nil
	}
	for i := range out {
		v, _ := f.ring.Pop()
		out[i] = v
	}
	return true, nil
}

// Play sends samples to the default output device and blocks until they have
// been written or ctx is cancelled.
func Play(ctx context.Context, samples []float64, sampleRate float64) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	out := make([]float32, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, sampleRate, len(out), &out)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	f := newFeeder(&sliceSource{samples: samples})
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := f.fill(out)
		if err != nil {
			return fmt.Errorf("failed to feed output stream: %w", err)
		}
		if !more {
			return nil
		}
		if level, err := f.ring.Average(); err == nil {
			log.V(2).Infof("buffered level %.3f", level)
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("failed to write to output stream: %w", err)
		}
	}
}
