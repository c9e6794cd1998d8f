package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/transforms"
	"github.com/go-audio/wav"
)

const (
	wavBitDepth = 16
	// wavPCMFormat is the WAVE_FORMAT_PCM audio format tag.
	wavPCMFormat = 1
	// wavCeiling keeps a positive full-scale sample inside int16 after PCM scaling.
	wavCeiling = 32767.0 / 32768
)

// EncodeWAV writes samples as a 16-bit mono WAV. Samples outside [-1, 1] are
// clipped unless normalize scales the peak to 1 first. samples is not modified.
func EncodeWAV(w io.WriteSeeker, samples []float64, sampleRate int, normalize bool) error {
	buf := &audio.FloatBuffer{
		Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:   make([]float64, len(samples)),
	}
	copy(buf.Data, samples)

	if normalize && peak(buf.Data) > 0 {
		if err := transforms.NormMax(buf); err != nil {
			return fmt.Errorf("failed to normalize: %w", err)
		}
	}
	for i, v := range buf.Data {
		buf.Data[i] = math.Max(-1, math.Min(wavCeiling, v))
	}
	if err := transforms.PCMScale(buf, wavBitDepth); err != nil {
		return fmt.Errorf("failed to scale to %d-bit PCM: %w", wavBitDepth, err)
	}

	enc := wav.NewEncoder(w, sampleRate, wavBitDepth, 1, wavPCMFormat)
	if err := enc.Write(buf.AsIntBuffer()); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish WAV: %w", err)
	}
	return nil
}

// WriteWAVFile writes samples to a new WAV file at path.
func WriteWAVFile(path string, samples []float64, sampleRate int, normalize bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	if err := EncodeWAV(f, samples, sampleRate, normalize); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return f.Close()
}

func peak(x []float64) float64 {
	var m float64
	for _, v := range x {
		m = math.Max(m, math.Abs(v))
	}
	return m
}
