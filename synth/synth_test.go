package synth

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/lozord/duosynth/dsp"
	"github.com/lozord/duosynth/filter"
	"github.com/lozord/duosynth/osc"
)

func newSynth(t *testing.T, cfg Config) *Synth {
	t.Helper()
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestDefaultRender(t *testing.T) {
	s := newSynth(t, Config{})
	got, err := s.GetSoundArray(440, 1)
	if err != nil {
		t.Fatal(err)
	}

	want := (DefaultSampleRate / dsp.BlockSize) * dsp.BlockSize
	if len(got) != want {
		t.Fatalf("len = %d, want %d", len(got), want)
	}
	for i, v := range got {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1.5 {
			t.Fatalf("sample %d = %v out of range", i, v)
		}
	}
}

func TestSoundArrayLength(t *testing.T) {
	s := newSynth(t, Config{})
	tests := []struct {
		duration float64
		want     int
	}{
		{1, 44000},
		{0.5, 22000},
		{2.25, 99000},
		{0.01, 0},
	}
	for _, tt := range tests {
		got, err := s.GetSoundArray(220, tt.duration)
		if err != nil {
			t.Fatalf("duration %v: %v", tt.duration, err)
		}
		if len(got) != tt.want {
			t.Errorf("duration %v: len = %d, want %d", tt.duration, len(got), tt.want)
		}
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	for _, mode := range []filter.Mode{filter.ZeroPhaseMode, filter.StreamingMode} {
		t.Run(mode.String(), func(t *testing.T) {
			a := newSynth(t, Config{FilterMode: mode})
			b := newSynth(t, Config{FilterMode: mode})
			for _, s := range []*Synth{a, b} {
				if err := s.SetParameters(WithOscillator1("Square"), WithOscillator2("Sawtooth"), WithPhase1(0.3), WithCutoff(3000)); err != nil {
					t.Fatal(err)
				}
			}

			first, err := a.GetSoundArray(330, 0.5)
			if err != nil {
				t.Fatal(err)
			}
			again, _ := a.GetSoundArray(330, 0.5)
			other, _ := b.GetSoundArray(330, 0.5)
			if diff := cmp.Diff(first, again); diff != "" {
				t.Errorf("second render differs:\n%s", diff)
			}
			if diff := cmp.Diff(first, other); diff != "" {
				t.Errorf("render on another synth differs:\n%s", diff)
			}
		})
	}
}

func TestSeededNoiseIsReproducible(t *testing.T) {
	s := newSynth(t, Config{NoiseSeed: 7})
	if err := s.SetParameters(WithOscillator2("WhiteNoise")); err != nil {
		t.Fatal(err)
	}
	a, err := s.GetSoundArray(440, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.GetSoundArray(440, 0.1)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("seeded noise render differs:\n%s", diff)
	}
}

func TestSetParametersNormalizes(t *testing.T) {
	s := newSynth(t, Config{})
	if err := s.SetParameters(WithOscillator1("Square"), WithAmplitude1(0.2), WithAmplitude2(0.3)); err != nil {
		t.Fatal(err)
	}

	want := DefaultParameters()
	want.Oscillator1 = osc.Square
	want.Amplitude1 = 0.4
	want.Amplitude2 = 0.6
	if diff := cmp.Diff(want, s.GetParameters(), cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("GetParameters() mismatch (-want +got):\n%s", diff)
	}
}

func TestAmplitudesSumToOne(t *testing.T) {
	tests := []struct{ a1, a2 float64 }{
		{1, 1},
		{0, 3},
		{-1, 3},
		{2, -0.5},
		{1e-9, 5},
	}
	for _, tt := range tests {
		s := newSynth(t, Config{})
		if err := s.SetParameters(WithAmplitude1(tt.a1), WithAmplitude2(tt.a2)); err != nil {
			t.Fatalf("(%v, %v): %v", tt.a1, tt.a2, err)
		}
		p := s.GetParameters()
		if sum := p.Amplitude1 + p.Amplitude2; math.Abs(sum-1) > 1e-12 {
			t.Errorf("(%v, %v): amplitudes sum to %v", tt.a1, tt.a2, sum)
		}
	}
}

func TestSetParametersIsRepeatable(t *testing.T) {
	s := newSynth(t, Config{})
	var got []Parameters
	for i := 0; i < 3; i++ {
		if err := s.SetParameters(WithAmplitude1(0.2)); err != nil {
			t.Fatal(err)
		}
		got = append(got, s.GetParameters())
	}
	want := DefaultParameters()
	want.Amplitude1 = 0.2 / 0.7
	want.Amplitude2 = 0.5 / 0.7
	for i, p := range got {
		if diff := cmp.Diff(want, p, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
			t.Errorf("call %d: parameters mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestSetParametersResetsUnnamed(t *testing.T) {
	s := newSynth(t, Config{})
	if err := s.SetParameters(WithOscillator2("Pulse"), WithCutoff(2000)); err != nil {
		t.Fatal(err)
	}
	if err := s.SetParameters(WithPhase1(0.5)); err != nil {
		t.Fatal(err)
	}
	want := DefaultParameters()
	want.Phase1 = 0.5
	if diff := cmp.Diff(want, s.GetParameters()); diff != "" {
		t.Errorf("parameters mismatch (-want +got):\n%s", diff)
	}
}

func TestSetParametersRejects(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"unknown kind", []Option{WithOscillator1("Bogus")}},
		{"noise on voice 1", []Option{WithOscillator1("WhiteNoise")}},
		{"both amplitudes zero", []Option{WithAmplitude1(0), WithAmplitude2(0)}},
		{"amplitudes cancel", []Option{WithAmplitude1(1), WithAmplitude2(-1)}},
		{"cutoff above nyquist", []Option{WithCutoff(30000)}},
		{"zero cutoff", []Option{WithCutoff(0)}},
		{"NaN phase", []Option{WithPhase1(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSynth(t, Config{})
			if err := s.SetParameters(WithOscillator2("Triangle"), WithAmplitude1(3)); err != nil {
				t.Fatal(err)
			}
			before := s.GetParameters()

			opts := append([]Option{WithAmplitude2(9)}, tt.opts...)
			if err := s.SetParameters(opts...); !errors.Is(err, dsp.ErrConfig) {
				t.Fatalf("SetParameters() error = %v, want ErrConfig", err)
			}
			if diff := cmp.Diff(before, s.GetParameters()); diff != "" {
				t.Errorf("parameters changed after a rejected update:\n%s", diff)
			}
		})
	}
}

func TestGetSoundArrayRejects(t *testing.T) {
	s := newSynth(t, Config{})
	tests := []struct {
		name           string
		note, duration float64
	}{
		{"zero duration", 440, 0},
		{"negative duration", 440, -1},
		{"infinite duration", 440, math.Inf(1)},
		{"huge duration", 440, 1e13},
		{"just over the limit", 440, float64(MaxSamples+dsp.BlockSize) / DefaultSampleRate},
		{"zero note", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.GetSoundArray(tt.note, tt.duration); !errors.Is(err, dsp.ErrConfig) {
				t.Errorf("GetSoundArray() error = %v, want ErrConfig", err)
			}
		})
	}
}

func TestDefaultCutoffNeedsHighSampleRate(t *testing.T) {
	s := newSynth(t, Config{SampleRate: 8000})
	if _, err := s.GetSoundArray(440, 1); !errors.Is(err, dsp.ErrConfig) {
		t.Errorf("GetSoundArray() error = %v, want ErrConfig for a cutoff above nyquist", err)
	}
	if err := s.SetParameters(WithCutoff(3000)); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetSoundArray(440, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 8000 {
		t.Errorf("len = %d, want 8000", len(got))
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	for _, cfg := range []Config{{SampleRate: -1}, {SampleRate: math.NaN()}, {FilterMode: filter.Mode(5)}} {
		if _, err := New(cfg); !errors.Is(err, dsp.ErrConfig) {
			t.Errorf("New(%+v) error = %v, want ErrConfig", cfg, err)
		}
	}
}

func TestMixingIdenticalVoicesDoubles(t *testing.T) {
	p := osc.Params{Frequency: 440, Amplitude: 0.5, Phase: 0.2, SampleRate: DefaultSampleRate}
	newOsc := func() *osc.Oscillator {
		o, err := osc.New(osc.Triangle, p)
		if err != nil {
			t.Fatal(err)
		}
		return o
	}

	single, err := dsp.Take(newOsc(), 3)
	if err != nil {
		t.Fatal(err)
	}
	mixed, err := dsp.Take(dsp.NewMixer(newOsc(), newOsc()), 3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range single {
		if mixed[i] != 2*single[i] {
			t.Fatalf("sample %d: mixed %v, want %v", i, mixed[i], 2*single[i])
		}
	}
}

func TestConcurrentRenders(t *testing.T) {
	s := newSynth(t, Config{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				if err := s.SetParameters(WithCutoff(float64(1000 * (i + 1)))); err != nil {
					t.Error(err)
				}
				return
			}
			got, err := s.GetSoundArray(440, 0.1)
			if err != nil {
				t.Error(err)
				return
			}
			if len(got) != 4000 {
				t.Errorf("len = %d, want 4000", len(got))
			}
		}(i)
	}
	wg.Wait()
}
