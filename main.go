package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	log "github.com/golang/glog"
)

var (
	configPath = flag.String("config", "", "TOML file describing the synth and the notes to render; - reads stdin")
	note       = flag.Float64("note", 0, "frequency in Hz of a single note to render, replacing the notes in -config")
	duration   = flag.Float64("duration", 1, "length in seconds of the note given by -note")
	outPath    = flag.String("out", "out.wav", "WAV file to write; with several notes an index is added before the extension")
	play       = flag.Bool("play", false, "play each note on the default output device")
	normalize  = flag.Bool("normalize", false, "scale each note so its peak is full scale")
)

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting up")
	if err := doMain(ctx, os.Stdin); err != nil {
		log.Exitf("failed to run: %v", err)
	}
}

func doMain(ctx context.Context, input io.Reader) error {
	cfg, err := loadConfig(input)
	if err != nil {
		return err
	}
	if *note > 0 {
		cfg.Notes = []*NoteConfig{{Frequency: *note, Duration: *duration}}
	}
	if len(cfg.Notes) == 0 {
		return fmt.Errorf("nothing to render: give -note or [[notes]] in -config")
	}

	s, err := cfg.NewSynth()
	if err != nil {
		return err
	}
	log.Infof("synth parameters: %+v", s.GetParameters().Map())

	for i, n := range cfg.Notes {
		samples, err := s.GetSoundArray(n.Frequency, n.Duration)
		if err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
		path := notePath(*outPath, i, len(cfg.Notes))
		if err := WriteWAVFile(path, samples, int(s.SampleRate()), *normalize); err != nil {
			return err
		}
		log.Infof("wrote %d samples of %v Hz to %s", len(samples), n.Frequency, path)

		if *play {
			if err := Play(ctx, samples, s.SampleRate()); err != nil {
				return fmt.Errorf("note %d: %w", i, err)
			}
		}
	}
	return nil
}

func loadConfig(input io.Reader) (*IOConfig, error) {
	switch *configPath {
	case "":
		return &IOConfig{}, nil
	case "-":
		return ParseFromReader(input)
	default:
		return ParseFromFile(*configPath)
	}
}

// notePath returns path unchanged for a single note, and path with "-<i>"
// before the extension otherwise.
func notePath(path string, i, total int) string {
	if total <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), i, ext)
}
