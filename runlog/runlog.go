// Package runlog records the outcome of parameter-search runs against target
// sounds and summarizes them when closed.
package runlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/golang/glog"
	"github.com/google/uuid"
)

// PopSizeKey is the header entry holding the population size of the search.
// It turns generation counts into fitness evaluations.
const PopSizeKey = "pop_size"

var (
	// ErrNoTarget is returned when a run is added before any target is set.
	ErrNoTarget = errors.New("no target set")
	// ErrNoRuns is returned when metrics are requested for a target without runs.
	ErrNoRuns = errors.New("target has no runs")
)

// Run is the summary of one search run.
type Run struct {
	ID string `json:"id"`
	// Best holds the best parameters found, e.g. synth.Parameters.Map().
	Best          map[string]any       `json:"best"`
	BestFit       float64              `json:"best_fit"`
	NGens         int                  `json:"n_gens"`
	EarlyStopping bool                 `json:"early_stopping"`
	Runtime       float64              `json:"runtime"`
	GenStats      []map[string]float64 `json:"gen_stats"`
}

// Metrics aggregates runs.
type Metrics struct {
	MeanFitness               float64 `json:"mean_fitness"`
	ProportionOfEarlyStopping float64 `json:"proportion_of_early_stopping"`
	FitnessEvaluationsPerRun  float64 `json:"fitness_evaluations_per_run"`
}

// Target groups the runs made against one target.
type Target struct {
	Target  string   `json:"target"`
	Runs    []Run    `json:"runs"`
	Metrics *Metrics `json:"metrics,omitempty"`
}

type document struct {
	Description string         `json:"description"`
	Header      map[string]any `json:"header"`
	Targets     []*Target      `json:"targets"`
	Metrics     *Metrics       `json:"metrics,omitempty"`
}

// Logger collects runs in memory and writes them as JSON on Close.
type Logger struct {
	path string
	doc  document
	curr *Target
}

// New returns a Logger that will write to a file in dir named after the
// current time. dir is created if needed.
func New(dir, description string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}
	name := time.Now().Format("2006-01-02-15-04-05.000000") + ".json"
	return &Logger{
		path: filepath.Join(dir, name),
		doc: document{
			Description: description,
			Header:      map[string]any{},
			Targets:     []*Target{},
		},
	}, nil
}

// Path returns the file Close writes to.
func (l *Logger) Path() string { return l.path }

// SetHeader merges params into the header.
func (l *Logger) SetHeader(params map[string]any) {
	for k, v := range params {
		l.doc.Header[k] = v
	}
}

// SetTarget starts a new target; later runs are recorded under it.
func (l *Logger) SetTarget(target string) {
	t := &Target{Target: target, Runs: []Run{}}
	l.doc.Targets = append(l.doc.Targets, t)
	l.curr = t
}

// AddRun records a run under the current target and returns its ID.
func (l *Logger) AddRun(best map[string]any, bestFit float64, nGens int, earlyStopping bool, runtime time.Duration, genStats []map[string]float64) (string, error) {
	if l.curr == nil {
		return "", fmt.Errorf("can't add a run for an unknown target: %w", ErrNoTarget)
	}
	r := Run{
		ID:            uuid.NewString(),
		Best:          best,
		BestFit:       bestFit,
		NGens:         nGens,
		EarlyStopping: earlyStopping,
		Runtime:       runtime.Seconds(),
		GenStats:      genStats,
	}
	l.curr.Runs = append(l.curr.Runs, r)
	log.V(1).Infof("run %s on %q: fitness %v after %d generations", r.ID, l.curr.Target, bestFit, nGens)
	return r.ID, nil
}

// CalculateMetrics computes metrics over every target and stores them at the
// top level, or for the most recent target only when allTargets is false.
func (l *Logger) CalculateMetrics(allTargets bool) (Metrics, error) {
	targets := l.doc.Targets
	if !allTargets && len(targets) > 0 {
		targets = targets[len(targets)-1:]
	}
	if len(targets) == 0 {
		return Metrics{}, fmt.Errorf("no targets to summarise: %w", ErrNoTarget)
	}
	popSize, err := l.popSize()
	if err != nil {
		return Metrics{}, err
	}

	var m Metrics
	for _, t := range targets {
		if len(t.Runs) == 0 {
			return Metrics{}, fmt.Errorf("target %q: %w", t.Target, ErrNoRuns)
		}
		var fit, early, gens float64
		for _, r := range t.Runs {
			fit += r.BestFit
			gens += float64(r.NGens)
			if r.EarlyStopping {
				early++
			}
		}
		n := float64(len(t.Runs))
		m.MeanFitness += fit / n
		m.ProportionOfEarlyStopping += early / n
		m.FitnessEvaluationsPerRun += gens / n
	}
	nt := float64(len(targets))
	m.MeanFitness /= nt
	m.ProportionOfEarlyStopping /= nt
	m.FitnessEvaluationsPerRun = m.FitnessEvaluationsPerRun / nt * popSize

	if allTargets {
		l.doc.Metrics = &m
	} else {
		targets[0].Metrics = &m
	}
	return m, nil
}

func (l *Logger) popSize() (float64, error) {
	v, ok := l.doc.Header[PopSizeKey]
	if !ok {
		return 0, fmt.Errorf("header has no %q", PopSizeKey)
	}
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("header %q must be a number, got %T", PopSizeKey, v)
}

// Close computes the overall metrics and writes the log. The file is written
// even if the metrics cannot be computed.
func (l *Logger) Close() error {
	_, merr := l.CalculateMetrics(true)

	bs, err := json.MarshalIndent(l.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run log: %w", err)
	}
	if err := os.WriteFile(l.path, bs, 0o644); err != nil {
		return fmt.Errorf("failed to write run log to %q: %w", l.path, err)
	}
	log.V(1).Infof("wrote run log for %d targets to %s", len(l.doc.Targets), l.path)
	return merr
}
