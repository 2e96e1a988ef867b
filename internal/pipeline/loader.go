package pipeline

import (
	"context"
	"sync"

	"github.com/TimelordUK/sigview/internal/series"
	"github.com/TimelordUK/sigview/internal/source"
)

// State is the per-file pipeline state
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of a Loader
type Snapshot struct {
	State      State
	Name       string
	Series     *series.Series
	Stats      Stats
	Err        error
	Generation uint64
}

// Loader owns the current series and runs the pipeline for new sources.
// Each Begin starts a new generation; completions carrying an older
// generation are discarded, so a slow run for a previous file can never
// overwrite a newer one.
type Loader struct {
	mu     sync.Mutex
	opts   Options
	gen    uint64
	cancel context.CancelFunc
	snap   Snapshot
}

// NewLoader creates an idle loader
func NewLoader(opts Options) *Loader {
	return &Loader{opts: opts}
}

// Begin discards any previous series or error and enters Loading.
// The returned context is cancelled when a newer Begin supersedes this one.
func (l *Loader) Begin(ctx context.Context, name string) (context.Context, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.gen++
	l.snap = Snapshot{
		State:      StateLoading,
		Name:       name,
		Generation: l.gen,
	}
	return runCtx, l.gen
}

// Complete records the outcome of generation gen.
// It reports false when gen is stale and the outcome was ignored.
func (l *Loader) Complete(gen uint64, res *Result, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.gen {
		return false
	}
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}

	if err != nil {
		l.snap.State = StateError
		l.snap.Err = err
		l.snap.Series = nil
		return true
	}
	l.snap.State = StateReady
	l.snap.Err = nil
	l.snap.Series = res.Series
	l.snap.Stats = res.Stats
	return true
}

// Run processes src as a new generation and records the result.
// It blocks until the run finishes. When a newer Begin supersedes the run,
// its outcome is discarded and ErrSuperseded is returned with a snapshot of
// this run, not of the newer one.
func (l *Loader) Run(ctx context.Context, name string, src source.RawSource) (Snapshot, error) {
	runCtx, gen := l.Begin(ctx, name)
	res, err := Process(runCtx, src, l.opts)
	if !l.Complete(gen, res, err) {
		return Snapshot{
			State:      StateError,
			Name:       name,
			Err:        ErrSuperseded,
			Generation: gen,
		}, ErrSuperseded
	}
	return l.Snapshot(), err
}

// Options returns the pipeline options used for each run
func (l *Loader) Options() Options {
	return l.opts
}

// Snapshot returns the current state
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}
