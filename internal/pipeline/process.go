package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/TimelordUK/sigview/internal/chunk"
	"github.com/TimelordUK/sigview/internal/config"
	"github.com/TimelordUK/sigview/internal/decimate"
	"github.com/TimelordUK/sigview/internal/series"
	"github.com/TimelordUK/sigview/internal/source"
)

// Options tune the pipeline. Zero values select the defaults.
type Options struct {
	ChunkSize        int
	DecimationFactor int
	SampleRate       int

	// Logger receives progress events; nil discards them
	Logger *slog.Logger

	// Progress, when set, is called after each chunk with bytes consumed
	// and total bytes
	Progress func(done, total int64)
}

// Stats describes one completed run
type Stats struct {
	Chunks    int           `json:"chunks"`
	Bytes     int64         `json:"bytes"`
	Parsed    int           `json:"parsed"`
	Skipped   int           `json:"skipped"`
	Fragments int           `json:"fragments"`
	Retained  int           `json:"retained"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Result is the output of a successful run
type Result struct {
	Series *series.Series
	Stats  Stats
}

// OptionsFrom builds run options from the [pipeline] config section
func OptionsFrom(cfg config.PipelineConfig, logger *slog.Logger) Options {
	return Options{
		ChunkSize:        cfg.ChunkSize,
		DecimationFactor: cfg.DecimationFactor,
		SampleRate:       cfg.SampleRate,
		Logger:           logger,
	}
}

func (o Options) withDefaults() Options {
	if o.ChunkSize <= 0 {
		o.ChunkSize = chunk.DefaultSize
	}
	if o.DecimationFactor <= 0 {
		o.DecimationFactor = decimate.DefaultFactor
	}
	if o.SampleRate <= 0 {
		o.SampleRate = series.DefaultSampleRate
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}

// Process scans src chunk by chunk, decimates and builds the series.
// Chunks are read one at a time; the next read is not issued until the
// previous chunk has been parsed. On any error no partial series is
// returned.
func Process(ctx context.Context, src source.RawSource, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	log := opts.Logger
	start := time.Now()

	size := src.Size()
	if size == 0 {
		log.Warn("pipeline rejected source", "reason", "empty")
		return nil, ErrEmptySource
	}

	reader := chunk.NewReader(src, opts.ChunkSize)
	dec := decimate.New(opts.DecimationFactor)

	log.Debug("pipeline start",
		"bytes", size,
		"chunk_size", opts.ChunkSize,
		"factor", dec.Factor(),
		"sample_rate", opts.SampleRate)
	chunks := 0

	for {
		c, err := reader.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error("pipeline read failed", "offset", reader.Offset(), "err", err)
			return nil, err
		}

		kept := dec.Feed(c)
		chunks++
		log.Debug("chunk parsed", "offset", c.Offset, "bytes", len(c.Text), "kept", kept)

		if opts.Progress != nil {
			opts.Progress(min(reader.Offset(), size), size)
		}
	}

	counts := dec.Counts()
	if counts.Retained == 0 {
		log.Warn("pipeline rejected source", "reason", "no numeric data", "skipped", counts.Skipped)
		return nil, ErrInvalidFormat
	}

	rate := series.EffectiveRate(opts.SampleRate, dec.Factor())
	s := series.Reconstruct(dec.Retained(), rate)

	stats := Stats{
		Chunks:    chunks,
		Bytes:     size,
		Parsed:    counts.Parsed,
		Skipped:   counts.Skipped,
		Fragments: counts.Fragments,
		Retained:  counts.Retained,
		Elapsed:   time.Since(start),
	}
	log.Info("pipeline finished",
		"chunks", stats.Chunks,
		"parsed", stats.Parsed,
		"retained", stats.Retained,
		"skipped", stats.Skipped,
		"fragments", stats.Fragments,
		"elapsed", stats.Elapsed)

	return &Result{Series: s, Stats: stats}, nil
}
