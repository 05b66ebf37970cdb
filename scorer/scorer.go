// Package scorer computes feature matrices for every position of a corpus
// in parallel.
package scorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/jamesainslie/go-wbp/corpus"
)

var (
	// ErrWorkerFailed wraps the first error raised inside a scoring chunk.
	ErrWorkerFailed = errors.New("scorer: worker failed")

	// ErrEmptyRange indicates a corpus with no scorable position.
	ErrEmptyRange = errors.New("scorer: nothing to score")
)

// ctxCheckInterval is how many positions a worker scores between context checks.
const ctxCheckInterval = 4096

// Featurizer computes the feature vector of one position.
// Implementations must be safe for concurrent use.
type Featurizer interface {
	Dim() int
	Vector(text *corpus.Text, i int, dst []float64) error
}

// Chunk is a contiguous range [Start, End) of positions scored by one worker.
type Chunk struct {
	Index int
	Start int
	End   int
}

// Chunks partitions positions [1, length-1] into at most workers contiguous
// chunks of ceil((length-1)/workers) positions, ordered by Start.
func Chunks(length, workers int) []Chunk {
	total := length - 1
	if total <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	size := (total + workers - 1) / workers
	chunks := make([]Chunk, 0, workers)
	for start := 1; start < length; start += size {
		end := start + size
		if end > length {
			end = length
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, End: end})
	}
	return chunks
}

// Scorer fans feature extraction out over position chunks. It is safe for
// concurrent use.
type Scorer struct {
	fz               Featurizer
	workers          int
	logger           *slog.Logger
	progressInterval time.Duration
}

// New creates a Scorer around fz.
func New(fz Featurizer, opts ...Option) *Scorer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Scorer{
		fz:               fz,
		workers:          cfg.workers,
		logger:           cfg.logger,
		progressInterval: cfg.progressInterval,
	}
}

// Workers returns the configured worker count.
func (s *Scorer) Workers() int {
	return s.workers
}

// Features returns the feature matrix of positions 1..L-1 of text: row r
// holds position r+1. Position 0 is a boundary by convention and is not
// scored. Each worker fills the row block of its own chunk, so the result
// is ordered by chunk offset and identical for any worker count. The first
// worker error aborts the pass and no matrix is returned.
func (s *Scorer) Features(ctx context.Context, text *corpus.Text) (*mat.Dense, error) {
	length := text.Len()
	if length < 2 {
		return nil, fmt.Errorf("%w: corpus length %d", ErrEmptyRange, length)
	}

	dim := s.fz.Dim()
	result := mat.NewDense(length-1, dim, nil)
	chunks := Chunks(length, s.workers)

	var done atomic.Int64
	stop := s.reportProgress(&done, int64(length-1))
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range chunks {
		g.Go(func() error {
			if err := s.scoreChunk(gctx, text, c, result, &done); err != nil {
				return fmt.Errorf("%w: chunk %d [%d, %d): %w", ErrWorkerFailed, c.Index, c.Start, c.End, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("scoring finished", "positions", length-1, "chunks", len(chunks), "dim", dim)
	return result, nil
}

// scoreChunk writes rows c.Start-1 .. c.End-2 of result. No other worker
// touches those rows.
func (s *Scorer) scoreChunk(ctx context.Context, text *corpus.Text, c Chunk, result *mat.Dense, done *atomic.Int64) error {
	for i := c.Start; i < c.End; i++ {
		if (i-c.Start)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := s.fz.Vector(text, i, result.RawRowView(i-1)); err != nil {
			return err
		}
		done.Add(1)
	}
	return nil
}

// reportProgress logs the scored fraction every progressInterval until the
// returned stop function is called. It only reads the counter.
func (s *Scorer) reportProgress(done *atomic.Int64, total int64) func() {
	if s.progressInterval <= 0 {
		return func() {}
	}

	quit := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(s.progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-quit:
				return
			case <-ticker.C:
				n := done.Load()
				s.logger.Info("scoring progress",
					"done", n,
					"total", total,
					"percent", fmt.Sprintf("%.0f", 100*float64(n)/float64(total)))
			}
		}
	}()

	return func() {
		close(quit)
		<-finished
	}
}
