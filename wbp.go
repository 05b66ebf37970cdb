package wbp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/jamesainslie/go-wbp/align"
	"github.com/jamesainslie/go-wbp/classifier"
	"github.com/jamesainslie/go-wbp/corpus"
	"github.com/jamesainslie/go-wbp/features"
	"github.com/jamesainslie/go-wbp/internal/bench"
	"github.com/jamesainslie/go-wbp/ngram"
	"github.com/jamesainslie/go-wbp/scorer"
	"github.com/jamesainslie/go-wbp/store"
)

// Seed streams for the two random draws of a run.
const (
	sampleStream = 1
	splitStream  = 2
)

// Paths names the files of one run.
type Paths struct {
	Raw        string // raw sentences, one per line
	Segmented  string // the same sentences with words separated by whitespace
	Normalized string // the normalized corpus, a single line
	NGrams     string // `<ngram> <count>` table
	Output     string // artifact written by store.Save
}

// Evaluation summarises the held-out split of the training rows.
type Evaluation struct {
	TrainRows     int
	TestRows      int
	Accuracy      float64
	Precision     float64
	Recall        float64
	F1            float64
	LogLoss       float64
	BestThreshold float64 // threshold with the highest held-out F1
	BestF1        float64
}

// Report describes a completed run.
type Report struct {
	Sentences       int // sampled sentence pairs
	CorpusLength    int
	Evaluation      Evaluation
	MeanProbability float64
	Elapsed         time.Duration
}

// Estimator trains a boundary classifier on aligned sentence pairs and
// scores a normalized corpus with it.
type Estimator struct {
	cfg        config
	classifier classifier.Classifier
	logger     *slog.Logger
}

// New creates an Estimator. Without WithClassifier it trains an
// L2-regularised logistic regression.
func New(opts ...Option) (*Estimator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cl := cfg.classifier
	if cl == nil {
		lr := classifier.NewLogistic()
		lr.C = cfg.c
		lr.MaxIterations = cfg.maxIterations
		lr.Logger = cfg.logger
		cl = lr
	}

	return &Estimator{
		cfg:        cfg,
		classifier: cl,
		logger:     cfg.logger,
	}, nil
}

// Run executes the whole pipeline and writes the probability sequence to
// paths.Output. Nothing is written unless every step succeeds.
func (e *Estimator) Run(ctx context.Context, paths Paths) (*Report, error) {
	if paths.Output == "" {
		return nil, fmt.Errorf("%w: output path must be set", ErrConfiguration)
	}
	start := time.Now()

	raw, err := corpus.ReadLinesFile(paths.Raw)
	if err != nil {
		return nil, err
	}
	segmented, err := corpus.ReadLinesFile(paths.Segmented)
	if err != nil {
		return nil, err
	}
	if len(raw) != len(segmented) {
		return nil, fmt.Errorf("%w: %d raw sentences vs %d segmented", ErrDataIntegrity, len(raw), len(segmented))
	}

	text, err := corpus.ReadNormalizedFile(paths.Normalized)
	if err != nil {
		if errors.Is(err, corpus.ErrNotSingleLine) {
			return nil, fmt.Errorf("%w: %w", ErrDataIntegrity, err)
		}
		return nil, err
	}
	table, err := ngram.LoadFile(paths.NGrams)
	if err != nil {
		return nil, err
	}
	e.logger.Info("inputs loaded",
		"sentences", len(raw),
		"corpus_length", text.Len(),
		"ngrams", table.Len(),
		"table_max_n", table.MaxN())

	X, y, sentences, err := e.trainingSet(raw, segmented, text, table)
	if err != nil {
		return nil, err
	}
	eval, err := e.Train(ctx, X, y)
	if err != nil {
		return nil, err
	}

	probs, err := e.Predict(ctx, text, table)
	if err != nil {
		return nil, err
	}

	artifact := store.Artifact{
		Dataset: e.cfg.dataset,
		Values:  probs,
		MaxN:    uint32(e.cfg.maxN),
		Seed:    e.cfg.seed,
	}
	if err := store.Save(paths.Output, artifact); err != nil {
		return nil, fmt.Errorf("saving probabilities: %w", err)
	}

	report := &Report{
		Sentences:       sentences,
		CorpusLength:    text.Len(),
		Evaluation:      eval,
		MeanProbability: stat.Mean(probs, nil),
		Elapsed:         time.Since(start),
	}
	e.logger.Info("probabilities written",
		"path", paths.Output,
		"dataset", e.cfg.dataset,
		"values", len(probs),
		"mean", report.MeanProbability,
		"elapsed", report.Elapsed)
	return report, nil
}

// TrainingSet samples a contiguous window of sentence pairs, aligns them
// and returns the feature rows and labels of every position far enough
// from both ends of the sample to have full n-gram context. text is the
// normalized corpus; only its length is used.
func (e *Estimator) TrainingSet(raw, segmented []string, text *corpus.Text, table *ngram.Table) (*mat.Dense, []float64, error) {
	X, y, _, err := e.trainingSet(raw, segmented, text, table)
	return X, y, err
}

func (e *Estimator) trainingSet(raw, segmented []string, text *corpus.Text, table *ngram.Table) (*mat.Dense, []float64, int, error) {
	if len(raw) != len(segmented) {
		return nil, nil, 0, fmt.Errorf("%w: %d raw sentences vs %d segmented", ErrDataIntegrity, len(raw), len(segmented))
	}

	rng := rand.New(rand.NewPCG(uint64(e.cfg.seed), sampleStream))
	window := corpus.SampleWindow(len(raw), e.cfg.usageRatio, rng)
	if window.Len() == 0 {
		return nil, nil, 0, fmt.Errorf("%w: sampling %g of %d sentences selects none", ErrDataIntegrity, e.cfg.usageRatio, len(raw))
	}

	sample, labels, err := align.Batch(raw[window.Start:window.End], segmented[window.Start:window.End], e.cfg.marker)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: sentences [%d, %d): %w", ErrDataIntegrity, window.Start, window.End, err)
	}
	sampleText := corpus.NewText(sample)

	ext, err := features.New(table, e.cfg.maxN, text.Len())
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	lo, hi := e.cfg.maxN, sampleText.Len()-(e.cfg.maxN-1)
	if lo >= hi {
		return nil, nil, 0, fmt.Errorf("%w: sample of %d characters is too short for n-grams up to %d",
			ErrDataIntegrity, sampleText.Len(), e.cfg.maxN)
	}

	X, err := ext.Matrix(sampleText, lo, hi)
	if err != nil {
		return nil, nil, 0, err
	}
	y := make([]float64, hi-lo)
	for i := range y {
		y[i] = float64(labels[lo+i])
	}

	e.logger.Info("training set built",
		"sentences", window.Len(),
		"first_sentence", window.Start,
		"characters", sampleText.Len(),
		"rows", len(y))
	return X, y, window.Len(), nil
}

// Train shuffles the rows, holds out the configured test share, fits the
// classifier on the rest and evaluates it on the held-out rows.
func (e *Estimator) Train(ctx context.Context, X *mat.Dense, y []float64) (Evaluation, error) {
	rows, cols := X.Dims()
	if rows != len(y) {
		return Evaluation{}, fmt.Errorf("%w: %d feature rows vs %d labels", ErrDataIntegrity, rows, len(y))
	}

	testRows := int(math.Ceil(e.cfg.testRatio * float64(rows)))
	if testRows >= rows {
		testRows = 0
	}
	trainRows := rows - testRows

	rng := rand.New(rand.NewPCG(uint64(e.cfg.seed), splitStream))
	perm := rng.Perm(rows)

	trainX, trainY := gather(X, y, perm[:trainRows], cols)
	if err := e.classifier.Fit(ctx, trainX, trainY); err != nil {
		return Evaluation{}, fmt.Errorf("training classifier: %w", err)
	}

	eval := Evaluation{TrainRows: trainRows, TestRows: testRows}
	if testRows == 0 {
		e.logger.Info("classifier trained", "train_rows", trainRows)
		return eval, nil
	}

	testX, testY := gather(X, y, perm[trainRows:], cols)
	probs, err := e.classifier.PredictProbability(ctx, testX)
	if err != nil {
		return Evaluation{}, fmt.Errorf("evaluating classifier: %w", err)
	}

	cfg := bench.DefaultConfig()
	m, err := bench.Evaluate(probs, testY, cfg)
	if err != nil {
		return Evaluation{}, err
	}
	eval.Accuracy = m.Accuracy
	eval.Precision = m.Precision
	eval.Recall = m.Recall
	eval.F1 = m.F1
	eval.LogLoss = m.LogLoss

	sweep, err := bench.Sweep(probs, testY, cfg, bench.SweepThresholds(0.05, 1, 0.05))
	if err != nil {
		return Evaluation{}, err
	}
	if best, ok := bench.BestF1(sweep); ok {
		eval.BestThreshold = best.Threshold
		eval.BestF1 = best.Metrics.F1
	}

	e.logger.Info("classifier trained",
		"train_rows", trainRows,
		"test_rows", testRows,
		"accuracy", eval.Accuracy,
		"precision", eval.Precision,
		"recall", eval.Recall,
		"f1", eval.F1,
		"log_loss", eval.LogLoss,
		"best_threshold", eval.BestThreshold)
	return eval, nil
}

// Predict scores every position of text with the trained classifier. The
// result has one probability per character; position 0 is always 1.0.
func (e *Estimator) Predict(ctx context.Context, text *corpus.Text, table *ngram.Table) ([]float64, error) {
	length := text.Len()
	if length == 0 {
		return nil, fmt.Errorf("%w: empty corpus", ErrDataIntegrity)
	}
	if length == 1 {
		return []float64{1}, nil
	}

	ext, err := features.New(table, e.cfg.maxN, length)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	sc := scorer.New(ext,
		scorer.WithWorkers(e.cfg.workers),
		scorer.WithLogger(e.logger),
		scorer.WithProgressInterval(e.cfg.progressInterval))

	e.logger.Info("scoring corpus", "positions", length-1, "workers", sc.Workers())
	X, err := sc.Features(ctx, text)
	if err != nil {
		if errors.Is(err, scorer.ErrWorkerFailed) {
			return nil, fmt.Errorf("%w: %w", ErrWorkerFailure, err)
		}
		return nil, err
	}

	scored, err := e.classifier.PredictProbability(ctx, X)
	if err != nil {
		return nil, fmt.Errorf("predicting boundaries: %w", err)
	}

	probs := make([]float64, 0, length)
	probs = append(probs, 1.0)
	probs = append(probs, scored...)
	if len(probs) != length {
		return nil, fmt.Errorf("%w: %d probabilities for %d characters", ErrDataIntegrity, len(probs), length)
	}
	return probs, nil
}

// Close releases the classifier if it holds resources.
func (e *Estimator) Close() error {
	if c, ok := e.classifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// gather copies the rows idx of X and y into a new matrix and label slice.
func gather(X *mat.Dense, y []float64, idx []int, cols int) (*mat.Dense, []float64) {
	out := mat.NewDense(len(idx), cols, nil)
	labels := make([]float64, len(idx))
	for i, r := range idx {
		copy(out.RawRowView(i), X.RawRowView(r))
		labels[i] = y[r]
	}
	return out, labels
}
