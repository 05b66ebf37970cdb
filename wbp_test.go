package wbp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gonum.org/v1/gonum/mat"

	"github.com/jamesainslie/go-wbp/classifier"
	"github.com/jamesainslie/go-wbp/corpus"
	"github.com/jamesainslie/go-wbp/ngram"
	"github.com/jamesainslie/go-wbp/store"
)

var vocabulary = []string{"the", "cat", "sat", "on", "mat", "a", "dog", "ran", "to", "it", "big", "red"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture writes a small consistent set of inputs and returns their paths.
func fixture(t *testing.T, sentences int) Paths {
	t.Helper()
	dir := t.TempDir()

	var raw, segmented []string
	for i := 0; i < sentences; i++ {
		n := 3 + i%3
		words := make([]string, n)
		for j := range words {
			words[j] = vocabulary[(i*7+j*5)%len(vocabulary)]
		}
		raw = append(raw, strings.Join(words, ""))
		segmented = append(segmented, strings.Join(words, " "))
	}

	paths := Paths{
		Raw:        filepath.Join(dir, "raw.txt"),
		Segmented:  filepath.Join(dir, "segmented.txt"),
		Normalized: filepath.Join(dir, "normalized.txt"),
		NGrams:     filepath.Join(dir, "ngrams.tsv"),
		Output:     filepath.Join(dir, "boundary.pb"),
	}
	writeLines(t, paths.Raw, raw)
	writeLines(t, paths.Segmented, segmented)

	var normalized bytes.Buffer
	_, err := corpus.Normalize(strings.NewReader(strings.Join(segmented, "\n")), &normalized, corpus.DefaultMarker)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(paths.Normalized, normalized.Bytes(), 0o600))

	cfg := ngram.DefaultCounterConfig()
	cfg.MaxN = 4
	cfg.Logger = quietLogger()
	entries, err := ngram.Count(context.Background(), corpus.NewText(strings.TrimSpace(normalized.String())), cfg)
	require.NoError(t, err)
	require.NoError(t, ngram.WriteFile(paths.NGrams, entries, language.English))

	return paths
}

func writeLines(t *testing.T, path string, lines []string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))
}

func newEstimator(t *testing.T, opts ...Option) *Estimator {
	t.Helper()
	opts = append([]Option{WithUsageRatio(1), WithLogger(quietLogger()), WithProgressInterval(0)}, opts...)
	est, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = est.Close() })
	return est
}

func TestRun_EndToEnd(t *testing.T) {
	paths := fixture(t, 30)
	est := newEstimator(t)

	report, err := est.Run(context.Background(), paths)
	require.NoError(t, err)

	text, err := corpus.ReadNormalizedFile(paths.Normalized)
	require.NoError(t, err)

	artifact, err := store.Load(paths.Output)
	require.NoError(t, err)
	assert.Equal(t, store.DefaultDataset, artifact.Dataset)
	assert.Equal(t, uint32(4), artifact.MaxN)
	assert.Equal(t, int64(2018), artifact.Seed)

	require.Len(t, artifact.Values, text.Len())
	assert.Equal(t, 1.0, artifact.Values[0])
	for i, p := range artifact.Values {
		assert.True(t, p >= 0 && p <= 1, "position %d: %v", i, p)
	}

	assert.Equal(t, 30, report.Sentences)
	assert.Equal(t, text.Len(), report.CorpusLength)
	assert.Positive(t, report.Evaluation.TrainRows)
	assert.Positive(t, report.Evaluation.TestRows)
	assert.True(t, report.MeanProbability > 0 && report.MeanProbability <= 1)
}

func TestRun_DataIntegrity(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, p Paths)
	}{
		{
			name: "line count mismatch",
			mutate: func(t *testing.T, p Paths) {
				writeLines(t, p.Segmented, []string{"the cat"})
			},
		},
		{
			name: "misaligned sentences",
			mutate: func(t *testing.T, p Paths) {
				writeLines(t, p.Raw, []string{"xyz", "abc"})
				writeLines(t, p.Segmented, []string{"the cat", "a b c"})
			},
		},
		{
			name: "normalized corpus with two lines",
			mutate: func(t *testing.T, p Paths) {
				writeLines(t, p.Normalized, []string{"the␣cat", "sat"})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			paths := fixture(t, 10)
			tt.mutate(t, paths)

			_, err := newEstimator(t).Run(context.Background(), paths)
			assert.ErrorIs(t, err, ErrDataIntegrity)

			_, statErr := os.Stat(paths.Output)
			assert.True(t, os.IsNotExist(statErr), "output must not be written")
		})
	}
}

func TestRun_MissingOutputPath(t *testing.T) {
	paths := fixture(t, 5)
	paths.Output = ""
	_, err := newEstimator(t).Run(context.Background(), paths)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"max n zero", WithMaxN(0)},
		{"usage ratio zero", WithUsageRatio(0)},
		{"usage ratio above one", WithUsageRatio(1.5)},
		{"workers zero", WithWorkers(0)},
		{"test ratio one", WithTestRatio(1)},
		{"test ratio negative", WithTestRatio(-0.1)},
		{"no marker", WithMarker(0)},
		{"empty dataset", WithDataset("")},
		{"non-positive regularization", WithRegularization(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	_, err := New()
	assert.NoError(t, err)
}

func loadInputs(t *testing.T, paths Paths) ([]string, []string, *corpus.Text, *ngram.Table) {
	t.Helper()
	raw, err := corpus.ReadLinesFile(paths.Raw)
	require.NoError(t, err)
	segmented, err := corpus.ReadLinesFile(paths.Segmented)
	require.NoError(t, err)
	text, err := corpus.ReadNormalizedFile(paths.Normalized)
	require.NoError(t, err)
	table, err := ngram.LoadFile(paths.NGrams)
	require.NoError(t, err)
	return raw, segmented, text, table
}

func TestTrainingSet(t *testing.T) {
	paths := fixture(t, 12)
	raw, segmented, text, table := loadInputs(t, paths)

	est := newEstimator(t, WithMaxN(3))
	X, y, err := est.TrainingSet(raw, segmented, text, table)
	require.NoError(t, err)

	rows, cols := X.Dims()
	assert.Equal(t, 9, cols)
	assert.Equal(t, rows, len(y))

	// Rows cover positions [maxN, len-(maxN-1)) of the cleaned sample.
	sampleLen := 0
	for _, r := range raw {
		sampleLen += len([]rune(corpus.CleanSentence(r, corpus.DefaultMarker)))
	}
	assert.Equal(t, sampleLen-2*3+1, rows)

	for _, label := range y {
		assert.True(t, label == 0 || label == 1)
	}
	assert.Contains(t, y, 1.0)
	assert.Contains(t, y, 0.0)
}

func TestTrainingSet_SampleTooShort(t *testing.T) {
	paths := fixture(t, 1)
	raw, segmented, text, table := loadInputs(t, paths)

	est := newEstimator(t, WithMaxN(12))
	_, _, err := est.TrainingSet(raw, segmented, text, table)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestTrainingSet_EmptySample(t *testing.T) {
	paths := fixture(t, 5)
	raw, segmented, text, table := loadInputs(t, paths)

	est := newEstimator(t, WithUsageRatio(0.1))
	_, _, err := est.TrainingSet(raw, segmented, text, table)
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestTrain_NoHoldout(t *testing.T) {
	est := newEstimator(t, WithTestRatio(0))
	X := mat.NewDense(4, 1, []float64{-2, -1, 1, 2})

	eval, err := est.Train(context.Background(), X, []float64{0, 0, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 4, eval.TrainRows)
	assert.Equal(t, 0, eval.TestRows)
}

func TestTrain_ShapeMismatch(t *testing.T) {
	est := newEstimator(t)
	_, err := est.Train(context.Background(), mat.NewDense(3, 1, nil), []float64{0, 1})
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

// firstFeature scores a row by the sigmoid of its first feature.
type firstFeature struct {
	fitted bool
	fitErr error
}

func (f *firstFeature) Fit(_ context.Context, _ *mat.Dense, _ []float64) error {
	if f.fitErr != nil {
		return f.fitErr
	}
	f.fitted = true
	return nil
}

func (f *firstFeature) PredictProbability(_ context.Context, X *mat.Dense) ([]float64, error) {
	if !f.fitted {
		return nil, classifier.ErrNotFitted
	}
	rows, _ := X.Dims()
	probs := make([]float64, rows)
	for i := range probs {
		probs[i] = 1 / (1 + math.Exp(-X.At(i, 0)))
	}
	return probs, nil
}

func TestPredict_IdenticalAcrossWorkerCounts(t *testing.T) {
	paths := fixture(t, 20)
	_, _, text, table := loadInputs(t, paths)

	var results [][]float64
	for _, workers := range []int{1, 3, 8} {
		cl := &firstFeature{fitted: true}
		est := newEstimator(t, WithWorkers(workers), WithClassifier(cl))
		probs, err := est.Predict(context.Background(), text, table)
		require.NoError(t, err)
		results = append(results, probs)
	}

	require.Len(t, results[0], text.Len())
	assert.Equal(t, 1.0, results[0][0])
	for _, r := range results[1:] {
		assert.Equal(t, results[0], r)
	}
}

func TestPredict_SingleCharacter(t *testing.T) {
	est := newEstimator(t, WithClassifier(&firstFeature{}))
	table, err := ngram.FromCounts(nil)
	require.NoError(t, err)

	probs, err := est.Predict(context.Background(), corpus.NewText("a"), table)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, probs)
}

func TestPredict_NotFitted(t *testing.T) {
	est := newEstimator(t)
	table, err := ngram.FromCounts(nil)
	require.NoError(t, err)

	_, err = est.Predict(context.Background(), corpus.NewText("ab␣cd"), table)
	assert.ErrorIs(t, err, classifier.ErrNotFitted)
}

func TestPredict_CancelledAbortsWorkers(t *testing.T) {
	est := newEstimator(t, WithClassifier(&firstFeature{fitted: true}))
	table, err := ngram.FromCounts(map[string]int64{"ab": 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = est.Predict(ctx, corpus.NewText("ab␣cd␣ef"), table)
	assert.ErrorIs(t, err, ErrWorkerFailure)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ClassifierFailureWritesNothing(t *testing.T) {
	paths := fixture(t, 10)
	boom := errors.New("boom")
	est := newEstimator(t, WithClassifier(&firstFeature{fitErr: boom}))

	_, err := est.Run(context.Background(), paths)
	assert.ErrorIs(t, err, boom)

	_, statErr := os.Stat(paths.Output)
	assert.True(t, os.IsNotExist(statErr))
}
