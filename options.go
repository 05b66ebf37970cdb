package wbp

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jamesainslie/go-wbp/classifier"
	"github.com/jamesainslie/go-wbp/corpus"
	"github.com/jamesainslie/go-wbp/store"
)

// Option configures an Estimator.
type Option func(*config)

type config struct {
	maxN             int
	usageRatio       float64
	workers          int
	seed             int64
	testRatio        float64
	marker           rune
	dataset          string
	classifier       classifier.Classifier
	c                float64
	maxIterations    int
	progressInterval time.Duration
	logger           *slog.Logger
}

func defaultConfig() config {
	return config{
		maxN:             4,
		usageRatio:       0.1,
		workers:          8,
		seed:             2018,
		testRatio:        0.1,
		marker:           corpus.DefaultMarker,
		dataset:          store.DefaultDataset,
		c:                1.0,
		maxIterations:    100,
		progressInterval: 10 * time.Second,
		logger:           slog.Default(),
	}
}

func (c config) validate() error {
	switch {
	case c.maxN < 1:
		return fmt.Errorf("%w: max n-gram length must be at least 1, got %d", ErrConfiguration, c.maxN)
	case c.usageRatio <= 0 || c.usageRatio > 1:
		return fmt.Errorf("%w: usage ratio must be in (0, 1], got %g", ErrConfiguration, c.usageRatio)
	case c.workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrConfiguration, c.workers)
	case c.testRatio < 0 || c.testRatio >= 1:
		return fmt.Errorf("%w: test ratio must be in [0, 1), got %g", ErrConfiguration, c.testRatio)
	case c.marker == 0:
		return fmt.Errorf("%w: marker must be set", ErrConfiguration)
	case c.dataset == "":
		return fmt.Errorf("%w: dataset name must be set", ErrConfiguration)
	case c.classifier == nil && c.c <= 0:
		return fmt.Errorf("%w: regularisation strength must be positive, got %g", ErrConfiguration, c.c)
	}
	return nil
}

// WithMaxN sets the longest n-gram used on each side of a position (default: 4).
func WithMaxN(n int) Option {
	return func(c *config) {
		c.maxN = n
	}
}

// WithUsageRatio sets the fraction of sentence pairs sampled for training
// (default: 0.1).
func WithUsageRatio(r float64) Option {
	return func(c *config) {
		c.usageRatio = r
	}
}

// WithWorkers sets the number of scoring goroutines (default: 8).
func WithWorkers(n int) Option {
	return func(c *config) {
		c.workers = n
	}
}

// WithSeed sets the seed for sampling and the train/test split (default: 2018).
func WithSeed(seed int64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithTestRatio sets the share of training rows held out for evaluation
// (default: 0.1). Zero disables evaluation.
func WithTestRatio(r float64) Option {
	return func(c *config) {
		c.testRatio = r
	}
}

// WithMarker sets the boundary marker character (default: '␣').
func WithMarker(r rune) Option {
	return func(c *config) {
		c.marker = r
	}
}

// WithDataset sets the key the output is stored under (default: "word_boundary").
func WithDataset(name string) Option {
	return func(c *config) {
		c.dataset = name
	}
}

// WithClassifier replaces the default logistic regression.
func WithClassifier(cl classifier.Classifier) Option {
	return func(c *config) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// WithRegularization sets the inverse regularisation strength of the
// default logistic regression (default: 1.0).
func WithRegularization(inv float64) Option {
	return func(c *config) {
		c.c = inv
	}
}

// WithMaxIterations caps L-BFGS iterations of the default logistic
// regression (default: 100).
func WithMaxIterations(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithProgressInterval sets how often scoring progress is logged
// (default: 10s). Zero disables progress logging.
func WithProgressInterval(d time.Duration) Option {
	return func(c *config) {
		c.progressInterval = d
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
