package scorer

import (
	"log/slog"
	"time"
)

// Option configures a Scorer.
type Option func(*config)

type config struct {
	workers          int
	logger           *slog.Logger
	progressInterval time.Duration
}

func defaultConfig() config {
	return config{
		workers:          8,
		logger:           slog.Default(),
		progressInterval: 10 * time.Second,
	}
}

// WithWorkers sets the number of chunks scored concurrently (default: 8).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
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

// WithProgressInterval sets how often progress is logged (default: 10s).
// Zero disables progress reporting.
func WithProgressInterval(d time.Duration) Option {
	return func(c *config) {
		c.progressInterval = d
	}
}
