package ngram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jamesainslie/go-wbp/corpus"
)

// Entry is one counted n-gram.
type Entry struct {
	NGram string
	Count int64
}

// CounterConfig configures lossy n-gram counting.
type CounterConfig struct {
	MaxN             int     // count n-grams of length 1..MaxN
	SupportThreshold float64 // keep n-grams seen at least SupportThreshold*L times
	Epsilon          float64 // error bound; bucket width is 1/Epsilon
	Workers          int     // lengths counted concurrently
	Logger           *slog.Logger
}

// DefaultCounterConfig returns the settings used by the count command.
func DefaultCounterConfig() CounterConfig {
	return CounterConfig{
		MaxN:             8,
		SupportThreshold: 1e-7,
		Epsilon:          1e-7,
		Workers:          8,
		Logger:           slog.Default(),
	}
}

// Count extracts frequent n-grams of text with the lossy counting
// algorithm, one length per goroutine. Entries are sorted by descending
// count, ties broken by n-gram.
func Count(ctx context.Context, text *corpus.Text, cfg CounterConfig) ([]Entry, error) {
	if cfg.MaxN < 1 {
		return nil, fmt.Errorf("ngram: max n must be >= 1, got %d", cfg.MaxN)
	}
	if cfg.Epsilon <= 0 || cfg.SupportThreshold <= 0 {
		return nil, errors.New("ngram: epsilon and support threshold must be positive")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	var (
		mu  sync.Mutex
		all []Entry
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for n := 1; n <= cfg.MaxN; n++ {
		g.Go(func() error {
			entries, err := countLength(ctx, text, n, cfg)
			if err != nil {
				return fmt.Errorf("counting %d-grams: %w", n, err)
			}
			cfg.Logger.Debug("counted n-grams", "n", n, "kept", len(entries))

			mu.Lock()
			all = append(all, entries...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortEntries(all)
	return all, nil
}

func countLength(ctx context.Context, text *corpus.Text, n int, cfg CounterConfig) ([]Entry, error) {
	type slot struct {
		count int64
		delta int64 // maximum undercount when the n-gram was inserted
	}

	bucketWidth := int(1.0 / cfg.Epsilon)
	if bucketWidth < 1 {
		bucketWidth = 1
	}
	length := text.Len()
	lowerBound := int64(cfg.SupportThreshold * float64(length))

	counter := make(map[string]*slot)
	bucket := int64(1)
	for i := 0; i <= length-n; i++ {
		ngram := text.Slice(i, i+n)
		if s, ok := counter[ngram]; ok {
			s.count++
		} else {
			counter[ngram] = &slot{count: 1, delta: bucket - 1}
		}

		if i > 0 && i%bucketWidth == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			for key, s := range counter {
				if s.count+s.delta <= bucket {
					delete(counter, key)
				}
			}
			bucket++
		}
	}

	entries := make([]Entry, 0, len(counter))
	for key, s := range counter {
		if s.count >= lowerBound {
			entries = append(entries, Entry{NGram: key, Count: s.count})
		}
	}
	return entries, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].NGram < entries[j].NGram
	})
}

// Top returns the k most frequent entries. The second result reports
// whether fewer than k entries were available.
func Top(entries []Entry, k int) ([]Entry, bool) {
	if k >= len(entries) {
		return entries, k > len(entries)
	}
	return entries[:k], false
}

// TableFrom builds a lookup table from counted entries.
func TableFrom(entries []Entry) (*Table, error) {
	counts := make(map[string]int64, len(entries))
	for _, e := range entries {
		counts[e.NGram] = e.Count
	}
	return FromCounts(counts)
}
