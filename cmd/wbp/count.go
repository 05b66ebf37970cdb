package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/jamesainslie/go-wbp/corpus"
	"github.com/jamesainslie/go-wbp/ngram"
)

type countOptions struct {
	maxN     int
	support  float64
	epsilon  float64
	workers  int
	top      int
	locale   string
	logLevel string
}

func newCountCmd() *cobra.Command {
	def := ngram.DefaultCounterConfig()
	opts := countOptions{
		maxN:     def.MaxN,
		support:  def.SupportThreshold,
		epsilon:  def.Epsilon,
		workers:  def.Workers,
		locale:   "und",
		logLevel: "info",
	}

	cmd := &cobra.Command{
		Use:   "count NORMALIZED OUTPUT",
		Short: "Count frequent character n-grams of a normalized corpus",
		Long: `Count runs lossy counting over a normalized corpus for every n-gram
length up to --max-n and writes "<ngram>\t<count>" lines sorted by count.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
				return fmt.Errorf("log level: %w", err)
			}
			return runCount(cmd, args[0], args[1], opts, newLogger(cmd.ErrOrStderr(), level))
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.maxN, "max-n", opts.maxN, "longest n-gram to count")
	f.Float64Var(&opts.support, "support", opts.support, "minimum relative frequency kept")
	f.Float64Var(&opts.epsilon, "epsilon", opts.epsilon, "lossy counting error bound")
	f.IntVar(&opts.workers, "workers", opts.workers, "n-gram lengths counted concurrently")
	f.IntVar(&opts.top, "top", 0, "keep only the most frequent entries (0 keeps all)")
	f.StringVar(&opts.locale, "locale", opts.locale, "BCP 47 tag used to group counts, \"und\" for plain digits")
	f.StringVar(&opts.logLevel, "log-level", opts.logLevel, "debug, info, warn or error")
	return cmd
}

func runCount(cmd *cobra.Command, input, output string, opts countOptions, logger *slog.Logger) error {
	tag, err := language.Parse(opts.locale)
	if err != nil {
		return fmt.Errorf("locale: %w", err)
	}

	text, err := corpus.ReadNormalizedFile(input)
	if err != nil {
		return err
	}

	entries, err := ngram.Count(cmd.Context(), text, ngram.CounterConfig{
		MaxN:             opts.maxN,
		SupportThreshold: opts.support,
		Epsilon:          opts.epsilon,
		Workers:          opts.workers,
		Logger:           logger,
	})
	if err != nil {
		return err
	}

	if opts.top > 0 {
		var short bool
		entries, short = ngram.Top(entries, opts.top)
		if short {
			logger.Warn("fewer n-grams than requested", "requested", opts.top, "available", len(entries))
		}
	}

	if err := ngram.WriteFile(output, entries, tag); err != nil {
		return err
	}
	logger.Info("n-grams written", "output", output, "entries", len(entries), "corpus_length", text.Len())
	return nil
}
