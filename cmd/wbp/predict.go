package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	wbp "github.com/jamesainslie/go-wbp"
	"github.com/jamesainslie/go-wbp/classifier"
	"github.com/jamesainslie/go-wbp/internal/config"
)

func newPredictCmd() *cobra.Command {
	var configPath string
	flags := config.Default()

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Train a boundary classifier and score a normalized corpus",
		Long: `Predict samples aligned raw/segmented sentence pairs, trains a boundary
classifier on n-gram association features and writes the probability that
each character of the normalized corpus starts a word.

Settings come from --config (YAML) and are overridden by explicit flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			applyFlags(cmd.Flags(), flags, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runPredict(cmd, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "YAML configuration file")
	f.StringVar(&flags.Paths.Raw, "raw", "", "raw sentences, one per line")
	f.StringVar(&flags.Paths.Segmented, "segmented", "", "word-segmented sentences, one per line")
	f.StringVar(&flags.Paths.Normalized, "normalized", "", "normalized corpus")
	f.StringVar(&flags.Paths.NGrams, "ngrams", "", "n-gram count table")
	f.StringVar(&flags.Paths.Output, "output", "", "output artifact")
	f.IntVar(&flags.MaxN, "max-n", flags.MaxN, "longest n-gram on each side of a position")
	f.Float64Var(&flags.UsageRatio, "usage-ratio", flags.UsageRatio, "fraction of sentence pairs used for training")
	f.IntVar(&flags.Workers, "workers", flags.Workers, "scoring goroutines")
	f.Int64Var(&flags.RandomSeed, "seed", flags.RandomSeed, "random seed")
	f.Float64Var(&flags.TestRatio, "test-ratio", flags.TestRatio, "share of training rows held out for evaluation")
	f.StringVar(&flags.Marker, "marker", flags.Marker, "boundary marker character")
	f.StringVar(&flags.Dataset, "dataset", flags.Dataset, "key the probabilities are stored under")
	f.StringVar(&flags.Classifier.Kind, "classifier", flags.Classifier.Kind, "logistic or onnx")
	f.StringVar(&flags.Classifier.ONNXModel, "onnx-model", "", "pre-trained ONNX classifier")
	f.Float64Var(&flags.Classifier.C, "c", flags.Classifier.C, "inverse regularisation strength")
	f.IntVar(&flags.Classifier.MaxIterations, "max-iterations", flags.Classifier.MaxIterations, "L-BFGS iteration limit")
	f.StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "debug, info, warn or error")
	return cmd
}

// applyFlags copies every flag set on the command line from src into dst.
func applyFlags(fs *pflag.FlagSet, src, dst *config.Config) {
	set := map[string]func(){
		"raw":            func() { dst.Paths.Raw = src.Paths.Raw },
		"segmented":      func() { dst.Paths.Segmented = src.Paths.Segmented },
		"normalized":     func() { dst.Paths.Normalized = src.Paths.Normalized },
		"ngrams":         func() { dst.Paths.NGrams = src.Paths.NGrams },
		"output":         func() { dst.Paths.Output = src.Paths.Output },
		"max-n":          func() { dst.MaxN = src.MaxN },
		"usage-ratio":    func() { dst.UsageRatio = src.UsageRatio },
		"workers":        func() { dst.Workers = src.Workers },
		"seed":           func() { dst.RandomSeed = src.RandomSeed },
		"test-ratio":     func() { dst.TestRatio = src.TestRatio },
		"marker":         func() { dst.Marker = src.Marker },
		"dataset":        func() { dst.Dataset = src.Dataset },
		"classifier":     func() { dst.Classifier.Kind = src.Classifier.Kind },
		"onnx-model":     func() { dst.Classifier.ONNXModel = src.Classifier.ONNXModel },
		"c":              func() { dst.Classifier.C = src.Classifier.C },
		"max-iterations": func() { dst.Classifier.MaxIterations = src.Classifier.MaxIterations },
		"log-level":      func() { dst.LogLevel = src.LogLevel },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := set[f.Name]; ok {
			apply()
		}
	})
}

func runPredict(cmd *cobra.Command, cfg *config.Config) error {
	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	opts := []wbp.Option{
		wbp.WithMaxN(cfg.MaxN),
		wbp.WithUsageRatio(cfg.UsageRatio),
		wbp.WithWorkers(cfg.Workers),
		wbp.WithSeed(cfg.RandomSeed),
		wbp.WithTestRatio(cfg.TestRatio),
		wbp.WithMarker(cfg.MarkerRune()),
		wbp.WithDataset(cfg.Dataset),
		wbp.WithRegularization(cfg.Classifier.C),
		wbp.WithMaxIterations(cfg.Classifier.MaxIterations),
		wbp.WithLogger(logger),
	}
	if cfg.Classifier.Kind == config.KindONNX {
		cl, err := classifier.NewONNX(cfg.Classifier.ONNXModel, cfg.MaxN*cfg.MaxN, cfg.Workers)
		if err != nil {
			return err
		}
		opts = append(opts, wbp.WithClassifier(cl))
		defer func() { _ = cl.Close() }()
	}

	est, err := wbp.New(opts...)
	if err != nil {
		return err
	}

	report, err := est.Run(cmd.Context(), wbp.Paths{
		Raw:        cfg.Paths.Raw,
		Segmented:  cfg.Paths.Segmented,
		Normalized: cfg.Paths.Normalized,
		NGrams:     cfg.Paths.NGrams,
		Output:     cfg.Paths.Output,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d probabilities (mean %.4f) in %s\n",
		cfg.Paths.Output, report.CorpusLength, report.MeanProbability, report.Elapsed.Round(time.Millisecond))
	return nil
}
