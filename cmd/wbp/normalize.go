package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-wbp/corpus"
)

func newNormalizeCmd() *cobra.Command {
	var marker string

	cmd := &cobra.Command{
		Use:   "normalize INPUT OUTPUT",
		Short: "Collapse a corpus into a single marker-separated line",
		Long: `Normalize reads a text corpus and writes it as one line in which every
run of whitespace and every line break becomes a single marker character.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if utf8.RuneCountInString(marker) != 1 {
				return fmt.Errorf("marker must be a single character, got %q", marker)
			}
			m, _ := utf8.DecodeRuneInString(marker)
			return runNormalize(args[0], args[1], m, newLogger(cmd.ErrOrStderr(), slog.LevelInfo))
		},
	}

	cmd.Flags().StringVar(&marker, "marker", string(corpus.DefaultMarker), "boundary marker character")
	return cmd
}

func runNormalize(input, output string, marker rune, logger *slog.Logger) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(output), ".normalize-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	n, err := corpus.Normalize(in, tmp, marker)
	if err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return fmt.Errorf("replacing %s: %w", output, err)
	}

	logger.Info("corpus normalized", "input", input, "output", output, "characters", n)
	return nil
}
