// Command wbp prepares corpora and estimates word boundary probabilities.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Set by the build via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "wbp",
		Short: "Estimate word boundary probabilities",
		Long: `wbp estimates, for every character of a normalized corpus, the
probability that a new word starts at that character.

Typical workflow:
  wbp normalize segmented.txt normalized.txt
  wbp count normalized.txt ngrams.tsv
  wbp predict --config wbp.yaml
  wbp inspect boundary.pb`,
		Version:       fmt.Sprintf("%s (%s, %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newNormalizeCmd())
	root.AddCommand(newCountCmd())
	root.AddCommand(newPredictCmd())
	root.AddCommand(newInspectCmd())
	return root
}

// newLogger returns a text logger on w at level.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
