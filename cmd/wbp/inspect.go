package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jamesainslie/go-wbp/store"
)

func newInspectCmd() *cobra.Command {
	var head int

	cmd := &cobra.Command{
		Use:   "inspect ARTIFACT",
		Short: "Summarise a stored probability sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := store.Load(args[0])
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), a, head)
			return nil
		},
	}

	cmd.Flags().IntVar(&head, "head", 10, "number of leading values to print")
	return cmd
}

func writeSummary(w io.Writer, a store.Artifact, head int) {
	fmt.Fprintf(w, "dataset: %s\n", a.Dataset)
	fmt.Fprintf(w, "max_n:   %d\n", a.MaxN)
	fmt.Fprintf(w, "seed:    %d\n", a.Seed)
	fmt.Fprintf(w, "values:  %d\n", len(a.Values))
	if len(a.Values) == 0 {
		return
	}

	mean, std := stat.MeanStdDev(a.Values, nil)
	fmt.Fprintf(w, "min:     %.6f\n", floats.Min(a.Values))
	fmt.Fprintf(w, "max:     %.6f\n", floats.Max(a.Values))
	fmt.Fprintf(w, "mean:    %.6f\n", mean)
	if len(a.Values) > 1 {
		fmt.Fprintf(w, "stddev:  %.6f\n", std)
	}

	for i, v := range a.Values[:min(max(head, 0), len(a.Values))] {
		fmt.Fprintf(w, "%8d  %.6f\n", i, v)
	}
}
