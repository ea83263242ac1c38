package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/fare"
)

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Run the metrics on small reference rankings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExamples(cmd.OutOrStdout())
		},
	}
}

func runExamples(out io.Writer) error {
	fmt.Fprintln(out, "Reference ranking: y_true=[1 2 3 4] y_pred=[1 3 4 2] groups=[0 1 0 1]")
	if err := printScores(out, []float64{1, 2, 3, 4}, []float64{1, 3, 4, 2}, []int{0, 1, 0, 1}); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nGroup 1 on top: y=[1..8] groups=[1 1 1 1 1 0 0 0]")
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	groups := []int{1, 1, 1, 1, 1, 0, 0, 0}
	if err := printScores(out, y, y, groups); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nWindowed parity, window=4 step=2:")
	seqs, err := fare.AuditParity(y, groups, 4, 2, fare.WithBoundaryTail())
	if err != nil {
		return err
	}
	report.PlotSequencesTerminal(out, "Rank parity error", seqs)

	d, err := fare.GenerateDiagnostics(seqs.Err0, seqs.Err1)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "trend0=%.4f trend1=%.4f distance=%.4f\n", d.Trend0, d.Trend1, d.Distance)
	return nil
}

func printScores(out io.Writer, yTrue, yPred []float64, groups []int) error {
	r, err := fare.NewRanking(yTrue, yPred, groups)
	if err != nil {
		return err
	}
	for _, m := range fare.Metrics {
		res, err := m.Score(r)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "  rank_%-12s %s\n", m, res)
	}
	return nil
}
