package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/api"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		in           inputFlags
		window       int
		step         int
		boundaryTail bool
		parallel     int
		plot         bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Score, audit and diagnose every metric in one pass",
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := in.outputFormat()
			if err != nil {
				return err
			}
			snap, err := in.load(cmd)
			if err != nil {
				return err
			}
			window, step := a.windowing(window, step)

			var rep *report.Report
			if in.server != "" {
				c, err := a.newClient(in.server)
				if err != nil {
					return err
				}
				defer c.Close()
				rep, err = c.Report(cmd.Context(), api.ReportRequest{
					RankingInput: in.rankingInput(snap),
					Window:       window,
					Step:         step,
					BoundaryTail: boundaryTail,
				})
				if err != nil {
					return fmt.Errorf("report: %w", err)
				}
			} else {
				r, err := snap.Ranking()
				if err != nil {
					return err
				}
				if parallel == 0 {
					parallel = a.cfg.Audit.Parallelism
				}
				p := report.NewPipeline(
					report.WithWindow(window),
					report.WithStep(step),
					report.WithParallelism(parallel),
					report.WithBoundaryTail(boundaryTail),
				)
				if rep, err = p.Run(r); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if plot {
				report.PlotReportTerminal(out, rep)
			}
			return report.Encode(out, rep, format)
		},
	}

	in.register(cmd)
	f := cmd.Flags()
	f.IntVarP(&window, "window", "w", 0, "Window size (default FARE_AUDIT_WINDOW)")
	f.IntVarP(&step, "step", "s", 0, "Step between window starts (default FARE_AUDIT_STEP)")
	f.BoolVar(&boundaryTail, "boundary-tail", false, "Also emit the last window when it starts exactly on a step")
	f.IntVar(&parallel, "parallel", 0, "Windows evaluated concurrently (default FARE_AUDIT_PARALLELISM)")
	f.BoolVar(&plot, "plot", false, "Plot the error sequences of every metric")
	return cmd
}
