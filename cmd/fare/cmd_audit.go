package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/api"
	"github.com/tensorplex-labs/fare/pkg/fare"
)

type auditFlags struct {
	metric       string
	window       int
	step         int
	boundaryTail bool
	parallel     int
	plot         bool
	diagnostics  bool
}

func newAuditCmd(a *app) *cobra.Command {
	var (
		in    inputFlags
		flags auditFlags
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a metric over sliding windows of the ranking",
		Long: `Sorts the ranking by predicted rank, cuts it into windows of --window items
every --step positions and evaluates the metric on each window. Window and
step default to FARE_AUDIT_WINDOW and FARE_AUDIT_STEP.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := fare.ParseMetric(flags.metric)
			if err != nil {
				return err
			}
			format, err := in.outputFormat()
			if err != nil {
				return err
			}
			snap, err := in.load(cmd)
			if err != nil {
				return err
			}

			window, step := a.windowing(flags.window, flags.step)
			req := api.AuditRequest{
				RankingInput: in.rankingInput(snap),
				Metric:       &m,
				Window:       window,
				Step:         step,
				BoundaryTail: flags.boundaryTail,
				Diagnostics:  flags.diagnostics,
			}

			var resp api.AuditResponse
			if in.server != "" {
				c, err := a.newClient(in.server)
				if err != nil {
					return err
				}
				defer c.Close()
				if resp, err = c.Audit(cmd.Context(), req); err != nil {
					return fmt.Errorf("audit: %w", err)
				}
			} else {
				parallel := flags.parallel
				if parallel == 0 {
					parallel = a.cfg.Audit.Parallelism
				}
				if resp, err = auditLocal(req, parallel); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if flags.plot {
				report.PlotSequencesTerminal(out, fmt.Sprintf("Rank %s error", m), resp.Sequences)
			}
			if format != report.FormatText {
				return report.Encode(out, resp, format)
			}

			fmt.Fprintf(out, "%-8s %10s %10s\n", "window", "err0", "err1")
			for i := range resp.Sequences.Len() {
				fmt.Fprintf(out, "%-8d %10.4f %10.4f\n", i, resp.Sequences.Err0[i], resp.Sequences.Err1[i])
			}
			if d := resp.Diagnostics; d != nil {
				fmt.Fprintf(out, "\ntrend0=%.4f trend1=%.4f distance=%.4f\n", d.Trend0, d.Trend1, d.Distance)
			}
			return nil
		},
	}

	in.register(cmd)
	f := cmd.Flags()
	f.StringVarP(&flags.metric, "metric", "m", "parity", "Metric (parity|equality|calibration)")
	f.IntVarP(&flags.window, "window", "w", 0, "Window size (default FARE_AUDIT_WINDOW)")
	f.IntVarP(&flags.step, "step", "s", 0, "Step between window starts (default FARE_AUDIT_STEP)")
	f.BoolVar(&flags.boundaryTail, "boundary-tail", false, "Also emit the last window when it starts exactly on a step")
	f.IntVar(&flags.parallel, "parallel", 0, "Windows evaluated concurrently (default FARE_AUDIT_PARALLELISM)")
	f.BoolVar(&flags.plot, "plot", false, "Plot the error sequences")
	f.BoolVar(&flags.diagnostics, "diagnostics", false, "Also compute trends and distance")
	return cmd
}

func auditLocal(req api.AuditRequest, parallel int) (api.AuditResponse, error) {
	m, err := req.AuditMetric()
	if err != nil {
		return api.AuditResponse{}, err
	}
	r, err := req.Ranking()
	if err != nil {
		return api.AuditResponse{}, err
	}

	opts := []fare.AuditOption{fare.WithParallelism(parallel)}
	if req.BoundaryTail {
		opts = append(opts, fare.WithBoundaryTail())
	}
	seqs, err := fare.Audit(m, r, req.Window, req.Step, opts...)
	if err != nil {
		return api.AuditResponse{}, err
	}

	resp := api.AuditResponse{Metric: m, Sequences: seqs}
	if !req.Diagnostics {
		return resp, nil
	}
	d, err := fare.GenerateDiagnostics(seqs.Err0, seqs.Err1)
	if err != nil && !errors.Is(err, fare.ErrSequenceTooShort) {
		return api.AuditResponse{}, err
	}
	if err == nil {
		resp.Diagnostics = &d
	}
	return resp, nil
}
