package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/api"
	"github.com/tensorplex-labs/fare/pkg/fare"
)

func newScoreCmd(a *app) *cobra.Command {
	var (
		in     inputFlags
		metric string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a whole ranking with one or every metric",
		RunE: func(cmd *cobra.Command, _ []string) error {
			metrics, err := parseMetrics(metric)
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

			req := api.ScoreRequest{RankingInput: in.rankingInput(snap), Metrics: metrics}
			var resp api.ScoreResponse
			if in.server != "" {
				c, err := a.newClient(in.server)
				if err != nil {
					return err
				}
				defer c.Close()
				if resp, err = c.Score(cmd.Context(), req); err != nil {
					return fmt.Errorf("score: %w", err)
				}
			} else if resp, err = scoreLocal(req); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format != report.FormatText {
				return report.Encode(out, resp, format)
			}
			for _, s := range resp.Scores {
				fmt.Fprintf(out, "rank_%-12s e0=%.4f e1=%.4f\n", s.Metric, s.Result.E0, s.Result.E1)
			}
			return nil
		},
	}

	in.register(cmd)
	cmd.Flags().StringVarP(&metric, "metric", "m", "all", "Metric (parity|equality|calibration|all)")
	return cmd
}

func scoreLocal(req api.ScoreRequest) (api.ScoreResponse, error) {
	r, err := req.Ranking()
	if err != nil {
		return api.ScoreResponse{}, err
	}
	resp := api.ScoreResponse{}
	for _, m := range req.Metrics {
		res, err := m.Score(r)
		if err != nil {
			return api.ScoreResponse{}, fmt.Errorf("%s: %w", m, err)
		}
		resp.Scores = append(resp.Scores, api.MetricScore{Metric: m, Result: res})
	}
	return resp, nil
}

// parseMetrics accepts a metric name or "all".
func parseMetrics(s string) ([]fare.Metric, error) {
	if s == "" || strings.EqualFold(s, "all") {
		return fare.Metrics, nil
	}
	m, err := fare.ParseMetric(s)
	if err != nil {
		return nil, err
	}
	return []fare.Metric{m}, nil
}
