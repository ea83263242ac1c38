package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/fare/internal/report"
	"github.com/tensorplex-labs/fare/pkg/api"
	"github.com/tensorplex-labs/fare/pkg/fare"
)

func (s *Server) handleScore(_ *fiber.Ctx, req api.ScoreRequest) (api.ScoreResponse, error) {
	r, err := req.Ranking()
	if err != nil {
		return api.ScoreResponse{}, err
	}
	s.metrics.ObserveRanking(api.ScorePath, len(r))

	metrics := req.Metrics
	if len(metrics) == 0 {
		metrics = fare.Metrics
	}

	resp := api.ScoreResponse{Scores: make([]api.MetricScore, 0, len(metrics))}
	for _, m := range metrics {
		res, err := m.Score(r)
		if err != nil {
			return api.ScoreResponse{}, err
		}
		resp.Scores = append(resp.Scores, api.MetricScore{Metric: m, Result: res})
	}

	log.Debug().Int("items", len(r)).Int("metrics", len(metrics)).Msg("Scored ranking")
	return resp, nil
}

func (s *Server) handleAudit(_ *fiber.Ctx, req api.AuditRequest) (api.AuditResponse, error) {
	m, err := req.AuditMetric()
	if err != nil {
		return api.AuditResponse{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	r, err := req.Ranking()
	if err != nil {
		return api.AuditResponse{}, err
	}
	s.metrics.ObserveRanking(api.AuditPath, len(r))

	window, step := s.windowing(req.Window, req.Step)
	opts := []fare.AuditOption{fare.WithParallelism(s.config.Parallelism)}
	if req.BoundaryTail {
		opts = append(opts, fare.WithBoundaryTail())
	}

	seqs, err := fare.Audit(m, r, window, step, opts...)
	if err != nil {
		return api.AuditResponse{}, err
	}
	s.metrics.ObserveAudit(m.String(), seqs.Len())

	resp := api.AuditResponse{Metric: m, Sequences: seqs}
	if req.Diagnostics {
		diag, err := fare.GenerateDiagnostics(seqs.Err0, seqs.Err1)
		switch {
		case errors.Is(err, fare.ErrSequenceTooShort):
			log.Warn().Int("windows", seqs.Len()).Msg("Skipping diagnostics, not enough windows")
		case err != nil:
			return api.AuditResponse{}, err
		default:
			resp.Diagnostics = &diag
		}
	}
	return resp, nil
}

func (s *Server) handleDiagnostics(_ *fiber.Ctx, req api.DiagnosticsRequest) (api.DiagnosticsResponse, error) {
	diag, err := fare.GenerateDiagnostics(req.Err0, req.Err1)
	if err != nil {
		return api.DiagnosticsResponse{}, err
	}
	return api.DiagnosticsResponse{Diagnostics: diag, Vector: diag.Vector()}, nil
}

func (s *Server) handleReport(_ *fiber.Ctx, req api.ReportRequest) (*report.Report, error) {
	r, err := req.Ranking()
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRanking(api.ReportPath, len(r))

	window, step := s.windowing(req.Window, req.Step)
	p := report.NewPipeline(
		report.WithWindow(window),
		report.WithStep(step),
		report.WithParallelism(s.config.Parallelism),
		report.WithBoundaryTail(req.BoundaryTail),
	)
	rep, err := p.Run(r)
	if err != nil {
		return nil, err
	}
	for _, mr := range rep.Metrics {
		s.metrics.ObserveAudit(mr.Metric.String(), mr.Sequences.Len())
	}
	return rep, nil
}

// windowing fills zero window or step from the server defaults. Negative
// values are passed through so the audit rejects them.
func (s *Server) windowing(window, step int) (int, int) {
	if window == 0 {
		window = s.config.DefaultWindow
	}
	if step == 0 {
		step = s.config.DefaultStep
	}
	return window, step
}
