// Package report runs every FARE metric over a ranking and renders the result.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tensorplex-labs/fare/internal/utils/logger"
	"github.com/tensorplex-labs/fare/pkg/fare"
)

const (
	DefaultWindow = 50
	DefaultStep   = 10
)

type AuditParams struct {
	Window       int
	Step         int
	Parallelism  int
	BoundaryTail bool
}

type Pipeline struct {
	AuditParams AuditParams
	Metrics     []fare.Metric
}

type PipelineOption func(*Pipeline)

func WithWindow(window int) PipelineOption {
	return func(p *Pipeline) {
		p.AuditParams.Window = window
	}
}

func WithStep(step int) PipelineOption {
	return func(p *Pipeline) {
		p.AuditParams.Step = step
	}
}

func WithParallelism(n int) PipelineOption {
	return func(p *Pipeline) {
		p.AuditParams.Parallelism = n
	}
}

func WithBoundaryTail(enabled bool) PipelineOption {
	return func(p *Pipeline) {
		p.AuditParams.BoundaryTail = enabled
	}
}

func WithMetrics(metrics ...fare.Metric) PipelineOption {
	return func(p *Pipeline) {
		p.Metrics = metrics
	}
}

func DefaultAuditParams() AuditParams {
	return AuditParams{
		Window:      DefaultWindow,
		Step:        DefaultStep,
		Parallelism: 1,
	}
}

func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		AuditParams: DefaultAuditParams(),
		Metrics:     fare.Metrics,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *Pipeline) auditOptions() []fare.AuditOption {
	opts := []fare.AuditOption{fare.WithParallelism(p.AuditParams.Parallelism)}
	if p.AuditParams.BoundaryTail {
		opts = append(opts, fare.WithBoundaryTail())
	}
	return opts
}

// Run scores the whole ranking and audits it with every configured metric.
// Metrics run concurrently; the report lists them in configuration order.
// Too few windows for diagnostics is recorded on the metric, not returned.
func (p *Pipeline) Run(r fare.Ranking) (*Report, error) {
	startTime := time.Now()
	if err := r.Validate(); err != nil {
		return nil, err
	}

	reports := make([]MetricReport, len(p.Metrics))
	g := new(errgroup.Group)
	for i, m := range p.Metrics {
		g.Go(func() error {
			mr, err := p.runMetric(m, r)
			if err != nil {
				return fmt.Errorf("%s: %w", m, err)
			}
			reports[i] = mr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rep := &Report{
		Items:   len(r),
		Counts:  r.Counts(),
		Window:  p.AuditParams.Window,
		Step:    p.AuditParams.Step,
		Metrics: reports,
	}

	logger.Sugar().Infow("Report generated",
		"items", rep.Items,
		"auditParams", p.AuditParams,
		"metrics", len(reports),
		"elapsed", time.Since(startTime))
	return rep, nil
}

func (p *Pipeline) runMetric(m fare.Metric, r fare.Ranking) (MetricReport, error) {
	overall, err := m.Score(r)
	if err != nil {
		return MetricReport{}, err
	}

	seqs, err := fare.Audit(m, r, p.AuditParams.Window, p.AuditParams.Step, p.auditOptions()...)
	if err != nil {
		return MetricReport{}, err
	}

	mr := MetricReport{Metric: m, Overall: overall, Sequences: seqs}
	diag, err := fare.GenerateDiagnostics(seqs.Err0, seqs.Err1)
	switch {
	case errors.Is(err, fare.ErrSequenceTooShort):
		log.Warn().Str("metric", m.String()).Int("windows", seqs.Len()).Msg("Not enough windows for diagnostics")
		mr.DiagnosticsError = err.Error()
	case err != nil:
		return MetricReport{}, err
	default:
		mr.Diagnostics = &diag
	}

	log.Debug().
		Str("metric", m.String()).
		Float64("e0", overall.E0).
		Float64("e1", overall.E1).
		Int("windows", seqs.Len()).
		Msg("Metric evaluated")
	return mr, nil
}
