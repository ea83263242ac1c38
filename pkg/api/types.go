// Package api defines the wire types of the FARE HTTP service.
package api

import (
	"errors"

	"github.com/tensorplex-labs/fare/pkg/fare"
)

// ErrMissingMetric is returned when an audit request names no metric.
var ErrMissingMetric = errors.New("api: metric is required")

const (
	HealthPath      = "/health"
	MetricsPath     = "/metrics"
	ScorePath       = "/v1/score"
	AuditPath       = "/v1/audit"
	DiagnosticsPath = "/v1/diagnostics"
	ReportPath      = "/v1/report"
)

// StdResponse represents the standardized response structure
type StdResponse[T any] struct {
	Body  T       `json:"body"`
	Error *string `json:"error,omitempty"`
}

// RankingInput carries a ranking in column form. For parity only YPred is
// required; a missing YTrue mirrors YPred.
type RankingInput struct {
	YTrue  []float64 `json:"y_true,omitempty"`
	YPred  []float64 `json:"y_pred"`
	Groups []int     `json:"groups"`
}

// Ranking validates the input and converts it.
func (in RankingInput) Ranking() (fare.Ranking, error) {
	yTrue := in.YTrue
	if len(yTrue) == 0 {
		yTrue = in.YPred
	}
	return fare.NewRanking(yTrue, in.YPred, in.Groups)
}

type ScoreRequest struct {
	RankingInput
	// Metrics defaults to every metric.
	Metrics []fare.Metric `json:"metrics,omitempty"`
}

type MetricScore struct {
	Metric fare.Metric `json:"metric"`
	Result fare.Result `json:"result"`
}

type ScoreResponse struct {
	Scores []MetricScore `json:"scores"`
}

type AuditRequest struct {
	RankingInput
	Metric       *fare.Metric `json:"metric"`
	Window       int          `json:"window"`
	Step         int          `json:"step"`
	BoundaryTail bool         `json:"boundary_tail,omitempty"`
	// Diagnostics also computes trends and distance when there are enough windows.
	Diagnostics bool `json:"diagnostics,omitempty"`
}

// AuditMetric returns the requested metric, or ErrMissingMetric when none
// was given.
func (r AuditRequest) AuditMetric() (fare.Metric, error) {
	if r.Metric == nil {
		return 0, ErrMissingMetric
	}
	return *r.Metric, nil
}

type AuditResponse struct {
	Metric      fare.Metric       `json:"metric"`
	Sequences   fare.Sequences    `json:"sequences"`
	Diagnostics *fare.Diagnostics `json:"diagnostics,omitempty"`
}

type DiagnosticsRequest struct {
	Err0 []float64 `json:"err0"`
	Err1 []float64 `json:"err1"`
}

type DiagnosticsResponse struct {
	Diagnostics fare.Diagnostics `json:"diagnostics"`
	Vector      [3]float64       `json:"vector"`
}

type ReportRequest struct {
	RankingInput
	Window       int  `json:"window"`
	Step         int  `json:"step"`
	BoundaryTail bool `json:"boundary_tail,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
