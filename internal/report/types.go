package report

import "github.com/tensorplex-labs/fare/pkg/fare"

// MetricReport holds everything computed for one metric.
type MetricReport struct {
	Metric      fare.Metric       `json:"metric" yaml:"metric"`
	Overall     fare.Result       `json:"overall" yaml:"overall"`
	Sequences   fare.Sequences    `json:"sequences" yaml:"sequences"`
	Diagnostics *fare.Diagnostics `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	// DiagnosticsError is set when the audit produced too few windows.
	DiagnosticsError string `json:"diagnostics_error,omitempty" yaml:"diagnostics_error,omitempty"`
}

// Report is the outcome of running every metric over one ranking.
type Report struct {
	Items   int              `json:"items" yaml:"items"`
	Counts  fare.GroupCounts `json:"counts" yaml:"counts"`
	Window  int              `json:"window" yaml:"window"`
	Step    int              `json:"step" yaml:"step"`
	Metrics []MetricReport   `json:"metrics" yaml:"metrics"`
}
