package fare

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// AuditOption configures an audit.
type AuditOption func(*auditConfig)

type auditConfig struct {
	parallelism  int
	boundaryTail bool
}

// WithParallelism evaluates up to n windows concurrently. Values below 2 keep
// the audit sequential. Output order does not depend on n.
func WithParallelism(n int) AuditOption {
	return func(c *auditConfig) {
		c.parallelism = n
	}
}

// WithBoundaryTail also evaluates the final window when the last stride lands
// exactly on n-window (including window == n). By default that window is
// skipped.
func WithBoundaryTail() AuditOption {
	return func(c *auditConfig) {
		c.boundaryTail = true
	}
}

// AuditParity returns the rank parity error sequences of y, windowed by rank
// value.
func AuditParity(y []float64, groups []int, window, step int, opts ...AuditOption) (Sequences, error) {
	r, err := NewRankedGroups(y, groups)
	if err != nil {
		return Sequences{}, err
	}
	return Audit(MetricParity, r, window, step, opts...)
}

// AuditEquality returns the rank equality error sequences, windowed by
// predicted value.
func AuditEquality(yTrue, yPred []float64, groups []int, window, step int, opts ...AuditOption) (Sequences, error) {
	r, err := NewRanking(yTrue, yPred, groups)
	if err != nil {
		return Sequences{}, err
	}
	return Audit(MetricEquality, r, window, step, opts...)
}

// AuditCalibration returns the rank calibration error sequences, windowed by
// predicted value.
func AuditCalibration(yTrue, yPred []float64, groups []int, window, step int, opts ...AuditOption) (Sequences, error) {
	r, err := NewRanking(yTrue, yPred, groups)
	if err != nil {
		return Sequences{}, err
	}
	return Audit(MetricCalibration, r, window, step, opts...)
}

// Audit slides a window over r and scores each window with m.
//
// The ranking is sorted by predicted value (the rank value for parity). A
// window [start, start+window) is scored for start = 0, step, 2*step, ...
// while start+window < n. If the loop stops at a start beyond n-window, one
// more window [n-window, n) is scored so the tail of the ranking is covered;
// this last window may overlap the previous one. When n-window is a multiple
// of step no tail window is added unless WithBoundaryTail is set.
//
// Errors:
//   - ErrInvalidWindow: window <= 0.
//   - ErrInvalidStep: step <= 0.
//   - ErrWindowTooLarge: window > len(r).
//   - ErrInvalidGroup: a label outside {0, 1}.
//   - ErrUnknownMetric: m is not a known metric.
func Audit(m Metric, r Ranking, window, step int, opts ...AuditOption) (Sequences, error) {
	cfg := auditConfig{parallelism: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !m.valid() {
		return Sequences{}, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	if err := r.Validate(); err != nil {
		return Sequences{}, err
	}
	starts, err := windowStarts(len(r), window, step, cfg.boundaryTail)
	if err != nil {
		return Sequences{}, err
	}

	sorted := r.sortedBy(byPredicted)
	results := make([]Result, len(starts))

	g := new(errgroup.Group)
	g.SetLimit(max(cfg.parallelism, 1))
	for i, start := range starts {
		g.Go(func() error {
			res, err := m.score(sorted[start : start+window])
			if err != nil {
				return err
			}
			results[i] = res
			log.Trace().
				Str("metric", m.String()).
				Int("window", i).
				Int("start", start).
				Float64("e0", res.E0).
				Float64("e1", res.E1).
				Msg("scored audit window")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Sequences{}, err
	}

	seqs := Sequences{
		Err0: make([]float64, len(results)),
		Err1: make([]float64, len(results)),
	}
	for i, res := range results {
		seqs.Err0[i], seqs.Err1[i] = res.E0, res.E1
	}

	log.Debug().
		Str("metric", m.String()).
		Int("n", len(r)).
		Int("window_size", window).
		Int("step", step).
		Int("windows", len(starts)).
		Msg("audit complete")

	return seqs, nil
}

// windowStarts returns the start index of every audit window.
func windowStarts(n, window, step int, boundaryTail bool) ([]int, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	if step <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidStep, step)
	}
	if window > n {
		return nil, fmt.Errorf("%w: window %d, ranking length %d", ErrWindowTooLarge, window, n)
	}

	var starts []int
	start := 0
	for ; start+window < n; start += step {
		starts = append(starts, start)
	}

	last := n - window
	if start > last || (boundaryTail && start == last) {
		starts = append(starts, last)
	}
	return starts, nil
}
