package fare

import (
	"fmt"
	"strings"
)

// Metric identifies one of the pairwise error metrics.
type Metric int

const (
	MetricParity Metric = iota
	MetricEquality
	MetricCalibration
)

// Metrics lists every metric in display order.
var Metrics = []Metric{MetricParity, MetricEquality, MetricCalibration}

func (m Metric) String() string {
	switch m {
	case MetricParity:
		return "parity"
	case MetricEquality:
		return "equality"
	case MetricCalibration:
		return "calibration"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

func (m Metric) valid() bool {
	return m >= MetricParity && m <= MetricCalibration
}

// ParseMetric accepts "parity", "equality" or "calibration", optionally
// prefixed with "rank_" or "rank-", case-insensitively.
func ParseMetric(s string) (Metric, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimPrefix(strings.TrimPrefix(name, "rank_"), "rank-")
	for _, m := range Metrics {
		if m.String() == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	if !m.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(b []byte) error {
	parsed, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Score evaluates m on r.
func (m Metric) Score(r Ranking) (Result, error) {
	if err := r.Validate(); err != nil {
		return Result{}, err
	}
	return m.score(r)
}

func (m Metric) score(r Ranking) (Result, error) {
	switch m {
	case MetricParity:
		return rankParity(r), nil
	case MetricEquality:
		return rankEquality(r), nil
	case MetricCalibration:
		return rankCalibration(r), nil
	}
	return Result{}, fmt.Errorf("%w: %d", ErrUnknownMetric, int(m))
}

// RankParity computes the rank parity error of a single ranking.
//
// Items are ordered by y ascending. For group g the error is the fraction of
// mixed pairs in which the group-g item comes first. With both groups present
// E0+E1 = 1. When a group is empty there are no mixed pairs and the present
// group is treated as always favoured: no group-1 items gives (1, 0), no
// group-0 items gives (0, 1).
//
// Example:
//
//	RankParity([]float64{1, 3, 4, 2}, []int{0, 1, 0, 1}) // (0.5, 0.5)
func RankParity(y []float64, groups []int) (Result, error) {
	r, err := NewRankedGroups(y, groups)
	if err != nil {
		return Result{}, err
	}
	return rankParity(r), nil
}

// RankEquality computes the rank equality error of a prediction against the
// ground truth.
//
// Items are ordered by yTrue. A pair (i before j) is discordant when
// yPred(i) > yPred(j). For group g the error is the fraction of mixed pairs
// that are discordant with i in group g, i.e. pairs where the prediction
// demotes a group-g item below an other-group item it should precede. Both
// errors are 0 when there are no mixed pairs.
//
// Example:
//
//	RankEquality([]float64{1, 2, 3, 4}, []float64{1, 3, 4, 2}, []int{0, 1, 0, 1}) // (0.25, 0)
func RankEquality(yTrue, yPred []float64, groups []int) (Result, error) {
	r, err := NewRanking(yTrue, yPred, groups)
	if err != nil {
		return Result{}, err
	}
	return rankEquality(r), nil
}

// RankCalibration computes the rank calibration error of a prediction against
// the ground truth.
//
// Discordance is defined as for RankEquality. For group g the error is the
// fraction of pairs containing at least one group-g item that are discordant.
// The denominator counts mixed pairs plus pairs inside g; the error is 0
// when it is 0.
//
// Example:
//
//	RankCalibration([]float64{1, 2, 3, 4}, []float64{1, 3, 4, 2}, []int{0, 1, 0, 1}) // (0.2, 0.4)
func RankCalibration(yTrue, yPred []float64, groups []int) (Result, error) {
	r, err := NewRanking(yTrue, yPred, groups)
	if err != nil {
		return Result{}, err
	}
	return rankCalibration(r), nil
}

func rankParity(r Ranking) Result {
	counts := r.Counts()
	if counts.One == 0 {
		return Result{E0: 1, E1: 0}
	}
	if counts.Zero == 0 {
		return Result{E0: 0, E1: 1}
	}

	sorted := r.sortedBy(byPredicted)
	p := float64(counts.Mixed())
	_, c0 := countPairs(sorted, parityRule{}, GroupZero)
	_, c1 := countPairs(sorted, parityRule{}, GroupOne)

	return Result{E0: float64(c0) / p, E1: float64(c1) / p}
}

func rankEquality(r Ranking) Result {
	counts := r.Counts()
	p := counts.Mixed()
	if p == 0 {
		return Result{}
	}

	sorted := r.sortedBy(byTrue)
	_, c0 := countPairs(sorted, equalityRule, GroupZero)
	_, c1 := countPairs(sorted, equalityRule, GroupOne)

	return Result{E0: float64(c0) / float64(p), E1: float64(c1) / float64(p)}
}

func rankCalibration(r Ranking) Result {
	counts := r.Counts()
	all := totalPairs(counts.Total())
	sorted := r.sortedBy(byTrue)

	var res Result
	for _, g := range []Group{GroupZero, GroupOne} {
		p := all - totalPairs(counts.Other(g))
		if p == 0 {
			continue
		}
		_, c := countPairs(sorted, calibrationRule, g)
		e := float64(c) / float64(p)
		if g == GroupZero {
			res.E0 = e
		} else {
			res.E1 = e
		}
	}
	return res
}
