package dataset

import (
	"cmp"
	"slices"
)

// ToRankPositions replaces scores with their positions 0..n-1 after sorting,
// highest first when descending is set. Ties keep input order.
func ToRankPositions(scores []float64, descending bool) []float64 {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if descending {
			return cmp.Compare(scores[b], scores[a])
		}
		return cmp.Compare(scores[a], scores[b])
	})

	pos := make([]float64, len(scores))
	for rank, i := range idx {
		pos[i] = float64(rank)
	}
	return pos
}

// WithRankPositions returns a copy of s whose y_true and y_pred are replaced
// by rank positions.
func (s *Snapshot) WithRankPositions(descending bool) *Snapshot {
	out := &Snapshot{
		YPred:  ToRankPositions(s.YPred, descending),
		Groups: slices.Clone(s.Groups),
	}
	if len(s.YTrue) > 0 {
		out.YTrue = ToRankPositions(s.YTrue, descending)
	}
	return out
}
