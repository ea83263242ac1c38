package fare

import (
	"cmp"
	"fmt"
	"slices"
)

// NewRanking builds a ranking from parallel true values, predicted values and
// group labels. It fails if the lengths differ or a label is not 0 or 1.
func NewRanking(yTrue, yPred []float64, groups []int) (Ranking, error) {
	if len(yTrue) != len(yPred) || len(yTrue) != len(groups) {
		return nil, fmt.Errorf("%w: y_true=%d y_pred=%d groups=%d",
			ErrLengthMismatch, len(yTrue), len(yPred), len(groups))
	}
	r := make(Ranking, len(yTrue))
	for i := range yTrue {
		g := Group(groups[i])
		if !g.valid() {
			return nil, fmt.Errorf("%w: groups[%d]=%d", ErrInvalidGroup, i, groups[i])
		}
		r[i] = Item{True: yTrue[i], Predicted: yPred[i], Group: g}
	}
	return r, nil
}

// NewRankedGroups builds a ranking from a single set of rank values, as used
// by rank parity. Each value is stored as both True and Predicted.
func NewRankedGroups(y []float64, groups []int) (Ranking, error) {
	return NewRanking(y, y, groups)
}

// Validate checks that every label is 0 or 1.
func (r Ranking) Validate() error {
	for i, it := range r {
		if !it.Group.valid() {
			return fmt.Errorf("%w: item %d has group %d", ErrInvalidGroup, i, it.Group)
		}
	}
	return nil
}

// Counts returns the group partition of r.
func (r Ranking) Counts() GroupCounts {
	return countGroups(r)
}

// Columns splits r back into parallel slices.
func (r Ranking) Columns() (yTrue, yPred []float64, groups []int) {
	yTrue = make([]float64, len(r))
	yPred = make([]float64, len(r))
	groups = make([]int, len(r))
	for i, it := range r {
		yTrue[i], yPred[i], groups[i] = it.True, it.Predicted, int(it.Group)
	}
	return yTrue, yPred, groups
}

// sortedBy returns a stably sorted copy of r; r is left untouched.
func (r Ranking) sortedBy(key func(Item) float64) Ranking {
	out := slices.Clone(r)
	slices.SortStableFunc(out, func(a, b Item) int {
		return cmp.Compare(key(a), key(b))
	})
	return out
}

func byTrue(it Item) float64      { return it.True }
func byPredicted(it Item) float64 { return it.Predicted }
