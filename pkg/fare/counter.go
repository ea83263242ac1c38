package fare

// Pairwise relationship counting
//
// countPairs generalises merge-sort inversion counting. Items arrive sorted by
// a primary key; a pair (i, j) always has i before j in that order. The
// recursion splits the range, counts each half, and lets a pairRule count the
// pairs that straddle the split while merging the halves:
//
//  1. n <= 1: nothing to count.
//  2. split at mid = (n+1)/2, recurse on [0,mid) and [mid,n).
//  3. merged, cross = rule.merge(left, right, g)
//  4. total = leftCount + rightCount + cross
//
// Each merge is linear in the size of its range, so the whole count is
// O(n log n) time with O(n) scratch per level.

// pairRule counts the straddling pairs of a split that satisfy a metric's
// predicate for target group g, and returns the merged halves.
type pairRule interface {
	merge(left, right []Item, g Group) ([]Item, int)
}

func countPairs(items []Item, rule pairRule, g Group) ([]Item, int) {
	switch len(items) {
	case 0:
		return nil, 0
	case 1:
		return []Item{items[0]}, 0
	}

	mid := (len(items) + 1) / 2
	left, lc := countPairs(items[:mid], rule, g)
	right, rc := countPairs(items[mid:], rule, g)
	merged, cc := rule.merge(left, right, g)

	return merged, lc + rc + cc
}

// parityRule counts pairs (i, j) with group(i) = g and group(j) != g. The
// predicate ignores values, so every left item precedes every right item and
// the merge is a concatenation.
type parityRule struct{}

func (parityRule) merge(left, right []Item, g Group) ([]Item, int) {
	cross := countGroups(left).Of(g) * countGroups(right).Other(g)

	merged := make([]Item, 0, len(left)+len(right))
	merged = append(merged, left...)
	merged = append(merged, right...)

	return merged, cross
}

// discordanceRule counts pairs (i, j) whose predicted order contradicts the
// primary order, i.e. Predicted(i) > Predicted(j), and weighs each one by
// the group condition of the metric.
//
// While merging on Predicted, a right item that sorts strictly before the
// current left item is discordant with that left item and with the whole
// remaining left suffix (the left half is already sorted on Predicted).
// weigh receives the right item's group and the group counts of that suffix
// and returns how many of those pairs qualify.
type discordanceRule struct {
	weigh func(right Group, remaining GroupCounts, g Group) int
}

func (r discordanceRule) merge(left, right []Item, g Group) ([]Item, int) {
	merged := make([]Item, 0, len(left)+len(right))
	remaining := countGroups(left)
	count := 0

	j := 0
	for _, l := range left {
		for j < len(right) && right[j].Predicted < l.Predicted {
			count += r.weigh(right[j].Group, remaining, g)
			merged = append(merged, right[j])
			j++
		}
		merged = append(merged, l)
		remaining.add(l.Group, -1)
	}
	merged = append(merged, right[j:]...)

	return merged, count
}

// equalityRule: a discordant pair counts when the earlier item is in g and
// the later one is not.
var equalityRule = discordanceRule{
	weigh: func(right Group, remaining GroupCounts, g Group) int {
		if right == g {
			return 0
		}
		return remaining.Of(g)
	},
}

// calibrationRule: a discordant pair counts when either item is in g.
var calibrationRule = discordanceRule{
	weigh: func(right Group, remaining GroupCounts, g Group) int {
		if right == g {
			return remaining.Total()
		}
		return remaining.Of(g)
	},
}
