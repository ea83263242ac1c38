package fare

import "fmt"

// Group is a binary protected-group label.
type Group int

const (
	GroupZero Group = 0
	GroupOne  Group = 1
)

// Other returns the opposite group.
func (g Group) Other() Group {
	return 1 - g
}

func (g Group) valid() bool {
	return g == GroupZero || g == GroupOne
}

// Item is one ranked element. Rank parity only reads Predicted and Group.
type Item struct {
	True      float64 `json:"y_true" yaml:"y_true"`
	Predicted float64 `json:"y_pred" yaml:"y_pred"`
	Group     Group   `json:"group" yaml:"group"`
}

// Ranking is an ordered sequence of items.
type Ranking []Item

// GroupCounts holds the number of items in each group.
type GroupCounts struct {
	Zero int `json:"zero" yaml:"zero"`
	One  int `json:"one" yaml:"one"`
}

func countGroups(items []Item) GroupCounts {
	var c GroupCounts
	for _, it := range items {
		c.add(it.Group, 1)
	}
	return c
}

// Of returns the count for group g.
func (c GroupCounts) Of(g Group) int {
	if g == GroupZero {
		return c.Zero
	}
	return c.One
}

// Other returns the count for the group opposite to g.
func (c GroupCounts) Other(g Group) int {
	return c.Of(g.Other())
}

// Total returns Zero+One.
func (c GroupCounts) Total() int {
	return c.Zero + c.One
}

// Mixed returns the number of pairs whose members are in different groups.
func (c GroupCounts) Mixed() int {
	return c.Zero * c.One
}

func (c *GroupCounts) add(g Group, delta int) {
	if g == GroupZero {
		c.Zero += delta
	} else {
		c.One += delta
	}
}

// totalPairs returns k choose 2.
func totalPairs(k int) int {
	return k * (k - 1) / 2
}

// Result is a pair of per-group errors.
type Result struct {
	E0 float64 `json:"e0" yaml:"e0"`
	E1 float64 `json:"e1" yaml:"e1"`
}

// Error returns the error for group g.
func (r Result) Error(g Group) float64 {
	if g == GroupZero {
		return r.E0
	}
	return r.E1
}

func (r Result) String() string {
	return fmt.Sprintf("(%g, %g)", r.E0, r.E1)
}

// Sequences holds the per-window errors of an audit, one slice per group.
// Both slices are indexed by window number.
type Sequences struct {
	Err0 []float64 `json:"err0" yaml:"err0"`
	Err1 []float64 `json:"err1" yaml:"err1"`
}

// Len returns the number of windows.
func (s Sequences) Len() int {
	return len(s.Err0)
}

// Diagnostics summarises two error sequences.
type Diagnostics struct {
	Trend0   float64 `json:"trend0" yaml:"trend0"`
	Trend1   float64 `json:"trend1" yaml:"trend1"`
	Distance float64 `json:"distance" yaml:"distance"`
}

// Vector returns [trend0, trend1, distance].
func (d Diagnostics) Vector() [3]float64 {
	return [3]float64{d.Trend0, d.Trend1, d.Distance}
}
