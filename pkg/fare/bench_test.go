package fare

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func BenchmarkCountPairs(b *testing.B) {
	for _, n := range []int{100, 1000, 10000} {
		rng := rand.New(rand.NewPCG(uint64(n), 0))
		yTrue, yPred, groups := randomRanking(rng, n, n)
		r, _ := NewRanking(yTrue, yPred, groups)
		sorted := r.sortedBy(byTrue)

		b.Run(fmt.Sprintf("merge_n%d", n), func(b *testing.B) {
			for b.Loop() {
				_, _ = countPairs(sorted, calibrationRule, GroupZero)
			}
		})
		if n > 1000 {
			continue
		}
		b.Run(fmt.Sprintf("naive_n%d", n), func(b *testing.B) {
			for b.Loop() {
				_ = naiveCount(sorted, GroupZero, naiveCalibration)
			}
		})
	}
}

func BenchmarkAudit(b *testing.B) {
	rng := rand.New(rand.NewPCG(4, 4))
	yTrue, yPred, groups := randomRanking(rng, 5000, 5000)
	r, _ := NewRanking(yTrue, yPred, groups)

	for _, p := range []int{1, 4} {
		b.Run(fmt.Sprintf("parallel%d", p), func(b *testing.B) {
			for b.Loop() {
				_, _ = Audit(MetricCalibration, r, 500, 50, WithParallelism(p))
			}
		})
	}
}
