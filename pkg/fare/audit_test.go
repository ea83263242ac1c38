package fare

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var approx = cmpopts.EquateApprox(0, 1e-12)

func TestWindowStarts(t *testing.T) {
	tests := []struct {
		name         string
		n, w, s      int
		boundaryTail bool
		want         []int
	}{
		{"tail added when stride overshoots", 10, 4, 4, false, []int{0, 4, 6}},
		{"tail added for uneven step", 10, 3, 5, false, []int{0, 5, 7}},
		{"no tail on exact fit", 10, 4, 3, false, []int{0, 3}},
		{"no tail on exact fit step 2", 10, 4, 2, false, []int{0, 2, 4}},
		{"boundary tail on exact fit", 10, 4, 3, true, []int{0, 3, 6}},
		{"boundary tail step 2", 10, 4, 2, true, []int{0, 2, 4, 6}},
		{"boundary tail is not duplicated", 10, 4, 4, true, []int{0, 4, 6}},
		{"window equals length", 5, 5, 1, false, nil},
		{"window equals length with boundary tail", 5, 5, 1, true, []int{0}},
		{"step of one", 5, 3, 1, false, []int{0, 1}},
		{"step larger than ranking", 6, 2, 10, false, []int{0, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := windowStarts(tt.n, tt.w, tt.s, tt.boundaryTail)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowStartsErrors(t *testing.T) {
	_, err := windowStarts(10, 0, 1, false)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = windowStarts(10, -3, 1, false)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = windowStarts(10, 3, 0, false)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = windowStarts(10, 11, 1, false)
	assert.ErrorIs(t, err, ErrWindowTooLarge)
}

func TestWindowCoverage(t *testing.T) {
	for n := 1; n <= 25; n++ {
		for w := 1; w <= n; w++ {
			for s := 1; s <= n+1; s++ {
				got, err := windowStarts(n, w, s, true)
				require.NoError(t, err)
				require.NotEmpty(t, got)
				assert.Equal(t, n-w, got[len(got)-1], "n=%d w=%d s=%d", n, w, s)

				if (n-w)%s == 0 {
					continue
				}
				got, err = windowStarts(n, w, s, false)
				require.NoError(t, err)
				assert.Equal(t, n-w, got[len(got)-1], "n=%d w=%d s=%d", n, w, s)
			}
		}
	}
}

func TestAuditParity(t *testing.T) {
	// ranks 1..6 hold groups 0,1,0,1,1,0; input order is shuffled
	y := []float64{6, 1, 4, 2, 5, 3}
	groups := []int{0, 0, 1, 1, 1, 0}

	got, err := AuditParity(y, groups, 3, 2)
	require.NoError(t, err)

	want := Sequences{
		Err0: []float64{0.5, 1, 0},
		Err1: []float64{0.5, 0, 1},
	}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("AuditParity mismatch (-want +got):\n%s", diff)
	}
}

func TestAuditParityExactFit(t *testing.T) {
	y := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	groups := []int{1, 1, 1, 1, 1, 0, 0, 0}

	got, err := AuditParity(y, groups, 4, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())

	got, err = AuditParity(y, groups, 4, 2, WithBoundaryTail())
	require.NoError(t, err)
	want := Sequences{Err0: []float64{0, 0, 0}, Err1: []float64{1, 1, 1}}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestAuditMatchesDirectScoring(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	audits := []struct {
		metric Metric
		run    func(yTrue, yPred []float64, groups []int, w, s int, opts ...AuditOption) (Sequences, error)
		direct func(yTrue, yPred []float64, groups []int) (Result, error)
	}{
		{
			MetricParity,
			func(_, yPred []float64, groups []int, w, s int, opts ...AuditOption) (Sequences, error) {
				return AuditParity(yPred, groups, w, s, opts...)
			},
			func(_, yPred []float64, groups []int) (Result, error) { return RankParity(yPred, groups) },
		},
		{MetricEquality, AuditEquality, RankEquality},
		{MetricCalibration, AuditCalibration, RankCalibration},
	}

	for _, a := range audits {
		t.Run(a.metric.String(), func(t *testing.T) {
			n := 40
			yTrue, yPred, groups := randomRanking(rng, n, 1000)
			w, s := 10, 7

			got, err := a.run(yTrue, yPred, groups, w, s)
			require.NoError(t, err)

			r, err := NewRanking(yTrue, yPred, groups)
			require.NoError(t, err)
			sorted := r.sortedBy(byPredicted)
			starts, err := windowStarts(n, w, s, false)
			require.NoError(t, err)
			require.Equal(t, len(starts), got.Len())

			for i, start := range starts {
				wt, wp, wg := sorted[start : start+w].Columns()
				want, err := a.direct(wt, wp, wg)
				require.NoError(t, err)
				assert.InDelta(t, want.E0, got.Err0[i], eps, "window %d", i)
				assert.InDelta(t, want.E1, got.Err1[i], eps, "window %d", i)
			}
		})
	}
}

func TestAuditParallelMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	yTrue, yPred, groups := randomRanking(rng, 300, 50)

	for _, m := range Metrics {
		r, err := NewRanking(yTrue, yPred, groups)
		require.NoError(t, err)

		seq, err := Audit(m, r, 25, 5)
		require.NoError(t, err)
		par, err := Audit(m, r, 25, 5, WithParallelism(8))
		require.NoError(t, err)

		if diff := cmp.Diff(seq, par); diff != "" {
			t.Errorf("%s: parallel audit differs (-seq +par):\n%s", m, diff)
		}
	}
}

func TestAuditErrors(t *testing.T) {
	y := []float64{1, 2, 3}
	groups := []int{0, 1, 0}

	_, err := AuditParity(y, groups, 4, 1)
	assert.ErrorIs(t, err, ErrWindowTooLarge)

	_, err = AuditEquality(y, y, groups, 0, 1)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = AuditCalibration(y, y, groups, 2, -1)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = AuditCalibration(y, y[:2], groups, 2, 1)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Audit(Metric(7), Ranking{{}, {}}, 1, 1)
	assert.ErrorIs(t, err, ErrUnknownMetric)

	_, err = Audit(MetricParity, Ranking{{Group: 3}, {}}, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidGroup)
}

func TestAuditDoesNotReorderInput(t *testing.T) {
	r := Ranking{{Predicted: 3}, {Predicted: 1, Group: 1}, {Predicted: 2}}
	orig := append(Ranking(nil), r...)

	_, err := Audit(MetricEquality, r, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, orig, r)
}
