package fare

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerateDiagnostics reduces two audit error sequences to three numbers.
//
//   - Trend0, Trend1: slope of the least-squares line through each sequence,
//     plotted against normalised window positions x_i = i/m.
//   - Distance: mean absolute pointwise difference between the two.
//
// A positive trend means the group's error grows towards the bottom of the
// ranking.
//
// Errors:
//   - ErrSequenceLengthMismatch: len(err0) != len(err1).
//   - ErrSequenceTooShort: fewer than two windows.
func GenerateDiagnostics(err0, err1 []float64) (Diagnostics, error) {
	if len(err0) != len(err1) {
		return Diagnostics{}, fmt.Errorf("%w: %d vs %d", ErrSequenceLengthMismatch, len(err0), len(err1))
	}
	m := len(err0)
	if m < 2 {
		return Diagnostics{}, fmt.Errorf("%w: got %d", ErrSequenceTooShort, m)
	}

	d := Diagnostics{
		Trend0:   trend(err0),
		Trend1:   trend(err1),
		Distance: floats.Distance(err0, err1, 1) / float64(m),
	}

	vec := d.Vector()
	log.Debug().
		Int("windows", m).
		Floats64("diagnostics", vec[:]).
		Msg("generated diagnostics")

	return d, nil
}

// trend returns the OLS slope of seq against i/len(seq).
func trend(seq []float64) float64 {
	x := make([]float64, len(seq))
	for i := range x {
		x[i] = float64(i) / float64(len(seq))
	}
	_, beta := stat.LinearRegression(x, seq, nil, false)
	return beta
}
