package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/tensorplex-labs/fare/pkg/fare"
)

const maxBarWidth = 40

// PlotSequencesTerminal draws both error sequences of an audit as stacked
// horizontal bars, one row pair per window. Errors are on a fixed [0, 1]
// scale so plots of different metrics can be compared.
func PlotSequencesTerminal(w io.Writer, title string, seqs fare.Sequences) {
	fmt.Fprintf(w, "\n%s (Terminal Plot - window order):\n", title)
	fmt.Fprintln(w, "Window | Grp | Error    | Bar Chart")
	fmt.Fprintln(w, "-------|-----|----------|"+strings.Repeat("-", maxBarWidth+2))

	for i := range seqs.Len() {
		fmt.Fprintf(w, "%6d | g0  | %.6f | %s\n", i, seqs.Err0[i], bar(seqs.Err0[i], '█'))
		fmt.Fprintf(w, "%6s | g1  | %.6f | %s\n", "", seqs.Err1[i], bar(seqs.Err1[i], '▒'))
	}

	fmt.Fprintf(w, "\nScale: 0 to 1, bar width %d chars\n", maxBarWidth)
}

func bar(v float64, glyph rune) string {
	width := int(clamp01(v) * maxBarWidth)
	if width == 0 {
		return "▏"
	}
	return strings.Repeat(string(glyph), width)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// PlotReportTerminal plots every metric of a report, stacked.
func PlotReportTerminal(w io.Writer, rep *Report) {
	for _, mr := range rep.Metrics {
		PlotSequencesTerminal(w, fmt.Sprintf("Rank %s error", mr.Metric), mr.Sequences)
	}
}
