package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
}

// Encode writes v in the given format. Text output is only defined for
// *Report; other values fall back to JSON.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		if rep, ok := v.(*Report); ok {
			writeText(w, rep)
			return nil
		}
	}

	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeText(w io.Writer, rep *Report) {
	fmt.Fprintf(w, "Items: %d (group 0: %d, group 1: %d)\n", rep.Items, rep.Counts.Zero, rep.Counts.One)
	fmt.Fprintf(w, "Audit: window=%d step=%d\n\n", rep.Window, rep.Step)
	fmt.Fprintf(w, "%-12s %10s %10s %8s %10s %10s %10s\n", "metric", "e0", "e1", "windows", "trend0", "trend1", "distance")
	for _, mr := range rep.Metrics {
		fmt.Fprintf(w, "%-12s %10.4f %10.4f %8d", mr.Metric, mr.Overall.E0, mr.Overall.E1, mr.Sequences.Len())
		if mr.Diagnostics != nil {
			fmt.Fprintf(w, " %10.4f %10.4f %10.4f\n", mr.Diagnostics.Trend0, mr.Diagnostics.Trend1, mr.Diagnostics.Distance)
		} else {
			fmt.Fprintf(w, " %32s\n", "n/a")
		}
	}
}
