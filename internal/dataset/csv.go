package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var columnAliases = map[string]string{
	"y_true": "y_true",
	"y":      "y_true",
	"y_pred": "y_pred",
	"group":  "group",
	"groups": "group",
	"g":      "group",
}

func decodeCSV(r io.Reader) (*Snapshot, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		if canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
			cols[canonical] = i
		}
	}
	gi, ok := cols["group"]
	if !ok {
		return nil, fmt.Errorf("csv header %v has no group column", header)
	}
	ti, hasTrue := cols["y_true"]
	pi, hasPred := cols["y_pred"]
	if !hasTrue && !hasPred {
		return nil, fmt.Errorf("csv header %v has neither y_true nor y_pred", header)
	}

	snap := &Snapshot{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		g, err := strconv.Atoi(strings.TrimSpace(row[gi]))
		if err != nil {
			return nil, fmt.Errorf("line %d: group: %w", line, err)
		}
		snap.Groups = append(snap.Groups, g)

		if hasTrue {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[ti]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: y_true: %w", line, err)
			}
			snap.YTrue = append(snap.YTrue, v)
		}
		if hasPred {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[pi]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: y_pred: %w", line, err)
			}
			snap.YPred = append(snap.YPred, v)
		}
	}

	// a CSV with only y_true is treated as rank data, like one with only y_pred
	if !hasPred {
		snap.YPred = snap.YTrue
	}
	return snap, nil
}
