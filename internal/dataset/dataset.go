// Package dataset loads ranking snapshots from disk.
//
// Supported formats:
//
//   - JSON columns: {"y_true": [...], "y_pred": [...], "groups": [...]}
//   - JSON records: [{"y_true": 1, "y_pred": 2, "group": 0}, ...]
//   - CSV with a header naming y_true, y_pred and group (or g)
//
// Any of them may be zstd-compressed, signalled by a trailing ".zst".
package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/fare/pkg/fare"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// Snapshot is a ranking in column form, as stored on disk.
type Snapshot struct {
	YTrue  []float64 `json:"y_true"`
	YPred  []float64 `json:"y_pred"`
	Groups []int     `json:"groups"`
}

type record struct {
	YTrue float64 `json:"y_true"`
	YPred float64 `json:"y_pred"`
	Group int     `json:"group"`
}

// Len returns the number of items.
func (s *Snapshot) Len() int {
	return len(s.Groups)
}

// Ranking validates the snapshot and converts it to a fare.Ranking. A
// snapshot with only y_pred (pure rank data) mirrors it into y_true.
func (s *Snapshot) Ranking() (fare.Ranking, error) {
	yTrue := s.YTrue
	if len(yTrue) == 0 && len(s.YPred) > 0 {
		yTrue = s.YPred
	}
	return fare.NewRanking(yTrue, s.YPred, s.Groups)
}

// FormatFromPath picks the format from a file name, ignoring a ".zst" suffix.
func FormatFromPath(path string) (Format, bool, error) {
	name := strings.ToLower(path)
	compressed := strings.HasSuffix(name, ".zst")
	name = strings.TrimSuffix(name, ".zst")

	switch filepath.Ext(name) {
	case ".json":
		return FormatJSON, compressed, nil
	case ".csv":
		return FormatCSV, compressed, nil
	}
	return "", false, fmt.Errorf("unsupported snapshot extension %q", filepath.Ext(name))
}

// Load reads and decodes a snapshot file.
func Load(path string) (*Snapshot, error) {
	format, compressed, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if compressed {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	snap, err := Decode(r, format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	log.Debug().
		Str("path", path).
		Str("format", string(format)).
		Bool("zstd", compressed).
		Int("items", snap.Len()).
		Msg("Loaded ranking snapshot")

	return snap, nil
}

// Decode reads a snapshot of the given format from r.
func Decode(r io.Reader, format Format) (*Snapshot, error) {
	switch format {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return decodeJSON(data)
	case FormatCSV:
		return decodeCSV(r)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func decodeJSON(data []byte) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty JSON snapshot")
	}

	if trimmed[0] == '[' {
		var records []record
		if err := sonic.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("unmarshal records: %w", err)
		}
		snap := &Snapshot{
			YTrue:  make([]float64, len(records)),
			YPred:  make([]float64, len(records)),
			Groups: make([]int, len(records)),
		}
		for i, rec := range records {
			snap.YTrue[i], snap.YPred[i], snap.Groups[i] = rec.YTrue, rec.YPred, rec.Group
		}
		return snap, nil
	}

	var snap Snapshot
	if err := sonic.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal columns: %w", err)
	}
	return &snap, nil
}

// Encode writes s as JSON columns, zstd-compressed when compress is set.
func Encode(w io.Writer, s *Snapshot, compress bool) error {
	data, err := sonic.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if !compress {
		_, err = w.Write(data)
		return err
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("zstd: failed to create writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("zstd: failed to compress snapshot: %w", err)
	}
	return enc.Close()
}
