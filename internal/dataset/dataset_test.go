package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorplex-labs/fare/pkg/fare"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path       string
		format     Format
		compressed bool
		wantErr    bool
	}{
		{"a.json", FormatJSON, false, false},
		{"A.JSON.ZST", FormatJSON, true, false},
		{"dir/b.csv", FormatCSV, false, false},
		{"b.csv.zst", FormatCSV, true, false},
		{"b.pickle", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, compressed, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.compressed, compressed)
		})
	}
}

func TestDecodeJSONColumns(t *testing.T) {
	snap, err := Decode(strings.NewReader(`{"y_true":[1,2,3,4],"y_pred":[1,3,4,2],"groups":[0,1,0,1]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, snap.YTrue)
	assert.Equal(t, []float64{1, 3, 4, 2}, snap.YPred)
	assert.Equal(t, []int{0, 1, 0, 1}, snap.Groups)

	r, err := snap.Ranking()
	require.NoError(t, err)
	res, err := fare.MetricEquality.Score(r)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.E0, 1e-12)
}

func TestDecodeJSONRecords(t *testing.T) {
	snap, err := Decode(strings.NewReader(`
		[{"y_true": 1, "y_pred": 2, "group": 0},
		 {"y_true": 2, "y_pred": 1, "group": 1}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, &Snapshot{
		YTrue:  []float64{1, 2},
		YPred:  []float64{2, 1},
		Groups: []int{0, 1},
	}, snap)
}

func TestDecodeJSONErrors(t *testing.T) {
	_, err := Decode(strings.NewReader("  "), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"y_true": "x"}`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{}`), Format("xml"))
	assert.Error(t, err)
}

func TestDecodeCSV(t *testing.T) {
	data := "y_true, y_pred, g\n1,1,0\n2,3,1\n3,4,0\n4,2,1\n"
	snap, err := Decode(strings.NewReader(data), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 4, 2}, snap.YPred)
	assert.Equal(t, []int{0, 1, 0, 1}, snap.Groups)
}

func TestDecodeCSVRankOnly(t *testing.T) {
	snap, err := Decode(strings.NewReader("y_pred,group\n3,1\n1,0\n"), FormatCSV)
	require.NoError(t, err)
	assert.Empty(t, snap.YTrue)

	r, err := snap.Ranking()
	require.NoError(t, err)
	assert.Equal(t, fare.Ranking{
		{True: 3, Predicted: 3, Group: 1},
		{True: 1, Predicted: 1, Group: 0},
	}, r)
}

func TestDecodeCSVErrors(t *testing.T) {
	_, err := Decode(strings.NewReader("y_true,y_pred\n1,2\n"), FormatCSV)
	assert.ErrorContains(t, err, "no group column")

	_, err = Decode(strings.NewReader("group\n1\n"), FormatCSV)
	assert.ErrorContains(t, err, "neither")

	_, err = Decode(strings.NewReader("y_pred,group\nabc,1\n"), FormatCSV)
	assert.ErrorContains(t, err, "line 2")

	_, err = Decode(strings.NewReader("y_pred,group\n1,x\n"), FormatCSV)
	assert.ErrorContains(t, err, "group")
}

func TestLoadRoundTripCompressed(t *testing.T) {
	snap := &Snapshot{
		YTrue:  []float64{1, 2, 3},
		YPred:  []float64{3, 1, 2},
		Groups: []int{1, 0, 1},
	}
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, snap, true))

	path := writeFile(t, "snap.json.zst", buf.Bytes())
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestLoadCSVFile(t *testing.T) {
	path := writeFile(t, "snap.csv", []byte("y,y_pred,group\n1,2,0\n2,1,1\n"))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got.YTrue)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSnapshotRankingInvalid(t *testing.T) {
	snap := &Snapshot{YTrue: []float64{1}, YPred: []float64{1}, Groups: []int{2}}
	_, err := snap.Ranking()
	assert.ErrorIs(t, err, fare.ErrInvalidGroup)
}

func TestToRankPositions(t *testing.T) {
	assert.Equal(t, []float64{2, 0, 1}, ToRankPositions([]float64{0.9, 0.1, 0.5}, false))
	assert.Equal(t, []float64{0, 2, 1}, ToRankPositions([]float64{0.9, 0.1, 0.5}, true))
	// ties keep input order
	assert.Equal(t, []float64{0, 1, 2}, ToRankPositions([]float64{1, 1, 1}, true))
	assert.Empty(t, ToRankPositions(nil, false))
}

func TestWithRankPositions(t *testing.T) {
	snap := &Snapshot{YPred: []float64{10, 30, 20}, Groups: []int{0, 1, 0}}
	got := snap.WithRankPositions(true)
	assert.Equal(t, []float64{2, 0, 1}, got.YPred)
	assert.Empty(t, got.YTrue)
	assert.Equal(t, snap.Groups, got.Groups)
}
