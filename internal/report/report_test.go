package report

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/netmut/internal/netlist"
)

type mapClassifier map[string]string

func (m mapClassifier) BucketForCellType(t string) string { return m[t] }

func design(t *testing.T, cells map[string]string) *netlist.Design {
	t.Helper()
	d := netlist.NewDesign()
	for name, typ := range cells {
		d.MustAddCell(name, typ)
	}
	return d
}

func TestUtilisation(t *testing.T) {
	d := design(t, map[string]string{
		"lut0": "LUT4", "lut1": "LUT4", "lut2": "LUT4",
		"ff0": "DFF",
		"ram": "BRAM",
	})
	c := mapClassifier{"LUT4": "LUT", "DFF": "FF"}

	rows := Utilisation(d, c, map[string]int{"LUT": 8, "FF": 3, "IO": 4, "EMPTY": 0})

	assert.Equal(t, []Row{
		{Bucket: "FF", Used: 1, Available: 3, Percent: 33},
		{Bucket: "IO", Used: 0, Available: 4, Percent: 0},
		{Bucket: "LUT", Used: 3, Available: 8, Percent: 37},
	}, rows)
}

func TestUtilisation_Overfull(t *testing.T) {
	d := design(t, map[string]string{"a": "DFF", "b": "DFF", "c": "DFF"})
	rows := Utilisation(d, mapClassifier{"DFF": "FF"}, map[string]int{"FF": 2})

	require.Len(t, rows, 1)
	assert.Equal(t, 150, rows[0].Percent)
}

func TestUnclassified(t *testing.T) {
	d := design(t, map[string]string{"a": "LUT4", "b": "BRAM", "c": "BRAM", "d": "DSP"})
	assert.Equal(t, []string{"BRAM", "DSP"}, Unclassified(d, mapClassifier{"LUT4": "LUT"}))
	assert.Empty(t, Unclassified(d, mapClassifier{"LUT4": "LUT", "BRAM": "RAM", "DSP": "DSP"}))
}

func TestLoadDevice(t *testing.T) {
	dv, err := LoadDevice(filepath.Join("testdata", "device.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "tiny-fpga", dv.Name)
	assert.Equal(t, 8, dv.Buckets["LUT"])
	assert.Equal(t, "FF", dv.BucketForCellType("DFF"))
	assert.Equal(t, "", dv.BucketForCellType("BRAM"))
}

func TestParseDevice_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no buckets", "cell_types: {}\n", "buckets is required"},
		{"zero available", "buckets: {LUT: 0}\n", "available must be positive"},
		{"unknown bucket", "buckets: {LUT: 4}\ncell_types: {DFF: FF}\n", `unknown bucket "FF"`},
		{"unknown field", "buckets: {LUT: 4}\nbels: {}\n", "parse device"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDevice([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, []Row{{Bucket: "LUT", Used: 3, Available: 8, Percent: 37}}))

	assert.Equal(t, "Device utilisation:\n\t                 LUT:     3/    8    37%\n", buf.String())
}
