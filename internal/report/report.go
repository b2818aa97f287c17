// Package report summarises how much of a device a design uses.
//
// Cells are grouped into resource buckets by an injected classifier; each
// bucket is compared with the number of resources the device offers.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/netmut/internal/netlist"
)

// BucketClassifier maps a cell type to the resource bucket it occupies.
// An empty result means the type occupies no known resource.
type BucketClassifier interface {
	BucketForCellType(cellType string) string
}

// Device describes the resources of a target device.
//
//	name: small-fpga
//	buckets:
//	  LUT: 1280
//	  FF: 1280
//	cell_types:
//	  LUT4: LUT
//	  DFF: FF
type Device struct {
	Name      string            `yaml:"name,omitempty" json:"name,omitempty"`
	Buckets   map[string]int    `yaml:"buckets" json:"buckets"`
	CellTypes map[string]string `yaml:"cell_types" json:"cell_types"`
}

// BucketForCellType implements BucketClassifier.
func (dv *Device) BucketForCellType(cellType string) string {
	return dv.CellTypes[cellType]
}

// LoadDevice reads a device resources file.
func LoadDevice(path string) (*Device, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read device: %w", err)
	}
	return ParseDevice(data)
}

// ParseDevice decodes device resources YAML. Unknown fields are rejected.
func ParseDevice(data []byte) (*Device, error) {
	var dv Device
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&dv); err != nil {
		return nil, fmt.Errorf("parse device: %w", err)
	}
	if err := dv.validate(); err != nil {
		return nil, fmt.Errorf("invalid device: %w", err)
	}
	return &dv, nil
}

func (dv *Device) validate() error {
	if len(dv.Buckets) == 0 {
		return fmt.Errorf("buckets is required and must be non-empty")
	}
	for name, n := range dv.Buckets {
		if n <= 0 {
			return fmt.Errorf("bucket %s: available must be positive, got %d", name, n)
		}
	}
	for cellType, bucket := range dv.CellTypes {
		if _, ok := dv.Buckets[bucket]; !ok {
			return fmt.Errorf("cell type %s: unknown bucket %q", cellType, bucket)
		}
	}
	return nil
}

// Row is the utilisation of one bucket.
type Row struct {
	Bucket    string `json:"bucket"`
	Used      int    `json:"used"`
	Available int    `json:"available"`
	Percent   int    `json:"percent"`
}

// Utilisation counts the cells of d per bucket. Only buckets with available
// resources are reported, sorted by name; Percent is 100*Used/Available
// rounded down.
func Utilisation(d *netlist.Design, c BucketClassifier, available map[string]int) []Row {
	used := make(map[string]int)
	for _, name := range d.CellNames() {
		used[c.BucketForCellType(d.Cell(name).Type)]++
	}

	buckets := make([]string, 0, len(available))
	for b, n := range available {
		if n > 0 {
			buckets = append(buckets, b)
		}
	}
	sort.Strings(buckets)

	rows := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		n := used[b]
		rows = append(rows, Row{Bucket: b, Used: n, Available: available[b], Percent: 100 * n / available[b]})
	}
	return rows
}

// Unclassified returns the cell types of d the classifier has no bucket
// for, sorted and without duplicates.
func Unclassified(d *netlist.Design, c BucketClassifier) []string {
	seen := make(map[string]bool)
	var types []string
	for _, name := range d.CellNames() {
		t := d.Cell(name).Type
		if c.BucketForCellType(t) == "" && !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// WriteText prints rows as an aligned table.
func WriteText(w io.Writer, rows []Row) error {
	if _, err := fmt.Fprintln(w, "Device utilisation:"); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "\t%20s: %5d/%5d %5d%%\n", r.Bucket, r.Used, r.Available, r.Percent); err != nil {
			return err
		}
	}
	return nil
}
