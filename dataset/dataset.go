// Package dataset holds the tabular data model: raw CSV tables, cleaned
// numeric datasets, schema propagation and stratified splitting.
package dataset

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// Dataset is a cleaned, fully numeric feature table. Every record shares the
// identical feature set. Labels are class indices into Classes and are nil
// for unlabeled evaluation data.
type Dataset struct {
	Features []string
	X        *mat.Dense
	Labels   []int
	Classes  []string
}

// NumRows returns the number of records.
func (d *Dataset) NumRows() int {
	if d.X == nil {
		return 0
	}
	r, _ := d.X.Dims()
	return r
}

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int {
	return len(d.Features)
}

// IsLabeled reports whether the dataset carries labels.
func (d *Dataset) IsLabeled() bool {
	return d.Labels != nil
}

// LabelMatrix returns the labels as an n×1 matrix of class indices, which is
// the shape every Classifier expects for y.
func (d *Dataset) LabelMatrix() *mat.Dense {
	n := d.NumRows()
	y := mat.NewDense(n, 1, nil)
	for i, c := range d.Labels {
		y.Set(i, 0, float64(c))
	}
	return y
}

// ClassCounts returns the number of records per class index.
func (d *Dataset) ClassCounts() []int {
	counts := make([]int, len(d.Classes))
	for _, c := range d.Labels {
		counts[c]++
	}
	return counts
}

// Subset returns a new dataset containing the given records, in index order.
// The feature schema and class set are shared with the receiver.
func (d *Dataset) Subset(indices []int) *Dataset {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Ints(sorted)

	sub := &Dataset{
		Features: d.Features,
		Classes:  d.Classes,
		X:        mat.NewDense(len(sorted), d.NumFeatures(), nil),
	}
	for i, idx := range sorted {
		sub.X.SetRow(i, mat.Row(nil, idx, d.X))
	}
	if d.Labels != nil {
		sub.Labels = make([]int, len(sorted))
		for i, idx := range sorted {
			sub.Labels[i] = d.Labels[idx]
		}
	}
	return sub
}

// ValidateFeatures checks that got carries exactly the want feature columns
// in the same order. It is called before prediction so that a schema mismatch
// is a typed error rather than a downstream numeric one.
func ValidateFeatures(op string, want, got []string) error {
	have := make(map[string]bool, len(got))
	for _, f := range got {
		have[f] = true
	}
	wanted := make(map[string]bool, len(want))
	for _, f := range want {
		wanted[f] = true
	}

	var missing, extra []string
	for _, f := range want {
		if !have[f] {
			missing = append(missing, f)
		}
	}
	for _, f := range got {
		if !wanted[f] {
			extra = append(extra, f)
		}
	}
	if len(missing) > 0 || len(extra) > 0 {
		return errors.NewSchemaError(op, missing, extra)
	}
	for i, f := range want {
		if got[i] != f {
			return errors.NewSchemaError(op, []string{f}, []string{got[i]})
		}
	}
	return nil
}

// ValidateSchema checks that other carries exactly the receiver's feature
// columns in the same order.
func (d *Dataset) ValidateSchema(op string, other *Dataset) error {
	return ValidateFeatures(op, d.Features, other.Features)
}
