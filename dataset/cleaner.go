package dataset

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// DefaultMetaColumns is the number of leading non-predictive columns in the
// source schema: row index, subject identifier, three timestamp fields and
// two windowing fields.
const DefaultMetaColumns = 7

// Cleaner reduces a raw table to its usable numeric feature columns.
//
// Policy: the leading MetaColumns columns are dropped by position, the label
// column (if configured) is held aside and reattached, and any remaining
// column containing a missing or non-numeric cell is dropped whole. Rows are
// never dropped.
type Cleaner struct {
	MetaColumns int
	LabelColumn string
}

// NewCleaner returns a Cleaner for the source schema.
func NewCleaner(labelColumn string) *Cleaner {
	return &Cleaner{
		MetaColumns: DefaultMetaColumns,
		LabelColumn: labelColumn,
	}
}

func missing(cell string) bool {
	if cell == "" || cell == "NA" {
		return true
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err != nil
}

// Clean converts a labeled raw table into a Dataset. The class set is the
// sorted distinct labels; returns ErrNoFeatures when no numeric column
// survives.
func (c *Cleaner) Clean(t *Table) (*Dataset, error) {
	labelIdx := -1
	if c.LabelColumn != "" {
		labelIdx = t.ColumnIndex(c.LabelColumn)
		if labelIdx < 0 {
			return nil, errors.NewSchemaError("Cleaner.Clean", []string{c.LabelColumn}, nil)
		}
	}

	var kept []int
	for j := c.MetaColumns; j < len(t.Columns); j++ {
		if j == labelIdx {
			continue
		}
		usable := true
		for _, row := range t.Rows {
			if missing(row[j]) {
				usable = false
				break
			}
		}
		if usable {
			kept = append(kept, j)
		}
	}
	if len(kept) == 0 {
		return nil, errors.Wrap(errors.ErrNoFeatures, "Cleaner.Clean")
	}

	ds := &Dataset{
		Features: make([]string, len(kept)),
		X:        mat.NewDense(t.NumRows(), len(kept), nil),
	}
	for jj, j := range kept {
		ds.Features[jj] = t.Columns[j]
	}
	for i, row := range t.Rows {
		for jj, j := range kept {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "Cleaner.Clean: row %d column %s", i, t.Columns[j])
			}
			ds.X.Set(i, jj, v)
		}
	}

	if labelIdx >= 0 {
		classSet := make(map[string]bool)
		for _, row := range t.Rows {
			classSet[row[labelIdx]] = true
		}
		ds.Classes = make([]string, 0, len(classSet))
		for class := range classSet {
			ds.Classes = append(ds.Classes, class)
		}
		sort.Strings(ds.Classes)

		classIdx := make(map[string]int, len(ds.Classes))
		for i, class := range ds.Classes {
			classIdx[class] = i
		}
		ds.Labels = make([]int, t.NumRows())
		for i, row := range t.Rows {
			ds.Labels[i] = classIdx[row[labelIdx]]
		}
	}

	return ds, nil
}

// Propagate projects an unlabeled evaluation table onto the cleaned training
// schema: the retained columns are the intersection with train.Features, in
// training order. The evaluation data is never cleaned independently, so its
// feature set stays aligned with the trained models.
func (c *Cleaner) Propagate(train *Dataset, t *Table) (*Dataset, error) {
	var kept []string
	var src []int
	for _, f := range train.Features {
		if j := t.ColumnIndex(f); j >= 0 {
			kept = append(kept, f)
			src = append(src, j)
		}
	}
	if len(kept) == 0 {
		return nil, errors.Wrap(errors.ErrNoFeatures, "Cleaner.Propagate")
	}

	ds := &Dataset{
		Features: kept,
		Classes:  train.Classes,
		X:        mat.NewDense(t.NumRows(), len(kept), nil),
	}
	for i, row := range t.Rows {
		for jj, j := range src {
			v, err := strconv.ParseFloat(row[j], 64)
			if err != nil {
				return nil, errors.Wrapf(err, "Cleaner.Propagate: row %d column %s", i, kept[jj])
			}
			ds.X.Set(i, jj, v)
		}
	}
	return ds, nil
}
