package dataset

import (
	"encoding/csv"
	"os"

	"github.com/jhsdatascience/pml-project/pkg/errors"
)

// Table is a raw CSV table with a header row, prior to cleaning.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadTable loads a CSV file with a header row. Missing or malformed input
// is a fatal data error.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ReadTable: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "ReadTable: parse %s", path)
	}
	if len(records) < 2 {
		return nil, errors.NewValueError("ReadTable", "file has no data rows: "+path)
	}

	return &Table{
		Columns: records[0],
		Rows:    records[1:],
	}, nil
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}
