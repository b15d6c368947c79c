package catalog

import "fmt"

// Dataset is an ordered set of records sharing one column layout.
type Dataset struct {
	Columns []string
	Records []*Record
}

// NewDataset creates an empty dataset with the given columns.
func NewDataset(columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Columns: cols}
}

// Shape returns the row and column counts.
func (d *Dataset) Shape() (rows, cols int) {
	return len(d.Records), len(d.Columns)
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.Records) }

// HasColumn reports whether the dataset carries the column.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumns returns ErrMissingColumn naming the first absent column.
func (d *Dataset) RequireColumns(names ...string) error {
	for _, name := range names {
		if !d.HasColumn(name) {
			return fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return nil
}

// AddColumn appends a column to the layout if it is not there yet.
func (d *Dataset) AddColumn(name string) {
	if !d.HasColumn(name) {
		d.Columns = append(d.Columns, name)
	}
}

// Append adds records to the dataset.
func (d *Dataset) Append(records ...*Record) {
	d.Records = append(d.Records, records...)
}

// Filter keeps the records for which keep returns true, preserving order,
// and returns how many were removed.
func (d *Dataset) Filter(keep func(*Record) bool) int {
	kept := d.Records[:0]
	for _, r := range d.Records {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	removed := len(d.Records) - len(kept)
	for i := len(kept); i < len(d.Records); i++ {
		d.Records[i] = nil
	}
	d.Records = kept
	return removed
}

// Values returns the raw cell text of a column for every record.
func (d *Dataset) Values(column string) []string {
	out := make([]string, len(d.Records))
	for i, r := range d.Records {
		out[i] = r.Value(column)
	}
	return out
}

// NonNull returns the non-null cell values of a column.
func (d *Dataset) NonNull(column string) []string {
	var out []string
	for _, r := range d.Records {
		if v, ok := r.Get(column); ok {
			out = append(out, v)
		}
	}
	return out
}

// Floats returns the parseable numeric values of a column.
func (d *Dataset) Floats(column string) []float64 {
	var out []float64
	for _, r := range d.Records {
		if v, ok := r.Float(column); ok {
			out = append(out, v)
		}
	}
	return out
}

// NullCount returns how many records have a null cell in the column.
func (d *Dataset) NullCount(column string) int {
	n := 0
	for _, r := range d.Records {
		if r.IsNull(column) {
			n++
		}
	}
	return n
}

// TotalNulls sums NullCount over every column.
func (d *Dataset) TotalNulls() int {
	total := 0
	for _, c := range d.Columns {
		total += d.NullCount(c)
	}
	return total
}

// IsNumeric reports whether every non-null value of the column parses as a
// number and at least one value exists.
func (d *Dataset) IsNumeric(column string) bool {
	seen := false
	for _, r := range d.Records {
		if r.IsNull(column) {
			continue
		}
		if _, ok := r.Float(column); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	c := NewDataset(d.Columns)
	c.Records = make([]*Record, len(d.Records))
	for i, r := range d.Records {
		c.Records[i] = r.Clone()
	}
	return c
}
