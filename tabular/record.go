package tabular

import "iter"

// Record is one decoded data row. Column names are kept exactly as they
// appear in the header row; the header order is kept so iteration follows
// the source column order.
type Record struct {
	RowNumber int
	columns   []string
	values    map[string]string
}

// NewRecord zips columns with positional values. Missing trailing values
// are stored as empty strings and surplus values are dropped.
func NewRecord(rowNumber int, columns []string, values []string) Record {
	cols := append([]string(nil), columns...)
	byName := make(map[string]string, len(cols))
	for i, column := range cols {
		if i < len(values) {
			byName[column] = values[i]
		} else {
			byName[column] = ""
		}
	}
	return Record{RowNumber: rowNumber, columns: cols, values: byName}
}

// Columns returns the header column names in source order.
func (r Record) Columns() []string {
	return append([]string(nil), r.columns...)
}

func (r Record) Len() int {
	return len(r.columns)
}

// Lookup returns the raw value stored for column and whether the column exists.
func (r Record) Lookup(column string) (string, bool) {
	value, ok := r.values[column]
	return value, ok
}

// Get returns the raw value stored for column, or "" when absent.
func (r Record) Get(column string) string {
	return r.values[column]
}

// All yields column/value pairs in header order.
func (r Record) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, column := range r.columns {
			if !yield(column, r.values[column]) {
				return
			}
		}
	}
}

// Map returns a copy of the column/value mapping.
func (r Record) Map() map[string]string {
	out := make(map[string]string, len(r.values))
	for column, value := range r.values {
		out[column] = value
	}
	return out
}
