package core

// Record maps a column name to a value.
// Values are nil (SQL NULL), strings, or scalars as returned by the driver.
type Record map[string]any

// ResultSet is an ordered set of records.
// Columns preserves the order reported by the engine.
type ResultSet struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Values returns the row at i as a slice ordered by Columns.
func (rs *ResultSet) Values(i int) []any {
	row := rs.Rows[i]
	out := make([]any, len(rs.Columns))
	for j, c := range rs.Columns {
		out[j] = row[c]
	}
	return out
}
