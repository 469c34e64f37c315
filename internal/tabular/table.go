// Package tabular converts heterogeneous raw records into a canonical
// tabular shape: a column-complete, numerically coerced table that the
// writers and the API serve as-is.
//
// Records coming off the providers are plain maps with differing key sets.
// The table's column set is the union of all keys seen; a row missing a
// column holds a nil cell. Declared numeric columns hold float64 or nil,
// never a raw string.
package tabular

import "sort"

// Record maps a column name to a scalar cell value (string, float64, bool,
// or nil for missing/non-coercible).
type Record map[string]interface{}

// Table is an ordered sequence of column-complete records. It is immutable
// once returned by Normalize.
type Table struct {
	// Columns in first-appearance order across the input records.
	Columns []string `json:"columns"`
	// Numeric marks the columns whose cells were coerced to float64.
	Numeric map[string]bool `json:"-"`
	Rows    []Record        `json:"rows"`
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Normalize builds a Table from raw records.
//
// Column set is the union of keys across all records, ordered by first
// appearance. Cells in numeric columns are coerced to float64; a value that
// cannot be coerced (or a missing key) becomes a nil cell — the row is
// always kept. Row order is preserved.
func Normalize(records []map[string]interface{}, numericCols []string) *Table {
	numeric := make(map[string]bool, len(numericCols))
	for _, c := range numericCols {
		numeric[c] = true
	}

	var columns []string
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, key := range sortedAppearance(rec) {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}

	rows := make([]Record, 0, len(records))
	for _, rec := range records {
		row := make(Record, len(columns))
		for _, col := range columns {
			raw, ok := rec[col]
			if !ok {
				row[col] = nil
				continue
			}
			if numeric[col] {
				if f, ok := CoerceNumeric(raw); ok {
					row[col] = f
				} else {
					row[col] = nil
				}
				continue
			}
			row[col] = raw
		}
		rows = append(rows, row)
	}

	// Keep only numeric columns that actually exist.
	present := make(map[string]bool)
	for _, col := range columns {
		if numeric[col] {
			present[col] = true
		}
	}

	return &Table{Columns: columns, Numeric: present, Rows: rows}
}

// sortedAppearance returns a record's keys in lexicographic order. Go maps
// carry no insertion order, so sorting keeps the column layout deterministic
// across runs; cross-record ordering still follows first appearance.
func sortedAppearance(rec map[string]interface{}) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
