// Package writer persists build results to local files. The destination
// path suffix selects the format: tables go to Parquet for .parquet/.pq and
// CSV for everything else; raw JSON payloads are written indented.
package writer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/pitchdata/pitchdata/internal/tabular"
)

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v interface{}) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteTable writes a canonical table, choosing the format from the path
// suffix.
func WriteTable(path string, t *tabular.Table) error {
	if err := ensureParent(path); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return writeParquet(path, t)
	default:
		return writeCSV(path, t)
	}
}

// --------------------------------------------------------------------------
// CSV
// --------------------------------------------------------------------------

func writeCSV(path string, t *tabular.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for _, rec := range t.Rows {
		for i, col := range t.Columns {
			row[i] = formatCell(rec[col])
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// formatCell renders a cell for CSV. Nil (missing or uncoercible) is an
// empty cell.
func formatCell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// --------------------------------------------------------------------------
// Parquet
// --------------------------------------------------------------------------

// writeParquet builds a parquet schema from the table's columns (numeric →
// optional DOUBLE, everything else → optional UTF8) and streams the rows.
func writeParquet(path string, t *tabular.Table) error {
	group := parquet.Group{}
	for _, col := range t.Columns {
		if t.Numeric[col] {
			group[col] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
		} else {
			group[col] = parquet.Optional(parquet.String())
		}
	}
	schema := parquet.NewSchema("table", group)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := parquet.NewGenericWriter[map[string]interface{}](f, schema)
	rows := make([]map[string]interface{}, 0, len(t.Rows))
	for _, rec := range t.Rows {
		row := make(map[string]interface{}, len(t.Columns))
		for _, col := range t.Columns {
			// Absent keys become nulls in the optional columns.
			if v := rec[col]; v != nil {
				row[col] = parquetCell(v, t.Numeric[col])
			}
		}
		rows = append(rows, row)
	}
	if _, err := w.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// parquetCell maps a cell to the declared physical type.
func parquetCell(v interface{}, numeric bool) interface{} {
	if numeric {
		// Normalize already guarantees float64 in numeric columns.
		return v
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	return nil
}
