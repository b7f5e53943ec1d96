package models

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Row is one record of a query result. Values may be nested maps
// when a backend returns structured fields.
type Row map[string]interface{}

// Table is the common result type of all drivers: an ordered sequence
// of flattened rows with a deterministic column layout. Columns appear
// in first-seen order; keys discovered in the same row are sorted.
type Table struct {
	columns []string
	seen    map[string]struct{}
	rows    []Row
}

// NewTable creates a Table from records. Nested maps in each record
// are flattened into dotted-path columns before insertion.
func NewTable(records []Row) *Table {
	table := &Table{seen: map[string]struct{}{}}
	for _, record := range records {
		table.Append(record)
	}
	return table
}

// Append flattens record and adds it as the last row.
func (x *Table) Append(record Row) {
	if x.seen == nil {
		x.seen = map[string]struct{}{}
	}
	flat := flattenRecord(record)

	var added []string
	for key := range flat {
		if _, ok := x.seen[key]; !ok {
			x.seen[key] = struct{}{}
			added = append(added, key)
		}
	}
	sort.Strings(added)
	x.columns = append(x.columns, added...)
	x.rows = append(x.rows, flat)
}

// Columns returns the column names in layout order.
func (x *Table) Columns() []string { return x.columns }

// Rows returns all rows. Each row maps column name to value; columns
// absent from the original record are not present in the map.
func (x *Table) Rows() []Row { return x.rows }

// Length returns the number of rows.
func (x *Table) Length() int { return len(x.rows) }

// IsEmpty returns true if the table has no row.
func (x *Table) IsEmpty() bool { return len(x.rows) == 0 }

// Get returns a cell value, or nil if the row has no value for the column.
func (x *Table) Get(row int, column string) interface{} {
	if row < 0 || row >= len(x.rows) {
		return nil
	}
	return x.rows[row][column]
}

type tableJSON struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// MarshalJSON renders the table as {"columns": [...], "rows": [...]}.
func (x *Table) MarshalJSON() ([]byte, error) {
	out := tableJSON{Columns: x.columns, Rows: x.rows}
	if out.Columns == nil {
		out.Columns = []string{}
	}
	if out.Rows == nil {
		out.Rows = []Row{}
	}
	return json.Marshal(&out)
}

// WriteCSV writes a header line and all rows. Missing cells are
// rendered as empty fields.
func (x *Table) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(x.columns); err != nil {
		return err
	}

	for _, row := range x.rows {
		record := make([]string, len(x.columns))
		for i, col := range x.columns {
			if v, ok := row[col]; ok && v != nil {
				record[i] = fmt.Sprintf("%v", v)
			}
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// flattenRecord converts nested map values into dotted-path keys,
// e.g. {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenRecord(record Row) Row {
	flat := Row{}
	flattenInto(flat, "", record)
	return flat
}

func flattenInto(dst Row, prefix string, src map[string]interface{}) {
	for key, value := range src {
		path := key
		if prefix != "" {
			path = strings.Join([]string{prefix, key}, ".")
		}

		if nested, ok := value.(map[string]interface{}); ok {
			flattenInto(dst, path, nested)
		} else if nested, ok := value.(Row); ok {
			flattenInto(dst, path, nested)
		} else {
			dst[path] = value
		}
	}
}
