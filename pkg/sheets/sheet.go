// Package sheets assembles the interchange representation of dataset
// metadata: an overview sheet with one row per table and one field sheet
// per table. The interchange format is string-typed throughout — missing
// values are "" — and every sheet's first column is its row index.
package sheets

import (
	"strconv"

	"github.com/karlo0/bqdc/pkg/errors"
)

// Fixed sheet and index column names of the interchange format.
const (
	// OverviewSheetName is the reserved name of the overview sheet.
	OverviewSheetName = "metadata_of_tables"

	// TableIndexColumn is the index column of the overview sheet.
	TableIndexColumn = "table_id"

	// FieldIndexColumn is the index column of every field sheet.
	FieldIndexColumn = "field_name"
)

// Sheet is one 2-D string-typed table. Header names the columns, with the
// first entry naming the row index; every row carries its index value in
// position 0.
type Sheet struct {
	Name   string     `yaml:"name"`
	Header []string   `yaml:"header"`
	Rows   [][]string `yaml:"rows"`
}

// Append adds a row. Short rows are padded with "" to the header width.
func (s *Sheet) Append(row []string) {
	for len(row) < len(s.Header) {
		row = append(row, "")
	}
	s.Rows = append(s.Rows, row)
}

// Index returns the row index values in sheet order.
func (s *Sheet) Index() []string {
	index := make([]string, len(s.Rows))
	for i, row := range s.Rows {
		if len(row) > 0 {
			index[i] = row[0]
		}
	}
	return index
}

// RowMap returns row i as its index value plus a column-keyed map of the
// remaining cells.
func (s *Sheet) RowMap(i int) (string, map[string]string) {
	row := s.Rows[i]
	attrs := make(map[string]string, len(s.Header)-1)
	for c := 1; c < len(s.Header); c++ {
		if c < len(row) {
			attrs[s.Header[c]] = row[c]
		} else {
			attrs[s.Header[c]] = ""
		}
	}
	if len(row) == 0 {
		return "", attrs
	}
	return row[0], attrs
}

// Workbook is the full interchange document for one dataset: the overview
// sheet plus one field sheet per table, in overview row order.
type Workbook struct {
	Overview Sheet   `yaml:"overview"`
	Tables   []Sheet `yaml:"tables"`
}

// TableSheet returns the field sheet for the table at overview position i.
// Table sheets are matched positionally because sheet names may have been
// truncated by the file format.
func (w *Workbook) TableSheet(i int) (*Sheet, error) {
	if i < 0 || i >= len(w.Tables) {
		return nil, errors.NewValidationError("sheet",
			"workbook has no field sheet at overview position "+strconv.Itoa(i))
	}
	return &w.Tables[i], nil
}

// OverviewRow returns the overview attributes of the table at position i.
func (w *Workbook) OverviewRow(i int) (string, map[string]string) {
	return w.Overview.RowMap(i)
}
