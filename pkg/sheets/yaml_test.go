package sheets_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karlo0/bqdc/pkg/sheets"
)

func TestYAMLRoundTrip(t *testing.T) {
	wb := &sheets.Workbook{
		Overview: sheets.Sheet{
			Name:   sheets.OverviewSheetName,
			Header: []string{"table_id", "table_description"},
			Rows:   [][]string{{"orders", "Order facts."}},
		},
		Tables: []sheets.Sheet{
			{
				Name:   "orders",
				Header: []string{"field_name", "field_type", "field_mode", "field_description"},
				Rows: [][]string{
					{"x", "STRING", "NULLABLE", "Foo."},
					{"y", "INTEGER", "REQUIRED", ""},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, sheets.EncodeYAML(&buf, wb))

	got, err := sheets.DecodeYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, wb, got)
}

func TestDecodeYAMLRequiresOverview(t *testing.T) {
	doc := strings.NewReader(`
overview:
  name: wrong_sheet
  header: [table_id]
tables: []
`)
	_, err := sheets.DecodeYAML(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), sheets.OverviewSheetName)
}
