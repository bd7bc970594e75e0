package sheets

import (
	"github.com/karlo0/bqdc/pkg/metadata"
	"github.com/karlo0/bqdc/pkg/normalize"
	"github.com/karlo0/bqdc/pkg/reconcile"
)

// OverviewBuilder assembles the overview sheet: one row per table, columns
// in the table template's resolved key order.
type OverviewBuilder struct {
	keys  []string
	sheet Sheet
}

// NewOverviewBuilder creates a builder over the resolved table key order.
func NewOverviewBuilder(keys []string) *OverviewBuilder {
	header := make([]string, 0, len(keys)+1)
	header = append(header, TableIndexColumn)
	header = append(header, keys...)
	return &OverviewBuilder{
		keys: keys,
		sheet: Sheet{
			Name:   OverviewSheetName,
			Header: header,
		},
	}
}

// Append adds one table's row. Values come from the table-level tag when
// one exists; alt values take precedence per key over the tag's stored
// value (the caller passes the canonical-store description there when it is
// preferred). The tag's table_description is sentence-cleaned on the way
// out; absent values default to "".
func (b *OverviewBuilder) Append(tableID string, tag *metadata.Tag, alt map[string]string) {
	row := make([]string, 0, len(b.keys)+1)
	row = append(row, tableID)
	for _, key := range b.keys {
		if v, ok := alt[key]; ok {
			row = append(row, v)
			continue
		}
		if tag == nil {
			row = append(row, "")
			continue
		}
		value := tag.Value(key)
		if key == metadata.TableDescriptionKey {
			value = normalize.CleanSentence(value)
		}
		row = append(row, value)
	}
	b.sheet.Append(row)
}

// Sheet returns the assembled overview sheet.
func (b *OverviewBuilder) Sheet() Sheet {
	return b.sheet
}

// BuildFieldSheet assembles one table's field sheet from the schema
// snapshot and the field tag index: one row per schema field, indexed by
// the original-cased field name, with the canonical columns first, the
// description of the two stores merged into the single field_description
// column, and the remaining tag attribute columns in resolved key order.
func BuildFieldSheet(tableID string, tc *reconcile.TableContext, fieldKeys []string, limits reconcile.Limits) Sheet {
	extraKeys := make([]string, 0, len(fieldKeys))
	for _, key := range fieldKeys {
		if key != metadata.FieldDescriptionKey {
			extraKeys = append(extraKeys, key)
		}
	}

	header := make([]string, 0, len(extraKeys)+4)
	header = append(header, FieldIndexColumn, "field_type", "field_mode", metadata.FieldDescriptionKey)
	header = append(header, extraKeys...)

	sheet := Sheet{Name: tableID, Header: header}
	for _, field := range tc.Snapshot.Fields() {
		tag := tc.FieldTag(field.Name)

		tagged := ""
		if tag != nil {
			tagged = tag.Value(metadata.FieldDescriptionKey)
		}
		merged := reconcile.MergeDescriptions(field.Description, tagged, limits.MaxSchemaDescription)
		merged = normalize.CleanSentence(merged)

		row := make([]string, 0, len(header))
		row = append(row, field.Name, field.Type, field.Mode, merged)
		for _, key := range extraKeys {
			if tag != nil {
				row = append(row, tag.Value(key))
			} else {
				row = append(row, "")
			}
		}
		sheet.Append(row)
	}
	return sheet
}
