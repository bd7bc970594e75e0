package reconcile

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Drift is the symmetric difference between the field set recorded in an
// interchange sheet and the field set of the canonical schema. Drift is
// advisory: it is reported for the operator but never blocks an upload.
type Drift struct {
	// NotInSchema holds lower-cased field names present in the sheet but
	// absent from the canonical schema; they should be removed from the
	// sheet.
	NotInSchema []string

	// NotInSheet holds lower-cased field names present in the canonical
	// schema but absent from the sheet; they should be added to the sheet.
	NotInSheet []string
}

// CheckDrift compares the sheet's field names against the schema's field
// names, both matched lower-cased. The returned slices are sorted.
func CheckDrift(sheetNames, schemaNames []string) *Drift {
	inSheet := make(map[string]bool, len(sheetNames))
	for _, n := range sheetNames {
		inSheet[strings.ToLower(n)] = true
	}
	inSchema := make(map[string]bool, len(schemaNames))
	for _, n := range schemaNames {
		inSchema[strings.ToLower(n)] = true
	}

	d := &Drift{}
	for n := range inSheet {
		if !inSchema[n] {
			d.NotInSchema = append(d.NotInSchema, n)
		}
	}
	for n := range inSchema {
		if !inSheet[n] {
			d.NotInSheet = append(d.NotInSheet, n)
		}
	}
	sort.Strings(d.NotInSchema)
	sort.Strings(d.NotInSheet)
	return d
}

// Empty reports whether the two field sets matched.
func (d *Drift) Empty() bool {
	return len(d.NotInSchema) == 0 && len(d.NotInSheet) == 0
}

// Log emits the operator-facing drift report: entries prefixed with '<' are
// in the sheet but no longer in the schema, entries prefixed with '>' are
// in the schema but missing from the sheet.
func (d *Drift) Log(logger *zerolog.Logger, tableID string) {
	if d.Empty() {
		return
	}
	for _, n := range d.NotInSchema {
		logger.Warn().
			Str("table", tableID).
			Str("field", n).
			Msg("< field in sheet but not in schema, remove it from the sheet")
	}
	for _, n := range d.NotInSheet {
		logger.Warn().
			Str("table", tableID).
			Str("field", n).
			Msg("> field in schema but not in sheet, add it to the sheet")
	}
}
