package sheets

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/karlo0/bqdc/pkg/errors"
)

// EncodeYAML writes the workbook as YAML. The YAML form carries exactly the
// same sheets as the spreadsheet form but diffs cleanly, so exports can be
// kept under version control.
func EncodeYAML(w io.Writer, wb *Workbook) error {
	enc := yaml.NewEncoder(w, yaml.Indent(2))
	defer enc.Close()
	if err := enc.Encode(wb); err != nil {
		return errors.WrapIO("write", "workbook yaml", err)
	}
	return nil
}

// DecodeYAML reads a workbook from its YAML form and checks the overview
// sheet is present before the caller issues any remote write.
func DecodeYAML(r io.Reader) (*Workbook, error) {
	var wb Workbook
	if err := yaml.NewDecoder(r).Decode(&wb); err != nil {
		return nil, errors.WrapIO("read", "workbook yaml", err)
	}
	if wb.Overview.Name != OverviewSheetName {
		return nil, errors.NewValidationError("overview",
			"workbook is missing the "+OverviewSheetName+" sheet")
	}
	return &wb, nil
}
