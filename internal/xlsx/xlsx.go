// Package xlsx reads and writes the interchange workbook as an Excel file:
// the overview sheet under its fixed name plus one sheet per table, sheet
// names truncated to the format's length cap. It is a thin adapter around
// excelize; the logical sheet contract lives in pkg/sheets.
package xlsx

import (
	"github.com/xuri/excelize/v2"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/normalize"
	"github.com/karlo0/bqdc/pkg/sheets"
)

// Write saves the workbook to path. Table sheet names longer than
// maxSheetName are truncated; table sheets keep their overview order so
// they can be matched back positionally on read.
func Write(path string, wb *sheets.Workbook, maxSheetName int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheets.OverviewSheetName); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := writeSheet(f, sheets.OverviewSheetName, &wb.Overview); err != nil {
		return errors.WrapIO("write", path, err)
	}

	for i := range wb.Tables {
		sheet := &wb.Tables[i]
		name := normalize.Truncate(sheet.Name, maxSheetName)
		if _, err := f.NewSheet(name); err != nil {
			return errors.WrapIO("write", path, err)
		}
		if err := writeSheet(f, name, sheet); err != nil {
			return errors.WrapIO("write", path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Read loads a workbook from path. The overview sheet must be present
// under its fixed name; every other sheet is taken as a table field sheet
// in file order. A missing or unreadable file is fatal, raised before any
// remote write occurs.
func Read(path string) (*sheets.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	defer f.Close()

	wb := &sheets.Workbook{}
	foundOverview := false
	for _, name := range f.GetSheetList() {
		sheet, err := readSheet(f, name)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		if name == sheets.OverviewSheetName {
			wb.Overview = *sheet
			foundOverview = true
			continue
		}
		wb.Tables = append(wb.Tables, *sheet)
	}
	if !foundOverview {
		return nil, errors.NewValidationError("overview",
			path+" is missing the "+sheets.OverviewSheetName+" sheet")
	}
	return wb, nil
}

func writeSheet(f *excelize.File, name string, sheet *sheets.Sheet) error {
	if err := setRow(f, name, 1, sheet.Header); err != nil {
		return err
	}
	for i, row := range sheet.Rows {
		if err := setRow(f, name, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

func setRow(f *excelize.File, name string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(name, cell, &cells)
}

func readSheet(f *excelize.File, name string) (*sheets.Sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	sheet := &sheets.Sheet{Name: name}
	if len(rows) == 0 {
		return sheet, nil
	}
	sheet.Header = trimRow(rows[0])
	for _, row := range rows[1:] {
		sheet.Append(trimRow(row))
	}
	return sheet, nil
}

// trimRow strips stray whitespace that hand edits leave in cells.
func trimRow(row []string) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = normalize.Clean(v)
	}
	return out
}
