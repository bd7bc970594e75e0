package bqdc

import (
	"context"
	"os"
	"path/filepath"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/logging"
	"github.com/karlo0/bqdc/pkg/reconcile"
	"github.com/karlo0/bqdc/pkg/sheets"
)

// Upload reads an interchange workbook from path (default
// <outputDir>/<dataset>/<dataset>.xlsx) and reconciles both stores with its
// contents. A missing file or a requested table absent from the overview
// sheet is fatal before any remote write occurs. After a successful upload
// the file is removed when the Toolbox is configured to do so.
func (t *Toolbox) Upload(ctx context.Context, dataset string, tables []string, path string) error {
	if dataset == "" {
		return errors.NewValidationError("dataset", "a dataset ID is required")
	}
	if path == "" {
		path = filepath.Join(t.config.outputDir, dataset, dataset+".xlsx")
	}

	wb, err := t.readWorkbook(path)
	if err != nil {
		return err
	}
	if err := t.uploadWorkbook(ctx, dataset, tables, wb); err != nil {
		return err
	}

	if t.config.deleteAfterUpload {
		if err := os.Remove(path); err != nil {
			return errors.WrapIO("delete", path, err)
		}
		logging.FromContext(ctx).Info().Str("path", path).Msg("Removed uploaded interchange workbook")
	}
	return nil
}

// uploadWorkbook reconciles both stores with an in-memory workbook. Tables
// are taken in overview order; an explicit table selection is validated
// against the overview index up front.
func (t *Toolbox) uploadWorkbook(ctx context.Context, dataset string, tables []string, wb *sheets.Workbook) error {
	log := logging.FromContext(ctx)

	index := wb.Overview.Index()
	position := make(map[string]int, len(index))
	for i, id := range index {
		position[id] = i
	}

	requested := make(map[string]bool, len(tables))
	for _, id := range tables {
		if _, ok := position[id]; !ok {
			return errors.NewNotFoundError("table in interchange workbook", id)
		}
		requested[id] = true
	}

	for i, id := range index {
		if len(requested) > 0 && !requested[id] {
			continue
		}
		log.Info().Str("dataset", dataset).Str("table", id).Msg("Uploading table metadata")

		tc, err := t.engine.TableContext(ctx, dataset, id, t.config.deleteStaleTags)
		if err != nil {
			return err
		}

		_, attrs := wb.OverviewRow(i)
		if err := t.engine.UploadTableRow(ctx, tc, attrs); err != nil {
			return err
		}

		sheet, err := wb.TableSheet(i)
		if err != nil {
			return err
		}
		if _, err := t.engine.UploadFieldRows(ctx, tc, fieldRows(sheet)); err != nil {
			return err
		}
	}
	return nil
}

// fieldRows converts a field sheet into the engine's row form.
func fieldRows(sheet *sheets.Sheet) []reconcile.FieldRow {
	rows := make([]reconcile.FieldRow, 0, len(sheet.Rows))
	for i := range sheet.Rows {
		name, attrs := sheet.RowMap(i)
		rows = append(rows, reconcile.FieldRow{Name: name, Attrs: attrs})
	}
	return rows
}
