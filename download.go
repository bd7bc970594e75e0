package bqdc

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/karlo0/bqdc/internal/xlsx"
	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/logging"
	"github.com/karlo0/bqdc/pkg/metadata"
	"github.com/karlo0/bqdc/pkg/normalize"
	"github.com/karlo0/bqdc/pkg/reconcile"
	"github.com/karlo0/bqdc/pkg/sheets"
)

// DownloadWorkbook reads the merged metadata state of the requested tables
// (all tables of the dataset when tables is empty) and assembles it into an
// in-memory interchange workbook. Tables are processed independently, each
// against its own freshly built snapshot and tag index.
func (t *Toolbox) DownloadWorkbook(ctx context.Context, dataset string, tables []string) (*sheets.Workbook, error) {
	if dataset == "" {
		return nil, errors.NewValidationError("dataset", "a dataset ID is required")
	}
	log := logging.FromContext(ctx)

	tables, err := t.resolveTables(ctx, dataset, tables)
	if err != nil {
		return nil, err
	}

	overview := sheets.NewOverviewBuilder(t.engine.TableKeys())
	fieldSheets := make([]sheets.Sheet, 0, len(tables))

	for _, id := range tables {
		log.Info().Str("dataset", dataset).Str("table", id).Msg("Downloading table metadata")

		tc, err := t.engine.TableContext(ctx, dataset, id, false)
		if err != nil {
			return nil, err
		}

		tag := tc.TableTag(t.engine.TableTemplate())
		pure := normalize.CleanSentence(reconcile.StripTableAttributes(tc.Table.Description))

		var alt map[string]string
		if pure != "" && (t.config.preferCanonical || tag == nil) {
			alt = map[string]string{metadata.TableDescriptionKey: pure}
		}
		overview.Append(id, tag, alt)

		fieldSheets = append(fieldSheets,
			sheets.BuildFieldSheet(id, tc, t.engine.FieldKeys(), t.engine.Limits()))
	}

	return &sheets.Workbook{Overview: overview.Sheet(), Tables: fieldSheets}, nil
}

// Download assembles the workbook and writes it to path. When path is
// empty it defaults to <outputDir>/<dataset>/<dataset>.xlsx; a .yaml or
// .yml extension selects the YAML form instead of the spreadsheet.
func (t *Toolbox) Download(ctx context.Context, dataset string, tables []string, path string) error {
	wb, err := t.DownloadWorkbook(ctx, dataset, tables)
	if err != nil {
		return err
	}

	if path == "" {
		path = filepath.Join(t.config.outputDir, dataset, dataset+".xlsx")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}

	logging.FromContext(ctx).Info().Str("path", path).Msg("Writing interchange workbook")
	return t.writeWorkbook(path, wb)
}

// writeWorkbook persists a workbook in the format implied by the path's
// extension.
func (t *Toolbox) writeWorkbook(path string, wb *sheets.Workbook) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Create(path)
		if err != nil {
			return errors.WrapIO("create", path, err)
		}
		defer f.Close()
		return sheets.EncodeYAML(f, wb)
	default:
		return xlsx.Write(path, wb, t.engine.Limits().MaxSheetName)
	}
}

// readWorkbook loads a workbook in the format implied by the path's
// extension.
func (t *Toolbox) readWorkbook(path string) (*sheets.Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.WrapIO("open", path, err)
		}
		defer f.Close()
		return sheets.DecodeYAML(f)
	default:
		return xlsx.Read(path)
	}
}
