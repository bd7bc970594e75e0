package bqdc

import (
	"context"

	"github.com/karlo0/bqdc/pkg/logging"
)

// Synchronize runs a download straight into an upload without persisting
// an interchange file: metadata present in only one of the two stores ends
// up in both. The in-memory workbook is the same one Download would have
// written, so synchronize and a download-then-upload round trip agree.
func (t *Toolbox) Synchronize(ctx context.Context, dataset string, tables []string) error {
	logging.FromContext(ctx).Info().Str("dataset", dataset).Msg("Synchronizing stores")

	wb, err := t.DownloadWorkbook(ctx, dataset, tables)
	if err != nil {
		return err
	}
	return t.uploadWorkbook(ctx, dataset, tables, wb)
}
