package cmd

import (
	"context"

	"github.com/karlo0/bqdc"
	"github.com/karlo0/bqdc/internal/config"
	bqstore "github.com/karlo0/bqdc/internal/stores/bigquery"
	dcstore "github.com/karlo0/bqdc/internal/stores/datacatalog"
	"github.com/karlo0/bqdc/pkg/errors"
)

// newToolbox builds the store adapters and the Toolbox from the resolved
// configuration. The returned cleanup closes both store clients.
func newToolbox(ctx context.Context, cfg *config.Config) (*bqdc.Toolbox, func(), error) {
	creds, err := config.ResolveCredentials(cfg.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}

	schema, err := bqstore.New(ctx, cfg.ProjectID, creds)
	if err != nil {
		return nil, nil, err
	}
	tags, err := dcstore.New(ctx, cfg.ProjectID, cfg.Location, creds)
	if err != nil {
		schema.Close()
		return nil, nil, err
	}
	cleanup := func() {
		schema.Close()
		tags.Close()
	}

	toolbox, err := bqdc.New(ctx,
		bqdc.WithStores(schema, tags),
		bqdc.WithTemplates(cfg.TableTemplate, cfg.FieldTemplate),
		bqdc.WithKeyOrders(cfg.TableKeyOrder, cfg.FieldKeyOrder),
		bqdc.WithLimits(cfg.Limits),
		bqdc.WithPreferCanonical(cfg.PreferCanonical),
		bqdc.WithDeleteStaleTags(cfg.DeleteStaleTags),
		bqdc.WithDeleteAfterUpload(cfg.DeleteAfterUpload),
		bqdc.WithOutputDir(cfg.OutputDir),
	)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return toolbox, cleanup, nil
}

// datasetArg resolves the dataset from the positional argument or the
// configured default.
func datasetArg(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Dataset != "" {
		return cfg.Dataset, nil
	}
	return "", errors.NewValidationError("dataset", "a dataset ID is required, pass it as an argument or configure a default")
}
