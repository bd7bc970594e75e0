// Package bqdc reconciles descriptive metadata between BigQuery and Data
// Catalog. BigQuery owns the canonical field schema and one freeform
// description per table and field; Data Catalog owns richer template-typed
// tags attached to tables and fields. Either side can be edited directly
// and drift apart; bqdc exports their merged state to an interchange
// workbook for bulk editing, uploads edited workbooks back to both stores,
// and synchronizes the stores directly without persisting a file.
package bqdc

import (
	"context"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/reconcile"
)

// Toolbox wires the two store adapters to the reconciliation engine and
// exposes the dataset-level operations: Download, Upload, Synchronize.
type Toolbox struct {
	schema reconcile.SchemaStore
	tags   reconcile.TagStore
	engine *reconcile.Engine
	config *config
}

// New creates a Toolbox with the given options and loads the two tag
// templates. Stores and template IDs are required; a template missing its
// required description key fails here, before any work is attempted.
func New(ctx context.Context, opts ...Option) (*Toolbox, error) {
	t := &Toolbox{config: defaultConfig()}
	for _, opt := range opts {
		if err := opt(t.config); err != nil {
			return nil, err
		}
	}

	if t.config.schema == nil || t.config.tags == nil {
		return nil, errors.NewConfigError("stores", "both a schema store and a tag store are required", nil)
	}
	if t.config.tableTemplate == "" || t.config.fieldTemplate == "" {
		return nil, errors.NewConfigError("templates", "both tag template IDs are required", nil)
	}

	t.schema = t.config.schema
	t.tags = t.config.tags
	t.engine = reconcile.New(t.schema, t.tags, reconcile.WithLimits(t.config.limits))

	if err := t.engine.LoadTemplates(ctx,
		t.config.tableTemplate, t.config.fieldTemplate,
		t.config.tableKeyOrder, t.config.fieldKeyOrder); err != nil {
		return nil, err
	}
	return t, nil
}

// Engine exposes the reconciliation engine, mainly for tests and callers
// that assemble their own interchange structures.
func (t *Toolbox) Engine() *reconcile.Engine {
	return t.engine
}

// Tables lists the table IDs of a dataset in store order.
func (t *Toolbox) Tables(ctx context.Context, dataset string) ([]string, error) {
	if dataset == "" {
		return nil, errors.NewValidationError("dataset", "a dataset ID is required")
	}
	return t.schema.ListTables(ctx, dataset)
}

// resolveTables defaults an empty table selection to every table of the
// dataset.
func (t *Toolbox) resolveTables(ctx context.Context, dataset string, tables []string) ([]string, error) {
	if len(tables) > 0 {
		return tables, nil
	}
	return t.schema.ListTables(ctx, dataset)
}
