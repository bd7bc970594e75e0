package reconcile

import (
	"context"

	"github.com/karlo0/bqdc/pkg/metadata"
)

// SchemaStore is the canonical schema store: the system of record for field
// name, type, mode, and the single freeform description per table and field.
// The store does not support partial field update; descriptions are written
// back through a full-schema rewrite.
type SchemaStore interface {
	// Table fetches one table's metadata.
	Table(ctx context.Context, dataset, tableID string) (*metadata.Table, error)

	// UpdateSchema rewrites the table's full field schema, carrying the
	// field descriptions recorded in table.Fields.
	UpdateSchema(ctx context.Context, dataset string, table *metadata.Table) error

	// UpdateDescription rewrites the table-level description only.
	UpdateDescription(ctx context.Context, dataset, tableID, description string) error

	// ListTables returns the table IDs of a dataset in store order.
	ListTables(ctx context.Context, dataset string) ([]string, error)
}

// TagStore is the annotation store holding richer, template-typed key/value
// metadata attached to tables or to fields by name.
type TagStore interface {
	// Template fetches a tag template by ID.
	Template(ctx context.Context, templateID string) (*metadata.Template, error)

	// LookupEntry resolves the store's entry reference for a table.
	LookupEntry(ctx context.Context, dataset, tableID string) (string, error)

	// ListTags returns every tag attached to an entry.
	ListTags(ctx context.Context, entry string) ([]metadata.Tag, error)

	// CreateTag attaches a new tag to an entry.
	CreateTag(ctx context.Context, entry string, tag *metadata.Tag) error

	// UpdateTag rewrites an existing tag in place.
	UpdateTag(ctx context.Context, tag *metadata.Tag) error

	// DeleteTag removes a tag by its store reference.
	DeleteTag(ctx context.Context, name string) error
}
