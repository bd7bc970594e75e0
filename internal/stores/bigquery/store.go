// Package bigquery adapts the BigQuery API to the reconcile.SchemaStore
// interface. BigQuery is the canonical schema store: it owns field name,
// type, and mode plus one freeform description string per table and field.
package bigquery

import (
	"context"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/metadata"
)

const storeName = "bigquery"

// Store implements reconcile.SchemaStore over a BigQuery client.
type Store struct {
	client  *bigquery.Client
	project string
}

// New connects a Store for the given project. With a non-empty
// credentialsFile the client authenticates through that service account
// key; otherwise application default credentials apply.
func New(ctx context.Context, projectID, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.NewConfigError(storeName, "establishing the client failed", err)
	}
	return &Store{client: client, project: projectID}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Table fetches one table's metadata and flattens its top-level schema.
func (s *Store) Table(ctx context.Context, dataset, tableID string) (*metadata.Table, error) {
	md, err := s.client.Dataset(dataset).Table(tableID).Metadata(ctx)
	if err != nil {
		return nil, errors.WrapStore(storeName, "get", dataset+"."+tableID, err)
	}

	table := &metadata.Table{
		ID:          tableID,
		Description: md.Description,
		Fields:      make([]metadata.Field, 0, len(md.Schema)),
	}
	for _, f := range md.Schema {
		table.Fields = append(table.Fields, metadata.Field{
			Name:        f.Name,
			Type:        string(f.Type),
			Mode:        fieldMode(f),
			Description: f.Description,
		})
	}
	return table, nil
}

// UpdateSchema writes the field descriptions of table back through a full
// schema rewrite. The live schema is re-fetched and only descriptions are
// patched onto it, so nested field structure survives the rewrite.
func (s *Store) UpdateSchema(ctx context.Context, dataset string, table *metadata.Table) error {
	ref := s.client.Dataset(dataset).Table(table.ID)
	md, err := ref.Metadata(ctx)
	if err != nil {
		return errors.WrapStore(storeName, "get", dataset+"."+table.ID, err)
	}

	descriptions := make(map[string]string, len(table.Fields))
	for _, f := range table.Fields {
		descriptions[strings.ToLower(f.Name)] = f.Description
	}
	for _, f := range md.Schema {
		if desc, ok := descriptions[strings.ToLower(f.Name)]; ok {
			f.Description = desc
		}
	}

	_, err = ref.Update(ctx, bigquery.TableMetadataToUpdate{Schema: md.Schema}, md.ETag)
	return errors.WrapStore(storeName, "update", dataset+"."+table.ID, err)
}

// UpdateDescription rewrites the table-level description.
func (s *Store) UpdateDescription(ctx context.Context, dataset, tableID, description string) error {
	_, err := s.client.Dataset(dataset).Table(tableID).
		Update(ctx, bigquery.TableMetadataToUpdate{Description: description}, "")
	return errors.WrapStore(storeName, "update", dataset+"."+tableID, err)
}

// ListTables returns the dataset's table IDs in store order.
func (s *Store) ListTables(ctx context.Context, dataset string) ([]string, error) {
	var ids []string
	it := s.client.Dataset(dataset).Tables(ctx)
	for {
		t, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.WrapStore(storeName, "list", dataset, err)
		}
		ids = append(ids, t.TableID)
	}
	return ids, nil
}

// fieldMode renders the schema field's mode the way BigQuery displays it.
func fieldMode(f *bigquery.FieldSchema) string {
	switch {
	case f.Repeated:
		return "REPEATED"
	case f.Required:
		return "REQUIRED"
	default:
		return "NULLABLE"
	}
}
