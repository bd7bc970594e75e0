// Package datacatalog adapts the Data Catalog API to the
// reconcile.TagStore interface. Data Catalog is the annotation store: it
// holds template-typed key/value tags attached to tables or to individual
// fields by column name.
package datacatalog

import (
	"context"
	"fmt"
	"sort"

	datacatalog "cloud.google.com/go/datacatalog/apiv1beta1"
	"cloud.google.com/go/datacatalog/apiv1beta1/datacatalogpb"
	"golang.org/x/time/rate"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/metadata"
)

const storeName = "datacatalog"

// writesPerSecond keeps tag writes inside the Data Catalog mutation quota.
const writesPerSecond = 10

// Store implements reconcile.TagStore over a Data Catalog client.
type Store struct {
	client   *datacatalog.Client
	project  string
	location string
	limiter  *rate.Limiter
}

// New connects a Store for the given project and tag location. With a
// non-empty credentialsFile the client authenticates through that service
// account key; otherwise application default credentials apply.
func New(ctx context.Context, projectID, location, credentialsFile string) (*Store, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := datacatalog.NewClient(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError(storeName, "establishing the client failed", err)
	}
	return &Store{
		client:   client,
		project:  projectID,
		location: location,
		limiter:  rate.NewLimiter(rate.Limit(writesPerSecond), 1),
	}, nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Template fetches a tag template by ID. Proto template fields carry no
// iteration order, so the key set is sorted to give the template a stable
// native order.
func (s *Store) Template(ctx context.Context, templateID string) (*metadata.Template, error) {
	name := fmt.Sprintf("projects/%s/locations/%s/tagTemplates/%s", s.project, s.location, templateID)
	tpl, err := s.client.GetTagTemplate(ctx, &datacatalogpb.GetTagTemplateRequest{Name: name})
	if err != nil {
		return nil, errors.WrapStore(storeName, "get", name, err)
	}

	out := &metadata.Template{
		Name:  tpl.GetName(),
		Keys:  make([]string, 0, len(tpl.GetFields())),
		Types: make(map[string]string, len(tpl.GetFields())),
	}
	for key, field := range tpl.GetFields() {
		out.Keys = append(out.Keys, key)
		out.Types[key] = field.GetType().String()
	}
	sort.Strings(out.Keys)
	return out, nil
}

// LookupEntry resolves the catalog entry of a BigQuery table through its
// linked resource name.
func (s *Store) LookupEntry(ctx context.Context, dataset, tableID string) (string, error) {
	linked := fmt.Sprintf("//bigquery.googleapis.com/projects/%s/datasets/%s/tables/%s",
		s.project, dataset, tableID)
	entry, err := s.client.LookupEntry(ctx, &datacatalogpb.LookupEntryRequest{
		TargetName: &datacatalogpb.LookupEntryRequest_LinkedResource{
			LinkedResource: linked,
		},
	})
	if err != nil {
		return "", errors.WrapStore(storeName, "lookup", linked, err)
	}
	return entry.GetName(), nil
}

// ListTags returns every tag attached to an entry.
func (s *Store) ListTags(ctx context.Context, entry string) ([]metadata.Tag, error) {
	var tags []metadata.Tag
	it := s.client.ListTags(ctx, &datacatalogpb.ListTagsRequest{Parent: entry})
	for {
		tag, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.WrapStore(storeName, "list", entry, err)
		}

		fields := make(map[string]string, len(tag.GetFields()))
		for key, field := range tag.GetFields() {
			fields[key] = field.GetStringValue()
		}
		tags = append(tags, metadata.Tag{
			Name:     tag.GetName(),
			Template: tag.GetTemplate(),
			Column:   tag.GetColumn(),
			Fields:   fields,
		})
	}
	return tags, nil
}

// CreateTag attaches a new tag to an entry.
func (s *Store) CreateTag(ctx context.Context, entry string, tag *metadata.Tag) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	created, err := s.client.CreateTag(ctx, &datacatalogpb.CreateTagRequest{
		Parent: entry,
		Tag:    toProto(tag),
	})
	if err != nil {
		return errors.WrapStore(storeName, "create", entry, err)
	}
	tag.Name = created.GetName()
	return nil
}

// UpdateTag rewrites an existing tag in place.
func (s *Store) UpdateTag(ctx context.Context, tag *metadata.Tag) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.client.UpdateTag(ctx, &datacatalogpb.UpdateTagRequest{Tag: toProto(tag)})
	return errors.WrapStore(storeName, "update", tag.Name, err)
}

// DeleteTag removes a tag by resource name.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	err := s.client.DeleteTag(ctx, &datacatalogpb.DeleteTagRequest{Name: name})
	return errors.WrapStore(storeName, "delete", name, err)
}

func toProto(tag *metadata.Tag) *datacatalogpb.Tag {
	fields := make(map[string]*datacatalogpb.TagField, len(tag.Fields))
	for key, value := range tag.Fields {
		fields[key] = &datacatalogpb.TagField{
			Kind: &datacatalogpb.TagField_StringValue{StringValue: value},
		}
	}
	out := &datacatalogpb.Tag{
		Name:     tag.Name,
		Template: tag.Template,
		Fields:   fields,
	}
	if tag.Column != "" {
		out.Scope = &datacatalogpb.Tag_Column{Column: tag.Column}
	}
	return out
}
