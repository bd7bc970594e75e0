package reconcile_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/logging"
	"github.com/karlo0/bqdc/pkg/metadata"
	"github.com/karlo0/bqdc/pkg/reconcile"
)

// fakeSchemaStore is an in-memory reconcile.SchemaStore.
type fakeSchemaStore struct {
	tables       map[string]*metadata.Table
	tableOrder   []string
	schemaWrites []*metadata.Table
	descWrites   map[string]string

	failSchemaWrites int
	schemaAttempts   int
}

func newFakeSchemaStore(tables ...*metadata.Table) *fakeSchemaStore {
	s := &fakeSchemaStore{
		tables:     make(map[string]*metadata.Table),
		descWrites: make(map[string]string),
	}
	for _, t := range tables {
		s.tables[t.ID] = t
		s.tableOrder = append(s.tableOrder, t.ID)
	}
	return s
}

func (s *fakeSchemaStore) Table(_ context.Context, _, tableID string) (*metadata.Table, error) {
	t, ok := s.tables[tableID]
	if !ok {
		return nil, errors.NewNotFoundError("table", tableID)
	}
	cp := *t
	cp.Fields = append([]metadata.Field(nil), t.Fields...)
	return &cp, nil
}

func (s *fakeSchemaStore) UpdateSchema(_ context.Context, _ string, table *metadata.Table) error {
	s.schemaAttempts++
	if s.schemaAttempts <= s.failSchemaWrites {
		return errors.NewStoreError("bigquery", "update", table.ID, fmt.Errorf("backend unavailable"))
	}
	cp := *table
	cp.Fields = append([]metadata.Field(nil), table.Fields...)
	s.schemaWrites = append(s.schemaWrites, &cp)
	s.tables[table.ID] = &cp
	return nil
}

func (s *fakeSchemaStore) UpdateDescription(_ context.Context, _, tableID, description string) error {
	s.descWrites[tableID] = description
	return nil
}

func (s *fakeSchemaStore) ListTables(_ context.Context, _ string) ([]string, error) {
	return append([]string(nil), s.tableOrder...), nil
}

// fakeTagStore is an in-memory reconcile.TagStore.
type fakeTagStore struct {
	templates map[string]*metadata.Template
	tags      map[string][]metadata.Tag // entry -> attached tags

	created   []*metadata.Tag
	updated   []*metadata.Tag
	deleted   []string
	createErr error
}

func newFakeTagStore(templates ...*metadata.Template) *fakeTagStore {
	s := &fakeTagStore{
		templates: make(map[string]*metadata.Template),
		tags:      make(map[string][]metadata.Tag),
	}
	for _, tpl := range templates {
		id := tpl.Name[strings.LastIndex(tpl.Name, "/")+1:]
		s.templates[id] = tpl
	}
	return s
}

func (s *fakeTagStore) Template(_ context.Context, templateID string) (*metadata.Template, error) {
	tpl, ok := s.templates[templateID]
	if !ok {
		return nil, errors.NewNotFoundError("tag template", templateID)
	}
	return tpl, nil
}

func (s *fakeTagStore) LookupEntry(_ context.Context, dataset, tableID string) (string, error) {
	return "entries/" + dataset + "/" + tableID, nil
}

func (s *fakeTagStore) ListTags(_ context.Context, entry string) ([]metadata.Tag, error) {
	return append([]metadata.Tag(nil), s.tags[entry]...), nil
}

func (s *fakeTagStore) CreateTag(_ context.Context, entry string, tag *metadata.Tag) error {
	if s.createErr != nil {
		return s.createErr
	}
	tag.Name = entry + "/tags/" + tag.Column
	s.created = append(s.created, tag)
	s.tags[entry] = append(s.tags[entry], *tag)
	return nil
}

func (s *fakeTagStore) UpdateTag(_ context.Context, tag *metadata.Tag) error {
	s.updated = append(s.updated, tag)
	return nil
}

func (s *fakeTagStore) DeleteTag(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

func fieldTemplate() *metadata.Template {
	return &metadata.Template{
		Name: "projects/p/locations/l/tagTemplates/field_meta",
		Keys: []string{"field_description", "field_format", "field_example"},
		Types: map[string]string{
			"field_description": "STRING",
			"field_format":      "STRING",
			"field_example":     "STRING",
		},
	}
}

func ordersTable() *metadata.Table {
	return &metadata.Table{
		ID:          "orders",
		Description: "",
		Fields: []metadata.Field{
			{Name: "x", Type: "STRING", Mode: "NULLABLE"},
			{Name: "y", Type: "INTEGER", Mode: "REQUIRED"},
		},
	}
}

func newTestEngine(t *testing.T, schema *fakeSchemaStore, tags *fakeTagStore, opts ...reconcile.Option) *reconcile.Engine {
	t.Helper()
	e := reconcile.New(schema, tags, opts...)
	require.NoError(t, e.LoadTemplates(context.Background(), "table_meta", "field_meta", nil, nil))
	return e
}

func testContext(t *testing.T) (context.Context, *logging.TestLogger) {
	t.Helper()
	log := logging.NewTestLogger(t)
	return logging.WithLogger(context.Background(), log.Logger), log
}

func TestLoadTemplatesValidatesRequiredKeys(t *testing.T) {
	broken := &metadata.Template{
		Name:  "projects/p/locations/l/tagTemplates/table_meta",
		Keys:  []string{"table_owner"},
		Types: map[string]string{"table_owner": "STRING"},
	}
	tags := newFakeTagStore(broken, fieldTemplate())
	e := reconcile.New(newFakeSchemaStore(), tags)

	err := e.LoadTemplates(context.Background(), "table_meta", "field_meta", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsTemplateInvalid(err))
}

func TestLoadTemplatesMissingTemplateIsFatal(t *testing.T) {
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := reconcile.New(newFakeSchemaStore(), tags)

	err := e.LoadTemplates(context.Background(), "nope", "field_meta", nil, nil)
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestTableContextIndexesTagsByMatchKey(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	entry := "entries/sales/orders"
	tags.tags[entry] = []metadata.Tag{
		{Name: "t1", Template: e.TableTemplate().Name, Column: "", Fields: map[string]string{"table_description": "Orders."}},
		{Name: "t2", Template: e.FieldTemplate().Name, Column: "X", Fields: map[string]string{"field_description": "Foo"}},
	}

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	assert.NotNil(t, tc.TableTag(e.TableTemplate()))
	require.NotNil(t, tc.FieldTag("x"), "field tag is keyed by lower-cased column")
	assert.Equal(t, "Foo", tc.FieldTag("X").Value("field_description"))
}

func TestTableContextDropsStaleFieldTags(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	entry := "entries/sales/orders"
	tags.tags[entry] = []metadata.Tag{
		{Name: "stale", Template: e.FieldTemplate().Name, Column: "removed_field", Fields: map[string]string{"field_description": "Gone"}},
	}

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)
	assert.Nil(t, tc.FieldTag("removed_field"))
	assert.Empty(t, tags.deleted, "default mode only drops from the index")

	tc, err = e.TableContext(ctx, "sales", "orders", true)
	require.NoError(t, err)
	assert.Nil(t, tc.FieldTag("removed_field"))
	assert.Equal(t, []string{"stale"}, tags.deleted, "delete mode removes the tag remotely")
}

func TestTableContextDuplicateMatchKeyLastWins(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	entry := "entries/sales/orders"
	tags.tags[entry] = []metadata.Tag{
		{Name: "first", Template: e.FieldTemplate().Name, Column: "x", Fields: map[string]string{"field_description": "Old"}},
		{Name: "second", Template: e.FieldTemplate().Name, Column: "X", Fields: map[string]string{"field_description": "New"}},
	}

	ctx, log := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	assert.Equal(t, "New", tc.FieldTag("x").Value("field_description"))
	assert.True(t, log.Contains("Duplicate tag match key"))
}

func TestUploadFieldRowsCreatesMissingTag(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "y", Attrs: map[string]string{"field_description": "bar"}},
	})
	require.NoError(t, err)

	require.Len(t, tags.created, 1)
	created := tags.created[0]
	assert.Equal(t, "y", created.Column)
	assert.Equal(t, "Bar.", created.Fields["field_description"], "descriptions are sentence-cleaned")
	assert.Empty(t, tags.updated)
}

func TestUploadFieldRowsUpdatesBeforeCreating(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	entry := "entries/sales/orders"
	tags.tags[entry] = []metadata.Tag{
		{Name: "t", Template: e.FieldTemplate().Name, Column: "x", Fields: map[string]string{"field_description": "Old."}},
	}

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "new text"}},
	})
	require.NoError(t, err)

	assert.Empty(t, tags.created, "an existing tag is never re-created")
	require.Len(t, tags.updated, 1)
	assert.Equal(t, "New text.", tags.updated[0].Fields["field_description"])
}

func TestUploadFieldRowsSkipsNoOpWrites(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	entry := "entries/sales/orders"
	tags.tags[entry] = []metadata.Tag{
		{Name: "t", Template: e.FieldTemplate().Name, Column: "x", Fields: map[string]string{
			"field_description": "Same.",
			"field_format":      "uuid",
		}},
	}

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "same", "field_format": "uuid"}},
	})
	require.NoError(t, err)

	assert.Empty(t, tags.created)
	assert.Empty(t, tags.updated, "identical values issue no update call")
}

func TestUploadFieldRowsEmptyAttributesCreateNothing(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "y", Attrs: map[string]string{"field_description": "", "field_format": "  "}},
	})
	require.NoError(t, err)
	assert.Empty(t, tags.created, "no attribute survived filtering, so no create call")
}

func TestUploadFieldRowsStopsAtEmptyName(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	drift, err := e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "", Attrs: map[string]string{"field_description": "never read"}},
		{Name: "x", Attrs: map[string]string{"field_description": "also never read"}},
	})
	require.NoError(t, err)

	assert.Empty(t, tags.created)
	assert.Equal(t, []string{"x", "y"}, drift.NotInSheet, "rows after the sentinel do not count as sheet fields")
}

func TestUploadFieldRowsReportsDrift(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, log := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	drift, err := e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "ok"}},
		{Name: "ghost", Attrs: map[string]string{"field_description": "ignored"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"ghost"}, drift.NotInSchema)
	assert.Equal(t, []string{"y"}, drift.NotInSheet)
	assert.True(t, log.ContainsAll("ghost", "y"))
	require.Len(t, tags.created, 1, "the unknown field created no tag")
	assert.Equal(t, "x", tags.created[0].Column)
}

func TestUploadFieldRowsStagesSchemaRewrite(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "primary key"}},
		{Name: "y", Attrs: map[string]string{"field_description": "amount"}},
	})
	require.NoError(t, err)

	require.Len(t, schema.schemaWrites, 1, "descriptions are written in one batched rewrite")
	written := schema.schemaWrites[0]
	assert.Equal(t, "Primary key.", written.Fields[0].Description)
	assert.Equal(t, "Amount.", written.Fields[1].Description)
}

func TestUploadFieldRowsTruncatesSchemaDescriptions(t *testing.T) {
	limits := reconcile.DefaultLimits()
	limits.MaxSchemaDescription = 8

	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags, reconcile.WithLimits(limits))

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "a very long description"}},
	})
	require.NoError(t, err)

	require.Len(t, schema.schemaWrites, 1)
	assert.Equal(t, "A very l", schema.schemaWrites[0].Fields[0].Description)
}

func TestSchemaWriteRetries(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	schema.failSchemaWrites = 3
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, log := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "retry me"}},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, schema.schemaAttempts, "three failures then success")
	assert.Len(t, schema.schemaWrites, 1)
	assert.True(t, log.Contains("Schema rewrite failed"))
}

func TestSchemaWriteGivesUpAfterBound(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	schema.failSchemaWrites = 100
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, log := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "doomed"}},
	})
	require.NoError(t, err, "a failed schema rewrite is terminal for the table, not the run")

	assert.Equal(t, reconcile.DefaultLimits().SchemaWriteAttempts, schema.schemaAttempts)
	assert.Empty(t, schema.schemaWrites)
	assert.True(t, log.Contains("Giving up on schema rewrite"))
}

func TestUploadFieldRowsRecoversFromCreateFailure(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	tags.createErr = errors.NewStoreError("datacatalog", "create", "entries/sales/orders", fmt.Errorf("quota"))
	e := newTestEngine(t, schema, tags)

	ctx, log := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	_, err = e.UploadFieldRows(ctx, tc, []reconcile.FieldRow{
		{Name: "x", Attrs: map[string]string{"field_description": "fails"}},
		{Name: "y", Attrs: map[string]string{"field_description": "also fails"}},
	})
	require.NoError(t, err, "per-field create failures are logged and skipped")
	assert.True(t, log.Contains("Failed to write field tag"))

	require.Len(t, schema.schemaWrites, 1, "schema descriptions still go through")
	assert.Equal(t, "Fails.", schema.schemaWrites[0].Fields[0].Description)
}

func TestUploadTableRowRejectsUnknownColumns(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	err = e.UploadTableRow(ctx, tc, map[string]string{"not_a_template_key": "x"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Empty(t, schema.descWrites, "fatal before any remote write")
}

func TestUploadTableRowComposesDescription(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	err = e.UploadTableRow(ctx, tc, map[string]string{
		"table_description": "order facts",
		"table_data_source": "crm",
	})
	require.NoError(t, err)

	require.Len(t, tags.created, 1)
	assert.Equal(t, "", tags.created[0].Column)
	assert.Equal(t, "Order facts.", tags.created[0].Fields["table_description"])
	assert.Equal(t, "crm", tags.created[0].Fields["table_data_source"])

	written := schema.descWrites["orders"]
	assert.True(t, strings.HasPrefix(written, "Order facts.\n\nTable attributes:"))
	assert.Contains(t, written, "Data source:")
	assert.Contains(t, written, "crm")
}

func TestUploadTableRowUpdatesExistingTag(t *testing.T) {
	schema := newFakeSchemaStore(ordersTable())
	tags := newFakeTagStore(tableTemplate(), fieldTemplate())
	e := newTestEngine(t, schema, tags)

	entry := "entries/sales/orders"
	tags.tags[entry] = []metadata.Tag{
		{Name: "t", Template: e.TableTemplate().Name, Column: "", Fields: map[string]string{"table_description": "Old."}},
	}

	ctx, _ := testContext(t)
	tc, err := e.TableContext(ctx, "sales", "orders", false)
	require.NoError(t, err)

	err = e.UploadTableRow(ctx, tc, map[string]string{"table_description": "new facts"})
	require.NoError(t, err)

	assert.Empty(t, tags.created)
	require.Len(t, tags.updated, 1)
	assert.Equal(t, "New facts.", tags.updated[0].Fields["table_description"])
	assert.Equal(t, "New facts.", schema.descWrites["orders"], "no attribute block without extra attributes")
}
