// Package reconcile implements the metadata reconciliation core: deciding,
// per table and per field, whether a tag should be updated in place, newly
// created, or left untouched, merging the two stores' description strings,
// and reporting drift between the canonical schema and the interchange
// sheets.
package reconcile

import (
	"context"
	"strings"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/logging"
	"github.com/karlo0/bqdc/pkg/metadata"
	"github.com/karlo0/bqdc/pkg/normalize"
)

// Engine orchestrates per-table reconciliation against the two stores.
// All per-table state lives in a TableContext value threaded through the
// calls, so distinct tables may be reconciled concurrently against the same
// Engine.
type Engine struct {
	schema SchemaStore
	tags   TagStore
	limits Limits

	tableTemplate *metadata.Template
	fieldTemplate *metadata.Template
	tableKeys     []string
	fieldKeys     []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the default store limits.
func WithLimits(limits Limits) Option {
	return func(e *Engine) {
		e.limits = limits
	}
}

// New creates an Engine over the two store adapters.
func New(schema SchemaStore, tags TagStore, opts ...Option) *Engine {
	e := &Engine{
		schema: schema,
		tags:   tags,
		limits: DefaultLimits(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LoadTemplates fetches and validates the two tag templates and resolves
// the interchange column orderings. The table template must carry the
// table_description key and the field template the field_description key;
// a template missing its key is a fatal configuration error.
func (e *Engine) LoadTemplates(ctx context.Context, tableTemplateID, fieldTemplateID string, tableKeyOrder, fieldKeyOrder []string) error {
	tableTpl, err := e.tags.Template(ctx, tableTemplateID)
	if err != nil {
		return errors.NewConfigError("table tag template", "referencing the template used for table tags failed", err)
	}
	fieldTpl, err := e.tags.Template(ctx, fieldTemplateID)
	if err != nil {
		return errors.NewConfigError("field tag template", "referencing the template used for field tags failed", err)
	}
	if err := tableTpl.Require(metadata.TableDescriptionKey); err != nil {
		return err
	}
	if err := fieldTpl.Require(metadata.FieldDescriptionKey); err != nil {
		return err
	}

	e.tableTemplate = tableTpl
	e.fieldTemplate = fieldTpl
	e.tableKeys = tableTpl.KeyOrder(tableKeyOrder)
	e.fieldKeys = fieldTpl.KeyOrder(fieldKeyOrder)
	return nil
}

// Limits returns the engine's configured store limits.
func (e *Engine) Limits() Limits {
	return e.limits
}

// TableTemplate returns the table-level tag template.
func (e *Engine) TableTemplate() *metadata.Template {
	return e.tableTemplate
}

// FieldTemplate returns the field-level tag template.
func (e *Engine) FieldTemplate() *metadata.Template {
	return e.fieldTemplate
}

// TableKeys returns the resolved column ordering of the table template.
func (e *Engine) TableKeys() []string {
	return e.tableKeys
}

// FieldKeys returns the resolved column ordering of the field template.
func (e *Engine) FieldKeys() []string {
	return e.fieldKeys
}

// TableContext is the explicit per-table state for one reconciliation pass:
// the canonical table, its tag-store entry reference, the schema snapshot,
// and the tag index keyed by match key ("" for the table-level tag,
// lower-cased field name otherwise).
type TableContext struct {
	Dataset  string
	ID       string
	Entry    string
	Table    *metadata.Table
	Snapshot *metadata.Snapshot
	Tags     map[string]*metadata.Tag
}

// TableTag returns the table-level tag, when one exists and instantiates
// the table template.
func (tc *TableContext) TableTag(tpl *metadata.Template) *metadata.Tag {
	tag := tc.Tags[""]
	if tag == nil || tag.Template != tpl.Name {
		return nil
	}
	return tag
}

// FieldTag returns the tag attached to the named field, matched
// case-insensitively.
func (tc *TableContext) FieldTag(name string) *metadata.Tag {
	return tc.Tags[strings.ToLower(name)]
}

// TableContext reads the full current state of one table from both stores
// and builds the snapshot and tag index. With deleteStale set, field-level
// tags whose field no longer exists in the canonical schema are deleted
// from the tag store; otherwise they are dropped from the index only.
// Stale tags for removed fields never make it into the index either way.
func (e *Engine) TableContext(ctx context.Context, dataset, tableID string, deleteStale bool) (*TableContext, error) {
	table, err := e.schema.Table(ctx, dataset, tableID)
	if err != nil {
		return nil, err
	}
	entry, err := e.tags.LookupEntry(ctx, dataset, tableID)
	if err != nil {
		return nil, err
	}
	tags, err := e.tags.ListTags(ctx, entry)
	if err != nil {
		return nil, err
	}

	tc := &TableContext{
		Dataset:  dataset,
		ID:       tableID,
		Entry:    entry,
		Table:    table,
		Snapshot: metadata.NewSnapshot(table),
	}
	tc.Tags, err = e.indexTags(ctx, tc, tags, deleteStale)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

// indexTags builds the match-key index from the raw tag listing. A second
// tag observed under the same match key replaces the first and is flagged
// with a warning, since the store is assumed to hold at most one.
func (e *Engine) indexTags(ctx context.Context, tc *TableContext, tags []metadata.Tag, deleteStale bool) (map[string]*metadata.Tag, error) {
	log := logging.FromContext(ctx)
	index := make(map[string]*metadata.Tag, len(tags))

	for i := range tags {
		tag := &tags[i]
		key := tag.Column
		if tag.Template == e.fieldTemplate.Name {
			key = strings.ToLower(tag.Column)
			if !tc.Snapshot.Contains(key) {
				if deleteStale {
					if err := e.tags.DeleteTag(ctx, tag.Name); err != nil {
						return nil, err
					}
					log.Info().
						Str("table", tc.ID).
						Str("field", key).
						Msg("Deleted stale field tag")
				}
				continue
			}
		}
		if _, dup := index[key]; dup {
			log.Warn().
				Str("table", tc.ID).
				Str("match_key", key).
				Msg("Duplicate tag match key, keeping the last one observed")
		}
		index[key] = tag
	}
	return index, nil
}

// FieldRow is one row of an uploaded interchange field sheet: the field
// name (the sheet's row index) and the remaining columns keyed by header.
type FieldRow struct {
	Name  string
	Attrs map[string]string
}

// UploadFieldRows reconciles the field rows of one table's sheet against
// the tag store and the canonical schema. Per row it normalizes the
// candidate attributes, updates or creates the field tag, and stages the
// field description on the snapshot. All staged descriptions are then
// persisted in a single batched schema rewrite, retried up to the
// configured attempt bound; a table whose schema rewrite ultimately fails
// is logged, not raised, so remaining tables still proceed.
//
// Rows whose name does not resolve in the canonical schema are skipped
// silently here and surface in the returned drift report instead.
func (e *Engine) UploadFieldRows(ctx context.Context, tc *TableContext, rows []FieldRow) (*Drift, error) {
	log := logging.FromContext(ctx)

	sheetNames := make([]string, 0, len(rows))
	for _, row := range rows {
		// Interchange rows are contiguous from the top; an empty name
		// marks the end of the sheet.
		if row.Name == "" {
			break
		}
		sheetNames = append(sheetNames, row.Name)

		if !tc.Snapshot.Contains(row.Name) {
			continue
		}

		attrs := make(map[string]string, len(row.Attrs))
		for key, value := range row.Attrs {
			if key == metadata.FieldDescriptionKey {
				attrs[key] = normalize.CleanSentence(value)
			} else {
				attrs[key] = normalize.Clean(value)
			}
		}

		matchKey := strings.ToLower(row.Name)
		if err := e.upsertTag(ctx, tc, e.fieldTemplate, matchKey, attrs); err != nil {
			// Per-field tag write failures are recovered locally:
			// log, skip the field, keep going.
			log.Error().
				Err(err).
				Str("table", tc.ID).
				Str("field", matchKey).
				Msg("Failed to write field tag")
		}

		if desc, ok := attrs[metadata.FieldDescriptionKey]; ok {
			tc.Snapshot.SetDescription(row.Name, normalize.Truncate(desc, e.limits.MaxSchemaDescription))
		}
	}

	drift := CheckDrift(sheetNames, tc.Snapshot.Names())
	drift.Log(log, tc.ID)

	e.writeSchema(ctx, tc)
	return drift, nil
}

// UploadTableRow reconciles the table-level overview row: the table tag is
// updated or created, and the composed canonical description (the cleaned
// primary description plus the rendered attribute block) is written back.
// Row columns outside the table template's key set are a fatal input error.
func (e *Engine) UploadTableRow(ctx context.Context, tc *TableContext, attrs map[string]string) error {
	for key := range attrs {
		if !e.tableTemplate.Has(key) {
			return errors.NewValidationError(key,
				"column is not an attribute of the table tag template "+e.tableTemplate.Name)
		}
	}

	cleaned := make(map[string]string, len(attrs))
	for key, value := range attrs {
		if key == metadata.TableDescriptionKey {
			cleaned[key] = normalize.CleanSentence(value)
		} else {
			cleaned[key] = normalize.Clean(value)
		}
	}

	if err := e.upsertTag(ctx, tc, e.tableTemplate, "", cleaned); err != nil {
		return err
	}

	description := normalize.Truncate(cleaned[metadata.TableDescriptionKey], e.limits.MaxSchemaDescription)
	description = RenderTableAttributes(description, cleaned, e.tableTemplate)
	return e.schema.UpdateDescription(ctx, tc.Dataset, tc.ID, description)
}

// upsertTag is the update-or-create decision. An existing tag at the match
// key is compared attribute by attribute — only non-empty candidates that
// are legal template keys count — and written back only when at least one
// value differs. Without an existing tag, a new one is created carrying all
// surviving candidates; when none survive, no create call is issued.
func (e *Engine) upsertTag(ctx context.Context, tc *TableContext, tpl *metadata.Template, matchKey string, attrs map[string]string) error {
	candidates := make(map[string]string, len(attrs))
	for _, key := range tpl.Keys {
		value := attrs[key]
		if value == "" {
			continue
		}
		candidates[key] = normalize.Truncate(value, e.limits.MaxTagValue)
	}

	if existing := tc.Tags[matchKey]; existing != nil && existing.Template == tpl.Name {
		changed := false
		for _, key := range tpl.Keys {
			value, ok := candidates[key]
			if !ok {
				continue
			}
			if existing.Value(key) != value {
				if existing.Fields == nil {
					existing.Fields = make(map[string]string)
				}
				existing.Fields[key] = value
				changed = true
			}
		}
		if !changed {
			return nil
		}
		return e.tags.UpdateTag(ctx, existing)
	}

	if len(candidates) == 0 {
		return nil
	}
	tag := &metadata.Tag{
		Template: tpl.Name,
		Column:   matchKey,
		Fields:   candidates,
	}
	if err := e.tags.CreateTag(ctx, tc.Entry, tag); err != nil {
		return err
	}
	tc.Tags[matchKey] = tag
	return nil
}

// writeSchema persists the snapshot's staged field descriptions through a
// full schema rewrite, bounded by Limits.SchemaWriteAttempts. The final
// failure is logged as terminal for this table only.
func (e *Engine) writeSchema(ctx context.Context, tc *TableContext) {
	log := logging.FromContext(ctx)
	tc.Table.Fields = tc.Snapshot.Fields()

	var err error
	for attempt := 1; attempt <= e.limits.SchemaWriteAttempts; attempt++ {
		err = e.schema.UpdateSchema(ctx, tc.Dataset, tc.Table)
		if err == nil {
			return
		}
		log.Warn().
			Err(err).
			Str("table", tc.ID).
			Int("attempt", attempt).
			Msg("Schema rewrite failed")
	}
	log.Error().
		Err(err).
		Str("table", tc.ID).
		Int("attempts", e.limits.SchemaWriteAttempts).
		Msg("Giving up on schema rewrite for this table")
}
