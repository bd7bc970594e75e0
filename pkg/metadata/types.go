// Package metadata defines the in-memory model shared by the reconciliation
// engine, the interchange builders, and the store adapters: canonical schema
// fields and tables, tag templates, and tags.
package metadata

import (
	"github.com/karlo0/bqdc/pkg/errors"
)

// Template attribute keys that must exist before any reconciliation runs.
const (
	// TableDescriptionKey is the required key of the table-level template.
	TableDescriptionKey = "table_description"

	// FieldDescriptionKey is the required key of the field-level template.
	FieldDescriptionKey = "field_description"
)

// Field is one column of a canonical table schema. Identity is the Name,
// matched case-insensitively but displayed with its original casing.
type Field struct {
	Name        string
	Type        string
	Mode        string
	Description string
}

// Table is a canonical-store table: its identifier, the single freeform
// description the store owns, and the ordered field schema.
type Table struct {
	ID          string
	Description string
	Fields      []Field
}

// Template describes the legal attribute key set for tags. Keys preserves
// the store-native iteration order so resolved column orderings are stable;
// Types maps each key to its store type descriptor.
type Template struct {
	// Name is the full resource name of the template in the tag store.
	Name string

	// Keys holds the template's key set in store-native order.
	Keys []string

	// Types maps key to the store's type descriptor for that key.
	Types map[string]string
}

// Has reports whether key is part of the template's key set.
func (t *Template) Has(key string) bool {
	_, ok := t.Types[key]
	return ok
}

// Require returns a TemplateError when the template is missing key.
// Both templates are validated up front so a misconfigured template is a
// fatal configuration error rather than a silent no-op during upload.
func (t *Template) Require(key string) error {
	if !t.Has(key) {
		return errors.NewTemplateError(t.Name, key)
	}
	return nil
}

// Tag is one attribute annotation in the tag store, attached either to the
// whole table (empty Column) or to a single field by lower-cased name.
type Tag struct {
	// Name is the tag's resource name in the store; empty for tags that
	// have not been created yet.
	Name string

	// Template is the resource name of the template the tag instantiates.
	Template string

	// Column is the match key: "" for the table-level tag, otherwise the
	// field name as recorded by the store.
	Column string

	// Fields maps attribute key to its string value.
	Fields map[string]string
}

// Value returns the tag's value for key, or "" when absent.
func (t *Tag) Value(key string) string {
	if t.Fields == nil {
		return ""
	}
	return t.Fields[key]
}
