package bqdc

import (
	"github.com/karlo0/bqdc/pkg/reconcile"
)

// config holds the assembled Toolbox configuration.
type config struct {
	schema reconcile.SchemaStore
	tags   reconcile.TagStore

	tableTemplate string
	fieldTemplate string
	tableKeyOrder []string
	fieldKeyOrder []string

	limits            reconcile.Limits
	preferCanonical   bool
	deleteStaleTags   bool
	deleteAfterUpload bool
	outputDir         string
}

func defaultConfig() *config {
	return &config{
		limits:            reconcile.DefaultLimits(),
		preferCanonical:   true,
		deleteStaleTags:   false,
		deleteAfterUpload: true,
		outputDir:         ".",
	}
}

// Option is a function that configures a Toolbox.
type Option func(*config) error

// WithStores sets the two store adapters.
func WithStores(schema reconcile.SchemaStore, tags reconcile.TagStore) Option {
	return func(c *config) error {
		c.schema = schema
		c.tags = tags
		return nil
	}
}

// WithTemplates sets the table-level and field-level tag template IDs.
func WithTemplates(tableTemplate, fieldTemplate string) Option {
	return func(c *config) error {
		c.tableTemplate = tableTemplate
		c.fieldTemplate = fieldTemplate
		return nil
	}
}

// WithKeyOrders pins the leading interchange columns for the two
// templates. Keys unknown to a template are dropped; remaining template
// keys follow in their native order.
func WithKeyOrders(tableKeys, fieldKeys []string) Option {
	return func(c *config) error {
		c.tableKeyOrder = tableKeys
		c.fieldKeyOrder = fieldKeys
		return nil
	}
}

// WithLimits overrides the default store limits.
func WithLimits(limits reconcile.Limits) Option {
	return func(c *config) error {
		c.limits = limits
		return nil
	}
}

// WithPreferCanonical configures whether the canonical-store table
// description wins over the tag store's copy on download. Default true.
func WithPreferCanonical(enabled bool) Option {
	return func(c *config) error {
		c.preferCanonical = enabled
		return nil
	}
}

// WithDeleteStaleTags configures whether field tags for fields no longer
// in the canonical schema are deleted from the tag store before upload.
// Default false: stale tags are only dropped from the working index.
func WithDeleteStaleTags(enabled bool) Option {
	return func(c *config) error {
		c.deleteStaleTags = enabled
		return nil
	}
}

// WithDeleteAfterUpload configures whether the interchange file is removed
// after a successful upload. Default true.
func WithDeleteAfterUpload(enabled bool) Option {
	return func(c *config) error {
		c.deleteAfterUpload = enabled
		return nil
	}
}

// WithOutputDir sets the directory downloads are written under. Each
// dataset gets a folder of its own name there. Default is the working
// directory.
func WithOutputDir(dir string) Option {
	return func(c *config) error {
		c.outputDir = dir
		return nil
	}
}
