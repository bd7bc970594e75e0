// Package config loads the bqdc runtime configuration from Viper, which
// merges the config file, environment variables, and CLI flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/karlo0/bqdc/pkg/errors"
	"github.com/karlo0/bqdc/pkg/reconcile"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	// ProjectID is the GCP project holding both stores.
	ProjectID string

	// Location is the region of the tag templates.
	Location string

	// Dataset is the default dataset when none is given on the command.
	Dataset string

	// CredentialsFile is the service account key path; empty means it is
	// resolved from the working directory (see ResolveCredentials) or
	// application default credentials.
	CredentialsFile string

	// TableTemplate and FieldTemplate are the tag template IDs.
	TableTemplate string
	FieldTemplate string

	// TableKeyOrder and FieldKeyOrder pin the leading interchange columns.
	TableKeyOrder []string
	FieldKeyOrder []string

	// PreferCanonical makes the canonical-store description win on
	// download when both stores carry one.
	PreferCanonical bool

	// DeleteStaleTags deletes field tags for removed fields before upload.
	DeleteStaleTags bool

	// DeleteAfterUpload removes the interchange file once uploaded.
	DeleteAfterUpload bool

	// OutputDir is where download writes interchange files.
	OutputDir string

	// Limits overrides the store caps; zero values fall back to defaults.
	Limits reconcile.Limits
}

// Load builds a Config from the global Viper state and validates the
// settings no run can proceed without.
func Load() (*Config, error) {
	cfg := &Config{
		ProjectID:         viper.GetString("project"),
		Location:          viper.GetString("location"),
		Dataset:           viper.GetString("dataset"),
		CredentialsFile:   viper.GetString("credentials"),
		TableTemplate:     viper.GetString("templates.table"),
		FieldTemplate:     viper.GetString("templates.field"),
		TableKeyOrder:     viper.GetStringSlice("key_order.table"),
		FieldKeyOrder:     viper.GetStringSlice("key_order.field"),
		PreferCanonical:   viper.GetBool("prefer_canonical"),
		DeleteStaleTags:   viper.GetBool("delete_stale_tags"),
		DeleteAfterUpload: viper.GetBool("delete_after_upload"),
		OutputDir:         viper.GetString("output_dir"),
		Limits:            loadLimits(),
	}

	if cfg.ProjectID == "" {
		return nil, errors.NewConfigError("project", "a GCP project ID is required", nil)
	}
	if cfg.TableTemplate == "" {
		return nil, errors.NewConfigError("templates.table", "a table tag template ID is required", nil)
	}
	if cfg.FieldTemplate == "" {
		return nil, errors.NewConfigError("templates.field", "a field tag template ID is required", nil)
	}
	return cfg, nil
}

// SetDefaults registers the configuration defaults on Viper. Called once
// by the CLI before binding flags.
func SetDefaults() {
	viper.SetDefault("location", "us-central1")
	viper.SetDefault("prefer_canonical", true)
	viper.SetDefault("delete_stale_tags", false)
	viper.SetDefault("delete_after_upload", true)
	viper.SetDefault("output_dir", ".")
}

// loadLimits reads the limit overrides, falling back to defaults per field.
func loadLimits() reconcile.Limits {
	limits := reconcile.DefaultLimits()
	if v := viper.GetInt("limits.schema_description"); v > 0 {
		limits.MaxSchemaDescription = v
	}
	if v := viper.GetInt("limits.tag_value"); v > 0 {
		limits.MaxTagValue = v
	}
	if v := viper.GetInt("limits.sheet_name"); v > 0 {
		limits.MaxSheetName = v
	}
	if v := viper.GetInt("limits.schema_write_attempts"); v > 0 {
		limits.SchemaWriteAttempts = v
	}
	return limits
}

// ResolveCredentials resolves the service account key file. An explicit
// path is used as given. Otherwise the working directory is searched for
// exactly one .json file: none or more than one is a fatal configuration
// error, since guessing between keys must never happen.
func ResolveCredentials(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.NewConfigError("credentials", "service account key not readable at "+explicit, err)
		}
		return explicit, nil
	}

	matches, err := filepath.Glob("*.json")
	if err != nil {
		return "", errors.NewConfigError("credentials", "searching for a service account key failed", err)
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return "", errors.NewConfigError("credentials",
			"no service account key found in the current folder, set the credentials path explicitly", errors.ErrCredentials)
	default:
		return "", errors.NewConfigError("credentials",
			"more than one .json file in the current folder, set the credentials path explicitly", errors.ErrCredentials)
	}
}
