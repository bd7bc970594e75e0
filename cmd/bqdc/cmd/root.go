package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/karlo0/bqdc/internal/config"
	"github.com/karlo0/bqdc/pkg/logging"
)

var (
	configFile string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bqdc",
	Short: "BigQuery / Data Catalog metadata synchronization",
	Long: `bqdc reconciles table and field descriptions between BigQuery and
Data Catalog. The download command exports the merged metadata of a dataset
to an interchange workbook for bulk editing, upload writes an edited
workbook back to both stores, and sync runs both steps in memory to bring
the stores in line with each other.

Two Data Catalog tag templates are required: one attached to whole tables
(carrying a table_description attribute) and one attached to table fields
(carrying a field_description attribute).`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
	rootCmd.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx = logging.WithLogger(ctx, logging.Default())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.bqdc.yaml)")
	rootCmd.PersistentFlags().String("project", "", "GCP project ID")
	rootCmd.PersistentFlags().String("location", "us-central1", "location of the tag templates")
	rootCmd.PersistentFlags().String("credentials", "", "path to a service account key file")
	rootCmd.PersistentFlags().String("table-template", "", "ID of the tag template attached to tables")
	rootCmd.PersistentFlags().String("field-template", "", "ID of the tag template attached to fields")
	rootCmd.PersistentFlags().String("output-dir", ".", "directory interchange workbooks are written under")

	bindings := map[string]string{
		"project":         "project",
		"location":        "location",
		"credentials":     "credentials",
		"templates.table": "table-template",
		"templates.field": "field-template",
		"output_dir":      "output-dir",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.SetDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bqdc")
	}

	// Load .env files first (before Viper env binding)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logging.Warn().Err(err).Msg("Failed to load .env file")
		}
	}

	viper.SetEnvPrefix("BQDC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if err := viper.ReadInConfig(); err == nil {
		logging.Debug().Str("file", viper.ConfigFileUsed()).Msg("Using config file")
	}
}
