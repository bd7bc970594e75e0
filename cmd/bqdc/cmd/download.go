package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/karlo0/bqdc/internal/config"
)

// newDownloadCommand creates the download command.
func newDownloadCommand() *cobra.Command {
	var (
		tables []string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "download [dataset]",
		Short: "Export merged metadata to an interchange workbook",
		Long: `Download reads every requested table of a dataset from BigQuery and
Data Catalog, merges the two description columns, and writes the result to
an interchange workbook: the metadata_of_tables overview sheet plus one
field sheet per table.`,
		Example: `  bqdc download sales                       # all tables of the dataset
  bqdc download sales --table orders        # a single table
  bqdc download sales --file sales.yaml     # YAML instead of a spreadsheet`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dataset, err := datasetArg(args, cfg)
			if err != nil {
				return err
			}

			toolbox, cleanup, err := newToolbox(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return toolbox.Download(ctx, dataset, tables, file)
		},
	}

	cmd.Flags().StringSliceVar(&tables, "table", nil, "table ID to download (repeatable, default all)")
	cmd.Flags().StringVar(&file, "file", "", "output path (default <output-dir>/<dataset>/<dataset>.xlsx)")
	cmd.Flags().Bool("prefer-catalog", false, "let the Data Catalog table description win over BigQuery's")

	// prefer-catalog is the inverse of the stored prefer_canonical setting.
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if prefer, _ := cmd.Flags().GetBool("prefer-catalog"); prefer {
			viper.Set("prefer_canonical", false)
		}
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(newDownloadCommand())
}
