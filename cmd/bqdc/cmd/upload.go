package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/karlo0/bqdc/internal/config"
)

// newUploadCommand creates the upload command.
func newUploadCommand() *cobra.Command {
	var (
		tables []string
		file   string
	)

	cmd := &cobra.Command{
		Use:   "upload [dataset]",
		Short: "Write an edited interchange workbook back to both stores",
		Long: `Upload reads an interchange workbook (for example one produced by a
previous download and edited since) and reconciles BigQuery and Data Catalog
with its contents: tags are updated in place or created, field descriptions
are rewritten through a batched schema update, and fields that drifted
between the workbook and the live schema are reported.

The workbook file is removed after a successful upload unless --keep-file
is given.`,
		Example: `  bqdc upload sales
  bqdc upload sales --table orders --keep-file
  bqdc upload sales --file sales.yaml --delete-stale-tags`,
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

			return toolbox.Upload(ctx, dataset, tables, file)
		},
	}

	cmd.Flags().StringSliceVar(&tables, "table", nil, "table ID to upload (repeatable, default all in the workbook)")
	cmd.Flags().StringVar(&file, "file", "", "input path (default <output-dir>/<dataset>/<dataset>.xlsx)")
	cmd.Flags().Bool("keep-file", false, "keep the workbook file after upload")
	cmd.Flags().Bool("delete-stale-tags", false, "delete field tags whose field left the schema")

	// keep-file is the inverse of the stored delete_after_upload setting.
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if keep, _ := cmd.Flags().GetBool("keep-file"); keep {
			viper.Set("delete_after_upload", false)
		}
		if del, _ := cmd.Flags().GetBool("delete-stale-tags"); del {
			viper.Set("delete_stale_tags", true)
		}
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(newUploadCommand())
}
