package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/karlo0/bqdc/internal/config"
)

// newSyncCommand creates the sync command.
func newSyncCommand() *cobra.Command {
	var tables []string

	cmd := &cobra.Command{
		Use:   "sync [dataset]",
		Short: "Synchronize metadata between the two stores",
		Long: `Sync downloads the merged metadata of a dataset and uploads it again in
one step, without writing an interchange file. Descriptions present in only
one of BigQuery and Data Catalog end up in both.`,
		Example: `  bqdc sync sales
  bqdc sync sales --table orders --table customers`,
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

			return toolbox.Synchronize(ctx, dataset, tables)
		},
	}

	cmd.Flags().StringSliceVar(&tables, "table", nil, "table ID to synchronize (repeatable, default all)")
	cmd.Flags().Bool("prefer-catalog", false, "let the Data Catalog table description win over BigQuery's")
	cmd.Flags().Bool("delete-stale-tags", false, "delete field tags whose field left the schema")

	// prefer-catalog is the inverse of the stored prefer_canonical setting.
	cmd.PreRun = func(cmd *cobra.Command, _ []string) {
		if prefer, _ := cmd.Flags().GetBool("prefer-catalog"); prefer {
			viper.Set("prefer_canonical", false)
		}
		if del, _ := cmd.Flags().GetBool("delete-stale-tags"); del {
			viper.Set("delete_stale_tags", true)
		}
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(newSyncCommand())
}
