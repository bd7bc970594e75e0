package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karlo0/bqdc/internal/config"
)

// newTablesCommand creates the tables command.
func newTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tables [dataset]",
		Short:   "List the tables of a dataset",
		Example: `  bqdc tables sales`,
		Args:    cobra.MaximumNArgs(1),
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

			tables, err := toolbox.Tables(ctx, dataset)
			if err != nil {
				return err
			}
			for _, id := range tables {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
	return cmd
}

func init() {
	rootCmd.AddCommand(newTablesCommand())
}
