package cli

import (
	"github.com/spf13/cobra"

	"athena-demo/internal/app"
)

func newRunCmd(o *rootOptions) *cobra.Command {
	var (
		flags   pipelineFlags
		runOpts app.RunOptions
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Upload, register, query, and cross-check the dataset",
		Long: `Run the whole pipeline: upload the local CSV to S3, create the Athena
database and external table, average the price column for the configured
property type, and compare the answer with a local DuckDB computation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.openApp(cmd, &flags)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			report, err := a.Run(cmd.Context(), runOpts)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), getOutputFormat(cmd), a.Cfg.FilterValue, report)
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&runOpts.SkipUpload, "skip-upload", false, "Query the object already in S3")
	cmd.Flags().BoolVar(&runOpts.SkipRegister, "skip-register", false, "Assume the database and table exist")
	cmd.Flags().BoolVar(&runOpts.ReplaceTable, "replace", false, "Drop and recreate the table definition")
	return cmd
}
