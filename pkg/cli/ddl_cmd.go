package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"athena-demo/internal/ddl"
	"athena-demo/internal/domain"
)

func newDDLCmd(o *rootOptions) *cobra.Command {
	var flags pipelineFlags
	cmd := &cobra.Command{
		Use:   "ddl",
		Short: "Print the statements the pipeline would run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := o.setup(cmd, &flags)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			createDB, err := ddl.CreateDatabase(cfg.DatabaseName)
			if err != nil {
				return domain.ErrValidation("create database: %v", err)
			}
			createTable, err := ddl.CreateExternalTable(ddl.RedfinTable(cfg.DatabaseName, cfg.TableName, cfg.ObjectLocation().Prefix()))
			if err != nil {
				return domain.ErrValidation("create table: %v", err)
			}
			avg, err := ddl.AverageWhere(cfg.TableName, ddl.RemotePriceColumn, ddl.RemotePropertyTypeColumn, cfg.FilterValue)
			if err != nil {
				return domain.ErrValidation("build query: %v", err)
			}

			stmts := []string{createDB, createTable, avg}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string][]string{"statements": stmts})
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(stmts, ";\n\n")+";")
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
