package cli

import (
	"github.com/spf13/cobra"

	"athena-demo/internal/ddl"
	"athena-demo/internal/domain"
)

// queryOutput is the JSON shape of a query command result.
type queryOutput struct {
	ExecutionID string            `json:"execution_id"`
	State       domain.QueryState `json:"state"`
	Reason      string            `json:"reason,omitempty"`
	Result      *domain.Table     `json:"result,omitempty"`
}

func newQueryCmd(o *rootOptions) *cobra.Command {
	var flags pipelineFlags
	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Run a statement in Athena and print its result",
		Long: `Run a statement against the configured database and print the formatted
result. Without an argument the price average for the configured property
type is run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.openApp(cmd, &flags)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			sqlQuery := ""
			if len(args) == 1 {
				sqlQuery = args[0]
			} else {
				sqlQuery, err = ddl.AverageWhere(a.Cfg.TableName, ddl.RemotePriceColumn, ddl.RemotePropertyTypeColumn, a.Cfg.FilterValue)
				if err != nil {
					return domain.ErrValidation("build query: %v", err)
				}
			}

			exec, err := a.Services.Runner.Execute(cmd.Context(), sqlQuery, a.Cfg.DatabaseName)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), queryOutput{
					ExecutionID: exec.Status.ID,
					State:       exec.Status.State,
					Reason:      exec.Status.Reason,
					Result:      exec.Table,
				})
			}
			printTable(cmd.OutOrStdout(), exec.Table)
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
