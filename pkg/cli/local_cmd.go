package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"athena-demo/internal/app"
	"athena-demo/internal/engine"
)

func newLocalCmd(o *rootOptions) *cobra.Command {
	var flags pipelineFlags
	cmd := &cobra.Command{
		Use:   "local",
		Short: "Compute the average price from the local CSV only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := o.setup(cmd, &flags)
			if err != nil {
				return err
			}
			local, err := engine.Open()
			if err != nil {
				return err
			}
			defer local.Close() //nolint:errcheck

			frameAvg, sqlAvg, err := app.LocalAverage(cmd.Context(), local, cfg.LocalPath, cfg.FilterValue)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"file":           cfg.LocalPath,
					"filter":         cfg.FilterValue,
					"average":        jsonFloat(frameAvg),
					"duckdb_average": jsonFloat(sqlAvg),
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Average price of %s properties: %s\n", cfg.FilterValue, formatAverage(frameAvg))
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

// jsonFloat maps values JSON cannot carry to null.
func jsonFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
