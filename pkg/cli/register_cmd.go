package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegisterCmd(o *rootOptions) *cobra.Command {
	var (
		flags   pipelineFlags
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create the Athena database and external table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.openApp(cmd, &flags)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			if err := a.Register(cmd.Context(), replace); err != nil {
				return err
			}
			location := a.Cfg.ObjectLocation().Prefix()
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"database": a.Cfg.DatabaseName,
					"table":    a.Cfg.TableName,
					"location": location,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s.%s at %s\n", a.Cfg.DatabaseName, a.Cfg.TableName, location)
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&replace, "replace", false, "Drop and recreate the table definition")
	return cmd
}
