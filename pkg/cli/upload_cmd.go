package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"athena-demo/internal/storage"
)

func newUploadCmd(o *rootOptions) *cobra.Command {
	var flags pipelineFlags
	cmd := &cobra.Command{
		Use:   "upload [s3://bucket/key]",
		Short: "Upload the local CSV to S3",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				loc, err := storage.ParseS3Path(args[0])
				if err != nil {
					return err
				}
				_ = cmd.Flags().Set("bucket", loc.Bucket)
				_ = cmd.Flags().Set("key", loc.Key)
			}

			a, err := o.openApp(cmd, &flags)
			if err != nil {
				return err
			}
			defer a.Close() //nolint:errcheck

			target := a.Cfg.ObjectLocation()
			if err := a.Services.Uploader.Upload(cmd.Context(), a.Cfg.LocalPath, target); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"source": a.Cfg.LocalPath,
					"target": target.URI(),
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s to %s\n", a.Cfg.LocalPath, target.URI())
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}
