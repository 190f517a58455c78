package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"athena-demo/internal/app"
	"athena-demo/internal/config"
	"athena-demo/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

// AppFactory builds the pipeline for a resolved configuration.
type AppFactory func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app.App, error)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	output     string

	newApp AppFactory
}

// Execute runs the CLI.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd(app.NewFromConfig)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, errorObject(err))
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorObject describes err for JSON output.
func errorObject(err error) map[string]interface{} {
	errObj := map[string]interface{}{
		"error": err.Error(),
	}
	var qErr *domain.QueryFailedError
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &qErr):
		errObj["code"] = "query_failed"
		errObj["execution_id"] = qErr.ExecutionID
		errObj["state"] = qErr.State
		errObj["reason"] = qErr.Reason
	case errors.As(err, &vErr):
		errObj["code"] = "validation"
	case errors.Is(err, context.DeadlineExceeded):
		errObj["code"] = "timeout"
	case errors.Is(err, context.Canceled):
		errObj["code"] = "canceled"
	}
	return errObj
}

func newRootCmd(factory AppFactory) *cobra.Command {
	o := &rootOptions{newApp: factory}

	rootCmd := &cobra.Command{
		Use:           "athena-demo",
		Short:         "Query a CSV dataset with Athena and cross-check it locally",
		Long:          "Uploads a Redfin listings export to S3, registers it as an Athena external table, averages prices by property type, and compares the result with a local DuckDB computation.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return validateOutputFormat(o.output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&o.envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")
	rootCmd.PersistentFlags().StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&o.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newRunCmd(o))
	rootCmd.AddCommand(newUploadCmd(o))
	rootCmd.AddCommand(newRegisterCmd(o))
	rootCmd.AddCommand(newQueryCmd(o))
	rootCmd.AddCommand(newLocalCmd(o))
	rootCmd.AddCommand(newDDLCmd(o))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newLogger builds the process logger. Logs go to w so that stdout carries
// only command output.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
