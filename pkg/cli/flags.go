package cli

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"athena-demo/internal/app"
	"athena-demo/internal/config"
)

// pipelineFlags override configuration values for a single invocation.
// Only flags the user actually set are applied.
type pipelineFlags struct {
	localPath         string
	bucket            string
	objectKey         string
	database          string
	table             string
	outputLocation    string
	workGroup         string
	region            string
	endpoint          string
	filter            string
	pollInterval      time.Duration
	timeout           time.Duration
	continueOnFailure bool
}

func (f *pipelineFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.localPath, "file", "f", "", "Local CSV file")
	fs.StringVar(&f.bucket, "bucket", "", "Target S3 bucket")
	fs.StringVar(&f.objectKey, "key", "", "Target S3 object key")
	fs.StringVar(&f.database, "database", "", "Athena database name")
	fs.StringVar(&f.table, "table", "", "Athena table name")
	fs.StringVar(&f.outputLocation, "output-location", "", "S3 prefix for query results")
	fs.StringVar(&f.workGroup, "work-group", "", "Athena work group")
	fs.StringVar(&f.region, "region", "", "AWS region")
	fs.StringVar(&f.endpoint, "endpoint", "", "Custom S3/Athena endpoint URL")
	fs.StringVar(&f.filter, "filter", "", "Property type to average over")
	fs.DurationVar(&f.pollInterval, "poll-interval", 0, "Delay between status checks")
	fs.DurationVar(&f.timeout, "timeout", 0, "Maximum time to wait for a query (0 waits until interrupted)")
	fs.BoolVar(&f.continueOnFailure, "continue-on-failure", false, "Retrieve results even when the query fails")
}

func (f *pipelineFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	strs := map[string]struct {
		dst *string
		val string
	}{
		"file":            {&cfg.LocalPath, f.localPath},
		"bucket":          {&cfg.Bucket, f.bucket},
		"key":             {&cfg.ObjectKey, f.objectKey},
		"database":        {&cfg.DatabaseName, f.database},
		"table":           {&cfg.TableName, f.table},
		"output-location": {&cfg.OutputLocation, f.outputLocation},
		"work-group":      {&cfg.WorkGroup, f.workGroup},
		"region":          {&cfg.Region, f.region},
		"endpoint":        {&cfg.Endpoint, f.endpoint},
		"filter":          {&cfg.FilterValue, f.filter},
	}
	for name, s := range strs {
		if fs.Changed(name) {
			*s.dst = s.val
		}
	}
	if fs.Changed("poll-interval") {
		cfg.PollInterval = f.pollInterval
	}
	if fs.Changed("timeout") {
		cfg.QueryTimeout = f.timeout
	}
	if fs.Changed("continue-on-failure") {
		cfg.ContinueOnQueryFailure = f.continueOnFailure
	}
}

// loadConfig resolves configuration: defaults, then the YAML file, then
// .env and the environment, then flags.
func (o *rootOptions) loadConfig(cmd *cobra.Command, f *pipelineFlags) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		if err := cfg.LoadFile(o.configPath); err != nil {
			return nil, err
		}
	}
	if o.envFile != "" {
		if err := config.LoadDotEnv(o.envFile); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	if f != nil {
		f.apply(cmd.Flags(), cfg)
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	cfg.Finalize()
	return cfg, nil
}

// setup resolves configuration and builds the logger, reporting any
// configuration warnings.
func (o *rootOptions) setup(cmd *cobra.Command, f *pipelineFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := o.loadConfig(cmd, f)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}
	return cfg, logger, nil
}

// openApp resolves configuration and builds the pipeline. Callers must
// Close the returned App.
func (o *rootOptions) openApp(cmd *cobra.Command, f *pipelineFlags) (*app.App, error) {
	cfg, logger, err := o.setup(cmd, f)
	if err != nil {
		return nil, err
	}
	return o.newApp(cmd.Context(), cfg, logger)
}
