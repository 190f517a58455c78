// Package config handles pipeline configuration from files, environment, and .env.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"athena-demo/internal/ddl"
	"athena-demo/internal/domain"
)

// Defaults mirror the Redfin export the pipeline was built around.
const (
	DefaultObjectKey    = "redfin/redfin_2023-04-20-18-17-37.csv"
	DefaultLocalPath    = "redfin_2023-04-20-18-17-37.csv"
	DefaultDatabaseName = "redfin"
	DefaultTableName    = "redfin_house_data"
	DefaultPollInterval = 5 * time.Second
	DefaultQueryTimeout = 10 * time.Minute
	DefaultFilterValue  = "Single Family Residential"
	DefaultTolerance    = 1e-6
)

// Config holds everything the pipeline needs. It is passed explicitly into
// each component; nothing reads global state after loading.
type Config struct {
	Bucket         string        `yaml:"bucket"`
	ObjectKey      string        `yaml:"object_key"`
	LocalPath      string        `yaml:"local_path"`
	DatabaseName   string        `yaml:"database_name"`
	TableName      string        `yaml:"table_name"`
	OutputLocation string        `yaml:"output_location"` // default s3://<bucket>/athena-results/
	WorkGroup      string        `yaml:"work_group"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	QueryTimeout   time.Duration `yaml:"query_timeout"` // 0 disables the deadline

	// AWS connection. Credentials come from the default chain unless
	// KEY_ID and SECRET are both set in the environment.
	Region   string  `yaml:"region"`
	Endpoint string  `yaml:"endpoint"`
	KeyID    *string `yaml:"-"`
	Secret   *string `yaml:"-"`

	FilterValue            string  `yaml:"filter_value"`
	Tolerance              float64 `yaml:"tolerance"`
	ContinueOnQueryFailure bool    `yaml:"continue_on_query_failure"`

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error (default "info")
	LogFormat string `yaml:"log_format"` // text (default) or json

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		ObjectKey:    DefaultObjectKey,
		LocalPath:    DefaultLocalPath,
		DatabaseName: DefaultDatabaseName,
		TableName:    DefaultTableName,
		PollInterval: DefaultPollInterval,
		QueryTimeout: DefaultQueryTimeout,
		FilterValue:  DefaultFilterValue,
		Tolerance:    DefaultTolerance,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load builds a Config from defaults, an optional YAML file, and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()
	cfg.Finalize()
	return cfg, nil
}

// LoadFile overlays the YAML document at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto c. Unparseable numeric
// values are ignored and recorded in Warnings.
func (c *Config) ApplyEnv() {
	setString(&c.Bucket, "BUCKET")
	setString(&c.ObjectKey, "OBJECT_KEY")
	setString(&c.LocalPath, "LOCAL_PATH")
	setString(&c.DatabaseName, "DATABASE_NAME")
	setString(&c.TableName, "TABLE_NAME")
	setString(&c.OutputLocation, "OUTPUT_LOCATION")
	setString(&c.WorkGroup, "WORK_GROUP")
	setString(&c.Region, "REGION")
	setString(&c.Endpoint, "ENDPOINT")
	setString(&c.FilterValue, "FILTER_VALUE")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")

	if v := os.Getenv("KEY_ID"); v != "" {
		c.KeyID = &v
	}
	if v := os.Getenv("SECRET"); v != "" {
		c.Secret = &v
	}

	c.setDuration(&c.PollInterval, "POLL_INTERVAL")
	c.setDuration(&c.QueryTimeout, "QUERY_TIMEOUT")

	if v := os.Getenv("TOLERANCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Tolerance = f
		} else {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring TOLERANCE=%q: %v", v, err))
		}
	}
	c.ContinueOnQueryFailure = parseBoolEnvDefault("CONTINUE_ON_QUERY_FAILURE", c.ContinueOnQueryFailure)
}

// Finalize fills derived defaults and records warnings.
func (c *Config) Finalize() {
	if c.OutputLocation == "" && c.Bucket != "" {
		c.OutputLocation = fmt.Sprintf("s3://%s/athena-results/", c.Bucket)
	}
	if c.OutputLocation != "" && !strings.HasSuffix(c.OutputLocation, "/") {
		c.OutputLocation += "/"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.QueryTimeout == 0 {
		c.Warnings = append(c.Warnings, "QUERY_TIMEOUT is 0 - a stuck query blocks until interrupted")
	}
	if c.ContinueOnQueryFailure {
		c.Warnings = append(c.Warnings, "CONTINUE_ON_QUERY_FAILURE is set - failed queries will not stop the pipeline")
	}
	if (c.KeyID == nil) != (c.Secret == nil) {
		c.Warnings = append(c.Warnings, "only one of KEY_ID and SECRET is set - falling back to the default credential chain")
	}
}

// Validate checks that the configuration is complete and internally consistent.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return domain.ErrValidation("bucket is required (set BUCKET or bucket:)")
	}
	if strings.TrimSpace(strings.Trim(c.ObjectKey, "/")) == "" {
		return domain.ErrValidation("object_key is required")
	}
	if err := ddl.ValidateIdentifier(c.DatabaseName); err != nil {
		return domain.ErrValidation("invalid database_name %q: %v", c.DatabaseName, err)
	}
	if err := ddl.ValidateIdentifier(c.TableName); err != nil {
		return domain.ErrValidation("invalid table_name %q: %v", c.TableName, err)
	}
	if err := ddl.ValidateS3Location(c.OutputLocation); err != nil {
		return domain.ErrValidation("invalid output_location: %v", err)
	}
	if c.PollInterval <= 0 {
		return domain.ErrValidation("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.QueryTimeout < 0 {
		return domain.ErrValidation("query_timeout must not be negative, got %s", c.QueryTimeout)
	}
	if c.Tolerance < 0 {
		return domain.ErrValidation("tolerance must not be negative, got %g", c.Tolerance)
	}
	return nil
}

// ObjectLocation returns the upload target.
func (c *Config) ObjectLocation() domain.ObjectLocation {
	return domain.ObjectLocation{Bucket: c.Bucket, Key: strings.TrimPrefix(c.ObjectKey, "/")}
}

// HasStaticCredentials returns true if both KEY_ID and SECRET are set.
func (c *Config) HasStaticCredentials() bool {
	return c.KeyID != nil && c.Secret != nil
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c *Config) setDuration(dst *time.Duration, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Bare numbers are seconds.
		secs, nerr := strconv.ParseFloat(v, 64)
		if nerr != nil {
			c.Warnings = append(c.Warnings, fmt.Sprintf("ignoring %s=%q: %v", key, v, err))
			return
		}
		d = time.Duration(secs * float64(time.Second))
	}
	*dst = d
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		value = stripQuotes(strings.TrimSpace(value))
		// Env vars take precedence over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
