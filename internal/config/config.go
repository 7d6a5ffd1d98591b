// Package config defines service configuration and how it is layered.
//
// Conventions:
//   - New returns a Config populated with defaults.
//   - Load layers an optional YAML file and PROVIDERS_* environment variables on top.
//   - Errors are marked with this package's sentinels so callers can errors.Is them.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetPath locates the provider catalog: a JSON, YAML or TOML file,
	// a SQLite file, a postgres:// DSN or an s3://bucket/key object.
	DatasetPath string `koanf:"dataset_path"`

	// DatasetTable names the table read from SQL catalogs.
	DatasetTable string `koanf:"dataset_table"`

	// S3Region and S3Endpoint configure s3:// catalogs. An empty endpoint
	// uses AWS; set it for MinIO and other compatible stores.
	S3Region   string `koanf:"s3_region"`
	S3Endpoint string `koanf:"s3_endpoint"`

	// MaxResultLimit caps GET /providers?limit. Zero, the default, disables
	// the cap so a query without limit returns every match.
	MaxResultLimit int `koanf:"max_result_limit"`

	// MetricsIntervalMS sets how often catalog and system gauges refresh.
	MetricsIntervalMS int `koanf:"metrics_interval_ms"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		DatasetPath:       "providers.json",
		DatasetTable:      "providers",
		S3Region:          "us-east-1",
		MaxResultLimit:    0,
		MetricsIntervalMS: 5000,
		ShutdownTimeoutMS: 10000,
	}
}

// MetricsInterval returns MetricsIntervalMS as a duration.
func (c *Config) MetricsInterval() time.Duration {
	return time.Duration(c.MetricsIntervalMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr", "must not be empty")
	case c.DatasetPath == "":
		return invalid("dataset_path", "must not be empty")
	case c.DatasetTable == "":
		return invalid("dataset_table", "must not be empty")
	case c.MaxResultLimit < 0:
		return invalid("max_result_limit", "must be >= 0")
	case c.MetricsIntervalMS <= 0:
		return invalid("metrics_interval_ms", "must be > 0")
	case c.ShutdownTimeoutMS <= 0:
		return invalid("shutdown_timeout_ms", "must be > 0")
	}
	return nil
}

func invalid(key, reason string) error {
	err := errors.Newf("%s %s", key, reason)
	err = errors.WithHint(err, "set "+envPrefix+strings.ToUpper(key)+" or the key in the file named by "+envConfigPath)
	return errors.Mark(err, ErrInvalidConfig)
}
