package config_test

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/okian/providex/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatasetPath, convey.ShouldEqual, "providers.json")
			convey.So(cfg.DatasetTable, convey.ShouldEqual, "providers")
			convey.So(cfg.S3Region, convey.ShouldEqual, "us-east-1")
			convey.So(cfg.S3Endpoint, convey.ShouldBeEmpty)
			convey.So(cfg.MaxResultLimit, convey.ShouldEqual, 0)
			convey.So(cfg.MetricsInterval(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.ShutdownTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		key    string
	}{
		{"empty addr", func(c *config.Config) { c.Addr = "" }, "addr"},
		{"empty dataset", func(c *config.Config) { c.DatasetPath = "" }, "dataset_path"},
		{"empty table", func(c *config.Config) { c.DatasetTable = "" }, "dataset_table"},
		{"negative limit", func(c *config.Config) { c.MaxResultLimit = -1 }, "max_result_limit"},
		{"zero interval", func(c *config.Config) { c.MetricsIntervalMS = 0 }, "metrics_interval_ms"},
		{"zero shutdown", func(c *config.Config) { c.ShutdownTimeoutMS = 0 }, "shutdown_timeout_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if got := err.Error(); len(got) < len(tt.key) || got[:len(tt.key)] != tt.key {
				t.Fatalf("error %q does not name %q", got, tt.key)
			}
		})
	}

	t.Run("zero limit disables the cap", func(t *testing.T) {
		cfg := config.New()
		cfg.MaxResultLimit = 0
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
