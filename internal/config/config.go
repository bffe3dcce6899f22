// Package config loads and validates scanner configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Files   FilesConfig   `mapstructure:"files"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig governs how the remote catalog is addressed and fetched.
type CatalogConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	UserAgent       string  `mapstructure:"user_agent"`
	TimeoutSeconds  float64 `mapstructure:"timeout_seconds"`
	ProbeTimeoutSec float64 `mapstructure:"probe_timeout_seconds"`
	MinBodyBytes    int     `mapstructure:"min_body_bytes"`
	RPS             float64 `mapstructure:"rps"`
	Burst           int     `mapstructure:"burst"`
}

// ScanConfig governs the identifier-space scanner and targeted search.
type ScanConfig struct {
	Workers          int `mapstructure:"workers"`
	BatchSize        int `mapstructure:"batch_size"`
	ProgressInterval int `mapstructure:"progress_interval"`
	ResultTimeoutSec int `mapstructure:"result_timeout_seconds"`
}

// FilesConfig sets the paths of the two persisted stores.
type FilesConfig struct {
	MappingCache string `mapstructure:"mapping_cache"`
	Corpus       string `mapstructure:"corpus"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk and environment. Passing an empty path uses
// defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("NYC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.base_url", "https://www.wienerphilharmoniker.at/en/konzerte/new-years-concert")
	v.SetDefault("catalog.user_agent", "nyc-crawler/0.1 (+github.com/concertarchive/nyc-crawler)")
	v.SetDefault("catalog.timeout_seconds", 3)
	v.SetDefault("catalog.probe_timeout_seconds", 1.5)
	v.SetDefault("catalog.min_body_bytes", 500)
	v.SetDefault("catalog.rps", 0)
	v.SetDefault("catalog.burst", 1)
	v.SetDefault("scan.workers", 50)
	v.SetDefault("scan.batch_size", 500)
	v.SetDefault("scan.progress_interval", 200)
	v.SetDefault("scan.result_timeout_seconds", 10)
	v.SetDefault("files.mapping_cache", "concert_ids.json")
	v.SetDefault("files.corpus", "data.json")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url must be set")
	}
	if c.Catalog.TimeoutSeconds <= 0 {
		return fmt.Errorf("catalog.timeout_seconds must be > 0")
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be > 0")
	}
	if c.Scan.BatchSize <= 0 {
		return fmt.Errorf("scan.batch_size must be > 0")
	}
	if c.Scan.ProgressInterval <= 0 {
		return fmt.Errorf("scan.progress_interval must be > 0")
	}
	return nil
}

// FetchTimeout converts the configured timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Catalog.TimeoutSeconds * float64(time.Second))
}

// ProbeTimeout converts the configured probe timeout into a duration.
func (c Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Catalog.ProbeTimeoutSec * float64(time.Second))
}

// ResultTimeout bounds how long the collector waits on a single pipeline
// past the fetcher's own timeout.
func (c Config) ResultTimeout() time.Duration {
	return time.Duration(c.Scan.ResultTimeoutSec) * time.Second
}
