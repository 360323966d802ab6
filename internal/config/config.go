// Package config loads application configuration from file and environment.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
	Dataset DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Crawl   CrawlConfig   `yaml:"crawl" mapstructure:"crawl"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// CatalogConfig configures access to the Meteoritical Bulletin endpoint.
type CatalogConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	PageSize    int    `yaml:"page_size" mapstructure:"page_size"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DelayMillis int    `yaml:"delay_millis" mapstructure:"delay_millis"`
}

// Timeout returns the per-request timeout.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// Delay returns the inter-page politeness delay.
func (c CatalogConfig) Delay() time.Duration {
	return time.Duration(c.DelayMillis) * time.Millisecond
}

// DatasetConfig configures the local dataset files and the session log.
type DatasetConfig struct {
	Input      string `yaml:"input" mapstructure:"input"`
	Output     string `yaml:"output" mapstructure:"output"`
	SessionLog string `yaml:"session_log" mapstructure:"session_log"`
}

// CrawlConfig parameterizes one reconciliation session. The same pipeline
// serves shallow rescans and deep history scans; only these values differ.
type CrawlConfig struct {
	StartPage       int `yaml:"start_page" mapstructure:"start_page"`
	MaxPages        int `yaml:"max_pages" mapstructure:"max_pages"`
	YearFloor       int `yaml:"year_floor" mapstructure:"year_floor"`
	CheckpointEvery int `yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("METEOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("catalog.base_url", "https://www.lpi.usra.edu/meteor/metbull.php")
	v.SetDefault("catalog.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("catalog.page_size", 500)
	v.SetDefault("catalog.timeout_secs", 45)
	v.SetDefault("catalog.delay_millis", 1000)
	v.SetDefault("dataset.input", "Meteorite_Landings_Ready.csv")
	v.SetDefault("dataset.output", "Meteorite_Landings_Final.csv")
	v.SetDefault("dataset.session_log", "meteor_sessions.db")
	v.SetDefault("crawl.start_page", 0)
	v.SetDefault("crawl.max_pages", 101)
	v.SetDefault("crawl.year_floor", 2012)
	v.SetDefault("crawl.checkpoint_every", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
