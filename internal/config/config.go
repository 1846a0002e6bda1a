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
	Serper    SerperConfig    `yaml:"serper" mapstructure:"serper"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// SerperConfig holds Serper search API settings.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FirecrawlConfig holds Firecrawl API settings.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PipelineConfig configures the lead engine run behavior.
type PipelineConfig struct {
	Markets []string `yaml:"markets" mapstructure:"markets"`
	Limit   int      `yaml:"limit" mapstructure:"limit"`

	// PacingMS is the mandatory minimum delay between consecutive
	// per-candidate provider calls, in milliseconds. A throughput cap to
	// stay under provider request-rate ceilings, not a tuning knob.
	PacingMS int `yaml:"pacing_ms" mapstructure:"pacing_ms"`

	// RateLimitCooldownSecs is the fixed pause after an extraction 429
	// before the single retry of that URL.
	RateLimitCooldownSecs int `yaml:"rate_limit_cooldown_secs" mapstructure:"rate_limit_cooldown_secs"`

	// MinDocLength is the minimum extracted text length considered usable.
	MinDocLength int `yaml:"min_doc_length" mapstructure:"min_doc_length"`

	// Concurrency bounds candidate fan-out per market. 1 means sequential.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`

	// NegativeTerms appends manufacturer-excluding terms to search queries.
	NegativeTerms bool `yaml:"negative_terms" mapstructure:"negative_terms"`

	// KeepIrrelevant keeps rejected judgements in the result set with their
	// business type annotation.
	KeepIrrelevant bool `yaml:"keep_irrelevant" mapstructure:"keep_irrelevant"`

	// RetryMaxAttempts bounds classification retries on throttling.
	RetryMaxAttempts int `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
}

// Pacing returns the inter-call pacing interval.
func (p PipelineConfig) Pacing() time.Duration {
	return time.Duration(p.PacingMS) * time.Millisecond
}

// Cooldown returns the extraction rate-limit cooldown.
func (p PipelineConfig) Cooldown() time.Duration {
	return time.Duration(p.RateLimitCooldownSecs) * time.Second
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
	v.SetEnvPrefix("BAGASSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")
	v.SetDefault("pipeline.markets", []string{"uk"})
	v.SetDefault("pipeline.limit", 10)
	v.SetDefault("pipeline.pacing_ms", 1500)
	v.SetDefault("pipeline.rate_limit_cooldown_secs", 10)
	v.SetDefault("pipeline.min_doc_length", 200)
	v.SetDefault("pipeline.concurrency", 1)
	v.SetDefault("pipeline.retry_max_attempts", 3)

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

// Validate checks that all provider credentials and at least one market are
// present. Failures here are configuration errors: the run never starts and
// no provider is called.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Serper.Key) == "" {
		return eris.New("config: serper api key is required")
	}
	if strings.TrimSpace(c.Firecrawl.Key) == "" {
		return eris.New("config: firecrawl api key is required")
	}
	if strings.TrimSpace(c.Gemini.Key) == "" {
		return eris.New("config: gemini api key is required")
	}
	if len(c.Pipeline.Markets) == 0 {
		return eris.New("config: at least one market is required")
	}
	if c.Pipeline.Limit <= 0 {
		return eris.New("config: limit must be positive")
	}
	return nil
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
