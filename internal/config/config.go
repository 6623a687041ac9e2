// Package config loads match_agent settings from a YAML file, MATCH_ environment
// variables and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jonathan/candidate-matcher/internal/watchdog"
)

// EnvPrefix is prepended to every environment override, e.g. MATCH_DATABASE_URL.
const EnvPrefix = "MATCH"

// DefaultConfigName is the config file looked up in the working directory.
const DefaultConfigName = "match_agent"

// Config is the full match_agent configuration.
type Config struct {
	Log      LogConfig       `mapstructure:"log"`
	Database DatabaseConfig  `mapstructure:"database"`
	Redis    RedisConfig     `mapstructure:"redis"`
	Scoring  ScoringConfig   `mapstructure:"scoring"`
	Tenant   string          `mapstructure:"tenant" validate:"required"`
	Mode     string          `mapstructure:"mode" validate:"oneof=pilot production sandbox fire_drill"`
	Timeout  time.Duration   `mapstructure:"timeout" validate:"gt=0"`
	Watchdog watchdog.Config `mapstructure:"watchdog"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// DatabaseConfig holds the PostgreSQL connection URL. Empty disables persistence.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig configures the guardrail cache. Empty Address disables it.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// ScoringConfig tunes pool scoring
type ScoringConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"gte=1,lte=256"`
}

// Enabled reports whether a cache address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// Enabled reports whether a database URL is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

func setDefaults(v *viper.Viper) {
	wd := watchdog.DefaultConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", "5m")
	v.SetDefault("scoring.concurrency", 8)
	v.SetDefault("tenant", "default")
	v.SetDefault("mode", "production")
	v.SetDefault("timeout", "30s")
	v.SetDefault("watchdog.window_size", wd.WindowSize)
	v.SetDefault("watchdog.min_window", wd.MinWindow)
	v.SetDefault("watchdog.failure_rate_threshold", wd.FailureRateThreshold)
	v.SetDefault("watchdog.latency_p95_threshold_ms", wd.LatencyP95ThresholdMs)
	v.SetDefault("watchdog.incomplete_rate_threshold", wd.IncompleteRateThreshold)
	v.SetDefault("watchdog.rate_jitter", wd.RateJitter)
	v.SetDefault("watchdog.latency_jitter_ms", wd.LatencyJitterMs)
	v.SetDefault("watchdog.slowest_runs", wd.SlowestRuns)
}

// Load reads configuration. An explicit path must exist; with an empty path a
// match_agent.yaml in the working directory is used when present. Environment
// variables with the MATCH_ prefix override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// LoadDotEnv loads the first existing file among paths into the environment
// without overriding variables that are already set. It returns the loaded
// path, or "" when none exists.
func LoadDotEnv(paths ...string) (string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("failed to load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}
