// Package config loads runtime settings from an optional .env file, an
// optional config file and OPTVAL_* environment variables, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "OPTVAL"

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Pricing PricingConfig `mapstructure:"pricing"`
}

type LogConfig struct {
	// debug, info, warn or error
	Level string `mapstructure:"level"`
	// json or console
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type BatchConfig struct {
	// Workers is the pool size; zero means one per logical CPU.
	Workers  int  `mapstructure:"workers"`
	Progress bool `mapstructure:"progress"`
}

type CacheConfig struct {
	// RedisURL enables the result cache when set.
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// PricingConfig carries defaults applied to requests that leave them unset.
type PricingConfig struct {
	TimeSteps  int    `mapstructure:"time_steps"`
	PriceSteps int    `mapstructure:"price_steps"`
	Draws      int    `mapstructure:"draws"`
	Seed       uint64 `mapstructure:"seed"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.request_timeout", 55*time.Second)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)

	v.SetDefault("batch.workers", 0)
	v.SetDefault("batch.progress", true)

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("pricing.time_steps", 100)
	v.SetDefault("pricing.price_steps", 100)
	v.SetDefault("pricing.draws", 10000)
	v.SetDefault("pricing.seed", 1)
}

// Load reads settings. configPath may be empty; a missing .env file is not an
// error.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log.format %q is not json or console", c.Log.Format)
	}
	if c.HTTP.Addr == "" {
		return errors.New("http.addr is required")
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be non-negative, got %d", c.Batch.Workers)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must be non-negative, got %s", c.Cache.TTL)
	}
	if c.Pricing.TimeSteps <= 0 || c.Pricing.PriceSteps <= 0 {
		return fmt.Errorf("pricing steps must be positive, got %d/%d", c.Pricing.TimeSteps, c.Pricing.PriceSteps)
	}
	if c.Pricing.Draws <= 0 {
		return fmt.Errorf("pricing.draws must be positive, got %d", c.Pricing.Draws)
	}
	return nil
}
