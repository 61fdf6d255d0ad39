// Package config loads runtime settings from environment variables with
// sane development defaults.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config carries everything the commands need.
type Config struct {
	SilverDir   string `mapstructure:"SILVER_DIR"`
	GoldDir     string `mapstructure:"GOLD_DIR"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
}

// Load reads configuration from the environment, optionally seeded from
// a .env file in the working directory.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SILVER_DIR", "data/silver")
	v.SetDefault("GOLD_DIR", "data/gold")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")

	// Bind env vars explicitly so Unmarshal picks them up.
	for _, key := range []string{"SILVER_DIR", "GOLD_DIR", "DATABASE_URL", "PORT", "ENV", "LOG_LEVEL"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}
	v.AutomaticEnv()

	// A missing .env is fine; a malformed one is not.
	if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether the process runs with production
// settings, which switches logging to plain JSON output.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
