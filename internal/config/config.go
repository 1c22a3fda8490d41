// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"appeal-engine/internal/content"
	"appeal-engine/internal/feed"
	"appeal-engine/internal/score"
)

// Config holds all application configuration.
type Config struct {
	Content  content.Config `mapstructure:"content"`
	Score    score.Config   `mapstructure:"score"`
	Feedback feed.Config    `mapstructure:"feedback"`
	Database DatabaseConfig `mapstructure:"database"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// ArchiveConfig controls the optional results archive.
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Migrate bool `mapstructure:"migrate"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
	Path string `mapstructure:"path"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in configPath, the working directory and ./config.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. DATABASE_HOST, SCORE_QUOTA_RATIO, LOG_LEVEL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Defaults and env vars are enough to run.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Content defaults
	v.SetDefault("content.root", "./content")
	v.SetDefault("content.locale", "en")
	v.SetDefault("content.concurrency", 8)

	// Score defaults
	sc := score.DefaultConfig()
	v.SetDefault("score.success_score", sc.SuccessScore)
	v.SetDefault("score.quota_ratio", sc.QuotaRatio)
	v.SetDefault("score.streak_start", sc.StreakStart)
	v.SetDefault("score.streak_start_multiplier", sc.StreakStartMultiplier)
	v.SetDefault("score.streak_end", sc.StreakEnd)
	v.SetDefault("score.streak_end_multiplier", sc.StreakEndMultiplier)

	// Feedback defaults
	fc := feed.DefaultConfig()
	v.SetDefault("feedback.points", fc.Points)
	v.SetDefault("feedback.ratio_for_good", fc.RatioForGood)
	v.SetDefault("feedback.per_char", fc.PerChar.String())
	v.SetDefault("feedback.base", fc.Base.String())
	v.SetDefault("feedback.scale", fc.Scale)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "appeal")
	v.SetDefault("database.name", "appeal")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.migrate", true)

	// Metrics defaults
	v.SetDefault("metrics.addr", "")
	v.SetDefault("metrics.path", "/metrics")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)
}
