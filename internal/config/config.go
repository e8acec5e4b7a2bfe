// Package config provides configuration management for the forecasting service.
package config

import "time"

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis" validate:"required"`
	Artifacts  ArtifactsConfig  `mapstructure:"artifacts" validate:"required"`
	Providers  ProvidersConfig  `mapstructure:"providers" validate:"required"`
	Training   TrainingConfig   `mapstructure:"training" validate:"required"`
	Simulation SimulationConfig `mapstructure:"simulation" validate:"required"`
	Stream     StreamConfig     `mapstructure:"stream" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// RedisConfig represents the key-value cache configuration
type RedisConfig struct {
	Address  string `mapstructure:"address" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// ArtifactsConfig represents model artifact object storage configuration
type ArtifactsConfig struct {
	Bucket string `mapstructure:"bucket" validate:"required"`
	Region string `mapstructure:"region" validate:"required"`
	Prefix string `mapstructure:"prefix"`
}

// ProvidersConfig represents outbound data-provider configuration
type ProvidersConfig struct {
	GameStateURL   string  `mapstructure:"game_state_url" validate:"required,url"`
	TeamDataURL    string  `mapstructure:"team_data_url" validate:"required,url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	APIKey         string  `mapstructure:"api_key"`
}

// TrainingConfig represents model training configuration
type TrainingConfig struct {
	Schedule      string   `mapstructure:"schedule" validate:"required"`
	Sports        []string `mapstructure:"sports" validate:"required,min=1"`
	MinSamples    int      `mapstructure:"min_samples" validate:"required,gt=0"`
	Seed          int64    `mapstructure:"seed"`
	CrossValFolds int      `mapstructure:"cross_val_folds" validate:"required,gt=1"`
}

// SimulationConfig represents scenario simulation configuration
type SimulationConfig struct {
	Iterations int   `mapstructure:"iterations" validate:"required,gt=0"`
	Seed       int64 `mapstructure:"seed"`
}

// StreamConfig represents live prediction stream configuration
type StreamConfig struct {
	UpdateIntervalSeconds int     `mapstructure:"update_interval_seconds" validate:"required,gt=0"`
	HistoryLimit          int     `mapstructure:"history_limit" validate:"required,gt=0"`
	EdgeThreshold         float64 `mapstructure:"edge_threshold" validate:"gte=0,lte=1"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// Cache TTLs sized to data volatility. Centralized so every cache write
// carries an explicit TTL.
const (
	TTLLiveState      = 30 * time.Second
	TTLBroadcast      = 60 * time.Second
	TTLStandings      = 5 * time.Minute
	TTLRosters        = time.Hour
	TTLStaticMetadata = 24 * time.Hour
	TTLStreamMeta     = 4 * time.Hour
	TTLHistory        = 24 * time.Hour
	TTLStopGrace      = time.Hour
)

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
