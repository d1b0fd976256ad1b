// Package config provides configuration management for the health checker
// service. Values come from an optional config.yaml plus environment
// variables, with env taking precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Debug       bool   `yaml:"debug"`
}

// LoggerConfig holds logger settings.
type LoggerConfig struct {
	Level       string `yaml:"level"`
	Encoding    string `yaml:"encoding"`
	Development bool   `yaml:"development"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// RedisConfig holds Redis connection settings for the run lock.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ProviderConfig holds settings for one external provider.
type ProviderConfig struct {
	APIKey       string        `yaml:"api_key"`
	Endpoint     string        `yaml:"endpoint"`
	MonthlyLimit int           `yaml:"monthly_limit"`
	Timeout      time.Duration `yaml:"timeout"`
	RatePerSec   float64       `yaml:"rate_per_sec"`
}

// DiscoverySourceConfig holds settings for one discovery source.
// Endpoint variants are tried in order before the source is retried.
type DiscoverySourceConfig struct {
	Name      string   `yaml:"name"`
	Endpoints []string `yaml:"endpoints"`
}

// DiscoveryConfig holds discovery orchestrator settings. Source order
// is priority order.
type DiscoveryConfig struct {
	Sources     []DiscoverySourceConfig `yaml:"sources"`
	MaxAttempts int                     `yaml:"max_attempts"`
	BaseDelay   time.Duration           `yaml:"base_delay"`
	MaxDelay    time.Duration           `yaml:"max_delay"`
}

// BatchConfig holds batch processor tuning knobs.
type BatchConfig struct {
	StalenessDays      int           `yaml:"staleness_days"`
	ItemDelayMin       time.Duration `yaml:"item_delay_min"`
	ItemDelayMax       time.Duration `yaml:"item_delay_max"`
	ProcessingStaleAge time.Duration `yaml:"processing_stale_age"`
}

// Config represents the application configuration.
type Config struct {
	App       *AppConfig       `yaml:"app"`
	Logger    *LoggerConfig    `yaml:"logger"`
	Server    *ServerConfig    `yaml:"server"`
	Database  *DatabaseConfig  `yaml:"database"`
	Redis     *RedisConfig     `yaml:"redis"`
	PageSpeed *ProviderConfig  `yaml:"pagespeed"`
	Discovery *DiscoveryConfig `yaml:"discovery"`
	Batch     *BatchConfig     `yaml:"batch"`
}

// Load builds the configuration from viper state. InitializeViper must
// have been called first.
func Load() (*Config, error) {
	cfg := &Config{
		App: &AppConfig{
			Name:        viper.GetString("app.name"),
			Environment: viper.GetString("app.environment"),
			Debug:       viper.GetBool("app.debug"),
		},
		Logger: &LoggerConfig{
			Level:       viper.GetString("logger.level"),
			Encoding:    viper.GetString("logger.encoding"),
			Development: viper.GetBool("logger.development"),
		},
		Server: &ServerConfig{
			Address:      viper.GetString("server.address"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
			IdleTimeout:  viper.GetDuration("server.idle_timeout"),
		},
		Database: &DatabaseConfig{
			Host:     viper.GetString("database.host"),
			Port:     viper.GetString("database.port"),
			User:     viper.GetString("database.user"),
			Password: viper.GetString("database.password"),
			DBName:   viper.GetString("database.dbname"),
			SSLMode:  viper.GetString("database.sslmode"),
		},
		Redis: &RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		PageSpeed: &ProviderConfig{
			APIKey:       viper.GetString("pagespeed.api_key"),
			Endpoint:     viper.GetString("pagespeed.endpoint"),
			MonthlyLimit: viper.GetInt("pagespeed.monthly_limit"),
			Timeout:      viper.GetDuration("pagespeed.timeout"),
			RatePerSec:   viper.GetFloat64("pagespeed.rate_per_sec"),
		},
		Batch: &BatchConfig{
			StalenessDays:      viper.GetInt("batch.staleness_days"),
			ItemDelayMin:       viper.GetDuration("batch.item_delay_min"),
			ItemDelayMax:       viper.GetDuration("batch.item_delay_max"),
			ProcessingStaleAge: viper.GetDuration("batch.processing_stale_age"),
		},
	}

	discovery := &DiscoveryConfig{
		MaxAttempts: viper.GetInt("discovery.max_attempts"),
		BaseDelay:   viper.GetDuration("discovery.base_delay"),
		MaxDelay:    viper.GetDuration("discovery.max_delay"),
	}
	if err := viper.UnmarshalKey("discovery.sources", &discovery.Sources); err != nil {
		return nil, fmt.Errorf("failed to parse discovery sources: %w", err)
	}
	cfg.Discovery = discovery

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for required values.
func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Batch.StalenessDays <= 0 {
		return fmt.Errorf("batch staleness_days must be positive, got %d", c.Batch.StalenessDays)
	}
	if c.PageSpeed.MonthlyLimit <= 0 {
		return fmt.Errorf("pagespeed monthly_limit must be positive, got %d", c.PageSpeed.MonthlyLimit)
	}
	return nil
}
