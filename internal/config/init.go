package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Staleness and pacing defaults.
const (
	defaultStalenessDays  = 30
	defaultMonthlyLimit   = 25000
	defaultPageSpeedRate  = 0.5 // calls per second
	defaultDiscoveryTries = 3
)

// InitializeViper initializes Viper configuration from environment
// variables and config files. Must be called before Load().
func InitializeViper() error {
	loadEnvFile()
	setupViper()
	setDefaults()
	readConfigFile()

	if err := bindEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to bind environment variables: %w", err)
	}

	setupDevelopmentLogging()
	return nil
}

// loadEnvFile loads .env file (ignores error if file doesn't exist).
func loadEnvFile() {
	_ = godotenv.Load()
}

// setupViper configures Viper for environment variable and config file reading.
func setupViper() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
}

// readConfigFile reads config file (ignores error if file doesn't exist).
func readConfigFile() {
	_ = viper.ReadInConfig()
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("app", map[string]any{
		"name":        "health-checker",
		"environment": "production",
		"debug":       false,
	})

	viper.SetDefault("logger", map[string]any{
		"level":       "info",
		"encoding":    "json",
		"development": false,
	})

	viper.SetDefault("server", map[string]any{
		"address":       ":8080",
		"read_timeout":  "15s",
		"write_timeout": "15s",
		"idle_timeout":  "60s",
	})

	viper.SetDefault("database", map[string]any{
		"host":    "localhost",
		"port":    "5432",
		"user":    "postgres",
		"dbname":  "healthcheck",
		"sslmode": "disable",
	})

	viper.SetDefault("redis", map[string]any{
		"enabled": false,
		"addr":    "localhost:6379",
		"db":      0,
	})

	viper.SetDefault("pagespeed", map[string]any{
		"endpoint":      "https://www.googleapis.com/pagespeedonline/v5/runPagespeed",
		"monthly_limit": defaultMonthlyLimit,
		"timeout":       "45s",
		"rate_per_sec":  defaultPageSpeedRate,
	})

	viper.SetDefault("discovery", map[string]any{
		"max_attempts": defaultDiscoveryTries,
		"base_delay":   "500ms",
		"max_delay":    "10s",
	})

	viper.SetDefault("batch", map[string]any{
		"staleness_days":       defaultStalenessDays,
		"item_delay_min":       "2s",
		"item_delay_max":       "6s",
		"processing_stale_age": "15m",
	})
}

// bindEnvironmentVariables binds environment variables to config keys.
func bindEnvironmentVariables() error {
	bindings := map[string][]string{
		"app.environment":         {"APP_ENV"},
		"app.debug":               {"APP_DEBUG"},
		"logger.level":            {"LOG_LEVEL"},
		"logger.encoding":         {"LOG_FORMAT"},
		"server.address":          {"SERVER_ADDRESS"},
		"database.host":           {"DB_HOST"},
		"database.port":           {"DB_PORT"},
		"database.user":           {"DB_USER"},
		"database.password":       {"DB_PASSWORD"},
		"database.dbname":         {"DB_NAME"},
		"database.sslmode":        {"DB_SSLMODE"},
		"redis.enabled":           {"REDIS_ENABLED"},
		"redis.addr":              {"REDIS_ADDR"},
		"redis.password":          {"REDIS_PASSWORD"},
		"pagespeed.api_key":       {"PAGESPEED_API_KEY"},
		"pagespeed.monthly_limit": {"PAGESPEED_MONTHLY_LIMIT"},
	}

	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := viper.BindEnv(args...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", envs[0], err)
		}
	}
	return nil
}

// setupDevelopmentLogging configures logging settings based on environment
// variables. Debug level (APP_DEBUG) is separate from development
// formatting (APP_ENV) so debug logs can be enabled in production.
func setupDevelopmentLogging() {
	if viper.GetBool("app.debug") {
		viper.Set("logger.level", "debug")
	}

	if viper.GetString("app.environment") == "development" {
		viper.Set("logger.development", true)
		viper.Set("logger.encoding", "console")
	}
}
