// Package config provides application configuration management using Viper.
// It supports loading from environment variables, config files, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Restaurant RestaurantConfig
	Paths      PathsConfig
	Overrides  OverridesConfig
	Telephony  TelephonyConfig
	Admin      AdminConfig
	App        AppConfig
	Log        LogConfig
	RateLimit  RateLimitConfig
}

// RedisConfig holds connection settings for the runtime key-value store
// (internal/kv) backing overrides, in-flight call state, and the order index.
type RedisConfig struct {
	URL string
}

// RestaurantConfig holds identity and scheduling settings for the restaurant
// the assistant answers calls for.
type RestaurantConfig struct {
	Name     string
	Timezone string
}

// PathsConfig holds filesystem paths to the static configuration documents
// loaded at startup: the menu catalogue, delivery rules, prompt templates,
// and customer directory.
type PathsConfig struct {
	MenuPath           string
	DeliveryConfigPath string
	PromptsPath        string
	CustomerCSVPath    string
}

// OverridesConfig holds settings for the runtime override store (closures,
// special hours, and other operator-set toggles).
type OverridesConfig struct {
	TTLMinutes int
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string
	Port        int
	Environment string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host                  string
	Port                  int
	User                  string
	Password              string
	Name                  string
	SSLMode               string
	MaxConnections        int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

// ConnectionString returns a PostgreSQL connection string.
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelephonyConfig holds the settings the Webhook Adapter needs to talk to
// the telephony provider and the external TTS endpoint, per spec.md §4.9.
type TelephonyConfig struct {
	CallerID       string
	FallbackNumber string
	TTSBaseURL     string
	PublicBaseURL  string
	RecordCalls    bool
}

// AdminConfig holds the Basic-Auth credentials protecting the operator API
// (POST /admin/toggles and /admin/log-level), per spec.md §6.
type AdminConfig struct {
	BasicAuthUser     string
	BasicAuthPassword string
}

// AppConfig holds general application settings.
type AppConfig struct {
	PublicURL string
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// Load reads configuration from environment variables and config files.
// Environment variables take precedence over config file values.
func Load() (*Config, error) {
	v := viper.New()

	// Set config file options
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/sara")

	// Enable environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	setDefaults(v)

	// Try to read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configNotFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFoundErr) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Build config struct
	cfg := &Config{
		Server: ServerConfig{
			Host:        v.GetString("server.host"),
			Port:        v.GetInt("server.port"),
			Environment: v.GetString("server.env"),
		},
		Database: DatabaseConfig{
			Host:                  v.GetString("database.host"),
			Port:                  v.GetInt("database.port"),
			User:                  v.GetString("database.user"),
			Password:              v.GetString("database.password"),
			Name:                  v.GetString("database.name"),
			SSLMode:               v.GetString("database.sslmode"),
			MaxConnections:        v.GetInt("database.max_connections"),
			MaxIdleConnections:    v.GetInt("database.max_idle_connections"),
			ConnectionMaxLifetime: v.GetDuration("database.connection_max_lifetime"),
		},
		Redis: RedisConfig{
			URL: v.GetString("redis.url"),
		},
		Restaurant: RestaurantConfig{
			Name:     v.GetString("restaurant.name"),
			Timezone: v.GetString("restaurant.timezone"),
		},
		Paths: PathsConfig{
			MenuPath:           v.GetString("paths.menu"),
			DeliveryConfigPath: v.GetString("paths.delivery_config"),
			PromptsPath:        v.GetString("paths.prompts"),
			CustomerCSVPath:    v.GetString("paths.customer_csv"),
		},
		Overrides: OverridesConfig{
			TTLMinutes: v.GetInt("overrides.ttl_minutes"),
		},
		Telephony: TelephonyConfig{
			CallerID:       v.GetString("telephony.caller_id"),
			FallbackNumber: v.GetString("telephony.fallback_number"),
			TTSBaseURL:     v.GetString("telephony.tts_base_url"),
			PublicBaseURL:  v.GetString("telephony.public_base_url"),
			RecordCalls:    v.GetBool("telephony.record_calls"),
		},
		Admin: AdminConfig{
			BasicAuthUser:     v.GetString("admin.basic_auth_user"),
			BasicAuthPassword: v.GetString("admin.basic_auth_password"),
		},
		App: AppConfig{
			PublicURL: v.GetString("app.public_url"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults configures default values for all settings.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "sara")
	v.SetDefault("database.name", "sara")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.max_idle_connections", 5)
	v.SetDefault("database.connection_max_lifetime", "5m")

	// Redis defaults (runtime key-value store: overrides, call state, order index)
	v.SetDefault("redis.url", "redis://localhost:6379/0")

	// Restaurant identity and scheduling defaults
	v.SetDefault("restaurant.name", "Ristorante Adam Spanbroek")
	v.SetDefault("restaurant.timezone", "Europe/Amsterdam")

	// Static configuration document paths
	v.SetDefault("paths.menu", "./config/menu.json")
	v.SetDefault("paths.delivery_config", "./config/delivery.json")
	v.SetDefault("paths.prompts", "./config/prompts.json")
	v.SetDefault("paths.customer_csv", "./config/customers.csv")

	// Runtime override store defaults
	v.SetDefault("overrides.ttl_minutes", 1440)

	// Telephony defaults
	v.SetDefault("telephony.record_calls", true)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Rate limit defaults
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")
}

// Validate checks that all required configuration values are present.
func (c *Config) Validate() error {
	var missing []string

	if c.Database.Password == "" {
		missing = append(missing, "DATABASE_PASSWORD")
	}
	if c.App.PublicURL == "" {
		missing = append(missing, "APP_PUBLIC_URL")
	}
	if c.Paths.MenuPath == "" {
		missing = append(missing, "PATHS_MENU")
	}
	if c.Paths.DeliveryConfigPath == "" {
		missing = append(missing, "PATHS_DELIVERY_CONFIG")
	}
	if c.Admin.BasicAuthUser == "" || c.Admin.BasicAuthPassword == "" {
		missing = append(missing, "ADMIN_BASIC_AUTH_USER / ADMIN_BASIC_AUTH_PASSWORD")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
