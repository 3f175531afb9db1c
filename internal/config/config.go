package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Gateway    GatewayConfig
	Storefront StorefrontConfig
	Settings   SettingsConfig
	S3         S3Config
	SMTP       SMTPConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
	// Debug adds internal error detail to error responses.
	Debug bool
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// GatewayConfig holds the card payment gateway credentials.
type GatewayConfig struct {
	BaseURL     string
	APIKey      string
	SecretKey   string
	CallbackURL string
	Timeout     time.Duration
}

// StorefrontConfig points at the customer-facing site that receives the
// post-payment redirect.
type StorefrontConfig struct {
	BaseURL string
}

// Settings sources.
const (
	SettingsSourceDatabase = "database"
	SettingsSourceS3       = "s3"
	SettingsSourceFile     = "file"
)

// SettingsConfig selects where the shipping settings snapshot is read from.
type SettingsConfig struct {
	Source string
	// File is the local JSON document; with the s3 source it doubles as
	// the fallback when the object cannot be read.
	File string
}

// S3Config holds AWS S3 configuration for the settings document.
type S3Config struct {
	Bucket string
	Region string
	Key    string
}

// SMTPConfig holds outbound mail configuration.
type SMTPConfig struct {
	Enabled       bool
	Host          string
	Port          int
	User          string
	Password      string
	From          string
	NotifyTimeout time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:  getEnv("SERVER_HOST", "0.0.0.0"),
			Port:  getEnvAsInt("SERVER_PORT", 8080),
			Debug: getEnvAsBool("SERVER_DEBUG", false),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "hirdavat"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Gateway: GatewayConfig{
			BaseURL:     getEnv("GATEWAY_BASE_URL", "https://sandbox-api.iyzipay.com"),
			APIKey:      getEnv("GATEWAY_API_KEY", ""),
			SecretKey:   getEnv("GATEWAY_SECRET_KEY", ""),
			CallbackURL: getEnv("GATEWAY_CALLBACK_URL", ""),
			Timeout:     getEnvAsDuration("GATEWAY_TIMEOUT", 30*time.Second),
		},
		Storefront: StorefrontConfig{
			BaseURL: getEnv("STOREFRONT_BASE_URL", "http://localhost:3000"),
		},
		Settings: SettingsConfig{
			Source: getEnv("SETTINGS_SOURCE", SettingsSourceDatabase),
			File:   getEnv("SETTINGS_FILE", ""),
		},
		S3: S3Config{
			Bucket: getEnv("S3_BUCKET", ""),
			Region: getEnv("S3_REGION", "eu-central-1"),
			Key:    getEnv("S3_SETTINGS_KEY", "settings/shipping.json"),
		},
		SMTP: SMTPConfig{
			Enabled:       getEnvAsBool("SMTP_ENABLED", false),
			Host:          getEnv("SMTP_HOST", ""),
			Port:          getEnvAsInt("SMTP_PORT", 587),
			User:          getEnv("SMTP_USER", ""),
			Password:      getEnv("SMTP_PASSWORD", ""),
			From:          getEnv("SMTP_FROM", ""),
			NotifyTimeout: getEnvAsDuration("NOTIFY_TIMEOUT", 15*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if err := c.Gateway.validate(); err != nil {
		return err
	}

	if _, err := url.ParseRequestURI(c.Storefront.BaseURL); err != nil {
		return fmt.Errorf("invalid storefront base url: %s", c.Storefront.BaseURL)
	}

	switch c.Settings.Source {
	case SettingsSourceDatabase:
	case SettingsSourceFile:
		if c.Settings.File == "" {
			return fmt.Errorf("settings file is required when settings source is file")
		}
	case SettingsSourceS3:
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when settings source is s3")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when settings source is s3")
		}
		if c.S3.Key == "" {
			return fmt.Errorf("S3 settings key is required when settings source is s3")
		}
	default:
		return fmt.Errorf("invalid settings source: %s (must be database, s3, or file)", c.Settings.Source)
	}

	if c.SMTP.Enabled {
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required when SMTP is enabled")
		}
		if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
		}
		if c.SMTP.From == "" {
			return fmt.Errorf("SMTP sender address is required when SMTP is enabled")
		}
	}

	if c.SMTP.NotifyTimeout <= 0 {
		return fmt.Errorf("notify timeout must be positive")
	}

	return nil
}

func (g GatewayConfig) validate() error {
	if _, err := url.ParseRequestURI(g.BaseURL); err != nil {
		return fmt.Errorf("invalid gateway base url: %s", g.BaseURL)
	}
	if g.APIKey == "" || g.SecretKey == "" {
		return fmt.Errorf("gateway api key and secret key are required")
	}
	if g.CallbackURL == "" {
		return fmt.Errorf("gateway callback url is required")
	}
	if g.Timeout <= 0 {
		return fmt.Errorf("gateway timeout must be positive")
	}
	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Address returns the SMTP server address.
func (c *SMTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("30s") or bare seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
