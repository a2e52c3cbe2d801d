// Package config loads and validates the ordering backend configuration
// using Viper.
//
// Sources layer as: built-in defaults, then the YAML config file, then
// environment variables with the ORD_ prefix (ORD_DATABASE_HOST overrides
// database.host). The same binary therefore runs from a config.yaml during
// local development and from pure environment variables in containers.
//
// ORD_JWT_SECRET is deliberately read by the auth package instead of this
// struct, keeping the signing secret out of config dumps and logs.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Invites   InvitesConfig   `mapstructure:"invites"`
	Frontend  FrontendConfig  `mapstructure:"frontend"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// StorageConfig selects and configures the product photo backend
type StorageConfig struct {
	DefaultBackend string             `mapstructure:"default_backend"`
	S3             S3StorageConfig    `mapstructure:"s3"`
	Local          LocalStorageConfig `mapstructure:"local"`
}

// S3StorageConfig holds S3-compatible storage configuration. Endpoint is
// only set for non-AWS services (MinIO, DigitalOcean Spaces). AuthMethod is
// "default" for the AWS credential chain or "static" for an explicit key
// pair; empty picks static when a key pair is present.
type S3StorageConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AuthMethod      string `mapstructure:"auth_method"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// LocalStorageConfig holds local filesystem storage configuration
type LocalStorageConfig struct {
	BasePath      string `mapstructure:"base_path"`
	ServeDirectly bool   `mapstructure:"serve_directly"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	Admin    AdminConfig    `mapstructure:"admin"`
	// TokenTTL is the lifetime of issued JWT session tokens
	TokenTTL time.Duration `mapstructure:"token_ttl"`
}

// TelegramConfig holds Telegram Mini App login configuration
type TelegramConfig struct {
	// BotToken is the Telegram bot token used to verify WebApp initData signatures
	BotToken string `mapstructure:"bot_token"`
	// InitDataMaxAge is the maximum accepted age of a signed initData payload
	InitDataMaxAge time.Duration `mapstructure:"init_data_max_age"`
}

// AdminConfig holds the admin panel credential.
// Only the bcrypt hash of the password is ever configured; use cmd/hash to generate one.
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// InvitesConfig holds organization invite settings
type InvitesConfig struct {
	// TTL is how long a generated invite token remains valid (default 168h = 7 days)
	TTL time.Duration `mapstructure:"ttl"`
	// SweepIntervalHours determines how often the expired-invite sweeper runs (default 24)
	SweepIntervalHours int `mapstructure:"sweep_interval_hours"`
}

// FrontendConfig holds URLs of the web frontends used when composing links
// that are sent to users (e.g. invite join links).
type FrontendConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	TLS          TLSConfig          `mapstructure:"tls"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// TLSConfig holds TLS/HTTPS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	ServiceName string        `mapstructure:"service_name"`
	Metrics     MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// configDefaults is the single table of built-in defaults. Every key listed
// here also gets an explicit env binding, so the table doubles as the env
// var surface for documented settings.
var configDefaults = map[string]any{
	"server.host":          "0.0.0.0",
	"server.port":          8080,
	"server.base_url":      "http://localhost:8080",
	"server.read_timeout":  "30s",
	"server.write_timeout": "30s",

	"database.host":                 "localhost",
	"database.port":                 5432,
	"database.name":                 "ordering",
	"database.user":                 "ordering",
	"database.ssl_mode":             "require",
	"database.max_connections":      25,
	"database.min_idle_connections": 5,

	"storage.default_backend":      "local",
	"storage.local.base_path":      "./storage",
	"storage.local.serve_directly": true,

	"auth.telegram.init_data_max_age": "24h",
	"auth.admin.username":             "admin",
	"auth.token_ttl":                  "24h",

	"invites.ttl":                  "168h",
	"invites.sweep_interval_hours": 24,

	"frontend.base_url": "http://localhost:5173",

	"security.cors.allowed_origins":              []string{"*"},
	"security.cors.allowed_methods":              []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	"security.rate_limiting.enabled":             true,
	"security.rate_limiting.requests_per_minute": 60,
	"security.rate_limiting.burst":               10,
	"security.tls.enabled":                       false,

	"logging.level":  "info",
	"logging.format": "json",

	"telemetry.enabled":                 true,
	"telemetry.service_name":            "ordering-backend",
	"telemetry.metrics.enabled":         true,
	"telemetry.metrics.prometheus_port": 9090,
}

// envOnlyKeys have no sensible default (secrets and optional endpoints) but
// must still be settable from the environment.
var envOnlyKeys = []string{
	"database.password",
	"storage.s3.endpoint",
	"storage.s3.region",
	"storage.s3.bucket",
	"storage.s3.auth_method",
	"storage.s3.access_key_id",
	"storage.s3.secret_access_key",
	"auth.telegram.bot_token",
	"auth.admin.password_hash",
	"security.tls.cert_file",
	"security.tls.key_file",
}

// bindEnvVars binds every known key explicitly. AutomaticEnv alone does not
// reach into nested structs during Unmarshal, so without these bindings the
// ORD_* overrides would silently be ignored.
func bindEnvVars(v *viper.Viper) error {
	for key := range configDefaults {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load reads configuration from configPath (or the conventional search
// locations when empty), applies ORD_* environment overrides, and validates
// the result. A missing config file is fine, env vars and defaults suffice.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	for key, val := range configDefaults {
		v.SetDefault(key, val)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/ordering-backend")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Secrets configured as ${VAR} references get resolved here.
	for _, field := range []*string{
		&cfg.Database.Password,
		&cfg.Storage.S3.AccessKeyID,
		&cfg.Storage.S3.SecretAccessKey,
		&cfg.Auth.Telegram.BotToken,
		&cfg.Auth.Admin.PasswordHash,
	} {
		*field = os.ExpandEnv(*field)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}

	for key, val := range map[string]string{
		"database.host": c.Database.Host,
		"database.name": c.Database.Name,
		"database.user": c.Database.User,
	} {
		if val == "" {
			return fmt.Errorf("%s is required", key)
		}
	}

	switch c.Storage.DefaultBackend {
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required when using S3 backend")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required when using S3 backend")
		}
	case "local":
		if c.Storage.Local.BasePath == "" {
			return fmt.Errorf("storage.local.base_path is required when using local backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be s3 or local)", c.Storage.DefaultBackend)
	}

	if c.Invites.TTL <= 0 {
		return fmt.Errorf("invites.ttl must be positive")
	}

	if c.Security.TLS.Enabled {
		if c.Security.TLS.CertFile == "" {
			return fmt.Errorf("security.tls.cert_file is required when TLS is enabled")
		}
		if c.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.key_file is required when TLS is enabled")
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetAddress returns the server address in host:port format
func (c *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JoinURL composes the invite join link sent to prospective members.
func (c *FrontendConfig) JoinURL(token string) string {
	return fmt.Sprintf("%s/join?token=%s", strings.TrimRight(c.BaseURL, "/"), token)
}
