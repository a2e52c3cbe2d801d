package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DatabaseConfig.GetDSN
// ---------------------------------------------------------------------------

func TestGetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard config",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "ordering",
				Password: "secret",
				Name:     "ordering",
				SSLMode:  "require",
			},
			want: "host=localhost port=5432 user=ordering password=secret dbname=ordering sslmode=require",
		},
		{
			name: "disable ssl mode",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				User:     "admin",
				Password: "pass",
				Name:     "mydb",
				SSLMode:  "disable",
			},
			want: "host=db.example.com port=5433 user=admin password=pass dbname=mydb sslmode=disable",
		},
		{
			name: "empty password",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "user",
				Password: "",
				Name:     "dbname",
				SSLMode:  "prefer",
			},
			want: "host=localhost port=5432 user=user password= dbname=dbname sslmode=prefer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetDSN()
			if got != tt.want {
				t.Errorf("GetDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ServerConfig.GetAddress
// ---------------------------------------------------------------------------

func TestGetAddress(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{"default", ServerConfig{Host: "0.0.0.0", Port: 8080}, "0.0.0.0:8080"},
		{"localhost", ServerConfig{Host: "localhost", Port: 3000}, "localhost:3000"},
		{"empty host", ServerConfig{Host: "", Port: 8080}, ":8080"},
		{"port 443", ServerConfig{Host: "0.0.0.0", Port: 443}, "0.0.0.0:443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetAddress()
			if got != tt.want {
				t.Errorf("GetAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// FrontendConfig.JoinURL
// ---------------------------------------------------------------------------

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		want string
	}{
		{"plain base", "https://shop.example.com", "https://shop.example.com/join?token=abc123"},
		{"trailing slash stripped", "https://shop.example.com/", "https://shop.example.com/join?token=abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FrontendConfig{BaseURL: tt.base}
			if got := cfg.JoinURL("abc123"); got != tt.want {
				t.Errorf("JoinURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Config.Validate
// ---------------------------------------------------------------------------

func minimalValidConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Name: "ordering",
			User: "ordering",
		},
		Storage: StorageConfig{
			DefaultBackend: "local",
			Local:          LocalStorageConfig{BasePath: "./storage"},
		},
		Invites: InvitesConfig{TTL: 168 * time.Hour},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid minimal config passes", func(t *testing.T) {
		if err := minimalValidConfig().Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	t.Run("invalid server port", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Server.Port = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for port 0")
		}
	})

	t.Run("missing base url", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Server.BaseURL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty base_url")
		}
	})

	t.Run("missing database host", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Database.Host = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty database.host")
		}
	})

	t.Run("unknown storage backend", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Storage.DefaultBackend = "ftp"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for unknown backend")
		}
	})

	t.Run("s3 backend requires bucket and region", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Storage.DefaultBackend = "s3"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for s3 without bucket")
		}
		cfg.Storage.S3.Bucket = "photos"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for s3 without region")
		}
		cfg.Storage.S3.Region = "eu-central-1"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	t.Run("non-positive invite ttl", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Invites.TTL = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for zero invites.ttl")
		}
	})

	t.Run("tls enabled requires cert and key", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Security.TLS.Enabled = true
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for TLS without cert")
		}
		cfg.Security.TLS.CertFile = "/etc/tls/cert.pem"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for TLS without key")
		}
	})

	t.Run("invalid logging level", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Logging.Level = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for invalid logging level")
		}
	})
}

// ---------------------------------------------------------------------------
// Load: defaults and environment layering
// ---------------------------------------------------------------------------

func TestLoad_DefaultsApply(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port default = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.MaxConnections != 25 {
		t.Errorf("database.max_connections default = %d, want 25", cfg.Database.MaxConnections)
	}
	if cfg.Storage.DefaultBackend != "local" {
		t.Errorf("storage.default_backend default = %s, want local", cfg.Storage.DefaultBackend)
	}
	if cfg.Invites.TTL != 168*time.Hour {
		t.Errorf("invites.ttl default = %v, want 168h", cfg.Invites.TTL)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("auth.token_ttl default = %v, want 24h", cfg.Auth.TokenTTL)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	os.Setenv("ORD_DATABASE_HOST", "db.internal")
	os.Setenv("ORD_SERVER_PORT", "9999")
	defer func() {
		os.Unsetenv("ORD_DATABASE_HOST")
		os.Unsetenv("ORD_SERVER_PORT")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("database.host = %s, want db.internal", cfg.Database.Host)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("server.port = %d, want 9999", cfg.Server.Port)
	}
}

func TestLoad_PasswordEnvExpansion(t *testing.T) {
	os.Setenv("ORD_DATABASE_PASSWORD", "${SECRET_DB_PASSWORD}")
	os.Setenv("SECRET_DB_PASSWORD", "s3cr3t")
	defer func() {
		os.Unsetenv("ORD_DATABASE_PASSWORD")
		os.Unsetenv("SECRET_DB_PASSWORD")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Database.Password != "s3cr3t" {
		t.Errorf("database.password = %q, want expanded secret", cfg.Database.Password)
	}
	if strings.Contains(cfg.Database.Password, "${") {
		t.Error("database.password still contains unexpanded placeholder")
	}
}
