// Package config loads the userforms server configuration. Values are layered
// in increasing priority: struct defaults, an optional YAML file,
// USERFORMS_* environment variables and command line flags.
package config

import (
	"time"

	"github.com/goliatone/go-userforms/internal/logging"
	"github.com/goliatone/go-userforms/pkg/validation"
)

type Config struct {
	Server   ServerConfig        `koanf:"server"`
	Site     SiteConfig          `koanf:"site"`
	Forms    FormsConfig         `koanf:"forms"`
	Security SecurityConfig      `koanf:"security"`
	Messages validation.Messages `koanf:"messages"`
	Logging  logging.Config      `koanf:"logging"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required,hostname_port"`
	BasePath        string        `koanf:"base_path" validate:"required,startswith=/"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

type SiteConfig struct {
	Name       string `koanf:"name" validate:"required"`
	URL        string `koanf:"url" validate:"required,url"`
	LoginPath  string `koanf:"login_path" validate:"required,startswith=/"`
	ForgotPath string `koanf:"forgot_path" validate:"required,startswith=/"`
	ResetPath  string `koanf:"reset_path" validate:"required,startswith=/"`
}

type FormsConfig struct {
	// SchemaPath points at a YAML or JSON registration schema; empty uses the
	// built-in one.
	SchemaPath        string `koanf:"schema_path"`
	TemplatesDir      string `koanf:"templates_dir"`
	AssetsURL         string `koanf:"assets_url"`
	MinPasswordLength int    `koanf:"min_password_length" validate:"min=1,max=128"`
}

type SecurityConfig struct {
	// TokenSecret signs anti-forgery tokens. Empty generates a random secret
	// per process.
	TokenSecret       string        `koanf:"token_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl" validate:"gt=0"`
	ResetKeyTTL       time.Duration `koanf:"reset_key_ttl" validate:"gt=0"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"gt=0"`
	BcryptCost        int           `koanf:"bcrypt_cost" validate:"min=4,max=31"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			BasePath:        "/api/userforms",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{},
		},
		Site: SiteConfig{
			Name:       "userforms",
			URL:        "http://127.0.0.1:8080",
			LoginPath:  "/login",
			ForgotPath: "/forgot-password",
			ResetPath:  "/reset-password",
		},
		Forms: FormsConfig{
			AssetsURL:         "/runtime",
			MinPasswordLength: 6,
		},
		Security: SecurityConfig{
			TokenTTL:          time.Hour,
			ResetKeyTTL:       24 * time.Hour,
			RateLimitRequests: 30,
			RateLimitWindow:   time.Minute,
			BcryptCost:        10,
		},
		Messages: validation.DefaultMessages(),
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
		},
	}
}
