// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env`
// file when present), loads them into structured Go types and
// validates that required values are present so they can be
// reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional config blocks (observability, seed).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the PROFILEAPI_ prefix. The prefix is trimmed,
	the rest is lowercased, and "." marks nesting:

	  PROFILEAPI_SERVER.PORT        -> server.port        -> Config.Server.Port
	  PROFILEAPI_AUTH.SECRET_KEY    -> auth.secret_key    -> Config.Auth.SecretKey
	  PROFILEAPI_INTEGRATION.IMGUR_CLIENT_ID -> integration.imgur_client_id

	Underscores are NOT converted into dots.
*/

// EnvPrefix is the prefix every configuration variable carries.
const EnvPrefix = "PROFILEAPI_"

// ServiceName tags logs, traces and metrics.
const ServiceName = "profile-api"

// Config is the root configuration object for the application.
//
// Observability and Seed are pointers because they are optional.
// When missing, defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
	Seed          *SeedConfig          `koanf:"seed"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// BasePath prefixes every API route ("/api/v1", "api", ""). Normalized to
	// a single leading slash.
	BasePath string `koanf:"base_path"`

	// RateLimit is requests per second per client IP. 0 disables it.
	RateLimit float64 `koanf:"rate_limit"`

	// BodyLimit caps request bodies, echo syntax ("4M").
	BodyLimit string `koanf:"body_limit"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores token signing settings.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`

	// TokenTTL is how long an issued token stays valid. Defaults to 24h.
	TokenTTL time.Duration `koanf:"token_ttl"`
}

// IntegrationConfig holds credentials for third-party collaborators.
type IntegrationConfig struct {
	ResendAPIKey  string `koanf:"resend_api_key" validate:"required"`
	ImgurClientID string `koanf:"imgur_client_id" validate:"required"`

	// ImgurBaseURL is overridable for tests and proxies.
	ImgurBaseURL string `koanf:"imgur_base_url"`

	// MailFrom is the sender address for transactional mail.
	MailFrom string `koanf:"mail_from"`
}

// SeedConfig describes the bootstrap administrator created on startup.
type SeedConfig struct {
	AdminUsername string `koanf:"admin_username" validate:"required"`
	AdminPassword string `koanf:"admin_password" validate:"required"`
	AdminName     string `koanf:"admin_name"`
}

// DefaultSeedConfig is the administrator used when no seed block is configured.
func DefaultSeedConfig() *SeedConfig {
	return &SeedConfig{
		AdminUsername: "admin",
		AdminPassword: "123456",
		AdminName:     "位高權上者",
	}
}

const (
	defaultImgurBaseURL = "https://api.imgur.com"
	defaultMailFrom     = "Profile API <onboarding@resend.dev>"
	defaultTokenTTL     = 24 * time.Hour
	defaultBodyLimit    = "4M"
)

// LoadConfig reads the environment, unmarshals it into Config, validates it
// and applies defaults.
func LoadConfig() (*Config, error) {
	return load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}))
}

func load(provider koanf.Provider) (*Config, error) {
	// "." is the key-path delimiter: "server.port" means Config.Server.Port.
	k := koanf.New(".")

	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	mainConfig.applyDefaults()

	// Service name and environment are forced so every log line and trace
	// agrees on them regardless of what was set.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	if err := validate.Struct(mainConfig.Seed); err != nil {
		return nil, fmt.Errorf("invalid seed config: %w", err)
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	if c.Seed == nil {
		c.Seed = DefaultSeedConfig()
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = defaultTokenTTL
	}
	if c.Integration.ImgurBaseURL == "" {
		c.Integration.ImgurBaseURL = defaultImgurBaseURL
	}
	if c.Integration.MailFrom == "" {
		c.Integration.MailFrom = defaultMailFrom
	}
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = defaultBodyLimit
	}
	c.Server.BasePath = NormalizeBasePath(c.Server.BasePath)
}

// NormalizeBasePath turns "api/v1/", "/api/v1" and "api/v1" into "/api/v1".
// An empty or "/" path becomes "".
func NormalizeBasePath(path string) string {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}
