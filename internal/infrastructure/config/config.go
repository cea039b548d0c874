package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	GRPC      GRPCConfig
	Logging   LogConfig
	Users     UsersConfig
	Contracts ContractsConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// GRPCConfig holds the gRPC health endpoint configuration.
type GRPCConfig struct {
	Port    string `envconfig:"GRPC_PORT" default:"9090"`
	Enabled bool   `envconfig:"GRPC_ENABLED" default:"true"`
}

// LogConfig holds logging and instrumentation configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	// PerfEnabled switches performance records on or off globally
	PerfEnabled bool `envconfig:"LOG_PERF_ENABLED" default:"true"`
	// ComponentLevels overrides the level per component, e.g.
	// "ContractService:debug,UsersClient:warn"
	ComponentLevels map[string]string `envconfig:"LOG_LEVELS"`
	// DeclarationsFile is a YAML or TOML file layered over the code
	// declarations of instrumented components
	DeclarationsFile string `envconfig:"LOGGABLE_CONFIG"`
}

// UsersConfig holds the users service client configuration.
type UsersConfig struct {
	URL       string        `envconfig:"USERS_SERVICE_URL" default:"http://localhost:8081/api/v1/users"`
	Timeout   time.Duration `envconfig:"USERS_TIMEOUT" default:"10s"`
	RetryMax  int           `envconfig:"USERS_RETRY_MAX" default:"3"`
	RateLimit float64       `envconfig:"USERS_RATE_LIMIT" default:"0"`
}

// ContractsConfig holds the contract repository configuration.
type ContractsConfig struct {
	SeedFile string `envconfig:"CONTRACTS_SEED_FILE"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds the allowed origins.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		GRPC: GRPCConfig{
			Port:    "9090",
			Enabled: true,
		},
		Logging: LogConfig{
			Level:       "info",
			PerfEnabled: true,
		},
		Users: UsersConfig{
			URL:      "http://localhost:8081/api/v1/users",
			Timeout:  10 * time.Second,
			RetryMax: 3,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}
