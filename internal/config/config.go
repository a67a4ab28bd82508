package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sagar-1103/taskify/internal/auth"
	pkgconfig "github.com/Sagar-1103/taskify/pkg/config"
	"github.com/Sagar-1103/taskify/pkg/database"
	"github.com/Sagar-1103/taskify/pkg/tracing"
)

// Storage backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Development-only secrets. Any other environment must override them.
const (
	devAccessSecret  = "change-this-access-token-secret"
	devRefreshSecret = "change-this-refresh-token-secret"
)

const minSecretLength = 32

// ServiceName is reported in logs, metrics and traces.
const ServiceName = "taskify-backend"

// Config holds all configuration for the Taskify backend.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	Port int `env:"PORT" envDefault:"3000"`

	// Storage
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"mongo"`

	// MongoDB
	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"taskify"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"taskify"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"taskify_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"taskify"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Connection pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"10"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"2"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"30"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"5"`
	SlowQueryThresholdMs  int   `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Tokens
	AccessTokenSecret  string             `env:"ACCESS_TOKEN_SECRET" envDefault:"change-this-access-token-secret"`
	AccessTokenExpiry  pkgconfig.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"3600"`
	RefreshTokenSecret string             `env:"REFRESH_TOKEN_SECRET" envDefault:"change-this-refresh-token-secret"`
	RefreshTokenExpiry pkgconfig.Duration `env:"REFRESH_TOKEN_EXPIRY" envDefault:"604800"`

	// Passwords
	PasswordHashAlgorithm        string `env:"PASSWORD_HASH_ALGORITHM" envDefault:"bcrypt"`
	BcryptCost                   int    `env:"BCRYPT_COST" envDefault:"10"`
	RevokeTokensOnPasswordChange bool   `env:"REVOKE_TOKENS_ON_PASSWORD_CHANGE" envDefault:"false"`

	// CORS
	CORSOrigins          []string `env:"CORS_ORIGIN" envDefault:"*" envSeparator:","`
	CORSAllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"`

	// Kafka. Events are disabled when empty.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTelEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load taskify config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from vars instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadFrom(cfg, vars); err != nil {
		return nil, fmt.Errorf("load taskify config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and, outside development, that the token secrets
// were set explicitly and are long enough.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.Port)
	}

	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGODB_URI is required for the %s backend", BackendMongo)
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q: want %s or %s", c.StorageBackend, BackendMongo, BackendPostgres)
	}

	if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	if c.AccessTokenExpiry.Std() <= 0 || c.RefreshTokenExpiry.Std() <= 0 {
		return fmt.Errorf("token expiries must be positive")
	}

	if !c.IsDevelopment() {
		for name, secret := range map[string]string{
			"ACCESS_TOKEN_SECRET":  c.AccessTokenSecret,
			"REFRESH_TOKEN_SECRET": c.RefreshTokenSecret,
		} {
			if secret == devAccessSecret || secret == devRefreshSecret {
				return fmt.Errorf("%s must be explicitly set via environment variable in %q mode", name, c.Environment)
			}
			if len(secret) < minSecretLength {
				return fmt.Errorf("%s must be at least %d characters long, got %d", name, minSecretLength, len(secret))
			}
		}
	}

	if c.CORSAllowCredentials {
		for _, o := range c.CORSOrigins {
			if strings.TrimSpace(o) == "*" {
				return fmt.Errorf("CORS_ALLOW_CREDENTIALS requires explicit CORS_ORIGIN values, not %q", "*")
			}
		}
	}

	if c.OTelSampleRate < 0 || c.OTelSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be within [0, 1], got %g", c.OTelSampleRate)
	}

	return nil
}

// IsDevelopment reports whether the development defaults are acceptable.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// TokenConfig returns the token signer settings.
func (c *Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		AccessSecret:  c.AccessTokenSecret,
		RefreshSecret: c.RefreshTokenSecret,
		AccessExpiry:  c.AccessTokenExpiry.Std(),
		RefreshExpiry: c.RefreshTokenExpiry.Std(),
	}
}

// PostgresConfig returns the pgx pool settings.
func (c *Config) PostgresConfig() database.PostgresConfig {
	return database.PostgresConfig{
		Host:            c.PostgresHost,
		Port:            c.PostgresPort,
		User:            c.PostgresUser,
		Password:        c.PostgresPass,
		DBName:          c.PostgresDB,
		SSLMode:         c.PostgresSSL,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: time.Duration(c.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(c.DBMaxConnIdleTimeMins) * time.Minute,
	}
}

// MongoConfig returns the mongo client settings.
func (c *Config) MongoConfig() database.MongoConfig {
	return database.MongoConfig{
		URI:         c.MongoURI,
		Database:    c.MongoDatabase,
		MaxPoolSize: uint64(max(c.DBMaxConns, 1)),
	}
}

// SlowQueryThreshold returns the duration above which storage operations are
// logged. Zero disables the log.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}

// TracingConfig returns the OpenTelemetry settings.
func (c *Config) TracingConfig() tracing.Config {
	return tracing.Config{
		ServiceName:  ServiceName,
		Environment:  c.Environment,
		OTLPEndpoint: c.OTelEndpoint,
		SampleRate:   c.OTelSampleRate,
		Enabled:      c.OTelEnabled,
	}
}
