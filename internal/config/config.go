// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN for the account and audit stores; empty disables persistence.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// AccessTokenSecret signs access tokens (HS256). Must differ from REFRESH_TOKEN_SECRET
	// so a leaked access secret cannot forge refresh credentials.
	AccessTokenSecret string `mapstructure:"ACCESS_TOKEN_SECRET"`
	// RefreshTokenSecret signs refresh tokens (HS256).
	RefreshTokenSecret string `mapstructure:"REFRESH_TOKEN_SECRET"`
	// TokenIssuer is the iss claim (e.g. "sessiongate"); validated on verify.
	TokenIssuer string `mapstructure:"TOKEN_ISSUER"`
	// AccessTokenTTL is the access token lifetime (e.g. "15m").
	AccessTokenTTL string `mapstructure:"ACCESS_TOKEN_TTL"`
	// RefreshTokenTTL is the refresh token lifetime (e.g. "168h"). Also the
	// idle window after which the sweeper evicts a session.
	RefreshTokenTTL string `mapstructure:"REFRESH_TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// MaxFailedAttempts is the failed-login count that trips the lockout; default 5.
	MaxFailedAttempts int `mapstructure:"MAX_FAILED_ATTEMPTS"`
	// LockoutDuration is how long a tripped account stays locked (e.g. "15m").
	LockoutDuration string `mapstructure:"LOCKOUT_DURATION"`
	// MaxConcurrentSessions caps live sessions per account; a login at the cap
	// evicts the least-recently-active session instead of failing. Default 5.
	MaxConcurrentSessions int `mapstructure:"MAX_CONCURRENT_SESSIONS"`
	// RotateRefreshTokens mints a new refresh token on every refresh and
	// invalidates the old one. Default true. When false the issued refresh
	// token stays valid for its whole lifetime, so rotated-token replay
	// cannot be detected; known trade-off, kept configurable on purpose.
	RotateRefreshTokens bool `mapstructure:"ROTATE_REFRESH_TOKENS"`
	// SweepInterval is how often the expiry sweeper runs (e.g. "60s").
	SweepInterval string `mapstructure:"SWEEP_INTERVAL"`
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. http://localhost:4317); empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ACCESS_TOKEN_SECRET", "")
	v.SetDefault("REFRESH_TOKEN_SECRET", "")
	v.SetDefault("TOKEN_ISSUER", "sessiongate")
	v.SetDefault("ACCESS_TOKEN_TTL", "15m")
	v.SetDefault("REFRESH_TOKEN_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("MAX_FAILED_ATTEMPTS", 5)
	v.SetDefault("LOCKOUT_DURATION", "15m")
	v.SetDefault("MAX_CONCURRENT_SESSIONS", 5)
	v.SetDefault("ROTATE_REFRESH_TOKENS", true)
	v.SetDefault("SWEEP_INTERVAL", "60s")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	if cfg.AccessTokenSecret != "" && cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = 5
	}
	if cfg.MaxConcurrentSessions <= 0 {
		cfg.MaxConcurrentSessions = 5
	}

	return &cfg, nil
}

// AccessTTL parses AccessTokenTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RefreshTTL parses RefreshTokenTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) RefreshTTL() time.Duration {
	d, err := time.ParseDuration(c.RefreshTokenTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// LockoutWindow parses LockoutDuration as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) LockoutWindow() time.Duration {
	d, err := time.ParseDuration(c.LockoutDuration)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// SweepEvery parses SweepInterval as a time.Duration. Returns 60s if unset or invalid.
func (c *Config) SweepEvery() time.Duration {
	d, err := time.ParseDuration(c.SweepInterval)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
