package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/inkwellhq/inkwell/internal/core/token"
)

type Config struct {
	Port     string `env:"PORT,     default=8080"`
	Env      string `env:"ENV,      default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// AppURL is the externally reachable base URL used to build the
	// activation and two-factor links embedded in emails.
	AppURL string `env:"APP_URL, default=http://localhost:8080"`

	Token TokenConfig
	Mongo MongoConfig
	Redis RedisConfig
	SMTP  SMTPConfig
}

// TokenConfig carries one secret/TTL pair per token purpose. Secrets and
// TTLs have no defaults on purpose: a deployment that forgets one must fail
// at startup, not at the first token issuance.
type TokenConfig struct {
	AccessSecret     string        `env:"JWT_ACCESS_TOKEN_SECRET"`
	AccessTTL        time.Duration `env:"JWT_ACCESS_TOKEN_TTL"`
	RefreshSecret    string        `env:"JWT_REFRESH_TOKEN_SECRET"`
	RefreshTTL       time.Duration `env:"JWT_REFRESH_TOKEN_TTL"`
	TwoFactorSecret  string        `env:"JWT_TWO_FACTOR_TOKEN_SECRET"`
	TwoFactorTTL     time.Duration `env:"JWT_TWO_FACTOR_TOKEN_TTL"`
	ActivationSecret string        `env:"JWT_ACTIVATION_TOKEN_SECRET"`
	ActivationTTL    time.Duration `env:"JWT_ACTIVATION_TOKEN_TTL"`
}

// Codec converts the flat env fields into the token package's config.
func (t TokenConfig) Codec() token.Config {
	return token.Config{
		Access:     token.PurposeConfig{Secret: t.AccessSecret, TTL: t.AccessTTL},
		Refresh:    token.PurposeConfig{Secret: t.RefreshSecret, TTL: t.RefreshTTL},
		TwoFactor:  token.PurposeConfig{Secret: t.TwoFactorSecret, TTL: t.TwoFactorTTL},
		Activation: token.PurposeConfig{Secret: t.ActivationSecret, TTL: t.ActivationTTL},
	}
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=inkwell"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

// SMTPConfig configures outbound email. An empty Addr selects the logging
// sender instead of a real SMTP connection (development mode).
type SMTPConfig struct {
	Addr     string `env:"SMTP_ADDR"`
	From     string `env:"SMTP_FROM, default=no-reply@inkwell.local"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
