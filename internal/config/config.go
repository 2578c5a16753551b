// Package config resolves the process configuration once at start-up.
//
// Precedence, highest first: environment variables (including a .env file),
// config.yml, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// DefaultSecret is the fallback token signing key for local development.
const DefaultSecret = "yoursecret"

type Config struct {
	Env            string        `mapstructure:"APP_ENV"`
	Port           string        `mapstructure:"PORT"`
	Secret         string        `mapstructure:"SECRET"`
	DBDriver       string        `mapstructure:"DB_DRIVER"`
	DBHost         string        `mapstructure:"DB_HOST"`
	DBPort         string        `mapstructure:"DB_PORT"`
	DBUser         string        `mapstructure:"DB_USER"`
	DBPassword     string        `mapstructure:"DB_PASSWORD"`
	DBName         string        `mapstructure:"DB_NAME"`
	DBSSLMode      string        `mapstructure:"DB_SSLMODE"`
	DBSQLitePath   string        `mapstructure:"DB_SQLITE_PATH"`
	DBMaxOpenConns int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	RedisURL       string        `mapstructure:"REDIS_URL"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	AllowedOrigins string        `mapstructure:"ALLOWED_ORIGINS"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
}

// Load reads config.yml (if any) and the environment into a Config.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(cfg.DBDriver))
	cfg.DBSSLMode = strings.ToLower(strings.TrimSpace(cfg.DBSSLMode))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("SECRET", DefaultSecret)
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "forum")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "forum.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "1m")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.Secret == "" {
		return errors.New("SECRET is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}

	if c.IsProduction() {
		if c.Secret == DefaultSecret {
			return errors.New("SECRET must be changed from the default value in production")
		}
		if len(c.Secret) < 32 {
			return errors.New("SECRET must be at least 32 characters in production")
		}
	} else if c.Secret == DefaultSecret {
		slog.Warn("using the default token secret, set SECRET before deploying")
	}
	return nil
}

// PostgresDSN builds a libpq style connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
