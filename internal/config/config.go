package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET is required outside development")

type Config struct {
	Port        string `mapstructure:"port"`
	AppEnv      string `mapstructure:"app_env"`
	EnableDocs  bool   `mapstructure:"enable_api_docs"`
	CorsOrigins []string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig

	RateLimit       int
	RateLimitWindow time.Duration
}

type DatabaseConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

// DSN builds a postgres URL usable by both pgx and golang-migrate.
// Credentials are escaped so passwords may hold URL delimiters.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("app_env", "production")
	v.SetDefault("enable_api_docs", false)
	v.SetDefault("cors_allowed_origins", "*")

	v.SetDefault("db_user", "kanso_user")
	v.SetDefault("db_password", "secret")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "kanso_db")
	v.SetDefault("db_sslmode", "disable")

	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	v.SetDefault("jwt_secret", "")
	v.SetDefault("jwt_issuer", "kanso-fast-engine")
	v.SetDefault("jwt_ttl", "72h")

	v.SetDefault("rate_limit", 100)
	v.SetDefault("rate_limit_window", "1m")
	return v
}

// FromViper builds the typed config. Split out so tests can feed values
// without touching the environment.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:       v.GetString("port"),
		AppEnv:     normalizeEnv(v.GetString("app_env")),
		EnableDocs: v.GetBool("enable_api_docs"),
		Database: DatabaseConfig{
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			Name:     v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis_host"),
			Port:     v.GetString("redis_port"),
			Password: v.GetString("redis_password"),
			DB:       v.GetInt("redis_db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt_secret"),
			Issuer: v.GetString("jwt_issuer"),
			TTL:    v.GetDuration("jwt_ttl"),
		},
		RateLimit:       v.GetInt("rate_limit"),
		RateLimitWindow: v.GetDuration("rate_limit_window"),
	}

	for _, origin := range strings.Split(v.GetString("cors_allowed_origins"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CorsOrigins = append(cfg.CorsOrigins, origin)
		}
	}

	if cfg.JWT.Secret == "" {
		if !cfg.IsDevelopment() {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWT.Secret = "dev-secret-change-me"
	}
	if cfg.JWT.TTL <= 0 {
		return nil, fmt.Errorf("config: invalid JWT_TTL %q", v.GetString("jwt_ttl"))
	}
	if cfg.RateLimit <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, errors.New("config: rate limit and window must be positive")
	}

	return cfg, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "test", "testing":
		return "test"
	default:
		return "production"
	}
}
