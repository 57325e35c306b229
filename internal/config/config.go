package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrUnknownSessionStore         = errors.New("unknown session store")
)

// EnvProduction switches logging and bot debugging to production mode.
const EnvProduction = "production"

// Session store kinds.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string  `mapstructure:"env"` // current application environment (local, dev, production etc)
	TelegramAPIToken string  `mapstructure:"-"`   // Telegram API token loaded from environment
	API              API     `mapstructure:"api"`
	Session          Session `mapstructure:"session"`
	Quiz             Quiz    `mapstructure:"quiz"`
	DB               DB      `mapstructure:"database"` // database configuration section
	Redis            Redis   `mapstructure:"redis"`
	Metrics          Metrics `mapstructure:"metrics"`
}

// API configures the knowledge-check backend and the retry policy used against it.
type API struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // per attempt
	InitialDelay   time.Duration `mapstructure:"initial_delay"`
	MaxDelay       time.Duration `mapstructure:"max_delay"`
}

// Session selects where the current video of each user is kept.
type Session struct {
	Store string `mapstructure:"store"` // "postgres" or "redis"
}

// Quiz configures in-memory quiz runs.
type Quiz struct {
	TTL             time.Duration `mapstructure:"ttl"`              // idle time after which a run is discarded
	CleanupSchedule string        `mapstructure:"cleanup_schedule"` // cron spec for the cleanup job
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int           `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", ErrMissingEnvironmentVariables
	}
	return db.URL, nil
}

// Redis contains connection parameters for the Redis session store.
type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"-"`
	DB       int    `mapstructure:"db"`
}

// Metrics configures the Prometheus endpoint. An empty address disables it.
type Metrics struct {
	Addr string `mapstructure:"addr"`
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	// A missing .env file is fine: production passes real environment variables.
	_ = godotenv.Load()

	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	// Set default values for configuration keys.
	v.SetDefault("env", "local")
	v.SetDefault("api.base_url", "http://localhost:3000")
	v.SetDefault("api.request_timeout", "60s")
	v.SetDefault("api.initial_delay", "1s")
	v.SetDefault("api.max_delay", "16s")
	v.SetDefault("session.store", StorePostgres)
	v.SetDefault("quiz.ttl", "2h")
	v.SetDefault("quiz.cleanup_schedule", "@every 10m")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("metrics.addr", ":9090")

	// Configure environment variable handling and key mapping.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	// Bind explicit environment variables to configuration keys.
	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = v.BindEnv("env", "APP_ENV")
	_ = v.BindEnv("api.base_url", "API_BASE_URL", "VITE_BASE_URL")

	// Try to read configuration file if present.
	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	// Unmarshal configuration into strongly typed struct.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	if cfg.TelegramAPIToken == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	cfg.DB.URL = v.GetString("database_url")
	cfg.Redis.Password = v.GetString("redis_password")
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	switch cfg.Session.Store {
	case StorePostgres:
	case StoreRedis:
		if cfg.Redis.Addr == "" {
			return nil, ErrMissingEnvironmentVariables
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSessionStore, cfg.Session.Store)
	}

	// Users are always kept in Postgres.
	if cfg.DB.URL == "" {
		return nil, ErrMissingEnvironmentVariables
	}

	return &cfg, nil
}
