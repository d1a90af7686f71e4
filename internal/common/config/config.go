// Package config provides configuration management for Boardly.
// It supports loading configuration from environment variables, config files, and defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dongwonkwak/boardly-sub001/internal/common/logger"
)

// Config holds all configuration sections for Boardly.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Policy   PolicyConfig   `mapstructure:"policy"`
	Seed     SeedConfig     `mapstructure:"seed"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"readTimeout"`  // in seconds
	WriteTimeout int    `mapstructure:"writeTimeout"` // in seconds
}

// DatabaseConfig holds database connection configuration.
// Driver is "sqlite" (Path is used) or "postgres" (the host fields are used).
type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbName"`
	SSLMode  string `mapstructure:"sslMode"`
	MaxConns int    `mapstructure:"maxConns"`
	MinConns int    `mapstructure:"minConns"`
}

// NATSConfig holds NATS messaging configuration. An empty URL selects the in-memory bus.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	ClientID      string `mapstructure:"clientId"`
	MaxReconnects int    `mapstructure:"maxReconnects"`
}

// RedisConfig holds the display-name cache configuration. An empty URL disables redis.
type RedisConfig struct {
	URL     string `mapstructure:"url"`
	NameTTL int    `mapstructure:"nameTTL"` // in seconds
}

// AuthConfig holds requester identity configuration.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
	DevHeader bool   `mapstructure:"devHeader"` // accept X-User-ID without a token
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"outputPath"`
}

// PolicyConfig holds board list and card limits.
type PolicyConfig struct {
	MaxListsPerBoard         int `mapstructure:"maxListsPerBoard"`
	RecommendedListsPerBoard int `mapstructure:"recommendedListsPerBoard"`
	ListWarningThreshold     int `mapstructure:"listWarningThreshold"`
	MaxListTitleLength       int `mapstructure:"maxListTitleLength"`
	MaxCardsPerList          int `mapstructure:"maxCardsPerList"`
	MaxCardTitleLength       int `mapstructure:"maxCardTitleLength"`
	MaxCardDescriptionLength int `mapstructure:"maxCardDescriptionLength"`
}

// SeedConfig points at optional startup data.
type SeedConfig struct {
	UsersFile string `mapstructure:"usersFile"`
}

// ReadTimeoutDuration returns the read timeout as a time.Duration.
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns the write timeout as a time.Duration.
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// NameTTLDuration returns the name cache TTL as a time.Duration.
func (r *RedisConfig) NameTTLDuration() time.Duration {
	return time.Duration(r.NameTTL) * time.Second
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./boardly.db")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "boardly")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbName", "boardly")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxConns", 25)
	v.SetDefault("database.minConns", 5)

	v.SetDefault("nats.url", "")
	v.SetDefault("nats.clientId", "boardly")
	v.SetDefault("nats.maxReconnects", 10)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.nameTTL", 600)

	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.devHeader", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logger.DetectFormat())
	v.SetDefault("logging.outputPath", "stdout")

	v.SetDefault("policy.maxListsPerBoard", 20)
	v.SetDefault("policy.recommendedListsPerBoard", 10)
	v.SetDefault("policy.listWarningThreshold", 15)
	v.SetDefault("policy.maxListTitleLength", 100)
	v.SetDefault("policy.maxCardsPerList", 100)
	v.SetDefault("policy.maxCardTitleLength", 200)
	v.SetDefault("policy.maxCardDescriptionLength", 2000)

	v.SetDefault("seed.usersFile", "")
}

// Load reads configuration from environment variables, config file, and defaults.
// Environment variables use the prefix BOARDLY_, e.g. BOARDLY_DATABASE_DRIVER.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from the specified path or default locations.
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("BOARDLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not split camelCase keys.
	_ = v.BindEnv("auth.jwtSecret", "BOARDLY_AUTH_JWT_SECRET")
	_ = v.BindEnv("auth.devHeader", "BOARDLY_AUTH_DEV_HEADER")
	_ = v.BindEnv("redis.nameTTL", "BOARDLY_REDIS_NAME_TTL")
	_ = v.BindEnv("seed.usersFile", "BOARDLY_SEED_USERS_FILE")
	_ = v.BindEnv("database.dbName", "BOARDLY_DATABASE_DB_NAME")

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/boardly/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	switch strings.ToLower(cfg.Database.Driver) {
	case "sqlite":
		if cfg.Database.Path == "" {
			errs = append(errs, "database.path is required for the sqlite driver")
		}
	case "postgres":
		if cfg.Database.Host == "" {
			errs = append(errs, "database.host is required for the postgres driver")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			errs = append(errs, "database.port must be between 1 and 65535")
		}
		if cfg.Database.User == "" {
			errs = append(errs, "database.user is required for the postgres driver")
		}
		if cfg.Database.DBName == "" {
			errs = append(errs, "database.dbName is required for the postgres driver")
		}
	default:
		errs = append(errs, "database.driver must be one of: sqlite, postgres")
	}

	if cfg.Redis.URL != "" && cfg.Redis.NameTTL <= 0 {
		errs = append(errs, "redis.nameTTL must be positive")
	}

	if cfg.Auth.JWTSecret == "" && !cfg.Auth.DevHeader {
		errs = append(errs, "auth.jwtSecret is required unless auth.devHeader is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text")
	}

	p := cfg.Policy
	if p.MaxListsPerBoard <= 0 {
		errs = append(errs, "policy.maxListsPerBoard must be positive")
	}
	if p.RecommendedListsPerBoard <= 0 || p.RecommendedListsPerBoard > p.ListWarningThreshold {
		errs = append(errs, "policy.recommendedListsPerBoard must be positive and not above policy.listWarningThreshold")
	}
	if p.ListWarningThreshold > p.MaxListsPerBoard {
		errs = append(errs, "policy.listWarningThreshold must not exceed policy.maxListsPerBoard")
	}
	if p.MaxListTitleLength <= 0 {
		errs = append(errs, "policy.maxListTitleLength must be positive")
	}
	if p.MaxCardsPerList <= 0 {
		errs = append(errs, "policy.maxCardsPerList must be positive")
	}
	if p.MaxCardTitleLength <= 0 || p.MaxCardDescriptionLength <= 0 {
		errs = append(errs, "policy card length limits must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
