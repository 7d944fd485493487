package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"http_server"`
	Database DatabaseConfig `mapstructure:"database"`
	Session  SessionConfig  `mapstructure:"session"`
	Security SecurityConfig `mapstructure:"security"`
	Mail     MailConfig     `mapstructure:"mail"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // "postgres" or "sqlite"
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type SessionConfig struct {
	Lifetime   time.Duration `mapstructure:"lifetime"`
	CookieName string        `mapstructure:"cookie_name"`
	Secure     bool          `mapstructure:"secure"`
}

type SecurityConfig struct {
	RememberSecret string        `mapstructure:"remember_secret"`
	RememberTTL    time.Duration `mapstructure:"remember_ttl"`
	BCryptCost     int           `mapstructure:"bcrypt_cost"`
}

type MailConfig struct {
	Backend       string `mapstructure:"backend"` // "console" or "sendgrid"
	SendgridKey   string `mapstructure:"sendgrid_key"`
	FromName      string `mapstructure:"from_name"`
	FromAddress   string `mapstructure:"from_address"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type CacheConfig struct {
	Type       string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL   string        `mapstructure:"redis_url"`
	Prefix     string        `mapstructure:"prefix"`
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration from environment variables only,
// used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8004),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8004"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Source:          getEnv("DB_SOURCE", "portal.db"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: time.Hour,
		},
		Session: SessionConfig{
			Lifetime:   12 * time.Hour,
			CookieName: getEnv("SESSION_COOKIE", "portal_session"),
			Secure:     getEnvAsBool("SESSION_SECURE", false),
		},
		Security: SecurityConfig{
			RememberSecret: getEnv("REMEMBER_SECRET", ""),
			RememberTTL:    30 * 24 * time.Hour,
			BCryptCost:     getEnvAsInt("BCRYPT_COST", 10),
		},
		Mail: MailConfig{
			Backend:       getEnv("MAIL_BACKEND", "console"),
			SendgridKey:   getEnv("SENDGRID_API_KEY", ""),
			FromName:      getEnv("MAIL_FROM_NAME", "Publication Portal"),
			FromAddress:   getEnv("MAIL_FROM_ADDRESS", "noreply@portal.local"),
			SubjectPrefix: getEnv("MAIL_SUBJECT_PREFIX", "[Portal] "),
		},
		Cache: CacheConfig{
			Type:       getEnv("CACHE_TYPE", "memory"),
			RedisURL:   getEnv("REDIS_URL", ""),
			Prefix:     getEnv("CACHE_PREFIX", "portal:"),
			DefaultTTL: 5 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}
	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}
	if err := c.Mail.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("mail config: %v", err))
	}
	if err := c.Cache.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("cache config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range strings.Split(c.AllowedOrigins, ",") {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if c.BCryptCost != 0 && (c.BCryptCost < 4 || c.BCryptCost > 31) {
		return errors.New("bcrypt_cost out of range")
	}
	return nil
}

func (c *MailConfig) Validate() error {
	switch c.Backend {
	case "", "console":
	case "sendgrid":
		if c.SendgridKey == "" {
			return errors.New("sendgrid_key is required for the sendgrid backend")
		}
	default:
		return fmt.Errorf("unsupported mail backend %q", c.Backend)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	switch c.Type {
	case "", "memory":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("redis_url is required for the redis cache")
		}
	default:
		return fmt.Errorf("unsupported cache type %q", c.Type)
	}
	return nil
}
