// Package config loads the carford configuration from environment variables.
// Required variables, defaults and parse failures are all checked in one pass, and every
// problem is reported together so a misconfigured deployment fails with the full list.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

const (
	minPoolSize = 5
	maxPoolSize = 100
)

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	PoolSize int
}

// DSN returns a postgres:// connection URL usable by both pgx and golang-migrate.
func (c *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.SSLMode}}.Encode(),
	}
	return u.String()
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret           string        // Secret key for signing JWTs
	AccessTokenDuration time.Duration // Lifetime of issued access tokens
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Server   *ServerConfig
	Log      *LogConfig
}

// loader reads variables and accumulates every problem it meets.
type loader struct {
	errs *multierror.Error
}

func (l *loader) required(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		l.errs = multierror.Append(l.errs, fmt.Errorf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func (l *loader) optional(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func (l *loader) optionalInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: expected integer, got '%s': %w", key, valueStr, err))
		return defaultValue
	}
	return value
}

func (l *loader) optionalDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: expected duration string, got '%s': %w", key, valueStr, err))
		return defaultValue
	}
	if value <= 0 {
		l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: duration must be positive, got '%s'", key, valueStr))
		return defaultValue
	}
	return value
}

// poolSize clamps the configured size to [minPoolSize, maxPoolSize].
func (l *loader) poolSize(key string, defaultValue int) int {
	size := l.optionalInt(key, defaultValue)
	if size < minPoolSize {
		return minPoolSize
	}
	if size > maxPoolSize {
		return maxPoolSize
	}
	return size
}

func (l *loader) oneOf(key, defaultValue string, allowed ...string) string {
	value := strings.ToLower(l.optional(key, defaultValue))
	for _, a := range allowed {
		if value == a {
			return value
		}
	}
	l.errs = multierror.Append(l.errs, fmt.Errorf("invalid value for %s: %q is not one of %s", key, value, strings.Join(allowed, ", ")))
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadConfig creates an AppConfig from the environment.
// It returns a *multierror.Error describing every invalid or missing variable.
func LoadConfig() (*AppConfig, error) {
	l := &loader{}

	database := &DatabaseConfig{
		User:     l.required("DB_USER"),
		Password: l.required("DB_PASSWORD"),
		DBName:   l.required("DB_NAME"),
		Host:     l.optional("DB_HOST", "localhost"),
		Port:     l.optionalInt("DB_PORT", 5432),
		SSLMode:  l.optional("DB_SSLMODE", "disable"),
		PoolSize: l.poolSize("DB_POOL_SIZE", 10),
	}

	auth := &AuthConfig{
		JWTSecret:           l.required("JWT_SECRET"),
		AccessTokenDuration: l.optionalDuration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute),
	}

	server := &ServerConfig{
		Port:               l.optional("PORT", "8080"),
		RequestTimeout:     l.optionalDuration("REQUEST_TIMEOUT", 60*time.Second),
		CORSAllowedOrigins: splitList(l.optional("CORS_ALLOWED_ORIGINS", "*")),
	}

	logCfg := &LogConfig{
		Level:  l.oneOf("LOG_LEVEL", "info", "debug", "info", "warn", "error"),
		Format: l.oneOf("LOG_FORMAT", "json", "json", "console"),
	}

	if err := l.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("configuration errors: %w", err)
	}

	return &AppConfig{
		Database: database,
		Auth:     auth,
		Server:   server,
		Log:      logCfg,
	}, nil
}
