// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Cache    CacheConfig
	Session  SessionConfig
	Lookup   LookupConfig
	Auth     AuthConfig
	Database DatabaseConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	SwaggerUser    string
	SwaggerPass    string
}

// LogConfig selects the log level and console output.
type LogConfig struct {
	Level  string
	Pretty bool
}

// CacheConfig holds the substance lookup cache configuration.
type CacheConfig struct {
	Enabled bool
	Size    int
	TTL     time.Duration
}

// SessionConfig holds calculation session limits.
type SessionConfig struct {
	TTL         time.Duration
	MaxSessions int
}

// LookupConfig caps substance lookups and catalog searches.
type LookupConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// AuthConfig holds authentication configuration. The Admin fields, when all set, create
// an administrator account at startup if none exists with that email.
type AuthConfig struct {
	Enabled          bool
	APIKeys          map[string]bool
	JWTSecretKey     string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration
	// GrantsCacheTTL keeps resolved role permissions in memory. Zero disables the cache.
	GrantsCacheTTL time.Duration
	AdminEmail     string
	AdminUsername  string
	AdminPassword  string
}

// BootstrapAdmin reports whether an administrator account should be ensured.
func (a AuthConfig) BootstrapAdmin() bool {
	return a.AdminEmail != "" && a.AdminUsername != "" && a.AdminPassword != ""
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI          string
	DatabaseName string
	LogsTTL      time.Duration
	Timeout      time.Duration
	Enabled      bool
	// SeedReferenceData inserts the bundled regulations and chemicals missing from the catalog on startup.
	SeedReferenceData              bool
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

const (
	devAccessSecret  = "your-secret-key-change-in-production"
	devRefreshSecret = "your-refresh-secret-key-change-in-production"
)

// Load reads the process environment.
func Load() Config {
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup. Malformed values fall back to their defaults.
func FromEnv(lookup func(string) (string, bool)) Config {
	e := env(lookup)
	return Config{
		Server: ServerConfig{
			Port:           e.str("PORT", "8080"),
			RateLimit:      e.num("RATE_LIMIT", 100),
			RateWindow:     e.duration("RATE_WINDOW", time.Minute),
			RequestTimeout: e.duration("REQUEST_TIMEOUT", 30*time.Second),
			CORSOrigins:    e.list("CORS_ORIGINS", "http://localhost:3000", "http://127.0.0.1:3000"),
			SwaggerUser:    e.str("SWAGGER_USER", ""),
			SwaggerPass:    e.str("SWAGGER_PASS", ""),
		},
		Log: LogConfig{
			Level:  e.str("LOG_LEVEL", "info"),
			Pretty: e.flag("LOG_PRETTY", false),
		},
		Cache: CacheConfig{
			Enabled: e.flag("CACHE_ENABLED", true),
			Size:    e.num("CACHE_SIZE", 1000),
			TTL:     e.duration("CACHE_TTL", 5*time.Minute),
		},
		Session: SessionConfig{
			TTL:         e.duration("SESSION_TTL", 2*time.Hour),
			MaxSessions: e.num("SESSION_MAX", 10000),
		},
		Lookup: LookupConfig{
			DefaultLimit: e.num("LOOKUP_DEFAULT_LIMIT", 20),
			MaxLimit:     e.num("LOOKUP_MAX_LIMIT", 100),
		},
		Auth: AuthConfig{
			Enabled:          e.flag("AUTH_ENABLED", false),
			APIKeys:          e.set("API_KEYS"),
			JWTSecretKey:     e.str("JWT_SECRET_KEY", devAccessSecret),
			JWTRefreshSecret: e.str("JWT_REFRESH_SECRET_KEY", devRefreshSecret),
			AccessTokenTTL:   e.duration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:  e.duration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			GrantsCacheTTL:   e.duration("AUTH_GRANTS_CACHE_TTL", time.Minute),
			AdminEmail:       e.str("AUTH_ADMIN_EMAIL", ""),
			AdminUsername:    e.str("AUTH_ADMIN_USERNAME", ""),
			AdminPassword:    e.str("AUTH_ADMIN_PASSWORD", ""),
		},
		Database: DatabaseConfig{
			URI:                            e.str("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   e.str("MONGODB_DATABASE", "compliance_track"),
			LogsTTL:                        e.duration("MONGODB_LOGS_TTL", 30*24*time.Hour),
			Timeout:                        e.duration("MONGODB_TIMEOUT", 10*time.Second),
			Enabled:                        e.flag("MONGODB_ENABLED", false),
			SeedReferenceData:              e.flag("MONGODB_SEED_REFERENCE_DATA", true),
			CircuitBreakerFailureThreshold: e.num("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: e.num("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          e.duration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
	}
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Lookup.DefaultLimit <= 0 || c.Lookup.DefaultLimit > c.Lookup.MaxLimit {
		errs = append(errs, fmt.Errorf("lookup default limit %d must be in 1..%d", c.Lookup.DefaultLimit, c.Lookup.MaxLimit))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.Auth.Enabled && c.Database.Enabled {
		if c.Auth.JWTSecretKey == c.Auth.JWTRefreshSecret {
			errs = append(errs, errors.New("access and refresh token secrets must differ"))
		}
		if c.Auth.AccessTokenTTL <= 0 || c.Auth.RefreshTokenTTL <= c.Auth.AccessTokenTTL {
			errs = append(errs, errors.New("refresh token ttl must exceed the access token ttl"))
		}
	}
	return errors.Join(errs...)
}

// UsesDevSecrets reports whether the built in token secrets are still configured.
func (a AuthConfig) UsesDevSecrets() bool {
	return a.JWTSecretKey == devAccessSecret || a.JWTRefreshSecret == devRefreshSecret
}

type env func(string) (string, bool)

func (e env) value(key string) (string, bool) {
	v, ok := e(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e env) str(key, def string) string {
	if v, ok := e.value(key); ok {
		return v
	}
	return def
}

func (e env) num(key string, def int) int {
	if v, ok := e.value(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (e env) flag(key string, def bool) bool {
	if v, ok := e.value(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func (e env) duration(key string, def time.Duration) time.Duration {
	if v, ok := e.value(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// list splits a comma separated value and appends it to base.
func (e env) list(key string, base ...string) []string {
	out := append([]string(nil), base...)
	v, _ := e.value(key)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// set returns the comma separated values of key as a set, or nil when there are none.
func (e env) set(key string) map[string]bool {
	items := e.list(key)
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]bool, len(items))
	for _, item := range items {
		out[item] = true
	}
	return out
}
